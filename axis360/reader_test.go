package axis360

import (
	"net/http"
	"testing"

	"github.com/indexdata/crosslink/econtent/cache"
	"github.com/indexdata/crosslink/econtent/catalog"
	"github.com/stretchr/testify/assert"
)

func loginHandler(t *testing.T, cookie *http.Cookie) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/login", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "21000", r.PostForm.Get("username"))
		assert.Equal(t, "1234", r.PostForm.Get("password"))
		if cookie != nil {
			http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "x"})
			http.SetCookie(w, cookie)
		}
		w.Header().Set("Location", "/home")
		w.WriteHeader(http.StatusFound)
	}
}

func TestReaderRedirectWithSession(t *testing.T) {
	f := newFixture(t, cache.NewMemoryCache(), loginHandler(t, &http.Cookie{Name: "sessionid_lib1", Value: "abc def"}))
	redirect, err := f.factory.NewClient().GetReaderRedirect(newCtx(), testPatron(), "0001")
	assert.NoError(t, err)
	assert.Equal(t, f.server.URL+"/ebooks/0001?auth_cookie=abc+def", redirect)
	// redirect is not followed
	assert.Equal(t, int32(1), f.hits.Load())
}

func TestReaderRedirectAudio(t *testing.T) {
	f := newFixture(t, cache.NewMemoryCache(), loginHandler(t, &http.Cookie{Name: "sessionid_lib1", Value: "s1"}))
	f.catalog.Records = map[string]catalog.Record{"0002": {Axis360ID: "0002", Format: "MP3"}}
	redirect, err := f.factory.NewClient().GetReaderRedirect(newCtx(), testPatron(), "0002")
	assert.NoError(t, err)
	assert.Equal(t, f.server.URL+"/audiobooks/0002?auth_cookie=s1", redirect)
}

func TestReaderRedirectWithoutSession(t *testing.T) {
	f := newFixture(t, cache.NewMemoryCache(), loginHandler(t, nil))
	client := f.factory.NewClient()
	redirect, err := client.GetReaderRedirect(newCtx(), testPatron(), "0001")
	assert.NoError(t, err)
	assert.Equal(t, f.server.URL+"/EPubRead/0001", redirect)

	f.catalog.Records = map[string]catalog.Record{"0002": {Axis360ID: "0002", Format: "MP3"}}
	redirect, err = client.GetReaderRedirect(newCtx(), testPatron(), "0002")
	assert.NoError(t, err)
	assert.Equal(t, f.server.URL+"/AudioPlayer/0002", redirect)
}

func TestReaderRedirectLoginUnreachable(t *testing.T) {
	f := newFixture(t, cache.NewMemoryCache(), loginHandler(t, nil))
	f.server.Close()
	redirect, err := f.factory.NewClient().GetReaderRedirect(newCtx(), testPatron(), "0001")
	assert.NoError(t, err)
	assert.Equal(t, f.server.URL+"/EPubRead/0001", redirect)
}

func TestReaderRedirectNoPatron(t *testing.T) {
	f := newFixture(t, cache.NewMemoryCache(), loginHandler(t, nil))
	_, err := f.factory.NewClient().GetReaderRedirect(newCtx(), nil, "0001")
	assert.ErrorIs(t, err, ErrNoPatron)
}
