package httpclient

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBadScheme(t *testing.T) {
	_, err := NewClient().Send(http.MethodGet, "xxx:/", nil)
	assert.ErrorContains(t, err, "unsupported protocol scheme")
}

func TestBadUrlChar(t *testing.T) {
	_, err := NewClient().Send(http.MethodGet, "http://localhost:8081\x7f", nil)
	assert.ErrorContains(t, err, "invalid control character in URL")
}

func TestBadConnectionRefused(t *testing.T) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	assert.Nil(t, err)
	l, err := net.ListenTCP("tcp", addr)
	assert.Nil(t, err)
	port := strconv.Itoa(l.Addr().(*net.TCPAddr).Port)
	l.Close()
	_, err = NewClient().Send(http.MethodPost, "http://localhost:"+port, []byte("<a/>"))
	assert.ErrorContains(t, err, "connection refused")
}

func TestServerForbiddenIsResponse(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Forbidden", http.StatusForbidden)
	})
	server := httptest.NewServer(handler)
	defer server.Close()
	resp, err := NewClient().Send(http.MethodPost, server.URL, []byte("<a/>"))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "Forbidden")

	err = resp.Check()
	assert.ErrorContains(t, err, "HTTP error 403")
	httpErr, ok := err.(*HttpError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusForbidden, httpErr.StatusCode)
}

func TestCheck(t *testing.T) {
	assert.NoError(t, (&Response{StatusCode: 201}).Check())
	assert.Error(t, (&Response{StatusCode: 302}).Check())
	assert.NoError(t, (&Response{StatusCode: 404}).Check(200, 404))
	assert.Error(t, (&Response{StatusCode: 201}).Check(200))
}

func TestSendHeadersAndBody(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/xml", r.Header.Get("Content-Type"))
		assert.Equal(t, "value1", r.Header.Get("X-Custom"))
		buf, err := io.ReadAll(r.Body)
		assert.Nil(t, err)
		assert.Equal(t, "<msg>hello</msg>", string(buf))
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusCreated)
		_, err = w.Write([]byte("<msg>world</msg>"))
		assert.Nil(t, err)
	})
	server := httptest.NewServer(handler)
	defer server.Close()
	client := NewClient().WithHeaders(ContentType, ContentTypeApplicationXml, "X-Custom", "value1", "", "ignored")
	resp, err := client.Send(http.MethodPost, server.URL, []byte("<msg>hello</msg>"))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "<msg>world</msg>", string(resp.Body))
	assert.Equal(t, "application/xml", resp.Header.Get(ContentType))
}

func TestHeadersNotShared(t *testing.T) {
	var seen []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, strings.Join(r.Header.Values("X-Sig"), ","))
	})
	server := httptest.NewServer(handler)
	defer server.Close()
	_, err := NewClient().WithHeaders("X-Sig", "a").Send(http.MethodGet, server.URL, nil)
	assert.NoError(t, err)
	_, err = NewClient().WithHeaders("X-Sig", "b").Send(http.MethodGet, server.URL, nil)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestMaxSize(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write([]byte(strings.Repeat("x", 100)))
		assert.Nil(t, err)
	})
	server := httptest.NewServer(handler)
	defer server.Close()
	_, err := NewClient().WithMaxSize(10).Send(http.MethodGet, server.URL, nil)
	assert.ErrorContains(t, err, "response body too large")
}

func TestTimeout(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	server := httptest.NewServer(handler)
	defer server.Close()
	_, err := NewClient().WithTimeout(20*time.Millisecond).Send(http.MethodGet, server.URL, nil)
	assert.ErrorContains(t, err, "Client.Timeout exceeded")
}

func TestWithoutRedirects(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			http.SetCookie(w, &http.Cookie{Name: "sessionid_1", Value: "abc"})
			http.Redirect(w, r, "/home", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(handler)
	defer server.Close()
	resp, err := NewClient().WithoutRedirects().Send(http.MethodPost, server.URL+"/login", []byte("a=b"))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Set-Cookie"), "sessionid_1=abc")
}

func TestServerBrokenPipe(t *testing.T) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	assert.Nil(t, err)
	l, err := net.ListenTCP("tcp", addr)
	assert.Nil(t, err)
	defer l.Close()
	url := "http://localhost:" + strconv.Itoa(l.Addr().(*net.TCPAddr).Port)
	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		var buf [100]byte
		_, _ = conn.Read(buf[:])
		// length is 2 but only 1 byte sent
		_, _ = conn.Write([]byte("HTTP/1.1 200 OK\r\nContent-Length: 2\r\nContent-Type: text/xml\r\n\r\nX"))
	}()
	_, err = NewClient().Send(http.MethodPost, url, []byte("<a/>"))
	assert.Error(t, err)
}
