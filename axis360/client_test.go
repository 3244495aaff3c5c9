package axis360

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/indexdata/crosslink/econtent/cache"
	"github.com/indexdata/crosslink/econtent/catalog"
	extctx "github.com/indexdata/crosslink/econtent/common"
	"github.com/indexdata/crosslink/econtent/httpclient"
	"github.com/indexdata/crosslink/econtent/patron"
	"github.com/indexdata/crosslink/econtent/settings"
	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

type recordingTracker struct {
	patrons   []string
	checkouts []string
	holds     []string
	err       error
}

func (r *recordingTracker) TrackPatronUsage(ctx extctx.ExtendedContext, userId string) error {
	r.patrons = append(r.patrons, userId)
	return r.err
}

func (r *recordingTracker) TrackRecordCheckout(ctx extctx.ExtendedContext, axis360Id string) error {
	r.checkouts = append(r.checkouts, axis360Id)
	return r.err
}

func (r *recordingTracker) TrackRecordHold(ctx extctx.ExtendedContext, axis360Id string) error {
	r.holds = append(r.holds, axis360Id)
	return r.err
}

// missCache never holds anything
type missCache struct{}

func (missCache) Get(ctx context.Context, key string) ([]byte, error) { return nil, cache.ErrMiss }

func (missCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (missCache) Delete(ctx context.Context, keys ...string) error { return nil }

type fixture struct {
	server  *httptest.Server
	factory *ClientFactory
	cache   cache.Cache
	tracker *recordingTracker
	catalog *catalog.MemoryCatalog
	hits    *atomic.Int32
}

func newFixture(t *testing.T, c cache.Cache, handler http.HandlerFunc) *fixture {
	f := &fixture{cache: c, tracker: &recordingTracker{}, catalog: &catalog.MemoryCatalog{}, hits: &atomic.Int32{}}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(f.server.Close)
	provider := &settings.StaticProvider{Settings: settings.VendorSettings{
		LibraryID: "lib1", AccountID: "acct", AccountKey: "secret",
		ApiURL: f.server.URL, UserInterfaceURL: f.server.URL + "/",
	}}
	f.factory = NewClientFactory(provider, c, f.catalog, f.tracker, Config{SummaryTTL: time.Minute})
	f.factory.Now = func() time.Time { return testNow }
	return f
}

func newCtx() extctx.ExtendedContext {
	return extctx.CreateExtCtxWithArgs(context.Background(), nil)
}

func testPatron() *patron.Patron {
	return &patron.Patron{ID: "p1", Barcode: "21000", Pin: "1234", DisplayName: "Jo", LibraryLabel: "Main"}
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func seedCache(t *testing.T, c cache.Cache, patronId string) {
	ctx := context.Background()
	assert.NoError(t, c.Set(ctx, SummaryKey(patronId), []byte(`{"numCheckedOut":1}`), time.Minute))
	assert.NoError(t, c.Set(ctx, CirculationKey(patronId), []byte(`<CirculationResponse/>`), time.Minute))
}

func cached(c cache.Cache, key string) bool {
	_, err := c.Get(context.Background(), key)
	return err == nil
}

func TestRequestIsSignedAndShaped(t *testing.T) {
	f := newFixture(t, cache.NewMemoryCache(), func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/cirrus/library/lib1/checkout?password=p%40ss+word", r.URL.RequestURI())
		ts := r.Header.Get(HeaderDatetime)
		assert.Equal(t, "Mon, 04 Mar 2024 10:00:00 GMT", ts)
		assert.Equal(t, "3MCLAUTH acct:"+Sign("secret", ts, http.MethodPost, r.URL.RequestURI()), r.Header.Get(HeaderAuthorization))
		assert.Equal(t, ApiVersion, r.Header.Get(HeaderApiVersion))
		assert.Equal(t, "application/xml", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/xml", r.Header.Get("Accept"))
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, "<CheckoutRequest><ItemId>0001</ItemId><PatronId>21000</PatronId></CheckoutRequest>", string(body))
		respond(200, "<CheckoutResult/>")(w, r)
	})
	p := testPatron()
	p.Pin = "p@ss word"
	result, err := f.factory.NewClient().CheckOutTitle(newCtx(), p, "0001")
	assert.NoError(t, err)
	assert.True(t, result.Success)
}

func TestCheckoutSuccess(t *testing.T) {
	c := cache.NewMemoryCache()
	f := newFixture(t, c, respond(200, "<CheckoutResult><ItemId>0001</ItemId></CheckoutResult>"))
	seedCache(t, c, "p1")
	result, err := f.factory.NewClient().CheckOutTitle(newCtx(), testPatron(), "0001")
	assert.NoError(t, err)
	assert.Equal(t, OperationResult{Success: true,
		Message: "Your title was checked out successfully. You can read or listen to the title from your account."}, result)
	assert.False(t, cached(c, SummaryKey("p1")))
	assert.False(t, cached(c, CirculationKey("p1")))
	assert.Equal(t, []string{"p1"}, f.tracker.patrons)
	assert.Equal(t, []string{"0001"}, f.tracker.checkouts)
	assert.Empty(t, f.tracker.holds)
}

func TestRenewMessage(t *testing.T) {
	f := newFixture(t, cache.NewMemoryCache(), respond(200, "<CheckoutResult/>"))
	result, err := f.factory.NewClient().RenewCheckout(newCtx(), testPatron(), "0001")
	assert.NoError(t, err)
	assert.Equal(t, OperationResult{Success: true, Message: "Your title was renewed successfully."}, result)
}

func TestCheckoutVendorError(t *testing.T) {
	c := cache.NewMemoryCache()
	f := newFixture(t, c, respond(200, "<Response><Error><Message>No copies available</Message></Error></Response>"))
	seedCache(t, c, "p1")
	result, err := f.factory.NewClient().CheckOutTitle(newCtx(), testPatron(), "0001")
	assert.NoError(t, err)
	assert.Equal(t, OperationResult{Message: "No copies available"}, result)
	assert.True(t, cached(c, SummaryKey("p1")))
	assert.True(t, cached(c, CirculationKey("p1")))
	assert.Empty(t, f.tracker.patrons)
	assert.Empty(t, f.tracker.checkouts)
}

func TestCheckoutNon2xxWithoutErrorNode(t *testing.T) {
	c := cache.NewMemoryCache()
	f := newFixture(t, c, respond(500, "oops"))
	seedCache(t, c, "p1")
	result, err := f.factory.NewClient().CheckOutTitle(newCtx(), testPatron(), "0001")
	assert.NoError(t, err)
	assert.Equal(t, OperationResult{Message: "Unknown error"}, result)
	assert.True(t, cached(c, SummaryKey("p1")))
}

func TestCheckoutEmptyBodyNotTracked(t *testing.T) {
	c := cache.NewMemoryCache()
	f := newFixture(t, c, respond(200, ""))
	seedCache(t, c, "p1")
	result, err := f.factory.NewClient().CheckOutTitle(newCtx(), testPatron(), "0001")
	assert.NoError(t, err)
	assert.Equal(t, OperationResult{Message: "Unknown error"}, result)
	assert.True(t, cached(c, SummaryKey("p1")))
	assert.True(t, cached(c, CirculationKey("p1")))
	assert.Empty(t, f.tracker.patrons)
	assert.Empty(t, f.tracker.checkouts)
}

func TestFineLimitNoNetwork(t *testing.T) {
	f := newFixture(t, cache.NewMemoryCache(), respond(200, ""))
	p := testPatron()
	p.FineLimitReached = true
	client := f.factory.NewClient()
	result, err := client.CheckOutTitle(newCtx(), p, "0001")
	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Sorry, your account has too many outstanding fines to use Axis 360.", result.Message)
	hold, err := client.PlaceHold(newCtx(), p, "0001")
	assert.NoError(t, err)
	assert.False(t, hold.Success)
	assert.Equal(t, result.Message, hold.Message)
	assert.Equal(t, int32(0), f.hits.Load())
}

func TestNoPatron(t *testing.T) {
	f := newFixture(t, cache.NewMemoryCache(), respond(200, ""))
	client := f.factory.NewClient()
	_, err := client.CheckOutTitle(newCtx(), nil, "0001")
	assert.ErrorIs(t, err, ErrNoPatron)
	_, err = client.ReturnCheckout(newCtx(), nil, "0001")
	assert.ErrorIs(t, err, ErrNoPatron)
	_, err = client.PlaceHold(newCtx(), nil, "0001")
	assert.ErrorIs(t, err, ErrNoPatron)
	_, err = client.GetItemStatus(newCtx(), "0001", nil)
	assert.ErrorIs(t, err, ErrNoPatron)
	ok, err := client.CheckAuthentication(newCtx(), nil)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int32(0), f.hits.Load())
}

func TestStatusTables(t *testing.T) {
	type op func(c *Client, p *patron.Patron) (OperationResult, error)
	checkoutOp := func(c *Client, p *patron.Patron) (OperationResult, error) { return c.CheckOutTitle(newCtx(), p, "0001") }
	renewOp := func(c *Client, p *patron.Patron) (OperationResult, error) { return c.RenewCheckout(newCtx(), p, "0001") }
	returnOp := func(c *Client, p *patron.Patron) (OperationResult, error) { return c.ReturnCheckout(newCtx(), p, "0001") }
	cancelOp := func(c *Client, p *patron.Patron) (OperationResult, error) { return c.CancelHold(newCtx(), p, "0001") }
	holdOp := func(c *Client, p *patron.Patron) (OperationResult, error) {
		r, err := c.PlaceHold(newCtx(), p, "0001")
		return r.OperationResult, err
	}
	tests := []struct {
		name    string
		op      op
		status  int
		body    string
		success bool
		message string
	}{
		{"checkout 200", checkoutOp, 200, "<CheckoutResult/>", true, "Your title was checked out successfully. You can read or listen to the title from your account."},
		{"checkout 200 empty body", checkoutOp, 200, "", false, "Unknown error"},
		{"checkout 400", checkoutOp, 400, "", false, "Bad Request checking out title."},
		{"checkout 403", checkoutOp, 403, "", false, "Unable to authenticate."},
		{"checkout 404", checkoutOp, 404, "", false, "Item was not found."},
		{"checkout 500", checkoutOp, 500, "", false, "Unknown error"},
		{"renew 200", renewOp, 200, "<CheckoutResult/>", true, "Your title was renewed successfully."},
		{"renew 403", renewOp, 403, "", false, "Unable to authenticate."},
		{"renew 200 empty body", renewOp, 200, "  \n", false, "Unknown error"},
		{"return 200", returnOp, 200, "", true, "Your title was returned successfully."},
		{"return 400", returnOp, 400, "", false, "Bad Request returning checkout."},
		{"return 403", returnOp, 403, "", false, "Unable to authenticate."},
		{"return 404", returnOp, 404, "", false, "Checkout was not found."},
		{"return 500", returnOp, 500, "", false, "Unknown error"},
		{"return 201", returnOp, 201, "", false, "Unknown error"},
		{"cancel 200", cancelOp, 200, "", true, "Your hold was cancelled successfully."},
		{"cancel 400", cancelOp, 400, "", false, "Bad Request cancelling hold."},
		{"cancel 403", cancelOp, 403, "", false, "Unable to authenticate."},
		{"cancel 404", cancelOp, 404, "", false, "Item was not found."},
		{"hold 201", holdOp, 201, "", true, "Your hold was placed successfully."},
		{"hold 200", holdOp, 200, "", false, "Unknown error"},
		{"hold 405", holdOp, 405, "", false, "Bad Request placing hold."},
		{"hold 403", holdOp, 403, "", false, "Unable to authenticate."},
		{"hold 404", holdOp, 404, "", false, "Item was not found."},
		{"hold 409 vendor text", holdOp, 409, "<R><Error><Message>Already on hold</Message></Error></R>", false, "Already on hold"},
		{"hold 409 empty text", holdOp, 409, "<R><Error><Message></Message></Error></R>", false, "Unknown error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cache.NewMemoryCache()
			f := newFixture(t, c, respond(tt.status, tt.body))
			seedCache(t, c, "p1")
			result, err := tt.op(f.factory.NewClient(), testPatron())
			assert.NoError(t, err)
			assert.Equal(t, tt.success, result.Success)
			assert.Equal(t, tt.message, result.Message)
			assert.Equal(t, !tt.success, cached(c, SummaryKey("p1")))
			assert.Equal(t, !tt.success, cached(c, CirculationKey("p1")))
		})
	}
}

func TestDebugAppendsRequest(t *testing.T) {
	f := newFixture(t, cache.NewMemoryCache(), respond(400, ""))
	f.factory.Config.Debug = true
	result, err := f.factory.NewClient().ReturnCheckout(newCtx(), testPatron(), "0001")
	assert.NoError(t, err)
	assert.Equal(t, "Bad Request returning checkout.\r\n<CheckinRequest><ItemId>0001</ItemId><PatronId>21000</PatronId></CheckinRequest>", result.Message)

	f2 := newFixture(t, cache.NewMemoryCache(), respond(403, ""))
	f2.factory.Config.Debug = true
	result, err = f2.factory.NewClient().ReturnCheckout(newCtx(), testPatron(), "0001")
	assert.NoError(t, err)
	assert.Equal(t, "Unable to authenticate.", result.Message)
}

func TestPlaceHoldTracksUsageAndWhileYouWait(t *testing.T) {
	c := cache.NewMemoryCache()
	f := newFixture(t, c, respond(201, ""))
	f.factory.Config.ShowWhileYouWait = true
	f.catalog.Records = map[string]catalog.Record{"0001": {Axis360ID: "0001", Title: "Dune", GroupedWorkID: "gw1"}}
	f.catalog.WhileYouWait = map[string][]catalog.WhileYouWaitTitle{"gw1": {{GroupedWorkID: "gw2", Title: "Foundation"}}}
	seedCache(t, c, "p1")
	result, err := f.factory.NewClient().PlaceHold(newCtx(), testPatron(), "0001")
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.HasWhileYouWait)
	assert.Equal(t, "Foundation", result.WhileYouWait[0].Title)
	assert.False(t, cached(c, SummaryKey("p1")))
	assert.Equal(t, []string{"p1"}, f.tracker.patrons)
	assert.Equal(t, []string{"0001"}, f.tracker.holds)
	assert.Empty(t, f.tracker.checkouts)
}

func TestPlaceHoldWhileYouWaitDisabled(t *testing.T) {
	f := newFixture(t, cache.NewMemoryCache(), respond(201, ""))
	f.catalog.Records = map[string]catalog.Record{"0001": {Axis360ID: "0001", GroupedWorkID: "gw1"}}
	f.catalog.WhileYouWait = map[string][]catalog.WhileYouWaitTitle{"gw1": {{Title: "Foundation"}}}
	result, err := f.factory.NewClient().PlaceHold(newCtx(), testPatron(), "0001")
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.HasWhileYouWait)
	assert.Nil(t, result.WhileYouWait)
}

func TestUsageFailureDoesNotFail(t *testing.T) {
	f := newFixture(t, cache.NewMemoryCache(), respond(200, "<CheckoutResult/>"))
	f.tracker.err = errors.New("DB error")
	result, err := f.factory.NewClient().CheckOutTitle(newCtx(), testPatron(), "0001")
	assert.NoError(t, err)
	assert.True(t, result.Success)
}

func TestTransportFailure(t *testing.T) {
	c := cache.NewMemoryCache()
	f := newFixture(t, c, respond(200, ""))
	f.server.Close()
	seedCache(t, c, "p1")
	p := testPatron()
	p.Pin = "s3cr3t"
	result, err := f.factory.NewClient().CheckOutTitle(newCtx(), p, "0001")
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, OperationResult{Message: "Unknown error"}, result)
	assert.NotContains(t, err.Error(), "s3cr3t")
	assert.True(t, cached(c, SummaryKey("p1")))

	hold, err := f.factory.NewClient().PlaceHold(newCtx(), testPatron(), "0001")
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, "Unknown error", hold.Message)
}

func TestTransportPerRequest(t *testing.T) {
	f := newFixture(t, missCache{}, respond(200, "<CheckoutResult/>"))
	created := 0
	next := f.factory.NewTransport
	f.factory.NewTransport = func(headers ...string) Transport {
		created++
		return next(headers...)
	}
	client := f.factory.NewClient()
	_, err := client.CheckOutTitle(newCtx(), testPatron(), "0001")
	assert.NoError(t, err)
	_, err = client.CheckOutTitle(newCtx(), testPatron(), "0002")
	assert.NoError(t, err)
	assert.Equal(t, 2, created)
}

func TestSettingsError(t *testing.T) {
	f := newFixture(t, cache.NewMemoryCache(), respond(200, ""))
	f.factory.Settings = &failingProvider{}
	result, err := f.factory.NewClient().CheckOutTitle(newCtx(), testPatron(), "0001")
	assert.ErrorIs(t, err, settings.ErrNoSettings)
	assert.Equal(t, "Unknown error", result.Message)
}

type failingProvider struct{}

func (failingProvider) GetSettings(ctx extctx.ExtendedContext) (settings.VendorSettings, error) {
	return settings.VendorSettings{}, settings.ErrNoSettings
}

type keyTranslator struct{}

func (keyTranslator) Translate(key, defaultText string) string {
	return key
}

func TestTranslator(t *testing.T) {
	f := newFixture(t, cache.NewMemoryCache(), respond(403, ""))
	f.factory.Translator = keyTranslator{}
	result, err := f.factory.NewClient().CancelHold(newCtx(), testPatron(), "0001")
	assert.NoError(t, err)
	assert.Equal(t, "axis360_unable_to_authenticate", result.Message)
}

func TestRenewAllAndCapabilities(t *testing.T) {
	f := newFixture(t, cache.NewMemoryCache(), respond(200, ""))
	client := f.factory.NewClient()
	result, err := client.RenewAll(newCtx(), testPatron())
	assert.NoError(t, err)
	assert.Equal(t, OperationResult{Message: "Renew all is not supported"}, result)
	assert.False(t, client.HasFastRenewAll())
	assert.False(t, client.HasNativeReadingHistory())
	assert.Equal(t, int32(0), f.hits.Load())
}

func TestDefaultFactory(t *testing.T) {
	f := NewClientFactory(&settings.StaticProvider{}, cache.NewMemoryCache(), nil, nil, Config{})
	assert.Equal(t, DefaultSummaryTTL, f.Config.SummaryTTL)
	assert.NotNil(t, f.Catalog)
	assert.NotNil(t, f.Usage)
	tr, ok := f.NewTransport("X-A", "1").(*httpclient.HttpClient)
	assert.True(t, ok)
	assert.Equal(t, "1", tr.Headers.Get("X-A"))
	assert.Equal(t, httpclient.DefaultTimeout, tr.Timeout)
}

func TestAccountSummaryJson(t *testing.T) {
	s := AccountSummary{NumCheckedOut: 1, NumAvailableHolds: 2, NumUnavailableHolds: 3}
	assert.Equal(t, 5, s.NumHolds())
	buf, err := json.Marshal(s)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"numCheckedOut":1,"numAvailableHolds":2,"numUnavailableHolds":3,"numHolds":5}`, string(buf))
	var back AccountSummary
	assert.NoError(t, json.Unmarshal(buf, &back))
	assert.Equal(t, s, back)
}
