package axis360

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/indexdata/crosslink/econtent/cache"
	"github.com/indexdata/crosslink/econtent/catalog"
	extctx "github.com/indexdata/crosslink/econtent/common"
	"github.com/indexdata/crosslink/econtent/httpclient"
	"github.com/indexdata/crosslink/econtent/patron"
	"github.com/indexdata/crosslink/econtent/settings"
	"github.com/indexdata/crosslink/econtent/usage"
)

const DefaultSummaryTTL = 60 * time.Second

const (
	summaryKeyPrefix     = "axis360_summary_"
	circulationKeyPrefix = "axis360_circulation_info_"
)

func SummaryKey(patronId string) string {
	return summaryKeyPrefix + patronId
}

func CirculationKey(patronId string) string {
	return circulationKeyPrefix + patronId
}

// Circulation is the patron facing contract of the vendor. Expected vendor refusals are
// reported in the results; an error means the exchange itself failed.
type Circulation interface {
	CheckOutTitle(ctx extctx.ExtendedContext, p *patron.Patron, itemId string) (OperationResult, error)
	RenewCheckout(ctx extctx.ExtendedContext, p *patron.Patron, itemId string) (OperationResult, error)
	RenewAll(ctx extctx.ExtendedContext, p *patron.Patron) (OperationResult, error)
	ReturnCheckout(ctx extctx.ExtendedContext, p *patron.Patron, itemId string) (OperationResult, error)
	PlaceHold(ctx extctx.ExtendedContext, p *patron.Patron, itemId string) (HoldResult, error)
	CancelHold(ctx extctx.ExtendedContext, p *patron.Patron, itemId string) (OperationResult, error)
	GetAccountSummary(ctx extctx.ExtendedContext, p *patron.Patron, reload bool) (AccountSummary, error)
	GetCheckouts(ctx extctx.ExtendedContext, p *patron.Patron) ([]Checkout, error)
	GetHolds(ctx extctx.ExtendedContext, p *patron.Patron) (Holds, error)
	GetItemStatus(ctx extctx.ExtendedContext, itemId string, p *patron.Patron) (string, error)
	CheckAuthentication(ctx extctx.ExtendedContext, p *patron.Patron) (bool, error)
	GetReaderRedirect(ctx extctx.ExtendedContext, p *patron.Patron, itemId string) (string, error)
	HasNativeReadingHistory() bool
	HasFastRenewAll() bool
}

var _ Circulation = (*Client)(nil)

type UsageTracker interface {
	TrackPatronUsage(ctx extctx.ExtendedContext, userId string) error
	TrackRecordCheckout(ctx extctx.ExtendedContext, axis360Id string) error
	TrackRecordHold(ctx extctx.ExtendedContext, axis360Id string) error
}

type Config struct {
	SummaryTTL time.Duration
	// append request bodies to bad request messages
	Debug            bool
	ShowWhileYouWait bool
}

// ClientFactory holds the collaborators shared by all clients.
type ClientFactory struct {
	Settings          settings.Provider
	NewTransport      TransportFactory
	NewLoginTransport TransportFactory
	Catalog           catalog.Catalog
	Usage             UsageTracker
	Translator        Translator
	Config            Config
	Now               func() time.Time
	loader            *cache.Loader
}

func NewClientFactory(provider settings.Provider, c cache.Cache, cat catalog.Catalog, usageTracker UsageTracker, config Config) *ClientFactory {
	if config.SummaryTTL <= 0 {
		config.SummaryTTL = DefaultSummaryTTL
	}
	if cat == nil {
		cat = &catalog.MemoryCatalog{}
	}
	if usageTracker == nil {
		usageTracker = usage.NoopTracker{}
	}
	return &ClientFactory{
		Settings:          provider,
		NewTransport:      NewTransportFactory(httpclient.DefaultTimeout, httpclient.DefaultMaxResponseSize),
		NewLoginTransport: NewLoginTransportFactory(httpclient.DefaultTimeout),
		Catalog:           cat,
		Usage:             usageTracker,
		Translator:        DefaultTranslator{},
		Config:            config,
		Now:               time.Now,
		loader:            cache.NewLoader(c),
	}
}

// NewClient returns a client for one logical request. Settings are read on first use
// and checkouts and holds are memoized until a mutation through the same client
// succeeds. A Client must not be shared between goroutines.
func (f *ClientFactory) NewClient() *Client {
	return &Client{
		f:         f,
		checkouts: map[string][]Checkout{},
		holds:     map[string]Holds{},
	}
}

type Client struct {
	f         *ClientFactory
	settings  *settings.VendorSettings
	checkouts map[string][]Checkout
	holds     map[string]Holds
}

func (c *Client) vendorSettings(ctx extctx.ExtendedContext) (settings.VendorSettings, error) {
	if c.settings != nil {
		return *c.settings, nil
	}
	s, err := c.f.Settings.GetSettings(ctx)
	if err != nil {
		return s, err
	}
	c.settings = &s
	return s, nil
}

func (c *Client) translate(m message) string {
	return c.f.Translator.Translate(m.key, m.text)
}

func (c *Client) unknownError() OperationResult {
	return OperationResult{Message: c.translate(msgUnknownError)}
}

func libraryPath(s settings.VendorSettings) string {
	return "/cirrus/library/" + url.PathEscape(s.LibraryID)
}

func withPassword(path string, p *patron.Patron) string {
	return path + "?password=" + url.QueryEscape(p.Pin)
}

func redact(path string) string {
	if i := strings.Index(path, "password="); i >= 0 {
		return path[:i] + "password=***"
	}
	return path
}

// call sends one signed request on a transport of its own.
func (c *Client) call(ctx extctx.ExtendedContext, s settings.VendorSettings, method, path string, body []byte) (*httpclient.Response, error) {
	signer := &Signer{AccountID: s.AccountID, AccountKey: s.AccountKey, Now: c.f.Now}
	transport := c.f.NewTransport(signer.Headers(method, path)...)
	resp, err := transport.Send(method, strings.TrimSuffix(s.ApiURL, "/")+path, body)
	if err != nil {
		// url.Error repeats the full URL including the password
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		ctx.Logger().Error("Axis 360 request failed", "method", method, "path", redact(path), "error", err)
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, redact(path), err)
	}
	ctx.Logger().Debug("Axis 360 request", "method", method, "path", redact(path), "status", resp.StatusCode)
	return resp, nil
}

// invalidate drops the cached summary and circulation payload of p together with
// anything memoized by this client.
func (c *Client) invalidate(ctx extctx.ExtendedContext, p *patron.Patron) {
	c.f.loader.Invalidate(ctx, SummaryKey(p.ID), CirculationKey(p.ID))
	delete(c.checkouts, p.ID)
	delete(c.holds, p.ID)
}

func (c *Client) track(ctx extctx.ExtendedContext, what string, id string, fn func(extctx.ExtendedContext, string) error) {
	if err := fn(ctx, id); err != nil {
		ctx.Logger().Warn("failed to track usage", "usage", what, "id", id, "error", err)
	}
}

func (c *Client) HasNativeReadingHistory() bool {
	return false
}

func (c *Client) HasFastRenewAll() bool {
	return false
}
