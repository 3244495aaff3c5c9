package axis360

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/indexdata/crosslink/econtent/catalog"
	extctx "github.com/indexdata/crosslink/econtent/common"
	"github.com/indexdata/crosslink/econtent/patron"
	"github.com/indexdata/crosslink/econtent/settings"
)

// checkouts within this window of their due date may be renewed
const renewWindow = 3 * 24 * time.Hour

var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006 15:04:05",
	"1/2/2006 3:04:05 PM",
	http.TimeFormat,
}

// parseDueDate reads a vendor due date as UTC.
func parseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dueDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized due date %q", s)
}

// CanRenew is true when due is less than three days after now. An unparseable due date
// is never renewable.
func CanRenew(dueDate string, now time.Time) bool {
	due, err := parseDueDate(dueDate)
	if err != nil {
		return false
	}
	return due.Sub(now) < renewWindow
}

func (c *Client) GetAccountSummary(ctx extctx.ExtendedContext, p *patron.Patron, reload bool) (AccountSummary, error) {
	var summary AccountSummary
	if p == nil {
		return summary, nil
	}
	s, err := c.vendorSettings(ctx)
	if err != nil {
		return summary, err
	}
	raw, err := c.f.loader.GetOrLoad(ctx, SummaryKey(p.ID), c.f.Config.SummaryTTL, reload, func() ([]byte, bool, error) {
		circ, err := c.patronCirculation(ctx, s, p, reload)
		if err != nil {
			return nil, false, err
		}
		buf, err := json.Marshal(circ.summary())
		return buf, err == nil, err
	})
	if err != nil {
		return summary, err
	}
	if err := json.Unmarshal(raw, &summary); err != nil {
		return summary, fmt.Errorf("invalid cached summary: %w", err)
	}
	return summary, nil
}

// patronCirculation returns the raw circulation payload of p, cached for the summary
// TTL. Only payloads the vendor accepted are cached.
func (c *Client) patronCirculation(ctx extctx.ExtendedContext, s settings.VendorSettings, p *patron.Patron, reload bool) (*circulationPayload, error) {
	raw, err := c.f.loader.GetOrLoad(ctx, CirculationKey(p.ID), c.f.Config.SummaryTTL, reload, func() ([]byte, bool, error) {
		path := withPassword(libraryPath(s)+"/circulation/patron/"+url.PathEscape(p.Barcode), p)
		resp, err := c.call(ctx, s, http.MethodGet, path, nil)
		if err != nil {
			return nil, false, err
		}
		if _, found := vendorErrorMessage(resp.Body); found || resp.StatusCode != http.StatusOK {
			return nil, false, newVendorError("circulation", resp.StatusCode, resp.Body)
		}
		return resp.Body, true, nil
	})
	if err != nil {
		return nil, err
	}
	var circ circulationPayload
	if err := xml.Unmarshal(raw, &circ); err != nil {
		return nil, fmt.Errorf("invalid circulation payload: %w", err)
	}
	return &circ, nil
}

func (c *Client) GetCheckouts(ctx extctx.ExtendedContext, p *patron.Patron) ([]Checkout, error) {
	if p == nil {
		return nil, nil
	}
	if list, ok := c.checkouts[p.ID]; ok {
		return list, nil
	}
	s, err := c.vendorSettings(ctx)
	if err != nil {
		return nil, err
	}
	circ, err := c.patronCirculation(ctx, s, p, false)
	if err != nil {
		return nil, err
	}
	now := c.f.Now()
	list := make([]Checkout, 0, len(circ.Checkouts))
	for _, item := range circ.Checkouts {
		checkout := Checkout{
			ID:             item.ItemId,
			RecordID:       item.ItemId,
			DueDate:        item.EventEndDateInUTC,
			CanRenew:       CanRenew(item.EventEndDateInUTC, now),
			User:           p.NameAndLibraryLabel(),
			UserID:         p.ID,
			CheckoutSource: CheckoutSource,
		}
		if due, err := parseDueDate(item.EventEndDateInUTC); err == nil {
			checkout.DueDateTime = due
		}
		record, err := c.record(ctx, item.ItemId)
		if err == nil {
			checkout.Title = record.Title
			checkout.Author = record.Author
			checkout.CoverURL = record.CoverURL
			checkout.Rating = record.Rating
			checkout.GroupedWorkID = record.GroupedWorkID
			checkout.Format = record.Format
			checkout.LinkURL = record.LinkURL
		} else {
			checkout.Title = UnknownTitle
			checkout.Format = UnknownFormat
		}
		list = append(list, checkout)
	}
	c.checkouts[p.ID] = list
	return list, nil
}

func (c *Client) GetHolds(ctx extctx.ExtendedContext, p *patron.Patron) (Holds, error) {
	holds := Holds{Available: map[string]Hold{}, Unavailable: map[string]Hold{}}
	if p == nil {
		return holds, nil
	}
	if cached, ok := c.holds[p.ID]; ok {
		return cached, nil
	}
	s, err := c.vendorSettings(ctx)
	if err != nil {
		return holds, err
	}
	circ, err := c.patronCirculation(ctx, s, p, false)
	if err != nil {
		return holds, err
	}
	for _, item := range circ.Holds {
		hold := c.hold(ctx, p, item)
		hold.Position = item.position()
		holds.Unavailable[hold.Key()] = hold
	}
	for _, item := range circ.Reserves {
		hold := c.hold(ctx, p, item)
		holds.Available[hold.Key()] = hold
	}
	c.holds[p.ID] = holds
	return holds, nil
}

func (c *Client) hold(ctx extctx.ExtendedContext, p *patron.Patron, item circulationItem) Hold {
	hold := Hold{
		ID:            item.ItemId,
		TransactionID: item.ItemId,
		HoldSource:    HoldSource,
		User:          p.NameAndLibraryLabel(),
		UserID:        p.ID,
	}
	record, err := c.record(ctx, item.ItemId)
	if err == nil {
		hold.Title = record.Title
		hold.Author = record.Author
		hold.CoverURL = record.CoverURL
		hold.Rating = record.Rating
		hold.GroupedWorkID = record.GroupedWorkID
		hold.Format = record.Format
		hold.LinkURL = record.LinkURL
	} else {
		hold.Title = Unknown
		hold.Author = Unknown
	}
	return hold
}

// record looks up title metadata; failures other than a missing title are logged.
func (c *Client) record(ctx extctx.ExtendedContext, itemId string) (catalog.Record, error) {
	record, err := c.f.Catalog.GetRecord(ctx, itemId)
	if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		ctx.Logger().Warn("failed to load title metadata", "itemId", itemId, "error", err)
	}
	return record, err
}

func (c *Client) GetItemStatus(ctx extctx.ExtendedContext, itemId string, p *patron.Patron) (string, error) {
	if p == nil {
		return "", ErrNoPatron
	}
	s, err := c.vendorSettings(ctx)
	if err != nil {
		return "", err
	}
	path := libraryPath(s) + "/item/status/" + url.PathEscape(p.Barcode) + "/" + url.PathEscape(itemId)
	resp, err := c.call(ctx, s, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", newVendorError("item status", resp.StatusCode, resp.Body)
	}
	var status itemStatusPayload
	if err := xml.Unmarshal(resp.Body, &status); err != nil {
		return "", fmt.Errorf("invalid item status payload: %w", err)
	}
	return strings.TrimSpace(status.Status), nil
}

func (c *Client) CheckAuthentication(ctx extctx.ExtendedContext, p *patron.Patron) (bool, error) {
	if p == nil {
		return false, nil
	}
	s, err := c.vendorSettings(ctx)
	if err != nil {
		return false, err
	}
	path := libraryPath(s) + "/patron/" + url.PathEscape(p.Barcode)
	resp, err := c.call(ctx, s, http.MethodGet, path, nil)
	if err != nil {
		return false, err
	}
	var auth authenticationPayload
	if err := xml.Unmarshal(resp.Body, &auth); err != nil {
		ctx.Logger().Debug("unparseable authentication payload", "status", resp.StatusCode, "error", err)
		return false, nil
	}
	return strings.TrimSpace(auth.Result) == authSuccess, nil
}
