package axis360

import (
	"bytes"
	"net/http"

	"github.com/indexdata/crosslink/econtent/catalog"
	extctx "github.com/indexdata/crosslink/econtent/common"
	"github.com/indexdata/crosslink/econtent/patron"
)

func (c *Client) CheckOutTitle(ctx extctx.ExtendedContext, p *patron.Patron, itemId string) (OperationResult, error) {
	return c.checkOut(ctx, p, itemId, false)
}

// RenewCheckout checks the title out again; the vendor has no separate renew call.
func (c *Client) RenewCheckout(ctx extctx.ExtendedContext, p *patron.Patron, itemId string) (OperationResult, error) {
	return c.checkOut(ctx, p, itemId, true)
}

func (c *Client) RenewAll(ctx extctx.ExtendedContext, p *patron.Patron) (OperationResult, error) {
	return OperationResult{Message: c.translate(msgNoRenewAll)}, nil
}

func (c *Client) checkOut(ctx extctx.ExtendedContext, p *patron.Patron, itemId string, renew bool) (OperationResult, error) {
	result := c.unknownError()
	if p == nil {
		return result, ErrNoPatron
	}
	if !p.EligibleForHolds() {
		result.Message = c.translate(msgFineLimit)
		return result, nil
	}
	s, err := c.vendorSettings(ctx)
	if err != nil {
		return result, err
	}
	path := withPassword(libraryPath(s)+"/checkout", p)
	body := itemRequestBody("CheckoutRequest", itemId, p.Barcode)
	resp, err := c.call(ctx, s, http.MethodPost, path, body)
	if err != nil {
		return result, err
	}
	if msg, found := vendorErrorMessage(resp.Body); found {
		if msg != "" {
			result.Message = msg
		}
		return result, nil
	}
	if resp.Check() != nil {
		return c.classify(checkoutOutcomes, resp.StatusCode, resp.Body, body), nil
	}
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		ctx.Logger().Warn("empty checkout response", "itemId", itemId, "status", resp.StatusCode)
		return result, nil
	}
	c.track(ctx, "patron", p.ID, c.f.Usage.TrackPatronUsage)
	c.track(ctx, "checkout", itemId, c.f.Usage.TrackRecordCheckout)
	c.invalidate(ctx, p)
	result.Success = true
	if renew {
		result.Message = c.translate(msgRenewSuccess)
	} else {
		result.Message = c.translate(msgCheckoutSuccess)
	}
	return result, nil
}

func (c *Client) ReturnCheckout(ctx extctx.ExtendedContext, p *patron.Patron, itemId string) (OperationResult, error) {
	result, _, err := c.mutate(ctx, p, "/checkin", false, "CheckinRequest", itemId, returnOutcomes)
	return result, err
}

func (c *Client) CancelHold(ctx extctx.ExtendedContext, p *patron.Patron, itemId string) (OperationResult, error) {
	result, _, err := c.mutate(ctx, p, "/cancelhold", false, "CancelHoldRequest", itemId, cancelHoldOutcomes)
	return result, err
}

func (c *Client) PlaceHold(ctx extctx.ExtendedContext, p *patron.Patron, itemId string) (HoldResult, error) {
	var result HoldResult
	result.OperationResult = c.unknownError()
	if p == nil {
		return result, ErrNoPatron
	}
	if !p.EligibleForHolds() {
		result.Message = c.translate(msgFineLimit)
		return result, nil
	}
	op, ok, err := c.mutate(ctx, p, "/placehold", true, "PlaceHoldRequest", itemId, placeHoldOutcomes)
	result.OperationResult = op
	if err != nil || !ok {
		return result, err
	}
	c.track(ctx, "patron", p.ID, c.f.Usage.TrackPatronUsage)
	c.track(ctx, "hold", itemId, c.f.Usage.TrackRecordHold)
	if c.f.Config.ShowWhileYouWait {
		result.WhileYouWait = c.whileYouWait(ctx, itemId)
		result.HasWhileYouWait = len(result.WhileYouWait) > 0
	}
	return result, nil
}

// mutate posts an item request and classifies the status through table. The patron's
// cache entries are dropped only when the outcome is a success.
func (c *Client) mutate(ctx extctx.ExtendedContext, p *patron.Patron, op string, password bool, element string,
	itemId string, table outcomeTable) (OperationResult, bool, error) {
	result := c.unknownError()
	if p == nil {
		return result, false, ErrNoPatron
	}
	s, err := c.vendorSettings(ctx)
	if err != nil {
		return result, false, err
	}
	path := libraryPath(s) + op
	if password {
		path = withPassword(path, p)
	}
	body := itemRequestBody(element, itemId, p.Barcode)
	resp, err := c.call(ctx, s, http.MethodPost, path, body)
	if err != nil {
		return result, false, err
	}
	result = c.classify(table, resp.StatusCode, resp.Body, body)
	if result.Success {
		c.invalidate(ctx, p)
	}
	return result, result.Success, nil
}

func (c *Client) whileYouWait(ctx extctx.ExtendedContext, itemId string) []catalog.WhileYouWaitTitle {
	record, err := c.f.Catalog.GetRecord(ctx, itemId)
	if err != nil || record.GroupedWorkID == "" {
		return nil
	}
	titles, err := c.f.Catalog.GetWhileYouWait(ctx, record.GroupedWorkID)
	if err != nil {
		ctx.Logger().Warn("failed to load while you wait titles", "groupedWorkId", record.GroupedWorkID, "error", err)
		return nil
	}
	return titles
}
