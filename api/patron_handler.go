package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/indexdata/crosslink/econtent/axis360"
	extctx "github.com/indexdata/crosslink/econtent/common"
	"github.com/indexdata/crosslink/econtent/patron"
)

const maxBodySize = 4096

type PatronLookup interface {
	GetPatronById(ctx extctx.ExtendedContext, id string) (patron.Patron, error)
}

type ItemRequest struct {
	ItemId string `json:"itemId"`
}

type AuthenticationResponse struct {
	Authenticated bool `json:"authenticated"`
}

type ItemStatusResponse struct {
	ItemId string `json:"itemId"`
	Status string `json:"status"`
}

type CheckoutsResponse struct {
	Items []axis360.Checkout `json:"items"`
}

// PatronApiHandler serves the circulation operations of one patron. Every request gets
// a client of its own.
type PatronApiHandler struct {
	patrons   PatronLookup
	newClient func() axis360.Circulation
}

func NewPatronApiHandler(patrons PatronLookup, newClient func() axis360.Circulation) *PatronApiHandler {
	return &PatronApiHandler{patrons: patrons, newClient: newClient}
}

func (a *PatronApiHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /patrons/{id}/summary", a.GetSummary)
	mux.HandleFunc("GET /patrons/{id}/checkouts", a.GetCheckouts)
	mux.HandleFunc("POST /patrons/{id}/checkouts", a.PostCheckout)
	mux.HandleFunc("POST /patrons/{id}/checkouts/{itemId}/renew", a.PostRenew)
	mux.HandleFunc("DELETE /patrons/{id}/checkouts/{itemId}", a.DeleteCheckout)
	mux.HandleFunc("GET /patrons/{id}/holds", a.GetHolds)
	mux.HandleFunc("POST /patrons/{id}/holds", a.PostHold)
	mux.HandleFunc("DELETE /patrons/{id}/holds/{itemId}", a.DeleteHold)
	mux.HandleFunc("GET /patrons/{id}/items/{itemId}/status", a.GetItemStatus)
	mux.HandleFunc("GET /patrons/{id}/items/{itemId}/read", a.GetReader)
	mux.HandleFunc("GET /patrons/{id}/authentication", a.GetAuthentication)
}

func (a *PatronApiHandler) ctx(r *http.Request, method string) extctx.ExtendedContext {
	other := map[string]string{"method": method}
	if itemId := r.PathValue("itemId"); itemId != "" {
		other["itemId"] = itemId
	}
	return extctx.CreateExtCtxWithArgs(r.Context(), &extctx.LoggerArgs{
		PatronId: r.PathValue("id"),
		Other:    other,
	})
}

func (a *PatronApiHandler) patron(ctx extctx.ExtendedContext, w http.ResponseWriter, r *http.Request) (*patron.Patron, bool) {
	p, err := a.patrons.GetPatronById(ctx, r.PathValue("id"))
	if err != nil {
		addError(ctx, w, err)
		return nil, false
	}
	return &p, true
}

func readItemRequest(ctx extctx.ExtendedContext, w http.ResponseWriter, r *http.Request) (string, bool) {
	var req ItemRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		addBadRequestError(ctx, w, err)
		return "", false
	}
	if req.ItemId == "" {
		addBadRequestError(ctx, w, errors.New("itemId must be specified"))
		return "", false
	}
	return req.ItemId, true
}

func (a *PatronApiHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := a.ctx(r, "GetSummary")
	p, ok := a.patron(ctx, w, r)
	if !ok {
		return
	}
	summary, err := a.newClient().GetAccountSummary(ctx, p, r.URL.Query().Get("reload") == "true")
	if err != nil {
		addError(ctx, w, err)
		return
	}
	writeJsonResponse(w, summary)
}

func (a *PatronApiHandler) GetCheckouts(w http.ResponseWriter, r *http.Request) {
	ctx := a.ctx(r, "GetCheckouts")
	p, ok := a.patron(ctx, w, r)
	if !ok {
		return
	}
	list, err := a.newClient().GetCheckouts(ctx, p)
	if err != nil {
		addError(ctx, w, err)
		return
	}
	resp := CheckoutsResponse{Items: make([]axis360.Checkout, 0, len(list))}
	resp.Items = append(resp.Items, list...)
	writeJsonResponse(w, resp)
}

func (a *PatronApiHandler) PostCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := a.ctx(r, "PostCheckout")
	p, ok := a.patron(ctx, w, r)
	if !ok {
		return
	}
	itemId, ok := readItemRequest(ctx, w, r)
	if !ok {
		return
	}
	result, err := a.newClient().CheckOutTitle(ctx, p, itemId)
	a.writeResult(ctx, w, result, err)
}

func (a *PatronApiHandler) PostRenew(w http.ResponseWriter, r *http.Request) {
	ctx := a.ctx(r, "PostRenew")
	p, ok := a.patron(ctx, w, r)
	if !ok {
		return
	}
	result, err := a.newClient().RenewCheckout(ctx, p, r.PathValue("itemId"))
	a.writeResult(ctx, w, result, err)
}

func (a *PatronApiHandler) DeleteCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := a.ctx(r, "DeleteCheckout")
	p, ok := a.patron(ctx, w, r)
	if !ok {
		return
	}
	result, err := a.newClient().ReturnCheckout(ctx, p, r.PathValue("itemId"))
	a.writeResult(ctx, w, result, err)
}

func (a *PatronApiHandler) GetHolds(w http.ResponseWriter, r *http.Request) {
	ctx := a.ctx(r, "GetHolds")
	p, ok := a.patron(ctx, w, r)
	if !ok {
		return
	}
	holds, err := a.newClient().GetHolds(ctx, p)
	if err != nil {
		addError(ctx, w, err)
		return
	}
	writeJsonResponse(w, holds)
}

func (a *PatronApiHandler) PostHold(w http.ResponseWriter, r *http.Request) {
	ctx := a.ctx(r, "PostHold")
	p, ok := a.patron(ctx, w, r)
	if !ok {
		return
	}
	itemId, ok := readItemRequest(ctx, w, r)
	if !ok {
		return
	}
	result, err := a.newClient().PlaceHold(ctx, p, itemId)
	if err != nil {
		addError(ctx, w, err)
		return
	}
	writeJsonResponse(w, result)
}

func (a *PatronApiHandler) DeleteHold(w http.ResponseWriter, r *http.Request) {
	ctx := a.ctx(r, "DeleteHold")
	p, ok := a.patron(ctx, w, r)
	if !ok {
		return
	}
	result, err := a.newClient().CancelHold(ctx, p, r.PathValue("itemId"))
	a.writeResult(ctx, w, result, err)
}

func (a *PatronApiHandler) GetItemStatus(w http.ResponseWriter, r *http.Request) {
	ctx := a.ctx(r, "GetItemStatus")
	p, ok := a.patron(ctx, w, r)
	if !ok {
		return
	}
	itemId := r.PathValue("itemId")
	status, err := a.newClient().GetItemStatus(ctx, itemId, p)
	if err != nil {
		addError(ctx, w, err)
		return
	}
	writeJsonResponse(w, ItemStatusResponse{ItemId: itemId, Status: status})
}

func (a *PatronApiHandler) GetReader(w http.ResponseWriter, r *http.Request) {
	ctx := a.ctx(r, "GetReader")
	p, ok := a.patron(ctx, w, r)
	if !ok {
		return
	}
	location, err := a.newClient().GetReaderRedirect(ctx, p, r.PathValue("itemId"))
	if err != nil {
		addError(ctx, w, err)
		return
	}
	http.Redirect(w, r, location, http.StatusFound)
}

func (a *PatronApiHandler) GetAuthentication(w http.ResponseWriter, r *http.Request) {
	ctx := a.ctx(r, "GetAuthentication")
	p, ok := a.patron(ctx, w, r)
	if !ok {
		return
	}
	authenticated, err := a.newClient().CheckAuthentication(ctx, p)
	if err != nil {
		addError(ctx, w, err)
		return
	}
	writeJsonResponse(w, AuthenticationResponse{Authenticated: authenticated})
}

// writeResult reports refusals by the vendor in the result body with status 200.
func (a *PatronApiHandler) writeResult(ctx extctx.ExtendedContext, w http.ResponseWriter, result axis360.OperationResult, err error) {
	if err != nil {
		addError(ctx, w, err)
		return
	}
	writeJsonResponse(w, result)
}
