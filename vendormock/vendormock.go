package vendormock

import (
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/indexdata/crosslink/econtent/axis360"
	extctx "github.com/indexdata/crosslink/econtent/common"
	"github.com/indexdata/crosslink/econtent/httpclient"
)

const DefaultLoanPeriod = 21 * 24 * time.Hour

// item statuses as seen by one patron
const (
	StatusCheckout    = "CHECKOUT"
	StatusReservation = "RESERVATION"
	StatusHold        = "HOLD"
	StatusCanCheckout = "CAN_CHECKOUT"
	StatusCanHold     = "CAN_HOLD"
)

type patronState struct {
	password  string
	checkouts map[string]time.Time
	reserves  []string
}

type itemState struct {
	copies int
	loans  int
	// barcodes of patrons waiting, oldest first
	queue []string
	// barcodes holding a reserved copy
	reserved []string
}

func (i *itemState) free() int {
	return i.copies - i.loans - len(i.reserved)
}

// Mock is an in-memory stand-in for the vendor API and its reader login. Requests must be
// signed with AccountKey. Item ids starting with "f" are never known.
type Mock struct {
	LibraryID  string
	AccountID  string
	AccountKey string
	LoanPeriod time.Duration
	Now        func() time.Time
	mu         sync.Mutex
	patrons    map[string]*patronState
	items      map[string]*itemState
	sessions   map[string]string
}

func New(libraryId, accountId, accountKey string) *Mock {
	return &Mock{
		LibraryID:  libraryId,
		AccountID:  accountId,
		AccountKey: accountKey,
		LoanPeriod: DefaultLoanPeriod,
		Now:        time.Now,
		patrons:    map[string]*patronState{},
		items:      map[string]*itemState{},
		sessions:   map[string]string{},
	}
}

func (m *Mock) AddPatron(barcode, password string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patrons[barcode] = &patronState{password: password, checkouts: map[string]time.Time{}}
}

func (m *Mock) AddItem(itemId string, copies int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[itemId] = &itemState{copies: copies}
}

// Seed adds patrons given as "barcode:password,..." and items given as "itemId:copies,...".
func (m *Mock) Seed(patrons, items string) error {
	for _, pair := range splitList(patrons) {
		barcode, password, found := strings.Cut(pair, ":")
		if !found || barcode == "" {
			return fmt.Errorf("invalid patron %q, expected barcode:password", pair)
		}
		m.AddPatron(barcode, password)
	}
	for _, pair := range splitList(items) {
		itemId, copies, found := strings.Cut(pair, ":")
		n, err := strconv.Atoi(copies)
		if !found || itemId == "" || err != nil || n < 0 {
			return fmt.Errorf("invalid item %q, expected itemId:copies", pair)
		}
		m.AddItem(itemId, n)
	}
	return nil
}

func splitList(s string) []string {
	var list []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			list = append(list, v)
		}
	}
	return list
}

// SetDueDate overrides the due date of an existing loan.
func (m *Mock) SetDueDate(barcode, itemId string, due time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.patrons[barcode]; ok {
		if _, ok := p.checkouts[itemId]; ok {
			p.checkouts[itemId] = due
		}
	}
}

// Session returns the barcode a reader session belongs to.
func (m *Mock) Session(id string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	barcode, ok := m.sessions[id]
	return barcode, ok
}

func (m *Mock) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /login", m.handleLogin)
	base := "/cirrus/library/{libraryId}"
	mux.Handle("POST "+base+"/checkout", m.signed(m.handleCheckout))
	mux.Handle("POST "+base+"/checkin", m.signed(m.handleCheckin))
	mux.Handle("POST "+base+"/placehold", m.signed(m.handlePlaceHold))
	mux.Handle("POST "+base+"/cancelhold", m.signed(m.handleCancelHold))
	mux.Handle("GET "+base+"/circulation/patron/{barcode}", m.signed(m.handleCirculation))
	mux.Handle("GET "+base+"/item/status/{barcode}/{itemId}", m.signed(m.handleItemStatus))
	mux.Handle("GET "+base+"/patron/{barcode}", m.signed(m.handlePatron))
	return mux
}

type errorMessage struct {
	XMLName xml.Name `xml:"Error"`
	Message string   `xml:"Message"`
}

type errorResponse struct {
	XMLName xml.Name `xml:"Response"`
	Error   errorMessage
}

func writeXml(w http.ResponseWriter, status int, v any) {
	buf, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, "marshal: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set(httpclient.ContentType, httpclient.ContentTypeApplicationXml)
	w.WriteHeader(status)
	if _, err := w.Write(buf); err != nil {
		slog.Warn("writeResponse", "error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeXml(w, status, errorResponse{Error: errorMessage{Message: msg}})
}

// signed rejects requests that are not signed for this account with 403.
func (m *Mock) signed(fn func(ctx extctx.ExtendedContext, w http.ResponseWriter, r *http.Request)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := extctx.CreateExtCtxWithArgs(r.Context(), &extctx.LoggerArgs{
			Other: map[string]string{"method": r.Method, "path": r.URL.Path},
		})
		if r.PathValue("libraryId") != m.LibraryID {
			writeError(w, http.StatusNotFound, "Unknown library")
			return
		}
		if r.Header.Get(axis360.HeaderApiVersion) != axis360.ApiVersion {
			writeError(w, http.StatusBadRequest, "Unsupported API version")
			return
		}
		ts := r.Header.Get(axis360.HeaderDatetime)
		auth := r.Header.Get(axis360.HeaderAuthorization)
		expected := axis360.AuthScheme + " " + m.AccountID + ":" + axis360.Sign(m.AccountKey, ts, r.Method, r.URL.RequestURI())
		if ts == "" || auth != expected {
			ctx.Logger().Info("signature mismatch")
			writeError(w, http.StatusForbidden, "Invalid signature")
			return
		}
		fn(ctx, w, r)
	})
}

type itemRequest struct {
	ItemId   string `xml:"ItemId"`
	PatronId string `xml:"PatronId"`
}

func readItemRequest(r *http.Request) (itemRequest, bool) {
	var req itemRequest
	buf, err := io.ReadAll(r.Body)
	if err != nil {
		return req, false
	}
	if xml.Unmarshal(buf, &req) != nil || req.ItemId == "" || req.PatronId == "" {
		return req, false
	}
	return req, true
}

func unknownItem(itemId string) bool {
	return strings.HasPrefix(itemId, "f")
}

// patron returns the patron, checking the password when checkPassword is set.
func (m *Mock) patron(barcode string, r *http.Request, checkPassword bool) (*patronState, bool) {
	p, ok := m.patrons[barcode]
	if !ok {
		return nil, false
	}
	if checkPassword && r.URL.Query().Get("password") != p.password {
		return nil, false
	}
	return p, true
}

func (m *Mock) item(itemId string) (*itemState, bool) {
	if unknownItem(itemId) {
		return nil, false
	}
	i, ok := m.items[itemId]
	return i, ok
}

func remove(list []string, v string) ([]string, bool) {
	i := slices.Index(list, v)
	if i < 0 {
		return list, false
	}
	return slices.Delete(list, i, i+1), true
}

type checkoutResult struct {
	XMLName      xml.Name `xml:"CheckoutResult"`
	ItemId       string   `xml:"ItemId"`
	DueDateInUTC string   `xml:"DueDateInUTC"`
}

func (m *Mock) handleCheckout(ctx extctx.ExtendedContext, w http.ResponseWriter, r *http.Request) {
	req, ok := readItemRequest(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid checkout request")
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patron(req.PatronId, r, true)
	if !ok {
		writeError(w, http.StatusForbidden, "Invalid patron credentials")
		return
	}
	item, ok := m.item(req.ItemId)
	if !ok {
		writeError(w, http.StatusNotFound, "Item not found")
		return
	}
	due := m.Now().UTC().Add(m.LoanPeriod)
	if _, renewing := p.checkouts[req.ItemId]; renewing {
		if len(item.queue) > 0 {
			writeError(w, http.StatusOK, "Title has holds and cannot be renewed")
			return
		}
	} else if reserved, found := remove(item.reserved, req.PatronId); found {
		item.reserved = reserved
		p.reserves, _ = remove(p.reserves, req.ItemId)
		item.loans++
	} else {
		if item.free() <= 0 {
			writeError(w, http.StatusOK, "No copies available for checkout")
			return
		}
		item.loans++
	}
	p.checkouts[req.ItemId] = due
	ctx.Logger().Info("checkout", "itemId", req.ItemId, "patronId", req.PatronId)
	writeXml(w, http.StatusOK, checkoutResult{ItemId: req.ItemId, DueDateInUTC: due.Format(time.RFC3339)})
}

type statusResult struct {
	XMLName xml.Name `xml:"Result"`
	Status  string   `xml:"Status"`
}

func (m *Mock) handleCheckin(ctx extctx.ExtendedContext, w http.ResponseWriter, r *http.Request) {
	req, ok := readItemRequest(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid checkin request")
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patron(req.PatronId, r, false)
	if !ok {
		writeError(w, http.StatusForbidden, "Unknown patron")
		return
	}
	item, ok := m.item(req.ItemId)
	if _, loaned := p.checkouts[req.ItemId]; !ok || !loaned {
		writeError(w, http.StatusNotFound, "Checkout not found")
		return
	}
	delete(p.checkouts, req.ItemId)
	item.loans--
	m.promote(req.ItemId, item)
	writeXml(w, http.StatusOK, statusResult{Status: "SUCCESS"})
}

// promote reserves free copies for the oldest waiting patrons.
func (m *Mock) promote(itemId string, item *itemState) {
	for item.free() > 0 && len(item.queue) > 0 {
		barcode := item.queue[0]
		item.queue = item.queue[1:]
		item.reserved = append(item.reserved, barcode)
		if p, ok := m.patrons[barcode]; ok {
			p.reserves = append(p.reserves, itemId)
		}
	}
}

func (m *Mock) handlePlaceHold(ctx extctx.ExtendedContext, w http.ResponseWriter, r *http.Request) {
	req, ok := readItemRequest(r)
	if !ok {
		writeError(w, http.StatusMethodNotAllowed, "Invalid hold request")
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patron(req.PatronId, r, true)
	if !ok {
		writeError(w, http.StatusForbidden, "Invalid patron credentials")
		return
	}
	item, ok := m.item(req.ItemId)
	if !ok {
		writeError(w, http.StatusNotFound, "Item not found")
		return
	}
	_, loaned := p.checkouts[req.ItemId]
	if loaned || slices.Contains(item.queue, req.PatronId) || slices.Contains(p.reserves, req.ItemId) || item.free() > 0 {
		writeError(w, http.StatusConflict, "Could not place hold. Already on hold or the item can be checked out")
		return
	}
	item.queue = append(item.queue, req.PatronId)
	ctx.Logger().Info("hold placed", "itemId", req.ItemId, "patronId", req.PatronId, "position", len(item.queue))
	writeXml(w, http.StatusCreated, statusResult{Status: "SUCCESS"})
}

func (m *Mock) handleCancelHold(ctx extctx.ExtendedContext, w http.ResponseWriter, r *http.Request) {
	req, ok := readItemRequest(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid cancel hold request")
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patron(req.PatronId, r, false)
	if !ok {
		writeError(w, http.StatusForbidden, "Unknown patron")
		return
	}
	item, ok := m.item(req.ItemId)
	if !ok {
		writeError(w, http.StatusNotFound, "Item not found")
		return
	}
	var found bool
	if item.queue, found = remove(item.queue, req.PatronId); !found {
		if item.reserved, found = remove(item.reserved, req.PatronId); !found {
			writeError(w, http.StatusNotFound, "Hold not found")
			return
		}
		p.reserves, _ = remove(p.reserves, req.ItemId)
		m.promote(req.ItemId, item)
	}
	writeXml(w, http.StatusOK, statusResult{Status: "SUCCESS"})
}

type circulationItem struct {
	ItemId            string `xml:"ItemId"`
	EventEndDateInUTC string `xml:"EventEndDateInUTC,omitempty"`
	Position          int    `xml:"Position,omitempty"`
}

type circulationResponse struct {
	XMLName   xml.Name          `xml:"CirculationResponse"`
	Checkouts []circulationItem `xml:"Checkouts>Item"`
	Holds     []circulationItem `xml:"Holds>Item"`
	Reserves  []circulationItem `xml:"Reserves>Item"`
}

func (m *Mock) handleCirculation(ctx extctx.ExtendedContext, w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	barcode := r.PathValue("barcode")
	p, ok := m.patron(barcode, r, true)
	if !ok {
		writeError(w, http.StatusForbidden, "Invalid patron credentials")
		return
	}
	var res circulationResponse
	for _, id := range sortedKeys(p.checkouts) {
		res.Checkouts = append(res.Checkouts, circulationItem{ItemId: id, EventEndDateInUTC: p.checkouts[id].Format(time.RFC3339)})
	}
	for _, id := range sortedKeys(m.items) {
		if pos := slices.Index(m.items[id].queue, barcode); pos >= 0 {
			res.Holds = append(res.Holds, circulationItem{ItemId: id, Position: pos + 1})
		}
	}
	for _, id := range p.reserves {
		res.Reserves = append(res.Reserves, circulationItem{ItemId: id})
	}
	writeXml(w, http.StatusOK, res)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

type itemStatusResponse struct {
	XMLName        xml.Name `xml:"ItemStatusResponse"`
	DocumentStatus struct {
		Status string `xml:"status"`
	}
}

func (m *Mock) handleItemStatus(ctx extctx.ExtendedContext, w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	barcode := r.PathValue("barcode")
	p, ok := m.patron(barcode, r, false)
	if !ok {
		writeError(w, http.StatusForbidden, "Unknown patron")
		return
	}
	itemId := r.PathValue("itemId")
	item, ok := m.item(itemId)
	if !ok {
		writeError(w, http.StatusNotFound, "Item not found")
		return
	}
	var res itemStatusResponse
	_, loaned := p.checkouts[itemId]
	switch {
	case loaned:
		res.DocumentStatus.Status = StatusCheckout
	case slices.Contains(p.reserves, itemId):
		res.DocumentStatus.Status = StatusReservation
	case slices.Contains(item.queue, barcode):
		res.DocumentStatus.Status = StatusHold
	case item.free() > 0:
		res.DocumentStatus.Status = StatusCanCheckout
	default:
		res.DocumentStatus.Status = StatusCanHold
	}
	writeXml(w, http.StatusOK, res)
}

type patronResponse struct {
	XMLName xml.Name `xml:"PatronResponse"`
	Result  string   `xml:"result"`
}

func (m *Mock) handlePatron(ctx extctx.ExtendedContext, w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.patron(r.PathValue("barcode"), r, false); !ok {
		writeXml(w, http.StatusOK, patronResponse{Result: "FAILED"})
		return
	}
	writeXml(w, http.StatusOK, patronResponse{Result: "SUCCESS"})
}

// handleLogin is the vendor site's login form. A valid login sets a sessionid_ cookie
// and redirects to the start page.
func (m *Mock) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patrons[r.PostForm.Get("username")]
	if !ok || p.password != r.PostForm.Get("password") {
		w.WriteHeader(http.StatusOK)
		return
	}
	id := uuid.New().String()
	m.sessions[id] = r.PostForm.Get("username")
	http.SetCookie(w, &http.Cookie{Name: "sessionid_" + m.LibraryID, Value: id, Path: "/", HttpOnly: true})
	http.Redirect(w, r, "/", http.StatusFound)
}
