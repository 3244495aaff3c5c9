package axis360

import (
	"encoding/json"
	"time"

	"github.com/indexdata/crosslink/econtent/catalog"
)

const CheckoutSource = "Axis360"

const HoldSource = "Axis360"

type AccountSummary struct {
	NumCheckedOut       int `json:"numCheckedOut"`
	NumAvailableHolds   int `json:"numAvailableHolds"`
	NumUnavailableHolds int `json:"numUnavailableHolds"`
}

func (s AccountSummary) NumHolds() int {
	return s.NumAvailableHolds + s.NumUnavailableHolds
}

func (s AccountSummary) MarshalJSON() ([]byte, error) {
	type summary AccountSummary
	return json.Marshal(struct {
		summary
		NumHolds int `json:"numHolds"`
	}{summary(s), s.NumHolds()})
}

type Checkout struct {
	ID             string    `json:"id"`
	RecordID       string    `json:"recordId"`
	DueDate        string    `json:"dueDate"`
	DueDateTime    time.Time `json:"dueDateTime,omitzero"`
	CanRenew       bool      `json:"canRenew"`
	Title          string    `json:"title"`
	Author         string    `json:"author"`
	CoverURL       string    `json:"coverUrl,omitempty"`
	Rating         float64   `json:"rating,omitempty"`
	GroupedWorkID  string    `json:"groupedWorkId,omitempty"`
	Format         string    `json:"format"`
	LinkURL        string    `json:"linkUrl,omitempty"`
	User           string    `json:"user"`
	UserID         string    `json:"userId"`
	CheckoutSource string    `json:"checkoutSource"`
}

type Hold struct {
	ID            string  `json:"id"`
	TransactionID string  `json:"transactionId"`
	HoldSource    string  `json:"holdSource"`
	Position      int     `json:"position,omitempty"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	CoverURL      string  `json:"coverUrl,omitempty"`
	Rating        float64 `json:"rating,omitempty"`
	GroupedWorkID string  `json:"groupedWorkId,omitempty"`
	Format        string  `json:"format,omitempty"`
	LinkURL       string  `json:"linkUrl,omitempty"`
	User          string  `json:"user"`
	UserID        string  `json:"userId"`
}

// Key identifies a hold within Holds; the same title listed twice collapses to one entry.
func (h Hold) Key() string {
	return h.HoldSource + h.ID + h.UserID
}

// Holds splits holds into ready for checkout (available) and queued (unavailable).
type Holds struct {
	Available   map[string]Hold `json:"available"`
	Unavailable map[string]Hold `json:"unavailable"`
}

type OperationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type HoldResult struct {
	OperationResult
	HasWhileYouWait bool                        `json:"hasWhileYouWait"`
	WhileYouWait    []catalog.WhileYouWaitTitle `json:"whileYouWait,omitempty"`
}
