package patron

// Patron is a library user who authenticates against the vendor with barcode and PIN.
type Patron struct {
	ID               string `json:"id"`
	Barcode          string `json:"barcode"`
	Pin              string `json:"-"`
	DisplayName      string `json:"displayName"`
	LibraryLabel     string `json:"libraryLabel"`
	FineLimitReached bool   `json:"fineLimitReached"`
}

func (p *Patron) NameAndLibraryLabel() string {
	if p.LibraryLabel == "" {
		return p.DisplayName
	}
	return p.DisplayName + " (" + p.LibraryLabel + ")"
}

// EligibleForHolds is false once the patron owes more than the library's fine threshold.
// The same check gates checkouts.
func (p *Patron) EligibleForHolds() bool {
	return !p.FineLimitReached
}
