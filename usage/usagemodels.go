package usage

// PatronUsage counts successful checkouts, renewals and holds of one patron in one month.
type PatronUsage struct {
	UserID     string `json:"userId"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	UsageCount int    `json:"usageCount"`
}

// RecordUsage counts activity on one title in one month.
type RecordUsage struct {
	Axis360ID       string `json:"axis360Id"`
	Year            int    `json:"year"`
	Month           int    `json:"month"`
	TimesCheckedOut int    `json:"timesCheckedOut"`
	TimesHeld       int    `json:"timesHeld"`
}
