package models

// PeriodPoint is one resolved entry of a finalized series: the quarter's end
// date and the value attributed to it.
type PeriodPoint struct {
	Period string
	Value  float64
}

// RefreshEvent is broadcast after a company's facts document has been re-fetched.
type RefreshEvent struct {
	Type   string `json:"type"`
	Ticker string `json:"ticker"`
	CIK    int    `json:"cik"`
	At     string `json:"at"`
}

// FilingEvent is one inbound filing notification consumed from the filings topic.
type FilingEvent struct {
	CIK    int    `json:"cik"`
	Ticker string `json:"ticker"`
	Form   string `json:"form"`
	Filed  string `json:"filed"`
}
