package models

// Requests for the facts HTTP endpoints. Defined in domain for consistency and reuse.

type SeriesRequest struct {
	Ticker string `param:"ticker" json:"ticker" validate:"required,min=1,max=12"`
}

type ProfileRequest struct {
	Ticker string `param:"ticker" json:"ticker" validate:"required,min=1,max=12"`
}

type RefreshRequest struct {
	Ticker string `param:"ticker" json:"ticker" validate:"required,min=1,max=12"`
}
