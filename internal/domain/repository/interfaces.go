package repository

import (
	"context"
	"errors"

	"FactPull/internal/domain/models"
)

// ErrNotFound is returned when a ticker is absent from the directory or EDGAR
// has no facts document for a CIK.
var ErrNotFound = errors.New("not found")

// TickerEntry is one row of the SEC ticker directory.
type TickerEntry struct {
	CIK    int    `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// TickerDirectory resolves ticker symbols to CIK identifiers.
type TickerDirectory interface {
	Resolve(ctx context.Context, ticker string) (TickerEntry, error)
}

// FactSource serves company facts documents, transparently caching them so
// repeated requests stay within SEC rate limits.
type FactSource interface {
	CompanyFacts(ctx context.Context, cik int) (*models.CompanyFacts, error)
	// Evict drops the cached document for a CIK; the next read re-fetches.
	Evict(ctx context.Context, cik int) error
}

// SeriesArchive appends finalized series points to long-term storage for
// offline analysis. Archive failures must never fail a request: callers
// treat errors as log-and-continue.
type SeriesArchive interface {
	Append(ctx context.Context, ticker, metric string, points []models.PeriodPoint) error
	Health(ctx context.Context) error
	Close() error
}

// Broadcaster pushes refresh events to connected streaming clients.
type Broadcaster interface {
	Broadcast(ev models.RefreshEvent)
}

// Metrics abstracts operational counters so usecases do not depend on a
// concrete metrics backend.
type Metrics interface {
	RecordFetch(resource, outcome string)
	RecordCacheHit(resource string)
	RecordCacheMiss(resource string)
	RecordExtraction(metric string, seconds float64)
	RecordError(kind string)
}
