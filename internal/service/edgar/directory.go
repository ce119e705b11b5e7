package edgar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"FactPull/internal/domain/repository"
	"FactPull/pkg/cache"
	"FactPull/pkg/logger"
	"FactPull/pkg/util"
)

const tickersKey = "edgar:tickers"

// Directory implements repository.TickerDirectory over the SEC ticker file.
// The upstream document is a JSON object of numbered entries, each carrying
// cik_str, ticker and title. The parsed index is held in memory and rebuilt
// when the TTL lapses; the raw bytes are also cached so a restart does not
// re-hit the SEC.
type Directory struct {
	client *Client
	cache  cache.Service
	ttl    time.Duration
	logger *logger.Logger

	mu        sync.RWMutex
	byTicker  map[string]repository.TickerEntry
	refreshed time.Time
}

func NewDirectory(client *Client, c cache.Service, ttl time.Duration, l *logger.Logger) *Directory {
	return &Directory{
		client: client,
		cache:  c,
		ttl:    ttl,
		logger: l,
	}
}

// Resolve maps a ticker symbol (case-insensitive) to its directory entry.
func (d *Directory) Resolve(ctx context.Context, ticker string) (repository.TickerEntry, error) {
	symbol := util.NormalizeTicker(ticker)
	if symbol == "" {
		return repository.TickerEntry{}, fmt.Errorf("ticker %q: %w", ticker, repository.ErrNotFound)
	}

	d.mu.RLock()
	fresh := time.Since(d.refreshed) < d.ttl && d.byTicker != nil
	entry, ok := d.byTicker[symbol]
	d.mu.RUnlock()
	if fresh {
		if !ok {
			return repository.TickerEntry{}, fmt.Errorf("ticker %q: %w", symbol, repository.ErrNotFound)
		}
		return entry, nil
	}

	if err := d.refresh(ctx); err != nil {
		return repository.TickerEntry{}, err
	}

	d.mu.RLock()
	entry, ok = d.byTicker[symbol]
	d.mu.RUnlock()
	if !ok {
		return repository.TickerEntry{}, fmt.Errorf("ticker %q: %w", symbol, repository.ErrNotFound)
	}
	return entry, nil
}

func (d *Directory) refresh(ctx context.Context) error {
	raw, err := d.cache.Get(ctx, tickersKey)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			d.logger.Warn("ticker directory cache read failed", logger.Error(err))
		}
		raw, err = d.client.FetchTickerDirectory(ctx)
		if err != nil {
			return fmt.Errorf("fetch ticker directory: %w", err)
		}
		if werr := d.cache.Set(ctx, tickersKey, raw, d.ttl); werr != nil {
			d.logger.Warn("ticker directory cache write failed", logger.Error(werr))
		}
	}

	var doc map[string]repository.TickerEntry
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode ticker directory: %w", err)
	}

	index := make(map[string]repository.TickerEntry, len(doc))
	for _, e := range doc {
		index[util.NormalizeTicker(e.Ticker)] = e
	}

	d.mu.Lock()
	d.byTicker = index
	d.refreshed = time.Now()
	d.mu.Unlock()

	d.logger.Info("ticker directory refreshed", logger.Int("entries", len(index)))
	return nil
}

var _ repository.TickerDirectory = (*Directory)(nil)
