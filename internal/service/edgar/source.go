package edgar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"FactPull/internal/domain/models"
	"FactPull/internal/domain/repository"
	"FactPull/pkg/cache"
	"FactPull/pkg/logger"
)

const factsKeyPrefix = "edgar:facts"

// CachedFactSource implements repository.FactSource over the EDGAR client and
// an injected cache. Documents are cached as the raw upstream JSON bytes; the
// cache never inspects them. Cache read errors degrade to a fetch, write
// errors are logged, so the cache can never fail a request upstream could
// serve.
type CachedFactSource struct {
	client  *Client
	cache   cache.Service
	ttl     time.Duration
	metrics repository.Metrics
	logger  *logger.Logger
}

func NewCachedFactSource(client *Client, c cache.Service, ttl time.Duration, m repository.Metrics, l *logger.Logger) *CachedFactSource {
	return &CachedFactSource{
		client:  client,
		cache:   c,
		ttl:     ttl,
		metrics: m,
		logger:  l,
	}
}

func factsKey(cik int) string {
	return cache.GenerateKey(factsKeyPrefix, fmt.Sprintf("%010d", cik))
}

// CompanyFacts returns the facts document for a CIK, from cache when fresh.
func (s *CachedFactSource) CompanyFacts(ctx context.Context, cik int) (*models.CompanyFacts, error) {
	key := factsKey(cik)

	raw, err := s.cache.Get(ctx, key)
	if err == nil {
		s.metrics.RecordCacheHit("facts")
		return decodeFacts(raw)
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("facts cache read failed, falling back to fetch",
			logger.Int("cik", cik), logger.Error(err))
	}
	s.metrics.RecordCacheMiss("facts")

	raw, err = s.client.FetchCompanyFacts(ctx, cik)
	if err != nil {
		s.metrics.RecordFetch("facts", "error")
		return nil, err
	}
	s.metrics.RecordFetch("facts", "ok")

	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		s.logger.Warn("facts cache write failed",
			logger.Int("cik", cik), logger.Error(err))
	}
	return decodeFacts(raw)
}

// Evict drops the cached document for a CIK.
func (s *CachedFactSource) Evict(ctx context.Context, cik int) error {
	return s.cache.Delete(ctx, factsKey(cik))
}

func decodeFacts(raw []byte) (*models.CompanyFacts, error) {
	var doc models.CompanyFacts
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode company facts: %w", err)
	}
	return &doc, nil
}

var _ repository.FactSource = (*CachedFactSource)(nil)
