package usecase

import (
	"context"
	"fmt"
	"time"

	"FactPull/internal/domain/models"
	domrepo "FactPull/internal/domain/repository"
	applogger "FactPull/pkg/logger"
	"FactPull/pkg/queue"
	"FactPull/pkg/util"
)

// RefreshMessageType is the queue message type for facts refresh jobs.
const RefreshMessageType = "facts_refresh"

// RefreshPayload identifies one company whose facts document must be
// re-fetched.
type RefreshPayload struct {
	Ticker string `json:"ticker"`
	CIK    int    `json:"cik"`
}

// RefreshJob re-fetches a company's facts document: evict the cached copy,
// pull a fresh one (which warms the cache through the fact source), then
// notify streaming clients. Implements queue.Job; workers run it off the
// redis-backed refresh queue so SEC traffic stays bounded regardless of how
// many filings land at once.
type RefreshJob struct {
	source      domrepo.FactSource
	broadcaster domrepo.Broadcaster
	metrics     domrepo.Metrics
	logger      *applogger.Logger
}

func NewRefreshJob(
	source domrepo.FactSource,
	broadcaster domrepo.Broadcaster,
	metrics domrepo.Metrics,
	logger *applogger.Logger,
) *RefreshJob {
	return &RefreshJob{
		source:      source,
		broadcaster: broadcaster,
		metrics:     metrics,
		logger:      logger,
	}
}

func (j *RefreshJob) Name() string { return "facts-refresh" }
func (j *RefreshJob) Type() string { return RefreshMessageType }

func (j *RefreshJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[RefreshPayload](payload)
	if err != nil {
		j.metrics.RecordError("refresh_payload")
		return fmt.Errorf("refresh payload: %w", err)
	}
	if p.CIK <= 0 {
		j.metrics.RecordError("refresh_payload")
		return fmt.Errorf("refresh payload: invalid cik %d", p.CIK)
	}

	if err := j.source.Evict(ctx, p.CIK); err != nil {
		// stale cache only delays freshness; keep going
		j.logger.Warn("refresh evict failed",
			applogger.Int("cik", p.CIK), applogger.Error(err))
	}

	doc, err := j.source.CompanyFacts(ctx, p.CIK)
	if err != nil {
		j.metrics.RecordError("refresh_fetch")
		return fmt.Errorf("refresh fetch cik %d: %w", p.CIK, err)
	}

	j.broadcaster.Broadcast(models.RefreshEvent{
		Type:   "facts_refreshed",
		Ticker: util.NormalizeTicker(p.Ticker),
		CIK:    doc.CIK,
		At:     time.Now().UTC().Format(time.RFC3339),
	})

	j.logger.Info("facts refreshed",
		applogger.String("ticker", p.Ticker),
		applogger.Int("cik", doc.CIK))
	return nil
}

var _ queue.Job = (*RefreshJob)(nil)
