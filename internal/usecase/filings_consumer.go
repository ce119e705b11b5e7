package usecase

import (
	"context"
	"encoding/json"
	"strings"

	"FactPull/internal/domain/models"
	domrepo "FactPull/internal/domain/repository"
	pkgkafka "FactPull/pkg/kafka"
	applogger "FactPull/pkg/logger"
	"FactPull/pkg/queue"
)

// FilingsHandler consumes filing events from Kafka. On financial-report forms
// it evicts the cached facts document and enqueues a refresh job; other forms
// (8-K, proxies, ownership filings) carry no XBRL facts we serve and are
// dropped.
type FilingsHandler struct {
	topic   string
	source  domrepo.FactSource
	jobs    queue.QueueService
	metrics domrepo.Metrics
	logger  *applogger.Logger
}

func NewFilingsHandler(
	topic string,
	source domrepo.FactSource,
	jobs queue.QueueService,
	metrics domrepo.Metrics,
	logger *applogger.Logger,
) *FilingsHandler {
	return &FilingsHandler{
		topic:   topic,
		source:  source,
		jobs:    jobs,
		metrics: metrics,
		logger:  logger,
	}
}

func (h *FilingsHandler) Topic() string { return h.topic }

// Handle processes one filing event: {cik, ticker, form, filed}.
func (h *FilingsHandler) Handle(ctx context.Context, b []byte) error {
	var ev models.FilingEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		h.metrics.RecordError("filings_unmarshal")
		return err
	}
	if !isReportForm(ev.Form) {
		return nil
	}
	if ev.CIK <= 0 {
		h.metrics.RecordError("filings_invalid")
		h.logger.Warn("filing event without cik",
			applogger.String("ticker", ev.Ticker),
			applogger.String("form", ev.Form))
		return nil
	}

	if err := h.source.Evict(ctx, ev.CIK); err != nil {
		h.logger.Warn("filing evict failed",
			applogger.Int("cik", ev.CIK), applogger.Error(err))
	}

	if h.jobs != nil {
		if err := h.jobs.PublishMessage(ctx, RefreshMessageType, RefreshPayload{
			Ticker: ev.Ticker,
			CIK:    ev.CIK,
		}); err != nil {
			h.metrics.RecordError("filings_enqueue")
			return err
		}
	}

	h.logger.Info("filing event processed",
		applogger.String("ticker", ev.Ticker),
		applogger.String("form", ev.Form),
		applogger.String("filed", ev.Filed),
		applogger.Int("cik", ev.CIK))
	return nil
}

// isReportForm matches the 10-K/10-Q families, amendments included.
func isReportForm(form string) bool {
	base := strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(form)), "/A")
	switch base {
	case "10-K", "10-Q", "20-F", "40-F":
		return true
	default:
		return false
	}
}

var _ pkgkafka.MessageHandler = (*FilingsHandler)(nil)
