package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	domrepo "FactPull/internal/domain/repository"
	"FactPull/internal/usecase"
	"FactPull/pkg/queue"
)

// RefreshPipeline sits between refresh producers (the filings consumer, the
// refresh endpoint) and the redis queue. It coalesces bursts: a company
// already refreshed within the suppression window is dropped, and enqueue
// failures are buffered and retried in the background instead of bubbling up
// to the producer. Implements queue.QueueService so producers stay unaware of
// it.
type RefreshPipeline struct {
	next      queue.QueueService
	metrics   domrepo.Metrics
	window    time.Duration
	bufSize   int
	bufCh     chan pendingRefresh
	stopCh    chan struct{}
	doneCh    chan struct{}
	started   bool
	mu        sync.Mutex
	lastQueue map[int]time.Time // per-CIK last accepted enqueue
}

type pendingRefresh struct {
	msgType string
	payload interface{}
}

type PipelineOption func(*RefreshPipeline)

// WithSuppressionWindow sets the per-company dedup window.
func WithSuppressionWindow(d time.Duration) PipelineOption {
	return func(p *RefreshPipeline) {
		if d > 0 {
			p.window = d
		}
	}
}

// WithBufferSize sets the retry buffer capacity.
func WithBufferSize(n int) PipelineOption {
	return func(p *RefreshPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewRefreshPipeline creates a pipeline in front of next.
func NewRefreshPipeline(next queue.QueueService, metrics domrepo.Metrics, opts ...PipelineOption) *RefreshPipeline {
	p := &RefreshPipeline{
		next:      next,
		metrics:   metrics,
		window:    time.Minute,
		bufSize:   256,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		lastQueue: make(map[int]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan pendingRefresh, p.bufSize)
	return p
}

// Start launches the background retry flusher.
func (p *RefreshPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		defer close(p.doneCh)
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.stopCh:
				return
			case msg := <-p.bufCh:
				if err := p.next.PublishMessage(ctx, msg.msgType, msg.payload); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("refresh_pipeline_flush")
					// backoff must not delay shutdown
					select {
					case <-ctx.Done():
						return
					case <-p.stopCh:
						return
					case <-time.After(backoff):
					}
					select {
					case p.bufCh <- msg:
					default:
						p.metrics.RecordError("refresh_pipeline_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flusher and waits for it to exit.
func (p *RefreshPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	close(p.stopCh)
	p.mu.Unlock()

	<-p.doneCh
}

// PublishMessage validates, coalesces, and forwards a refresh request,
// buffering it when the queue is unavailable.
func (p *RefreshPipeline) PublishMessage(ctx context.Context, msgType string, payload interface{}) error {
	rp, err := queue.ParsePayload[usecase.RefreshPayload](payload)
	if err != nil {
		p.metrics.RecordError("refresh_pipeline_payload")
		return fmt.Errorf("refresh pipeline payload: %w", err)
	}
	if rp.CIK <= 0 {
		p.metrics.RecordError("refresh_pipeline_payload")
		return fmt.Errorf("refresh pipeline: invalid cik %d", rp.CIK)
	}

	if !p.accept(rp.CIK, time.Now()) {
		// refreshed moments ago; drop silently
		return nil
	}

	if err := p.next.PublishMessage(ctx, msgType, *rp); err != nil {
		p.metrics.RecordError("refresh_pipeline_enqueue")
		select {
		case p.bufCh <- pendingRefresh{msgType: msgType, payload: *rp}:
			return nil
		default:
			p.metrics.RecordError("refresh_pipeline_buffer_full")
			return fmt.Errorf("refresh pipeline enqueue: %w", err)
		}
	}
	return nil
}

func (p *RefreshPipeline) accept(cik int, now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	last, ok := p.lastQueue[cik]
	if ok && now.Sub(last) < p.window {
		return false
	}
	p.lastQueue[cik] = now
	return true
}

var _ queue.QueueService = (*RefreshPipeline)(nil)
