package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"FactPull/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// QueueMode selects which half of the queue a process runs. API-only
// deployments publish refresh jobs; worker deployments also consume them.
type QueueMode int

const (
	ModeProducerConsumer QueueMode = iota
	ModeProducerOnly
	ModeConsumerOnly
)

func (m QueueMode) String() string {
	switch m {
	case ModeProducerOnly:
		return "producer-only"
	case ModeConsumerOnly:
		return "consumer-only"
	default:
		return "producer-consumer"
	}
}

// Key layout under the configured prefix: a list of ready messages, a sorted
// set of scheduled retries scored by due time, and a list of messages that
// exhausted their retries.
const (
	defaultKeyPrefix = "factpull:queue"
	readySuffix      = "messages"
	retrySuffix      = "retry"
	deadSuffix       = "dlq"
)

// RedisQueue runs background jobs off a redis list. Failed messages are
// parked on a sorted set and promoted back to the ready list once their
// retry delay elapses; messages that exhaust the retry limit land on a
// dead-letter list for manual inspection.
type RedisQueue struct {
	lgr       *logger.Logger
	cfg       *QueueConfig
	client    *redis.Client
	mode      QueueMode
	keyPrefix string

	jobs map[string]Job

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// RedisQueueOption configures RedisQueue.
type RedisQueueOption func(*RedisQueue)

// WithKeyPrefix namespaces all queue keys, so several queues can share one
// redis instance.
func WithKeyPrefix(prefix string) RedisQueueOption {
	return func(q *RedisQueue) {
		if prefix != "" {
			q.keyPrefix = prefix
		}
	}
}

// NewRedisQueue creates a queue on client operating in the given mode.
func NewRedisQueue(lgr *logger.Logger, cfg *QueueConfig, client *redis.Client, mode QueueMode, opts ...RedisQueueOption) *RedisQueue {
	if cfg == nil {
		cfg = &QueueConfig{}
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 10 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	q := &RedisQueue{
		lgr:       lgr,
		cfg:       cfg,
		client:    client,
		mode:      mode,
		keyPrefix: defaultKeyPrefix,
		jobs:      make(map[string]Job),
		stopCh:    make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// RegisterJob makes job available to consuming workers. Messages are routed
// by job type; registering the same type twice keeps the first registration.
func (q *RedisQueue) RegisterJob(job Job) {
	if q.mode == ModeProducerOnly {
		q.lgr.Warn("job registration ignored in producer-only mode",
			logger.String("job", job.Name()))
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.jobs[job.Type()]; exists {
		q.lgr.Warn("job already registered", logger.String("job", job.Name()))
		return
	}
	q.jobs[job.Type()] = job
	q.lgr.Info("job registered",
		logger.String("job", job.Name()),
		logger.String("type", job.Type()))
}

// Start verifies the redis connection and, unless producer-only, launches the
// worker pool and the retry promoter.
func (q *RedisQueue) Start() error {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return fmt.Errorf("queue already running")
	}
	q.running = true
	q.mu.Unlock()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.client.Ping(pingCtx).Err(); err != nil {
		q.mu.Lock()
		q.running = false
		q.mu.Unlock()
		return fmt.Errorf("redis ping: %w", err)
	}

	if q.mode == ModeProducerOnly {
		q.lgr.Info("redis publisher started",
			logger.String("addr", q.client.Options().Addr))
		return nil
	}

	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	q.wg.Add(1)
	go q.retryLoop()

	q.lgr.Info("redis queue started",
		logger.Int("workers", q.cfg.Workers),
		logger.String("addr", q.client.Options().Addr),
		logger.String("mode", q.mode.String()))
	return nil
}

// Stop shuts down workers, waiting up to ctx's deadline for in-flight jobs.
func (q *RedisQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return nil
	}
	q.running = false
	q.lgr.Info("stopping redis queue...")
	q.cancel()
	if q.mode != ModeProducerOnly {
		close(q.stopCh)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		q.lgr.Warn("timeout waiting for queue workers", logger.Error(ctx.Err()))
		return fmt.Errorf("timeout: %w", ctx.Err())
	case <-done:
		q.lgr.Info("redis queue stopped gracefully")
		return nil
	}
}

// Enqueue pushes one message onto the ready list. In consuming modes the
// message type must have a registered job, so typos fail at publish time.
func (q *RedisQueue) Enqueue(ctx context.Context, msgType string, payload interface{}) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if !q.running {
		return fmt.Errorf("queue not running")
	}
	if q.mode != ModeProducerOnly {
		if _, exists := q.jobs[msgType]; !exists {
			return fmt.Errorf("no job registered for type: %s", msgType)
		}
	}

	msg := Message{
		ID:        strconv.FormatInt(time.Now().UnixNano(), 10),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := q.client.LPush(ctx, q.readyKey(), data).Err(); err != nil {
		return fmt.Errorf("lpush: %w", err)
	}
	return nil
}

// PublishMessage implements QueueService.
func (q *RedisQueue) PublishMessage(ctx context.Context, msgType string, payload interface{}) error {
	return q.Enqueue(ctx, msgType, payload)
}

func (q *RedisQueue) worker(id int) {
	defer q.wg.Done()
	q.lgr.Info("queue worker started", logger.Int("worker_id", id))

	for {
		select {
		case <-q.stopCh:
			q.lgr.Info("queue worker stopping", logger.Int("worker_id", id))
			return
		case <-q.ctx.Done():
			q.lgr.Info("queue worker cancelled", logger.Int("worker_id", id))
			return
		default:
			q.pop()
		}
	}
}

// pop blocks up to a second for the next ready message and dispatches it.
func (q *RedisQueue) pop() {
	ctx, cancel := context.WithTimeout(q.ctx, 1*time.Second)
	defer cancel()

	result, err := q.client.BRPop(ctx, 1*time.Second, q.readyKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return
		}
		q.lgr.Error("brpop error", logger.Error(err))
		time.Sleep(1 * time.Second)
		return
	}
	if len(result) < 2 {
		return
	}

	var msg Message
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		q.lgr.Error("unmarshal message", logger.Error(err))
		return
	}
	q.dispatch(msg)
}

func (q *RedisQueue) dispatch(msg Message) {
	job, exists := q.jobs[msg.Type]
	if !exists {
		q.lgr.Error("no job found",
			logger.String("type", msg.Type),
			logger.String("id", msg.ID))
		return
	}

	start := time.Now()
	err := job.Handle(q.ctx, q.normalizePayload(msg.Payload))
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		q.lgr.Warn("message cancelled",
			logger.String("id", msg.ID),
			logger.String("job", job.Name()),
			logger.Int64("elapsed_ms", time.Since(start).Milliseconds()))
		return
	}
	q.retryOrPark(msg, job, err)
}

// normalizePayload re-encodes a decoded JSON object so jobs always see
// json.RawMessage after a redis round trip.
func (q *RedisQueue) normalizePayload(payload interface{}) interface{} {
	m, ok := payload.(map[string]interface{})
	if !ok {
		return payload
	}
	b, err := json.Marshal(m)
	if err != nil {
		q.lgr.Error("convert payload", logger.Error(err))
		return payload
	}
	return json.RawMessage(b)
}

func (q *RedisQueue) retryOrPark(msg Message, job Job, err error) {
	q.lgr.Error("message processing error",
		logger.String("id", msg.ID),
		logger.String("job", job.Name()),
		logger.Int("attempt", msg.Attempts+1),
		logger.Error(err))

	if msg.Attempts >= q.cfg.RetryLimit {
		q.lgr.Error("max retries reached",
			logger.String("id", msg.ID),
			logger.String("job", job.Name()))
		q.deadLetter(msg)
		return
	}

	msg.Attempts++
	due := time.Now().Add(q.cfg.RetryDelay)
	q.scheduleRetry(msg, due)
	q.lgr.Info("scheduled retry",
		logger.String("id", msg.ID),
		logger.String("job", job.Name()),
		logger.Int("attempt", msg.Attempts),
		logger.String("retry_at", due.Format(time.RFC3339)))
}

// scheduleRetry parks msg on the retry set until due. Uses a background
// context so a shutdown mid-failure does not lose the retry.
func (q *RedisQueue) scheduleRetry(msg Message, due time.Time) {
	data, err := json.Marshal(msg)
	if err != nil {
		q.lgr.Error("marshal retry", logger.Error(err))
		return
	}
	err = q.client.ZAdd(context.Background(), q.retryKey(), redis.Z{
		Score:  float64(due.Unix()),
		Member: data,
	}).Err()
	if err != nil {
		q.lgr.Error("zadd retry", logger.Error(err))
	}
}

func (q *RedisQueue) deadLetter(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		q.lgr.Error("marshal dlq", logger.Error(err))
		return
	}
	if err := q.client.LPush(context.Background(), q.deadKey(), data).Err(); err != nil {
		q.lgr.Error("lpush dlq", logger.Error(err))
	}
}

// retryLoop periodically promotes due retries back onto the ready list.
func (q *RedisQueue) retryLoop() {
	defer q.wg.Done()
	q.lgr.Info("retry processor started")

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-q.stopCh:
			q.lgr.Info("retry processor stopping")
			return
		case <-q.ctx.Done():
			q.lgr.Info("retry processor cancelled")
			return
		case <-ticker.C:
			q.promoteDue()
		}
	}
}

func (q *RedisQueue) promoteDue() {
	now := float64(time.Now().Unix())

	due, err := q.client.ZRangeByScoreWithScores(q.ctx, q.retryKey(), &redis.ZRangeBy{
		Min: "0",
		Max: strconv.FormatFloat(now, 'f', 0, 64),
	}).Result()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		q.lgr.Error("fetch retry messages", logger.Error(err))
		return
	}

	for _, z := range due {
		select {
		case <-q.ctx.Done():
			return
		default:
		}

		data := z.Member.(string)

		// remove-and-requeue atomically, so a crash cannot duplicate the message
		pipe := q.client.TxPipeline()
		pipe.ZRem(q.ctx, q.retryKey(), data)
		pipe.LPush(q.ctx, q.readyKey(), data)
		if _, err := pipe.Exec(q.ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			q.lgr.Error("move retry to queue", logger.Error(err))
		}
	}
}

func (q *RedisQueue) readyKey() string {
	return q.keyPrefix + ":" + readySuffix
}

func (q *RedisQueue) retryKey() string {
	return q.keyPrefix + ":" + retrySuffix
}

func (q *RedisQueue) deadKey() string {
	return q.keyPrefix + ":" + deadSuffix
}

var _ QueueService = (*RedisQueue)(nil)
