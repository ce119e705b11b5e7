package di

import (
	"context"
	"fmt"
	"time"

	"FactPull/internal/domain/models"
	domrepo "FactPull/internal/domain/repository"
	"FactPull/internal/handler/api"
	mid "FactPull/internal/middleware"
	internalrepo "FactPull/internal/repository"
	"FactPull/internal/service/edgar"
	"FactPull/internal/service/stream"
	"FactPull/internal/usecase"
	"FactPull/pkg/cache"
	pkgch "FactPull/pkg/clickhouse"
	"FactPull/pkg/config"
	pkgkafka "FactPull/pkg/kafka"
	"FactPull/pkg/logger"
	"FactPull/pkg/metrics"
	"FactPull/pkg/queue"
	"FactPull/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger with the warn/error collector
// enabled, so /api/logs always has something to serve.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	capacity := cfg.Logging.CollectorCapacity
	if capacity <= 0 {
		capacity = 256
	}
	l.EnableCollector(capacity)
	return l, nil
}

// ProvideCache creates the cache backend selected in config.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(cfg.Cache.Memory.MaxEntries),
			cache.WithMemoryCleanup(cfg.Cache.Memory.CleanupInterval),
		), nil
	case "redis":
		return cache.NewRedisCache(
			cache.WithRedisAddr(cfg.Cache.Redis.Addr),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
	case "badger":
		return cache.NewBadgerCache(
			cache.WithBadgerPath(cfg.Cache.Badger.Path),
			cache.WithBadgerGCInterval(cfg.Cache.Badger.GCInterval),
		)
	case "layered":
		rc, err := cache.NewRedisCache(
			cache.WithRedisAddr(cfg.Cache.Redis.Addr),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
		if err != nil {
			return nil, err
		}
		return cache.NewLayeredCache(rc,
			cache.WithLayeredMemorySize(cfg.Cache.Memory.MaxEntries),
		), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Cache.Backend)
	}
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideEdgarClient creates the rate-limited EDGAR HTTP client.
func ProvideEdgarClient(cfg *config.Config) (*edgar.Client, error) {
	return edgar.NewClient(cfg.Edgar.UserAgent,
		edgar.WithBaseURL(cfg.Edgar.BaseURL),
		edgar.WithTickersURL(cfg.Edgar.TickersURL),
		edgar.WithRateLimit(cfg.Edgar.RequestsPerSecond, cfg.Edgar.Burst),
		edgar.WithTimeout(cfg.Edgar.Timeout),
	)
}

// ProvideFactSource creates the cache-backed facts document source.
func ProvideFactSource(
	client *edgar.Client,
	c cache.Service,
	m domrepo.Metrics,
	cfg *config.Config,
	l *logger.Logger,
) domrepo.FactSource {
	return edgar.NewCachedFactSource(client, c, cfg.Edgar.FactsTTL, m, l)
}

// ProvideTickerDirectory creates the ticker-to-CIK resolver.
func ProvideTickerDirectory(
	client *edgar.Client,
	c cache.Service,
	cfg *config.Config,
	l *logger.Logger,
) domrepo.TickerDirectory {
	return edgar.NewDirectory(client, c, cfg.Edgar.TickersTTL, l)
}

// ProvideMetricTable builds the metric table, from config when series_metrics
// is set and from the built-in definitions otherwise.
func ProvideMetricTable(cfg *config.Config) *models.MetricTable {
	if len(cfg.SeriesMetrics) == 0 {
		return models.NewMetricTable(models.DefaultMetrics())
	}

	ms := make([]models.Metric, 0, len(cfg.SeriesMetrics))
	for _, sm := range cfg.SeriesMetrics {
		ms = append(ms, models.Metric{
			Name:                sm.Name,
			Slug:                sm.Slug,
			Field:               sm.Field,
			Taxonomy:            sm.Taxonomy,
			Unit:                sm.Unit,
			Concepts:            sm.Concepts,
			NegativeIrrelevant:  sm.NegativeIrrelevant,
			PositiveDerivedOnly: sm.PositiveDerivedOnly,
		})
	}
	return models.NewMetricTable(ms)
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the series
// archive schema exists. Returns nil when archiving is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, false),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, 10*time.Second, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmts := internalrepo.Schema(cfg.ClickHouse.Database, cfg.ClickHouse.Table)
	if err := client.InitSchema(ctx, stmts); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideSeriesArchive creates the ClickHouse-backed series archive, or nil
// when archiving is disabled.
func ProvideSeriesArchive(chClient *pkgch.Client, cfg *config.Config, l *logger.Logger) domrepo.SeriesArchive {
	if chClient == nil {
		return nil
	}
	a := internalrepo.NewCHSeriesArchive(chClient, cfg.ClickHouse.Database+"."+cfg.ClickHouse.Table)
	a.SetLogger(l)
	return a
}

// ProvideHub creates the websocket broadcast hub.
func ProvideHub(l *logger.Logger) *stream.Hub {
	return stream.NewHub(l)
}

// ProvideSeriesService creates the series use case, with archiving attached
// when a ClickHouse archive is available.
func ProvideSeriesService(
	directory domrepo.TickerDirectory,
	source domrepo.FactSource,
	m domrepo.Metrics,
	archive domrepo.SeriesArchive,
	l *logger.Logger,
) *usecase.SeriesService {
	svc := usecase.NewSeriesService(directory, source, m, l)
	if archive != nil {
		svc.SetArchive(archive)
	}
	return svc
}

// ProvideRefreshQueue creates the redis-backed refresh queue with the refresh
// job registered, or nil when the refresh pipeline is disabled.
func ProvideRefreshQueue(
	cfg *config.Config,
	source domrepo.FactSource,
	hub *stream.Hub,
	m domrepo.Metrics,
	l *logger.Logger,
) *queue.RedisQueue {
	if !cfg.Refresh.Enabled {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	})

	q := queue.NewRedisQueue(l,
		&queue.QueueConfig{Workers: cfg.Refresh.Workers},
		client,
		queue.ModeProducerConsumer,
		queue.WithKeyPrefix(cfg.Refresh.QueueKey),
	)
	q.RegisterJob(usecase.NewRefreshJob(source, hub, m, l))
	return q
}

// ProvideRefreshPipeline wraps the refresh queue with per-company suppression
// and a retry buffer. Nil when the queue is disabled.
func ProvideRefreshPipeline(q *queue.RedisQueue, m domrepo.Metrics) *mid.RefreshPipeline {
	if q == nil {
		return nil
	}
	return mid.NewRefreshPipeline(q, m)
}

// ProvideKafkaConsumer creates the filings Kafka consumer, or nil when Kafka
// is disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *logger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}

	consumer, err := pkgkafka.NewConsumer(l,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerRetry(3, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NewLoggingHook(l))
	return consumer, nil
}

// ProvideFilingsHandler creates the filing-event handler for the Kafka topic.
func ProvideFilingsHandler(
	cfg *config.Config,
	source domrepo.FactSource,
	pipe *mid.RefreshPipeline,
	m domrepo.Metrics,
	l *logger.Logger,
) *usecase.FilingsHandler {
	var jobs queue.QueueService
	if pipe != nil {
		jobs = pipe
	}
	return usecase.NewFilingsHandler(cfg.Kafka.Topic, source, jobs, m, l)
}

// ProvideHTTPHandler creates the Echo handler with all routes.
func ProvideHTTPHandler(
	l *logger.Logger,
	svc *usecase.SeriesService,
	table *models.MetricTable,
	hub *stream.Hub,
	pipe *mid.RefreshPipeline,
) *api.FactsEchoHandler {
	h := api.NewFactsEchoHandler(l, svc, table)
	h.SetHub(hub)
	if pipe != nil {
		h.SetRefreshQueue(pipe)
	}
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	handler *api.FactsEchoHandler,
	hub *stream.Hub,
	refreshQ *queue.RedisQueue,
	pipe *mid.RefreshPipeline,
	consumer *pkgkafka.Consumer,
	fh *usecase.FilingsHandler,
	chClient *pkgch.Client,
	c cache.Service,
) *server.App {
	return server.New(cfg, l, handler, hub, refreshQ, pipe, consumer, fh, chClient, c)
}
