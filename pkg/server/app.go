package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	mid "FactPull/internal/middleware"
	"FactPull/internal/service/ratelimit"
	"FactPull/internal/service/stream"
	"FactPull/pkg/cache"
	pkgch "FactPull/pkg/clickhouse"
	"FactPull/pkg/config"
	xhttp "FactPull/pkg/http"
	httpmw "FactPull/pkg/http/middleware"
	pkgkafka "FactPull/pkg/kafka"
	applogger "FactPull/pkg/logger"
	"FactPull/pkg/queue"
)

// App encapsulates the entire application lifecycle: HTTP API, websocket hub,
// refresh queue workers, filings Kafka consumer, and their shared
// infrastructure. Optional components are nil when disabled in config.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	httpHandler xhttp.Handler
	httpServer  *xhttp.Server
	hub         *stream.Hub
	refreshQ    *queue.RedisQueue
	pipeline    *mid.RefreshPipeline
	consumer    *pkgkafka.Consumer
	filings     pkgkafka.MessageHandler
	chClient    *pkgch.Client
	cache       cache.Service
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	handler xhttp.Handler,
	hub *stream.Hub,
	refreshQ *queue.RedisQueue,
	pipeline *mid.RefreshPipeline,
	consumer *pkgkafka.Consumer,
	filings pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	c cache.Service,
) *App {
	return &App{
		cfg:         cfg,
		logger:      logger,
		httpHandler: handler,
		hub:         hub,
		refreshQ:    refreshQ,
		pipeline:    pipeline,
		consumer:    consumer,
		filings:     filings,
		chClient:    chClient,
		cache:       c,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.logger

	opts := []xhttp.ServerOption{
		xhttp.WithHost(a.cfg.Server.Host),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	}
	if len(a.cfg.Server.CORSOrigins) > 0 {
		opts = append(opts, xhttp.WithCORSOrigins(a.cfg.Server.CORSOrigins))
	}
	if a.cfg.Metrics.Enabled {
		if a.cfg.Metrics.Path != "" {
			opts = append(opts, xhttp.WithMetricsPath(a.cfg.Metrics.Path))
		}
		opts = append(opts, xhttp.WithMiddleware(httpmw.Metrics(l, 2*time.Second)))
	} else {
		opts = append(opts, xhttp.WithMetricsPath(""))
	}
	if a.cfg.RateLimit.Enabled {
		limiter := ratelimit.New()
		opts = append(opts, xhttp.WithMiddleware(
			limiter.Middleware(a.cfg.RateLimit.RequestsPerMinute, a.cfg.RateLimit.Burst),
		))
	}
	a.httpServer = xhttp.NewServer(a.httpHandler, opts...)

	if a.hub != nil {
		a.hub.Start(ctx)
		l.Info("websocket hub started")
	}

	if a.refreshQ != nil {
		if err := a.refreshQ.Start(); err != nil {
			l.Error("refresh queue start error", applogger.Error(err))
			return err
		}
		l.Info("refresh queue started", applogger.Int("workers", a.cfg.Refresh.Workers))
	}

	if a.pipeline != nil {
		a.pipeline.Start(ctx)
	}

	if a.consumer != nil && a.filings != nil {
		a.consumer.RegisterHandler(a.filings)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.filings.Topic()))
	}

	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}
	l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services in reverse start order.
func (a *App) shutdown(ctx context.Context) error {
	l := a.logger

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.pipeline != nil {
		a.pipeline.Stop()
	}

	if a.refreshQ != nil {
		if err := a.refreshQ.Stop(shutdownCtx); err != nil {
			l.Warn("refresh queue stop error", applogger.Error(err))
		}
	}

	if a.hub != nil {
		a.hub.Stop()
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			l.Warn("cache close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
