//go:build wireinject
// +build wireinject

package di

import (
	"FactPull/pkg/config"
	"FactPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient infrastructure
		ProvideLogger,
		ProvideCache,
		ProvideMetrics,

		// EDGAR access
		ProvideEdgarClient,
		ProvideFactSource,
		ProvideTickerDirectory,

		// Series pipeline
		ProvideMetricTable,
		ProvideClickHouseClient,
		ProvideSeriesArchive,
		ProvideSeriesService,

		// Async refresh plumbing
		ProvideHub,
		ProvideRefreshQueue,
		ProvideRefreshPipeline,
		ProvideKafkaConsumer,
		ProvideFilingsHandler,

		// HTTP surface and application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
