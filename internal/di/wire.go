//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/anishesg/a-rusty-kalshi-bot/pkg/config"
	"github.com/anishesg/a-rusty-kalshi-bot/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideCache,

		// Repositories
		ProvideTradeSink,
		ProvideEngineStream,

		// State and use cases
		ProvideStore,
		ProvideDispatcher,
		ProvideCollector,

		// Presentation
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
