//go:build wireinject
// +build wireinject

package di

import (
	"PriceSignal/pkg/config"
	"PriceSignal/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application with a
// cleanup that closes every opened client in reverse order.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideStoreConn,
		ProvideResponseCache,
		ProvideKafkaProducer,

		// Repositories
		ProvidePriceStore,

		// Use cases
		ProvidePriceSignals,
		ProvideAlertPublisher,

		// Transport
		ProvideHTTPHandler,
		ProvideRateLimiter,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}
