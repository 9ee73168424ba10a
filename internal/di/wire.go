//go:build wireinject
// +build wireinject

package di

import (
	"HydroPull/pkg/config"
	"HydroPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,

		ProvideRenderer,
		ProvideHydrometClient,
		ProvideGenerator,

		ProvideHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
