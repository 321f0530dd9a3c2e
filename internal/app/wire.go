//go:build wireinject

package app

import (
	"rlsignal/internal/config"

	"github.com/google/wire"
)

var providerSet = wire.NewSet(
	provideRegistry,
	provideChecker,
	provideValidator,
	providePolicy,
	provideGenerator,
	provideProcessor,
	provideHTTPServer,
	newApp,
)

func buildAppWithWire(cfg *config.Config) (*App, error) {
	wire.Build(providerSet)
	return nil, nil
}
