//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"github.com/haydenbleasel/tersa-sub001/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideOverlayWatcher,
	ProvideDomainConfig,
	ProvideProjectOptions,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideSupabaseClient,
	ProvideProjectRepository,
	ProvideObjectStorage,
	ProvideEventPublisher,
	ProvideEntitlements,
	ProvideRateLimiter,
	ProvideTokenVerifier,
	ProvideMetrics,
	ProvideTracerProvider,
	ProvideCatalogBuilder,
	ProvideDispatcher,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideErrorHandler,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
