// Package di wires the service together.
package di

import (
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/haydenbleasel/tersa-sub001/application/commands/bus"
	"github.com/haydenbleasel/tersa-sub001/application/generation"
	"github.com/haydenbleasel/tersa-sub001/application/ports"
	querybus "github.com/haydenbleasel/tersa-sub001/application/queries/bus"
	domainconfig "github.com/haydenbleasel/tersa-sub001/domain/config"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/config"
	pkgauth "github.com/haydenbleasel/tersa-sub001/pkg/auth"
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
	"github.com/haydenbleasel/tersa-sub001/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *zap.Logger
	Domain         *domainconfig.DomainConfig
	ProjectOptions ProjectOptions
	Repository     ports.ProjectRepository
	Storage        ports.ObjectStorage
	Publisher      ports.EventPublisher
	Entitlements   ports.Entitlements
	RateLimiter    ports.RateLimiter
	TokenVerifier  pkgauth.TokenVerifier
	Metrics        *observability.Metrics
	TracerProvider trace.TracerProvider
	Dispatcher     *generation.Dispatcher
	CommandBus     *bus.CommandBus
	QueryBus       *querybus.QueryBus
	ErrorHandler   *pkgerrors.ErrorHandler
}
