package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/supabase-community/supabase-go"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/haydenbleasel/tersa-sub001/application/commands/bus"
	commandhandlers "github.com/haydenbleasel/tersa-sub001/application/commands/handlers"
	"github.com/haydenbleasel/tersa-sub001/application/generation"
	"github.com/haydenbleasel/tersa-sub001/application/ports"
	querybus "github.com/haydenbleasel/tersa-sub001/application/queries/bus"
	queryhandlers "github.com/haydenbleasel/tersa-sub001/application/queries/handlers"
	domainconfig "github.com/haydenbleasel/tersa-sub001/domain/config"
	"github.com/haydenbleasel/tersa-sub001/domain/core/aggregates"
	infraauth "github.com/haydenbleasel/tersa-sub001/infrastructure/auth"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/config"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/messaging"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/messaging/eventbridge"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/persistence/dynamodb"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/persistence/memory"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/persistence/sqlstore"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/providers"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/storage"
	pkgauth "github.com/haydenbleasel/tersa-sub001/pkg/auth"
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
	"github.com/haydenbleasel/tersa-sub001/pkg/observability"
	"github.com/haydenbleasel/tersa-sub001/pkg/ratelimit"
)

// ServiceVersion is reported in traces.
var ServiceVersion = "dev"

// ProjectOptions are applied to every project the service builds or loads.
type ProjectOptions []aggregates.Option

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	var zcfg zap.Config
	if cfg.IsDevelopment() {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// ProvideOverlayWatcher loads the YAML overlay when MODELS_FILE is set.
// Without one it returns nil and the catalog comes from the environment.
func ProvideOverlayWatcher(cfg *config.Config, logger *zap.Logger) (*config.OverlayWatcher, func(), error) {
	if cfg.ModelsFile == "" {
		return nil, func() {}, nil
	}
	watcher, err := config.NewOverlayWatcher(cfg.ModelsFile, logger)
	if err != nil {
		return nil, nil, err
	}
	return watcher, watcher.Stop, nil
}

// ProvideDomainConfig applies the overlay's limits to the environment's.
// Limits are read once at startup; only the catalog reloads.
func ProvideDomainConfig(cfg *config.Config, watcher *config.OverlayWatcher) (*domainconfig.DomainConfig, error) {
	domain := cfg.Domain
	if watcher != nil {
		domain = watcher.Current().ApplyLimits(domain)
	}
	if err := domain.Validate(); err != nil {
		return nil, fmt.Errorf("invalid limits: %w", err)
	}
	return domain, nil
}

// ProvideProjectOptions binds the domain limits to project aggregates.
func ProvideProjectOptions(domain *domainconfig.DomainConfig) ProjectOptions {
	return ProjectOptions{aggregates.WithLimits(domain)}
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideSupabaseClient connects to Supabase when it is configured.
func ProvideSupabaseClient(cfg *config.Config) (*supabase.Client, error) {
	if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
		return nil, nil
	}
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return client, nil
}

// ProvideProjectRepository selects the persistence backend.
func ProvideProjectRepository(
	ctx context.Context,
	cfg *config.Config,
	ddb *awsdynamodb.Client,
	opts ProjectOptions,
	logger *zap.Logger,
) (ports.ProjectRepository, func(), error) {
	switch cfg.DatabaseDriver {
	case "postgres", "sqlite":
		store, err := sqlstore.Open(cfg.DatabaseDriver, cfg.DatabaseURL, logger, opts...)
		if err != nil {
			return nil, nil, err
		}
		if _, err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("failed to migrate: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	case "dynamodb":
		return dynamodb.NewProjectRepository(ddb, cfg.DynamoDBTable, cfg.ProjectIndexName, logger, opts...), func() {}, nil
	default:
		logger.Warn("Using in-memory project repository; projects are lost on restart")
		return memory.NewProjectRepository(opts...), func() {}, nil
	}
}

// ProvideObjectStorage selects where generated media is uploaded.
func ProvideObjectStorage(ctx context.Context, cfg *config.Config, sb *supabase.Client, logger *zap.Logger) (ports.ObjectStorage, func(), error) {
	switch cfg.StorageBackend {
	case "gcs":
		gcs, err := storage.NewGCS(ctx, cfg.StorageBucket, cfg.GCSCredentialsFile, cfg.GCSPublicBaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		return gcs, func() { _ = gcs.Close() }, nil
	case "supabase":
		if sb != nil {
			return storage.NewSupabase(sb.Storage, cfg.StorageBucket, logger), func() {}, nil
		}
		if cfg.IsProduction() {
			return nil, nil, fmt.Errorf("STORAGE_BACKEND=supabase requires SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY")
		}
		logger.Warn("Supabase is not configured; generated media is returned inline")
	}
	return storage.Inline{}, func() {}, nil
}

// ProvideEventPublisher logs every event and forwards it to EventBridge
// when a bus is configured.
func ProvideEventPublisher(cfg *config.Config, client *awseventbridge.Client, logger *zap.Logger) ports.EventPublisher {
	logPublisher := messaging.NewLogPublisher(logger)
	if cfg.EventBusName == "" {
		return logPublisher
	}
	return messaging.FanOut{
		eventbridge.NewPublisher(client, cfg.EventBusName, cfg.EventSource, logger),
		logPublisher,
	}
}

// ProvideEntitlements answers subscription checks.
func ProvideEntitlements(cfg *config.Config, sb *supabase.Client, logger *zap.Logger) (ports.Entitlements, error) {
	if cfg.EntitlementsBackend == "static" {
		return infraauth.StaticEntitlements(cfg.StaticSubscribed), nil
	}
	if sb == nil {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("ENTITLEMENTS_BACKEND=supabase requires SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY")
		}
		logger.Warn("Supabase is not configured; every user is treated as subscribed")
		return infraauth.StaticEntitlements(true), nil
	}
	return infraauth.NewSupabaseEntitlements(sb, cfg.ProfileTable, time.Minute, logger), nil
}

// ProvideRateLimiter bounds generations per user.
func ProvideRateLimiter(cfg *config.Config) ports.RateLimiter {
	return ratelimit.New(cfg.GenerationRate, cfg.GenerationBurst)
}

// ProvideTokenVerifier checks bearer tokens locally with the JWT secret and
// falls back to asking Supabase Auth.
func ProvideTokenVerifier(cfg *config.Config, sb *supabase.Client) (pkgauth.TokenVerifier, error) {
	var chain pkgauth.Chain
	if cfg.SupabaseJWTSecret != "" {
		v, err := pkgauth.NewJWTValidator(pkgauth.JWTConfig{
			SigningMethod: "HS256",
			SecretKey:     cfg.SupabaseJWTSecret,
			Issuer:        cfg.JWTIssuer,
		})
		if err != nil {
			return nil, err
		}
		chain = append(chain, v)
	}
	if sb != nil {
		chain = append(chain, infraauth.NewSupabaseTokenVerifier(sb.Auth))
	}
	return chain, nil
}

// ProvideMetrics creates the Prometheus collectors.
func ProvideMetrics() *observability.Metrics {
	return observability.NewMetrics()
}

// ProvideTracerProvider installs the OpenTelemetry tracer provider.
func ProvideTracerProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (trace.TracerProvider, func(), error) {
	tp, shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:        cfg.EnableTracing,
		ServiceName:    "canvas-api",
		ServiceVersion: ServiceVersion,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Insecure:       !cfg.IsProduction(),
	})
	if err != nil {
		return nil, nil, err
	}
	return tp, func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			logger.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}, nil
}

// ProvideCatalogBuilder creates the model catalog builder.
func ProvideCatalogBuilder(cfg *config.Config, logger *zap.Logger) *providers.Builder {
	return providers.NewBuilder(cfg, logger)
}

// ModelSpecs returns the catalog declared by the overlay, or the one
// implied by the configured API keys.
func ModelSpecs(cfg *config.Config, overlay *config.Overlay) []config.ModelSpec {
	if overlay != nil && len(overlay.Models) > 0 {
		return overlay.Models
	}
	return providers.DefaultModels(cfg)
}

// ProvideDispatcher builds the generation dispatcher and keeps its catalog
// in sync with the overlay file.
func ProvideDispatcher(
	cfg *config.Config,
	domain *domainconfig.DomainConfig,
	builder *providers.Builder,
	watcher *config.OverlayWatcher,
	objects ports.ObjectStorage,
	metrics *observability.Metrics,
	tp trace.TracerProvider,
	logger *zap.Logger,
) (*generation.Dispatcher, error) {
	var overlay *config.Overlay
	if watcher != nil {
		overlay = watcher.Current()
	}
	catalog, err := builder.Build(ModelSpecs(cfg, overlay))
	if err != nil {
		return nil, fmt.Errorf("failed to build model catalog: %w", err)
	}

	dispatcher := generation.NewDispatcher(catalog, objects, logger,
		generation.WithRecorder(metrics),
		generation.WithTracer(tp.Tracer("canvas/generation")),
		generation.WithTimeout(domain.GenerationTimeout),
		generation.WithConcurrency(domain.GenerationConcurrency),
	)

	if watcher != nil {
		watcher.OnChange(func(o *config.Overlay) {
			next, err := builder.Build(ModelSpecs(cfg, o))
			if err != nil {
				logger.Error("Rejected model catalog update", zap.Error(err))
				return
			}
			dispatcher.SetCatalog(next)
		})
		watcher.Start()
	}
	return dispatcher, nil
}

// ProvideCommandBus registers every command handler.
func ProvideCommandBus(
	repo ports.ProjectRepository,
	publisher ports.EventPublisher,
	dispatcher *generation.Dispatcher,
	entitlements ports.Entitlements,
	limiter ports.RateLimiter,
	domain *domainconfig.DomainConfig,
	opts ProjectOptions,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(
		bus.LoggingMiddleware(logger),
		bus.MetricsMiddleware(metrics),
	)
	locks := commandhandlers.NewLocks()
	retries := domain.WriteBackRetries

	registrars := []interface {
		Register(*bus.CommandBus) error
	}{
		commandhandlers.NewProjectHandler(repo, publisher, locks, retries, logger, opts...),
		commandhandlers.NewCanvasHandler(repo, publisher, locks, retries, logger),
		commandhandlers.NewGenerationHandler(repo, publisher, dispatcher, entitlements, limiter, locks, retries, domain.MaxBatchGenerations, logger),
	}
	for _, r := range registrars {
		if err := r.Register(commandBus); err != nil {
			return nil, err
		}
	}
	return commandBus, nil
}

// slowQuery is the latency above which a query is logged at warn level.
const slowQuery = 500 * time.Millisecond

// ProvideQueryBus registers every query handler.
func ProvideQueryBus(
	repo ports.ProjectRepository,
	dispatcher *generation.Dispatcher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus(
		querybus.LoggingMiddleware(logger, slowQuery),
		querybus.MetricsMiddleware(metrics),
	)
	if err := queryhandlers.NewProjectQueryHandler(repo).Register(queryBus); err != nil {
		return nil, err
	}
	if err := queryhandlers.NewModelQueryHandler(dispatcher).Register(queryBus); err != nil {
		return nil, err
	}
	return queryBus, nil
}

// ProvideErrorHandler creates the HTTP error writer.
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())
}
