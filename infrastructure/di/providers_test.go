package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haydenbleasel/tersa-sub001/application/commands"
	"github.com/haydenbleasel/tersa-sub001/application/queries"
	domainconfig "github.com/haydenbleasel/tersa-sub001/domain/config"
	infraauth "github.com/haydenbleasel/tersa-sub001/infrastructure/auth"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/config"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/messaging"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/storage"
	pkgauth "github.com/haydenbleasel/tersa-sub001/pkg/auth"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment:         "test",
		LogLevel:            "error",
		DatabaseDriver:      "memory",
		StorageBackend:      "inline",
		EntitlementsBackend: "static",
		StaticSubscribed:    true,
		GenerationRate:      10,
		GenerationBurst:     10,
		AWSRegion:           "us-east-1",
		Domain:              domainconfig.DefaultDomainConfig(),
	}
}

func TestInitializeContainer_Memory(t *testing.T) {
	ctx := context.Background()
	c, cleanup, err := InitializeContainer(ctx, testConfig())
	require.NoError(t, err)
	t.Cleanup(cleanup)

	projectID := uuid.NewString()
	require.NoError(t, c.CommandBus.Send(ctx, &commands.CreateProjectCommand{
		ProjectID: projectID, UserID: "alice", Name: "Wired",
	}))

	view, err := c.QueryBus.Ask(ctx, queries.GetProjectQuery{UserID: "alice", ProjectID: projectID})
	require.NoError(t, err)
	assert.Equal(t, "Wired", view.(queries.ProjectView).Name)

	models, err := c.QueryBus.Ask(ctx, queries.ListModelsQuery{})
	require.NoError(t, err)
	require.NotEmpty(t, models)
	assert.Equal(t, "echo", models.([]queries.ModelView)[0].Provider)
}

func TestProvideDomainConfig_AppliesOverlayLimits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
models:
  - id: echo
    provider: echo
    capability: text
limits:
  maxBatchGenerations: 2
`), 0o600))

	cfg := testConfig()
	cfg.ModelsFile = path
	watcher, cleanup, err := ProvideOverlayWatcher(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(cleanup)

	domain, err := ProvideDomainConfig(cfg, watcher)
	require.NoError(t, err)
	assert.Equal(t, 2, domain.MaxBatchGenerations)
	assert.Equal(t, domainconfig.DefaultDomainConfig().MaxBatchGenerations, cfg.Domain.MaxBatchGenerations)
	assert.Len(t, ModelSpecs(cfg, watcher.Current()), 1)
}

func TestProvideObjectStorage_FallsBackToInline(t *testing.T) {
	cfg := testConfig()
	cfg.StorageBackend = "supabase"

	objects, cleanup, err := ProvideObjectStorage(context.Background(), cfg, nil, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()
	assert.IsType(t, storage.Inline{}, objects)

	cfg.Environment = "production"
	_, _, err = ProvideObjectStorage(context.Background(), cfg, nil, zap.NewNop())
	assert.Error(t, err)
}

func TestProvideEventPublisher(t *testing.T) {
	cfg := testConfig()
	assert.IsType(t, &messaging.LogPublisher{}, ProvideEventPublisher(cfg, nil, zap.NewNop()))

	cfg.EventBusName = "canvas"
	fan, ok := ProvideEventPublisher(cfg, nil, zap.NewNop()).(messaging.FanOut)
	require.True(t, ok)
	assert.Len(t, fan, 2)
}

func TestProvideEntitlements(t *testing.T) {
	cfg := testConfig()
	cfg.StaticSubscribed = false
	ent, err := ProvideEntitlements(cfg, nil, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, infraauth.StaticEntitlements(false), ent)

	cfg.EntitlementsBackend = "supabase"
	ent, err = ProvideEntitlements(cfg, nil, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, infraauth.StaticEntitlements(true), ent)
}

func TestProvideTokenVerifier_UsesJWTSecret(t *testing.T) {
	cfg := testConfig()
	cfg.SupabaseJWTSecret = "super-secret-signing-key-for-tests"

	verifier, err := ProvideTokenVerifier(cfg, nil)
	require.NoError(t, err)

	gen, err := pkgauth.NewJWTGenerator(cfg.SupabaseJWTSecret, "", nil, time.Hour)
	require.NoError(t, err)
	token, err := gen.GenerateToken("alice", "alice@example.com")
	require.NoError(t, err)

	user, err := verifier.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.UserID)

	_, err = verifier.Verify(context.Background(), "not-a-token")
	assert.Error(t, err)
}
