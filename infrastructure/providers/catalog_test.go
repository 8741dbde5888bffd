package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haydenbleasel/tersa-sub001/application/generation"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/config"
	domainconfig "github.com/haydenbleasel/tersa-sub001/domain/config"
)

func testConfig() *config.Config {
	return &config.Config{Domain: domainconfig.DefaultDomainConfig()}
}

func TestDefaultModels(t *testing.T) {
	tests := []struct {
		name        string
		cfg         func(*config.Config)
		wantText    string
		wantVision  string
		wantModels  int
	}{
		{name: "no keys", cfg: func(*config.Config) {}, wantText: "echo", wantModels: 1},
		{name: "openai", cfg: func(c *config.Config) { c.OpenAIAPIKey = "sk" }, wantText: "gpt-4o-mini", wantVision: "gpt-4o", wantModels: 6},
		{name: "anthropic only", cfg: func(c *config.Config) { c.AnthropicAPIKey = "ak" }, wantText: "claude-3-5-sonnet", wantVision: "claude-3-5-sonnet", wantModels: 2},
		{name: "both", cfg: func(c *config.Config) { c.OpenAIAPIKey = "sk"; c.AnthropicAPIKey = "ak" }, wantText: "gpt-4o-mini", wantVision: "gpt-4o", wantModels: 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.cfg(cfg)

			catalog, err := NewBuilder(cfg, zap.NewNop()).Build(DefaultModels(cfg))
			require.NoError(t, err)
			assert.Equal(t, tt.wantModels, catalog.Len())

			text, ok := catalog.Default(generation.CapabilityText)
			require.True(t, ok)
			assert.Equal(t, tt.wantText, text.ID)

			vision, ok := catalog.Default(generation.CapabilityVision)
			if tt.wantVision == "" {
				assert.False(t, ok)
			} else {
				assert.Equal(t, tt.wantVision, vision.ID)
			}
		})
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name  string
		specs []config.ModelSpec
	}{
		{name: "unknown provider", specs: []config.ModelSpec{{ID: "x", Provider: "acme", Capability: "text"}}},
		{name: "unknown capability", specs: []config.ModelSpec{{ID: "x", Provider: "echo", Capability: "smell"}}},
		{name: "openai without key", specs: []config.ModelSpec{{ID: "gpt-4o", Provider: "openai", Capability: "text"}}},
		{name: "http without url", specs: []config.ModelSpec{{ID: "veo", Provider: "http", Capability: "video"}}},
		{name: "two defaults", specs: []config.ModelSpec{
			{ID: "a", Provider: "echo", Capability: "text", Default: true},
			{ID: "b", Provider: "echo", Capability: "text", Default: true},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuilder(testConfig(), zap.NewNop()).Build(tt.specs)
			assert.Error(t, err)
		})
	}
}

func TestBuild_APIKeyFromEnv(t *testing.T) {
	t.Setenv("VIDEO_KEY", "secret")
	cfg := testConfig()
	catalog, err := NewBuilder(cfg, zap.NewNop()).Build([]config.ModelSpec{
		{ID: "gpt-4o", Provider: "openai", Capability: "text", APIKeyEnv: "OPENAI_TEAM_KEY"},
	})
	assert.Error(t, err, "unset key env falls back to the empty global key")
	assert.Nil(t, catalog)

	t.Setenv("OPENAI_TEAM_KEY", "sk-team")
	catalog, err = NewBuilder(cfg, zap.NewNop()).Build([]config.ModelSpec{
		{ID: "gpt-4o", Provider: "openai", Capability: "text", APIKeyEnv: "OPENAI_TEAM_KEY"},
		{ID: "veo", Provider: "http", Capability: "video", BaseURL: "http://localhost:9000/generate", APIKeyEnv: "VIDEO_KEY"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.Len())
}

func TestEcho(t *testing.T) {
	out, err := Echo.Invoke(context.Background(), generation.Request{Capability: generation.CapabilityText, Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", out.Text)

	_, err = Echo.Invoke(context.Background(), generation.Request{Capability: generation.CapabilityImage})
	assert.Error(t, err)
}
