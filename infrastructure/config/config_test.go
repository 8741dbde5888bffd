package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainconfig "github.com/haydenbleasel/tersa-sub001/domain/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("DATABASE_DRIVER", "")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.DatabaseDriver)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, domainconfig.DefaultDomainConfig().MaxNodesPerProject, cfg.Domain.MaxNodesPerProject)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown driver", env: map[string]string{"DATABASE_DRIVER": "oracle"}},
		{name: "postgres without url", env: map[string]string{"DATABASE_DRIVER": "postgres", "DATABASE_URL": ""}},
		{name: "memory in production", env: map[string]string{"ENVIRONMENT": "production", "SUPABASE_JWT_SECRET": "s", "DATABASE_DRIVER": "memory"}},
		{name: "unknown storage", env: map[string]string{"STORAGE_BACKEND": "ftp"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

const overlayYAML = `
models:
  - id: gpt-4o-mini
    provider: openai
    capability: text
    default: true
  - id: claude-3-5-sonnet
    label: Claude 3.5 Sonnet
    provider: anthropic
    capability: text
limits:
  maxBatchGenerations: 4
  generationTimeout: 90s
metadata:
  version: "7"
`

func TestParseOverlay(t *testing.T) {
	o, err := ParseOverlay([]byte(overlayYAML))
	require.NoError(t, err)
	require.Len(t, o.Models, 2)
	assert.Equal(t, "Claude 3.5 Sonnet", o.Models[1].Label)
	assert.Equal(t, "7", o.Meta.Version)

	base := domainconfig.DefaultDomainConfig()
	applied := o.ApplyLimits(base)
	assert.Equal(t, 4, applied.MaxBatchGenerations)
	assert.Equal(t, 90*time.Second, applied.GenerationTimeout)
	assert.Equal(t, base.MaxNodesPerProject, applied.MaxNodesPerProject)
	assert.Equal(t, 16, base.MaxBatchGenerations, "base must not change")

	_, err = ParseOverlay([]byte("models:\n  - provider: openai\n    capability: text\n"))
	assert.Error(t, err)
}

func TestOverlayWatcher_Reloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte(overlayYAML), 0o644))

	w, err := NewOverlayWatcher(path, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	changed := make(chan *Overlay, 4)
	w.OnChange(func(o *Overlay) { changed <- o })
	w.Start()

	next := "models:\n  - id: llama3\n    provider: ollama\n    capability: text\n"
	require.NoError(t, os.WriteFile(path, []byte(next), 0o644))

	select {
	case o := <-changed:
		require.Len(t, o.Models, 1)
		assert.Equal(t, "llama3", o.Models[0].ID)
		assert.Equal(t, "llama3", w.Current().Models[0].ID)
	case <-time.After(5 * time.Second):
		t.Fatal("overlay change not observed")
	}
}
