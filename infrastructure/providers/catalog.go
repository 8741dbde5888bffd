// Package providers turns declared model specs into a generation catalog.
package providers

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/haydenbleasel/tersa-sub001/application/generation"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/config"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/providers/httpmodel"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/providers/langchain"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/providers/openai"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/providers/resilience"
)

// Provider names accepted in model specs.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderHTTP      = "http"
	ProviderEcho      = "echo"
)

// Builder creates catalogs from model specs, sharing provider clients
// between specs that use the same endpoint.
type Builder struct {
	cfg     *config.Config
	breaker resilience.BreakerConfig
	logger  *zap.Logger

	mu     sync.Mutex
	openai map[string]*openai.Provider
}

// NewBuilder creates a catalog builder.
func NewBuilder(cfg *config.Config, logger *zap.Logger) *Builder {
	return &Builder{
		cfg:     cfg,
		breaker: resilience.DefaultBreakerConfig(),
		logger:  logger,
		openai:  make(map[string]*openai.Provider),
	}
}

// Build validates specs and returns a new immutable catalog.
func (b *Builder) Build(specs []config.ModelSpec) (*generation.Catalog, error) {
	descriptors := make([]generation.ModelDescriptor, 0, len(specs))
	for _, spec := range specs {
		capability, err := generation.ParseCapability(spec.Capability)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", spec.ID, err)
		}
		inv, err := b.invoker(spec)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", spec.ID, err)
		}
		if spec.Provider != ProviderEcho {
			inv = resilience.Guard(spec.Provider+"/"+spec.ID, inv, b.breaker, b.logger)
		}
		descriptors = append(descriptors, generation.ModelDescriptor{
			ID:         spec.ID,
			Label:      spec.Label,
			Provider:   spec.Provider,
			Capability: capability,
			Default:    spec.Default,
			Invoker:    inv,
		})
	}

	catalog, err := generation.NewCatalog(descriptors...)
	if err != nil {
		return nil, err
	}
	b.logger.Info("Model catalog built", zap.Int("models", catalog.Len()))
	return catalog, nil
}

func (b *Builder) invoker(spec config.ModelSpec) (generation.Invoker, error) {
	upstream := spec.Upstream
	if upstream == "" {
		upstream = spec.ID
	}

	switch spec.Provider {
	case ProviderEcho:
		return Echo, nil

	case ProviderOpenAI:
		p, err := b.openaiProvider(firstNonEmpty(spec.BaseURL, b.cfg.OpenAIBaseURL), b.apiKey(spec, b.cfg.OpenAIAPIKey))
		if err != nil {
			return nil, err
		}
		return p.Model(upstream), nil

	case ProviderAnthropic:
		p, err := langchain.NewAnthropic(b.apiKey(spec, b.cfg.AnthropicAPIKey), upstream, spec.BaseURL, b.logger)
		if err != nil {
			return nil, err
		}
		return p, nil

	case ProviderOllama:
		p, err := langchain.NewOllama(firstNonEmpty(spec.BaseURL, b.cfg.OllamaURL), upstream, b.logger)
		if err != nil {
			return nil, err
		}
		return p, nil

	case ProviderHTTP:
		if spec.BaseURL == "" {
			return nil, fmt.Errorf("http provider requires baseUrl")
		}
		p := httpmodel.New(spec.BaseURL, b.apiKey(spec, ""), b.timeout())
		return generation.InvokerFunc(func(ctx context.Context, req generation.Request) (generation.Output, error) {
			req.Model = upstream
			return p.Invoke(ctx, req)
		}), nil
	}
	return nil, fmt.Errorf("unknown provider %q", spec.Provider)
}

func (b *Builder) openaiProvider(baseURL, apiKey string) (*openai.Provider, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := baseURL + "|" + apiKey
	if p, ok := b.openai[key]; ok {
		return p, nil
	}
	p, err := openai.New(openai.Config{APIKey: apiKey, BaseURL: baseURL, Timeout: b.timeout()}, b.logger)
	if err != nil {
		return nil, err
	}
	b.openai[key] = p
	return p, nil
}

func (b *Builder) apiKey(spec config.ModelSpec, fallback string) string {
	if spec.APIKeyEnv != "" {
		if v := os.Getenv(spec.APIKeyEnv); v != "" {
			return v
		}
	}
	return fallback
}

func (b *Builder) timeout() time.Duration {
	if b.cfg.Domain != nil && b.cfg.Domain.GenerationTimeout > 0 {
		return b.cfg.Domain.GenerationTimeout
	}
	return 5 * time.Minute
}

// DefaultModels declares the catalog used when no overlay file is
// configured: OpenAI and Anthropic models for the keys present, or the
// echo model when there are none.
func DefaultModels(cfg *config.Config) []config.ModelSpec {
	var specs []config.ModelSpec
	if cfg.OpenAIAPIKey != "" {
		specs = append(specs,
			config.ModelSpec{ID: "gpt-4o-mini", Label: "GPT-4o mini", Provider: ProviderOpenAI, Capability: "text", Default: true},
			config.ModelSpec{ID: "gpt-4o", Label: "GPT-4o", Provider: ProviderOpenAI, Capability: "text"},
			config.ModelSpec{ID: "gpt-4o", Label: "GPT-4o", Provider: ProviderOpenAI, Capability: "vision", Default: true},
			config.ModelSpec{ID: "gpt-image-1", Label: "GPT Image 1", Provider: ProviderOpenAI, Capability: "image", Default: true},
			config.ModelSpec{ID: "tts-1", Label: "TTS 1", Provider: ProviderOpenAI, Capability: "speech", Default: true},
			config.ModelSpec{ID: "whisper-1", Label: "Whisper", Provider: ProviderOpenAI, Capability: "transcription", Default: true},
		)
	}
	if cfg.AnthropicAPIKey != "" {
		specs = append(specs,
			config.ModelSpec{ID: "claude-3-5-sonnet", Label: "Claude 3.5 Sonnet", Provider: ProviderAnthropic, Capability: "text", Upstream: "claude-3-5-sonnet-latest", Default: cfg.OpenAIAPIKey == ""},
			config.ModelSpec{ID: "claude-3-5-sonnet", Label: "Claude 3.5 Sonnet", Provider: ProviderAnthropic, Capability: "vision", Upstream: "claude-3-5-sonnet-latest", Default: cfg.OpenAIAPIKey == ""},
		)
	}
	if cfg.OllamaURL != "" {
		specs = append(specs, config.ModelSpec{ID: "llama3", Label: "Llama 3", Provider: ProviderOllama, Capability: "text", Default: len(specs) == 0})
	}
	if len(specs) == 0 {
		specs = append(specs, config.ModelSpec{ID: "echo", Label: "Echo", Provider: ProviderEcho, Capability: "text", Default: true})
	}
	return specs
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
