// Package langchain serves text and vision generation through langchaingo
// models (Anthropic, Ollama).
package langchain

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"

	"github.com/haydenbleasel/tersa-sub001/application/generation"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/providers/mediafetch"
)

const defaultMaxTokens = 4096

// Provider adapts one langchaingo model to generation.Invoker.
type Provider struct {
	llm       llms.Model
	fetcher   *mediafetch.Fetcher
	maxTokens int
	logger    *zap.Logger
}

// New wraps an existing model.
func New(llm llms.Model, fetcher *mediafetch.Fetcher, logger *zap.Logger) *Provider {
	if fetcher == nil {
		fetcher = mediafetch.New(nil)
	}
	return &Provider{llm: llm, fetcher: fetcher, maxTokens: defaultMaxTokens, logger: logger}
}

// NewAnthropic creates a provider for one Anthropic model.
func NewAnthropic(apiKey, model, baseURL string, logger *zap.Logger) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	opts := []anthropic.Option{anthropic.WithToken(apiKey), anthropic.WithModel(model)}
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	llm, err := anthropic.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create anthropic model %s: %w", model, err)
	}
	return New(llm, nil, logger), nil
}

// NewOllama creates a provider for one model on an Ollama server.
func NewOllama(serverURL, model string, logger *zap.Logger) (*Provider, error) {
	opts := []ollama.Option{ollama.WithModel(model)}
	if serverURL != "" {
		opts = append(opts, ollama.WithServerURL(serverURL))
	}
	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create ollama model %s: %w", model, err)
	}
	return New(llm, nil, logger), nil
}

// Invoke implements generation.Invoker
func (p *Provider) Invoke(ctx context.Context, req generation.Request) (generation.Output, error) {
	if req.Capability != generation.CapabilityText && req.Capability != generation.CapabilityVision {
		return generation.Output{}, fmt.Errorf("langchain models do not serve %s", req.Capability)
	}

	var messages []llms.MessageContent
	if req.System != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, req.System))
	}

	human := llms.MessageContent{Role: llms.ChatMessageTypeHuman}
	if strings.TrimSpace(req.Prompt) != "" {
		human.Parts = append(human.Parts, llms.TextPart(req.Prompt))
	}
	for _, img := range req.Images {
		data, err := p.fetcher.Fetch(ctx, img)
		if err != nil {
			return generation.Output{}, err
		}
		human.Parts = append(human.Parts, llms.BinaryPart(img.MediaType, data))
	}
	messages = append(messages, human)

	resp, err := p.llm.GenerateContent(ctx, messages, llms.WithMaxTokens(p.maxTokens))
	if err != nil {
		return generation.Output{}, fmt.Errorf("langchain generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return generation.Output{}, fmt.Errorf("model returned no choices")
	}

	p.logger.Debug("LangChain completion",
		zap.String("model", req.Model),
		zap.String("stop_reason", resp.Choices[0].StopReason),
	)
	return generation.Output{Text: resp.Choices[0].Content}, nil
}
