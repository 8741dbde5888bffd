// Package openai serves every generation capability except video through
// the OpenAI API.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/haydenbleasel/tersa-sub001/application/generation"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/providers/mediafetch"
)

const defaultVoice = openai.VoiceAlloy

// Provider calls OpenAI models.
type Provider struct {
	client  *openai.Client
	fetcher *mediafetch.Fetcher
	logger  *zap.Logger
}

// Config configures the client. An empty BaseURL targets api.openai.com.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// New creates a provider.
func New(cfg Config, logger *zap.Logger) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}
	clientCfg.HTTPClient = httpClient

	return &Provider{
		client:  openai.NewClientWithConfig(clientCfg),
		fetcher: mediafetch.New(httpClient),
		logger:  logger,
	}, nil
}

// Model binds the provider to one upstream model name.
func (p *Provider) Model(upstream string) generation.Invoker {
	return generation.InvokerFunc(func(ctx context.Context, req generation.Request) (generation.Output, error) {
		if upstream != "" {
			req.Model = upstream
		}
		return p.Invoke(ctx, req)
	})
}

// Invoke runs one request against the capability's endpoint.
func (p *Provider) Invoke(ctx context.Context, req generation.Request) (generation.Output, error) {
	switch req.Capability {
	case generation.CapabilityText, generation.CapabilityVision:
		return p.chat(ctx, req)
	case generation.CapabilityImage:
		return p.image(ctx, req)
	case generation.CapabilitySpeech:
		return p.speech(ctx, req)
	case generation.CapabilityTranscription:
		return p.transcribe(ctx, req)
	}
	return generation.Output{}, fmt.Errorf("openai does not serve %s", req.Capability)
}

func (p *Provider) chat(ctx context.Context, req generation.Request) (generation.Output, error) {
	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}

	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(req.Images) == 0 {
		user.Content = req.Prompt
	} else {
		user.MultiContent = append(user.MultiContent, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: req.Prompt,
		})
		for _, img := range req.Images {
			user.MultiContent = append(user.MultiContent, openai.ChatMessagePart{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: img.URL, Detail: openai.ImageURLDetailAuto},
			})
		}
	}
	messages = append(messages, user)

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: messages,
	})
	if err != nil {
		return generation.Output{}, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return generation.Output{}, fmt.Errorf("openai returned no choices")
	}

	p.logger.Debug("OpenAI chat completion",
		zap.String("model", req.Model),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return generation.Output{Text: resp.Choices[0].Message.Content}, nil
}

func (p *Provider) image(ctx context.Context, req generation.Request) (generation.Output, error) {
	imgReq := openai.ImageRequest{
		Prompt: req.Prompt,
		Model:  req.Model,
		N:      1,
		Size:   req.Size,
	}
	// gpt-image models always answer in base64 and reject response_format
	if strings.HasPrefix(req.Model, "dall-e") {
		imgReq.ResponseFormat = openai.CreateImageResponseFormatB64JSON
	}

	resp, err := p.client.CreateImage(ctx, imgReq)
	if err != nil {
		return generation.Output{}, fmt.Errorf("openai image generation: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return generation.Output{}, fmt.Errorf("openai returned no image data")
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return generation.Output{}, fmt.Errorf("decode image: %w", err)
	}
	return generation.Output{Data: data, MediaType: http.DetectContentType(data)}, nil
}

func (p *Provider) speech(ctx context.Context, req generation.Request) (generation.Output, error) {
	voice := openai.SpeechVoice(req.Voice)
	if voice == "" {
		voice = defaultVoice
	}
	resp, err := p.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(req.Model),
		Input:          req.Prompt,
		Voice:          voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return generation.Output{}, fmt.Errorf("openai speech: %w", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return generation.Output{}, fmt.Errorf("read speech: %w", err)
	}
	return generation.Output{Data: data, MediaType: "audio/mpeg"}, nil
}

func (p *Provider) transcribe(ctx context.Context, req generation.Request) (generation.Output, error) {
	if req.Audio == nil {
		return generation.Output{}, fmt.Errorf("transcription requires audio")
	}
	audio, err := p.fetcher.Fetch(ctx, *req.Audio)
	if err != nil {
		return generation.Output{}, err
	}

	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    req.Model,
		FilePath: mediafetch.FileName(*req.Audio, "audio"),
		Reader:   bytes.NewReader(audio),
		Prompt:   req.Prompt,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return generation.Output{}, fmt.Errorf("openai transcription: %w", err)
	}
	return generation.Output{Text: resp.Text}, nil
}
