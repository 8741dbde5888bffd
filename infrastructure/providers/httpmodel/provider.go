// Package httpmodel calls a model exposed behind a plain HTTP endpoint.
// It is the adapter for capabilities no SDK covers, video in particular.
//
// The endpoint receives the request as JSON. Textual capabilities answer
// with {"text": "..."}; binary capabilities answer with the raw bytes and
// their Content-Type.
package httpmodel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/haydenbleasel/tersa-sub001/application/generation"
	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/providers/mediafetch"
)

type requestBody struct {
	Capability string               `json:"capability"`
	Model      string               `json:"model"`
	System     string               `json:"system,omitempty"`
	Prompt     string               `json:"prompt"`
	Images     []valueobjects.Media `json:"images,omitempty"`
	Audio      *valueobjects.Media  `json:"audio,omitempty"`
	Voice      string               `json:"voice,omitempty"`
	Size       string               `json:"size,omitempty"`
	Language   string               `json:"language,omitempty"`
}

type textResponse struct {
	Text string `json:"text"`
}

// Provider posts requests to one endpoint.
type Provider struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// New creates a provider for endpoint. apiKey, when set, is sent as a
// bearer token.
func New(endpoint, apiKey string, timeout time.Duration) *Provider {
	return &Provider{endpoint: endpoint, apiKey: apiKey, client: &http.Client{Timeout: timeout}}
}

// Invoke implements generation.Invoker
func (p *Provider) Invoke(ctx context.Context, req generation.Request) (generation.Output, error) {
	payload, err := json.Marshal(requestBody{
		Capability: string(req.Capability),
		Model:      req.Model,
		System:     req.System,
		Prompt:     req.Prompt,
		Images:     req.Images,
		Audio:      req.Audio,
		Voice:      req.Voice,
		Size:       req.Size,
		Language:   req.Language,
	})
	if err != nil {
		return generation.Output{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return generation.Output{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return generation.Output{}, fmt.Errorf("call %s: %w", p.endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, mediafetch.MaxBytes+1))
	if err != nil {
		return generation.Output{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return generation.Output{}, fmt.Errorf("model endpoint returned %d: %s", resp.StatusCode, truncate(body, 200))
	}
	if len(body) > mediafetch.MaxBytes {
		return generation.Output{}, fmt.Errorf("model output exceeds %d bytes", mediafetch.MaxBytes)
	}

	if !req.Capability.Binary() {
		var tr textResponse
		if err := json.Unmarshal(body, &tr); err != nil {
			return generation.Output{}, fmt.Errorf("decode model response: %w", err)
		}
		return generation.Output{Text: tr.Text}, nil
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = http.DetectContentType(body)
	}
	return generation.Output{Data: body, MediaType: mediaType}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
