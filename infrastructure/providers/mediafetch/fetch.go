// Package mediafetch loads the bytes behind a stored media reference.
package mediafetch

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
)

// MaxBytes bounds a single download.
const MaxBytes = 100 << 20

// Fetcher downloads media over HTTP and decodes data URLs in place.
type Fetcher struct {
	client *http.Client
}

// New creates a fetcher; a nil client uses http.DefaultClient.
func New(client *http.Client) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client}
}

// Fetch returns the media's bytes.
func (f *Fetcher) Fetch(ctx context.Context, m valueobjects.Media) ([]byte, error) {
	u, err := url.Parse(m.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid media url: %w", err)
	}
	if u.Scheme == "data" {
		return decodeDataURL(m.URL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", m.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", m.URL, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", m.URL, err)
	}
	if len(data) > MaxBytes {
		return nil, fmt.Errorf("media at %s exceeds %d bytes", m.URL, MaxBytes)
	}
	return data, nil
}

func decodeDataURL(raw string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data url")
	}
	if strings.HasSuffix(header, ";base64") {
		return base64.StdEncoding.DecodeString(payload)
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// FileName returns a name with an extension the media's type implies.
func FileName(m valueobjects.Media, base string) string {
	_, sub, _ := strings.Cut(m.MediaType, "/")
	sub, _, _ = strings.Cut(sub, ";")
	switch sub {
	case "mpeg":
		sub = "mp3"
	case "x-wav", "wave":
		sub = "wav"
	case "":
		sub = "bin"
	}
	return base + "." + sub
}
