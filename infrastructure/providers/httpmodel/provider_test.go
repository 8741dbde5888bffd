package httpmodel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haydenbleasel/tersa-sub001/application/generation"
	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
)

func TestInvoke_Video(t *testing.T) {
	var got requestBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte("....ftypmp42"))
	}))
	defer srv.Close()

	p := New(srv.URL, "key", time.Minute)
	out, err := p.Invoke(context.Background(), generation.Request{
		Capability: generation.CapabilityVideo,
		Model:      "veo-3",
		Prompt:     "waves at dusk",
		Images:     []valueobjects.Media{{URL: "https://cdn.example.com/a.png", MediaType: "image/png"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "video/mp4", out.MediaType)
	assert.Equal(t, []byte("....ftypmp42"), out.Data)
	assert.Equal(t, "video", got.Capability)
	assert.Equal(t, "waves at dusk", got.Prompt)
	require.Len(t, got.Images, 1)
}

func TestInvoke_Text(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text":"hello"}`))
	}))
	defer srv.Close()

	out, err := New(srv.URL, "", time.Minute).Invoke(context.Background(), generation.Request{Capability: generation.CapabilityText, Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "hello", out.Text)
}

func TestInvoke_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "queue full", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "", time.Minute).Invoke(context.Background(), generation.Request{Capability: generation.CapabilityVideo})
	assert.ErrorContains(t, err, "returned 503")
}
