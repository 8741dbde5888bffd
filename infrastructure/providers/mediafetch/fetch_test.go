package mediafetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("RIFF"))
	}))
	defer srv.Close()

	f := New(srv.Client())
	ctx := context.Background()

	data, err := f.Fetch(ctx, valueobjects.Media{URL: srv.URL + "/a.wav", MediaType: "audio/wav"})
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF"), data)

	_, err = f.Fetch(ctx, valueobjects.Media{URL: srv.URL + "/missing", MediaType: "audio/wav"})
	assert.ErrorContains(t, err, "status 404")

	data, err = f.Fetch(ctx, valueobjects.Media{URL: "data:text/plain;base64,aGk=", MediaType: "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), data)

	data, err = f.Fetch(ctx, valueobjects.Media{URL: "data:text/plain,hello%20there", MediaType: "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, "hello there", string(data))
}

func TestFileName(t *testing.T) {
	tests := map[string]string{
		"audio/mpeg":                "audio.mp3",
		"audio/webm":                "audio.webm",
		"audio/wav":                 "audio.wav",
		"audio/ogg; codecs=opus":    "audio.ogg",
		"":                          "audio.bin",
	}
	for mediaType, want := range tests {
		assert.Equal(t, want, FileName(valueobjects.Media{MediaType: mediaType}, "audio"), mediaType)
	}
}
