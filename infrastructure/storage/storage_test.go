package storage

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"

	storage_go "github.com/supabase-community/storage-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestObjectPath(t *testing.T) {
	tests := []struct {
		name      string
		namespace string
		mediaType string
		pattern   string
	}{
		{"png", "user-1", "image/png", `^user-1/[0-9a-f-]{36}\.png$`},
		{"mp3", "/user-1/", "audio/mpeg", `^user-1/[0-9a-f-]{36}\.mp3$`},
		{"empty namespace", "", "video/mp4", `^shared/[0-9a-f-]{36}\.mp4$`},
		{"unknown type", "u", "application/x-unknown-thing", `^u/[0-9a-f-]{36}$`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Regexp(t, regexp.MustCompile(tt.pattern), ObjectPath(tt.namespace, tt.mediaType))
		})
	}
}

func TestInline_Put(t *testing.T) {
	url, err := Inline{}.Put(context.Background(), "u", []byte("hi"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "data:text/plain;base64,aGk=", url)

	_, err = Inline{}.Put(context.Background(), "u", []byte("hi"), "")
	assert.Error(t, err)
}

type fakeBucket struct {
	uploaded    map[string][]byte
	contentType string
	err         error
}

func (f *fakeBucket) UploadFile(bucketID, relativePath string, data io.Reader, opts ...storage_go.FileOptions) (storage_go.FileUploadResponse, error) {
	if f.err != nil {
		return storage_go.FileUploadResponse{}, f.err
	}
	b, _ := io.ReadAll(data)
	if f.uploaded == nil {
		f.uploaded = map[string][]byte{}
	}
	f.uploaded[bucketID+"/"+relativePath] = b
	if len(opts) > 0 && opts[0].ContentType != nil {
		f.contentType = *opts[0].ContentType
	}
	return storage_go.FileUploadResponse{Key: relativePath}, nil
}

func (f *fakeBucket) GetPublicUrl(bucketID, filePath string, _ ...storage_go.UrlOptions) storage_go.SignedUrlResponse {
	return storage_go.SignedUrlResponse{SignedURL: "https://cdn.example.com/" + bucketID + "/" + filePath}
}

func TestSupabase_Put(t *testing.T) {
	bucket := &fakeBucket{}
	s := NewSupabase(bucket, "files", zap.NewNop())

	url, err := s.Put(context.Background(), "user-1", []byte{1, 2, 3}, "image/png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "https://cdn.example.com/files/user-1/"))
	assert.Equal(t, "image/png", bucket.contentType)
	require.Len(t, bucket.uploaded, 1)
	for _, data := range bucket.uploaded {
		assert.Equal(t, []byte{1, 2, 3}, data)
	}
}

func TestSupabase_PutFailure(t *testing.T) {
	s := NewSupabase(&fakeBucket{err: errors.New("quota exceeded")}, "files", zap.NewNop())
	_, err := s.Put(context.Background(), "user-1", []byte{1}, "image/png")
	assert.ErrorContains(t, err, "quota exceeded")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewSupabase(&fakeBucket{}, "files", zap.NewNop()).Put(ctx, "u", []byte{1}, "image/png")
	assert.ErrorIs(t, err, context.Canceled)
}
