package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	storage_go "github.com/supabase-community/storage-go"
	"go.uber.org/zap"

	"github.com/haydenbleasel/tersa-sub001/application/ports"
)

// Bucket is the subset of the Supabase storage client used for uploads.
type Bucket interface {
	UploadFile(bucketID string, relativePath string, data io.Reader, fileOptions ...storage_go.FileOptions) (storage_go.FileUploadResponse, error)
	GetPublicUrl(bucketID string, filePath string, urlOptions ...storage_go.UrlOptions) storage_go.SignedUrlResponse
}

// Supabase uploads objects to a Supabase storage bucket.
type Supabase struct {
	client Bucket
	bucket string
	logger *zap.Logger
}

var _ ports.ObjectStorage = (*Supabase)(nil)

// NewSupabase creates a Supabase-backed object store.
func NewSupabase(client Bucket, bucket string, logger *zap.Logger) *Supabase {
	return &Supabase{client: client, bucket: bucket, logger: logger}
}

// Put uploads data under the owner's namespace and returns its public URL.
// The storage client has no context support; a cancelled context is
// checked before the upload starts.
func (s *Supabase) Put(ctx context.Context, ownerNamespace string, data []byte, mediaType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	objectPath := ObjectPath(ownerNamespace, mediaType)
	upsert := false
	if _, err := s.client.UploadFile(s.bucket, objectPath, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &mediaType,
		Upsert:      &upsert,
	}); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectPath, err)
	}

	url := s.client.GetPublicUrl(s.bucket, objectPath).SignedURL
	if url == "" {
		return "", fmt.Errorf("no public url for %s", objectPath)
	}

	s.logger.Debug("Object stored",
		zap.String("bucket", s.bucket),
		zap.String("path", objectPath),
		zap.Int("bytes", len(data)),
	)
	return url, nil
}
