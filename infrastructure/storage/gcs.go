package storage

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/haydenbleasel/tersa-sub001/application/ports"
)

// GCS uploads objects to a Google Cloud Storage bucket.
type GCS struct {
	client     *storage.Client
	bucket     string
	publicBase string
	logger     *zap.Logger
}

var _ ports.ObjectStorage = (*GCS)(nil)

// NewGCS creates a GCS client. An empty credentials file uses application
// default credentials.
func NewGCS(ctx context.Context, bucket, credentialsFile, publicBase string, logger *zap.Logger) (*GCS, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}

	return &GCS{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
		logger:     logger,
	}, nil
}

// Put writes data to the bucket and returns the object's public URL.
func (g *GCS) Put(ctx context.Context, ownerNamespace string, data []byte, mediaType string) (string, error) {
	objectPath := ObjectPath(ownerNamespace, mediaType)

	writer := g.client.Bucket(g.bucket).Object(objectPath).NewWriter(ctx)
	writer.ContentType = mediaType
	writer.CacheControl = "public, max-age=31536000, immutable"

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("failed to write GCS object %s: %w", objectPath, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer for %s: %w", objectPath, err)
	}

	g.logger.Debug("Object stored",
		zap.String("bucket", g.bucket),
		zap.String("path", objectPath),
		zap.Int("bytes", len(data)),
	)
	return g.PublicURL(objectPath), nil
}

// PublicURL returns the URL under which an object is served.
func (g *GCS) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/%s/%s", g.publicBase, g.bucket, objectPath)
}

// Close releases the underlying client.
func (g *GCS) Close() error {
	return g.client.Close()
}
