// Package storage holds the ObjectStorage adapters that materialise binary
// model output and return a public URL for it.
package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/haydenbleasel/tersa-sub001/application/ports"
)

// preferred extensions for media types whose mime table entry is ambiguous
var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"audio/mpeg": ".mp3",
	"audio/wav":  ".wav",
	"video/mp4":  ".mp4",
	"text/plain": ".txt",
}

// ObjectPath builds "<namespace>/<uuid><ext>" for a new object.
func ObjectPath(namespace, mediaType string) string {
	ext := extensions[mediaType]
	if ext == "" {
		if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}
	ns := strings.Trim(namespace, "/")
	if ns == "" {
		ns = "shared"
	}
	return path.Join(ns, uuid.NewString()+ext)
}

// Inline stores nothing; it returns the data as a data: URL. It serves
// development and tests where no bucket is available.
type Inline struct{}

var _ ports.ObjectStorage = Inline{}

// Put encodes data as a base64 data URL
func (Inline) Put(_ context.Context, _ string, data []byte, mediaType string) (string, error) {
	if mediaType == "" {
		return "", fmt.Errorf("media type is required")
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
