package valueobjects

import (
	"net/url"
	"strings"

	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
)

// Media references a binary asset held in object storage.
type Media struct {
	URL       string `json:"url"`
	MediaType string `json:"mediaType"`
}

// NewMedia validates the URL and media type of a stored asset.
func NewMedia(rawURL, mediaType string) (Media, error) {
	if strings.TrimSpace(rawURL) == "" {
		return Media{}, pkgerrors.NewValidationError("media url cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "data") {
		return Media{}, pkgerrors.NewValidationErrorf("media url %q is not an http(s) or data url", rawURL)
	}
	if !strings.Contains(mediaType, "/") {
		return Media{}, pkgerrors.NewValidationErrorf("media type %q is not a MIME type", mediaType)
	}
	return Media{URL: rawURL, MediaType: mediaType}, nil
}

// IsZero reports whether the media reference is unset.
func (m Media) IsZero() bool {
	return m.URL == ""
}

// Family returns the top-level MIME type, e.g. "image" for "image/png".
func (m Media) Family() string {
	family, _, _ := strings.Cut(m.MediaType, "/")
	return family
}
