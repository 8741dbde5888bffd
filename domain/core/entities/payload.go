package entities

import (
	"bytes"
	"encoding/json"

	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
)

// Payload is the kind-specific data record of a node. The set of
// implementations is closed: one struct per Kind.
type Payload interface {
	Kind() Kind
	clone() Payload
	normalize() error
	applyGeneration(Generation) error
}

// Generation is the normalised result of one model invocation, ready to be
// written into a node's generated fields.
type Generation struct {
	Task     Task                `json:"task"`
	Text     string              `json:"text,omitempty"`
	Language string              `json:"language,omitempty"`
	Media    *valueobjects.Media `json:"media,omitempty"`
}

// GeneratedText is the generated slot of a text node.
type GeneratedText struct {
	Text string `json:"text"`
}

// Code is a source snippet with its language.
type Code struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// FileContent references an uploaded document.
type FileContent struct {
	URL       string `json:"url"`
	MediaType string `json:"mediaType"`
	Name      string `json:"name,omitempty"`
}

// TweetContent is an imported post.
type TweetContent struct {
	ID     string `json:"id"`
	Author string `json:"author,omitempty"`
	Date   string `json:"date,omitempty"`
	Text   string `json:"text"`
}

type TextData struct {
	Source       Source          `json:"source"`
	Text         string          `json:"text,omitempty"`
	Content      json.RawMessage `json:"content,omitempty"`
	Instructions string          `json:"instructions,omitempty"`
	Model        string          `json:"model,omitempty"`
	Generated    *GeneratedText  `json:"generated,omitempty"`
}

type ImageData struct {
	Source       Source              `json:"source"`
	Content      *valueobjects.Media `json:"content,omitempty"`
	Instructions string              `json:"instructions,omitempty"`
	Model        string              `json:"model,omitempty"`
	Size         string              `json:"size,omitempty"`
	Generated    *valueobjects.Media `json:"generated,omitempty"`
	Description  string              `json:"description,omitempty"`
}

type AudioData struct {
	Source       Source              `json:"source"`
	Content      *valueobjects.Media `json:"content,omitempty"`
	Instructions string              `json:"instructions,omitempty"`
	Model        string              `json:"model,omitempty"`
	Voice        string              `json:"voice,omitempty"`
	Generated    *valueobjects.Media `json:"generated,omitempty"`
	Transcript   string              `json:"transcript,omitempty"`
}

type VideoData struct {
	Source       Source              `json:"source"`
	Content      *valueobjects.Media `json:"content,omitempty"`
	Instructions string              `json:"instructions,omitempty"`
	Model        string              `json:"model,omitempty"`
	Generated    *valueobjects.Media `json:"generated,omitempty"`
}

type CodeData struct {
	Source       Source `json:"source"`
	Content      *Code  `json:"content,omitempty"`
	Instructions string `json:"instructions,omitempty"`
	Model        string `json:"model,omitempty"`
	Generated    *Code  `json:"generated,omitempty"`
}

type FileData struct {
	Content *FileContent `json:"content,omitempty"`
}

type TweetData struct {
	Content *TweetContent `json:"content,omitempty"`
}

// DropData is the placeholder a user drags out before choosing a type.
type DropData struct {
	IsSource bool `json:"isSource,omitempty"`
}

func (*TextData) Kind() Kind  { return KindText }
func (*ImageData) Kind() Kind { return KindImage }
func (*AudioData) Kind() Kind { return KindAudio }
func (*VideoData) Kind() Kind { return KindVideo }
func (*CodeData) Kind() Kind  { return KindCode }
func (*FileData) Kind() Kind  { return KindFile }
func (*TweetData) Kind() Kind { return KindTweet }
func (*DropData) Kind() Kind  { return KindDrop }

func cloneMedia(m *valueobjects.Media) *valueobjects.Media {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

func (d *TextData) clone() Payload {
	c := *d
	if d.Content != nil {
		c.Content = append(json.RawMessage(nil), d.Content...)
	}
	if d.Generated != nil {
		g := *d.Generated
		c.Generated = &g
	}
	return &c
}

func (d *ImageData) clone() Payload {
	c := *d
	c.Content, c.Generated = cloneMedia(d.Content), cloneMedia(d.Generated)
	return &c
}

func (d *AudioData) clone() Payload {
	c := *d
	c.Content, c.Generated = cloneMedia(d.Content), cloneMedia(d.Generated)
	return &c
}

func (d *VideoData) clone() Payload {
	c := *d
	c.Content, c.Generated = cloneMedia(d.Content), cloneMedia(d.Generated)
	return &c
}

func (d *CodeData) clone() Payload {
	c := *d
	if d.Content != nil {
		v := *d.Content
		c.Content = &v
	}
	if d.Generated != nil {
		v := *d.Generated
		c.Generated = &v
	}
	return &c
}

func (d *FileData) clone() Payload {
	c := *d
	if d.Content != nil {
		v := *d.Content
		c.Content = &v
	}
	return &c
}

func (d *TweetData) clone() Payload {
	c := *d
	if d.Content != nil {
		v := *d.Content
		c.Content = &v
	}
	return &c
}

func (d *DropData) clone() Payload {
	c := *d
	return &c
}

func checkSource(kind Kind, s Source) error {
	if !s.valid() {
		return pkgerrors.NewValidationErrorf("%s node source must be %q or %q", kind, SourcePrimitive, SourceTransform)
	}
	return nil
}

// normalizeMedia drops empty references and validates the rest.
func normalizeMedia(field string, m **valueobjects.Media) error {
	if *m == nil {
		return nil
	}
	if (*m).IsZero() {
		*m = nil
		return nil
	}
	if _, err := valueobjects.NewMedia((*m).URL, (*m).MediaType); err != nil {
		return pkgerrors.NewValidationErrorf("%s: %s", field, pkgerrors.GetAppError(err).Message)
	}
	return nil
}

func (d *TextData) normalize() error {
	if len(d.Content) == 0 || bytes.Equal(bytes.TrimSpace(d.Content), []byte("null")) {
		d.Content = nil
	} else if !json.Valid(d.Content) {
		return pkgerrors.NewValidationError("text content must be valid JSON")
	}
	if d.Generated != nil && d.Generated.Text == "" {
		d.Generated = nil
	}
	return checkSource(KindText, d.Source)
}

func (d *ImageData) normalize() error {
	if err := normalizeMedia("image content", &d.Content); err != nil {
		return err
	}
	if err := normalizeMedia("image generated", &d.Generated); err != nil {
		return err
	}
	return checkSource(KindImage, d.Source)
}

func (d *AudioData) normalize() error {
	if err := normalizeMedia("audio content", &d.Content); err != nil {
		return err
	}
	if err := normalizeMedia("audio generated", &d.Generated); err != nil {
		return err
	}
	return checkSource(KindAudio, d.Source)
}

func (d *VideoData) normalize() error {
	if err := normalizeMedia("video content", &d.Content); err != nil {
		return err
	}
	if err := normalizeMedia("video generated", &d.Generated); err != nil {
		return err
	}
	return checkSource(KindVideo, d.Source)
}

func (d *CodeData) normalize() error {
	if d.Content != nil && d.Content.Text == "" && d.Content.Language == "" {
		d.Content = nil
	}
	if d.Generated != nil && d.Generated.Text == "" {
		d.Generated = nil
	}
	return checkSource(KindCode, d.Source)
}

func (d *FileData) normalize() error {
	if d.Content == nil {
		return nil
	}
	if _, err := valueobjects.NewMedia(d.Content.URL, d.Content.MediaType); err != nil {
		return pkgerrors.NewValidationErrorf("file content: %s", pkgerrors.GetAppError(err).Message)
	}
	return nil
}

func (d *TweetData) normalize() error {
	if d.Content != nil && d.Content.ID == "" {
		return pkgerrors.NewValidationError("tweet content requires an id")
	}
	return nil
}

func (d *DropData) normalize() error { return nil }

func rejectGeneration(kind Kind, task Task) error {
	return pkgerrors.NewValidationErrorf("%s nodes cannot accept %s output", kind, task).WithCode("UNSUPPORTED_TASK")
}

func requireText(g Generation) error {
	if g.Text == "" {
		return pkgerrors.NewValidationError("generation produced no text")
	}
	return nil
}

func requireMedia(g Generation) (*valueobjects.Media, error) {
	if g.Media == nil || g.Media.IsZero() {
		return nil, pkgerrors.NewValidationError("generation produced no media")
	}
	return cloneMedia(g.Media), nil
}

func (d *TextData) applyGeneration(g Generation) error {
	if g.Task != TaskGenerate {
		return rejectGeneration(KindText, g.Task)
	}
	if err := requireText(g); err != nil {
		return err
	}
	d.Generated = &GeneratedText{Text: g.Text}
	return nil
}

func (d *CodeData) applyGeneration(g Generation) error {
	if g.Task != TaskGenerate {
		return rejectGeneration(KindCode, g.Task)
	}
	if err := requireText(g); err != nil {
		return err
	}
	d.Generated = &Code{Text: g.Text, Language: g.Language}
	return nil
}

func (d *ImageData) applyGeneration(g Generation) error {
	switch g.Task {
	case TaskGenerate:
		m, err := requireMedia(g)
		if err != nil {
			return err
		}
		d.Generated = m
	case TaskDescribe:
		if err := requireText(g); err != nil {
			return err
		}
		d.Description = g.Text
	default:
		return rejectGeneration(KindImage, g.Task)
	}
	return nil
}

func (d *AudioData) applyGeneration(g Generation) error {
	switch g.Task {
	case TaskGenerate:
		m, err := requireMedia(g)
		if err != nil {
			return err
		}
		d.Generated = m
	case TaskTranscribe:
		if err := requireText(g); err != nil {
			return err
		}
		d.Transcript = g.Text
	default:
		return rejectGeneration(KindAudio, g.Task)
	}
	return nil
}

func (d *VideoData) applyGeneration(g Generation) error {
	if g.Task != TaskGenerate {
		return rejectGeneration(KindVideo, g.Task)
	}
	m, err := requireMedia(g)
	if err != nil {
		return err
	}
	d.Generated = m
	return nil
}

func (d *FileData) applyGeneration(g Generation) error  { return rejectGeneration(KindFile, g.Task) }
func (d *TweetData) applyGeneration(g Generation) error { return rejectGeneration(KindTweet, g.Task) }
func (d *DropData) applyGeneration(g Generation) error  { return rejectGeneration(KindDrop, g.Task) }

// decodeStrict merges raw JSON into p, rejecting fields p does not declare.
func decodeStrict(kind Kind, raw json.RawMessage, p Payload) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(p); err != nil {
		return pkgerrors.NewValidationErrorf("invalid %s node data: %v", kind, err).WithCause(err)
	}
	if dec.More() {
		return pkgerrors.NewValidationErrorf("invalid %s node data: trailing content", kind)
	}
	return nil
}
