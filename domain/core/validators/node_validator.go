package validators

import (
	"unicode/utf8"

	"github.com/haydenbleasel/tersa-sub001/domain/config"
	"github.com/haydenbleasel/tersa-sub001/domain/core/entities"
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
)

// NodeValidator enforces size limits on user-authored node fields.
type NodeValidator struct {
	maxTextLength         int
	maxInstructionsLength int
}

// NewNodeValidator creates a node validator from the domain limits
func NewNodeValidator(cfg *config.DomainConfig) *NodeValidator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &NodeValidator{
		maxTextLength:         cfg.MaxTextLength,
		maxInstructionsLength: cfg.MaxInstructionsLength,
	}
}

// Validate checks a node's primitive fields against the configured limits.
func (v *NodeValidator) Validate(node *entities.Node) error {
	if err := v.checkLength("instructions", node.Instructions(), v.maxInstructionsLength); err != nil {
		return err
	}
	switch d := node.Data().(type) {
	case *entities.TextData:
		return v.checkLength("text", d.Text, v.maxTextLength)
	case *entities.CodeData:
		if d.Content != nil {
			return v.checkLength("content", d.Content.Text, v.maxTextLength)
		}
	case *entities.TweetData:
		if d.Content != nil {
			return v.checkLength("content", d.Content.Text, v.maxTextLength)
		}
	}
	return nil
}

func (v *NodeValidator) checkLength(field, value string, max int) error {
	if max <= 0 {
		return nil
	}
	if n := utf8.RuneCountInString(value); n > max {
		return pkgerrors.NewValidationErrorf("%s exceeds %d characters", field, max).
			WithCode("FIELD_TOO_LONG").
			WithDetail("field", field).
			WithDetail("actual_length", n).
			WithDetail("max_length", max)
	}
	return nil
}
