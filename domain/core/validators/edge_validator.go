package validators

import (
	"github.com/haydenbleasel/tersa-sub001/domain/core/entities"
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
)

// Verdict is the outcome of a single connection rule.
type Verdict int

const (
	// Pass defers to the next rule.
	Pass Verdict = iota
	Accept
	Reject
)

// ConnectionRule inspects a proposed edge.
type ConnectionRule struct {
	Name   string
	Reason string
	Check  func(source, target *entities.Node) Verdict
}

// EdgeValidator evaluates connection rules in order; the first rule that
// does not pass decides. A proposal no rule decides is accepted.
type EdgeValidator struct {
	rules []ConnectionRule
}

// DefaultConnectionRules is the rule table applied to every canvas.
func DefaultConnectionRules() []ConnectionRule {
	return []ConnectionRule{
		{
			Name:   "terminal-source",
			Reason: "video and drop nodes have no forwardable output",
			Check: func(source, _ *entities.Node) Verdict {
				switch source.Kind() {
				case entities.KindVideo, entities.KindDrop:
					return Reject
				}
				return Pass
			},
		},
		{
			Name:  "accept",
			Check: func(_, _ *entities.Node) Verdict { return Accept },
		},
	}
}

// NewEdgeValidator creates a validator with the default rule table.
func NewEdgeValidator() *EdgeValidator {
	return NewEdgeValidatorWithRules(DefaultConnectionRules()...)
}

// NewEdgeValidatorWithRules creates a validator with a custom rule table.
func NewEdgeValidatorWithRules(rules ...ConnectionRule) *EdgeValidator {
	return &EdgeValidator{rules: rules}
}

// CanConnect reports whether an edge from source to target is legal.
func (v *EdgeValidator) CanConnect(source, target *entities.Node) bool {
	return v.Check(source, target) == nil
}

// Check returns a validation error naming the rule that rejected the edge.
func (v *EdgeValidator) Check(source, target *entities.Node) error {
	if source == nil || target == nil {
		return pkgerrors.NewValidationError("edge endpoints must exist").WithCode("MISSING_ENDPOINT")
	}
	for _, rule := range v.rules {
		switch rule.Check(source, target) {
		case Accept:
			return nil
		case Reject:
			return pkgerrors.NewValidationErrorf("cannot connect %s node to %s node: %s",
				source.Kind(), target.Kind(), rule.Reason).
				WithCode("INVALID_CONNECTION").
				WithDetail("rule", rule.Name).
				WithDetail("source", source.ID().String()).
				WithDetail("target", target.ID().String())
		}
	}
	return nil
}
