package entities

import (
	"bytes"
	"encoding/json"

	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
)

// Node is a typed vertex on the canvas.
// Its data record is always the one declared for its kind.
type Node struct {
	id       valueobjects.NodeID
	kind     Kind
	position valueobjects.Position
	data     Payload
}

// NewNode creates a node with a fresh identifier, the kind's default data
// shape, and any initial override merged on top.
func NewNode(kind Kind, position valueobjects.Position, initial json.RawMessage) (*Node, error) {
	return ReconstructNode(valueobjects.NewNodeID(), kind, position, initial)
}

// ReconstructNode builds a node from stored data under a known identifier.
func ReconstructNode(id valueobjects.NodeID, kind Kind, position valueobjects.Position, data json.RawMessage) (*Node, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("node id cannot be empty")
	}
	payload, err := DefaultPayload(kind)
	if err != nil {
		return nil, err
	}
	if err := decodeStrict(kind, data, payload); err != nil {
		return nil, err
	}
	if err := payload.normalize(); err != nil {
		return nil, err
	}
	return &Node{id: id, kind: kind, position: position, data: payload}, nil
}

// ID returns the node's unique identifier
func (n *Node) ID() valueobjects.NodeID {
	return n.id
}

// Kind returns the node's type tag
func (n *Node) Kind() Kind {
	return n.kind
}

// Position returns the node's canvas coordinate
func (n *Node) Position() valueobjects.Position {
	return n.position
}

// Data returns a copy of the node's data record.
func (n *Node) Data() Payload {
	return n.data.clone()
}

// MarshalData encodes the data record in its persisted form.
func (n *Node) MarshalData() (json.RawMessage, error) {
	raw, err := json.Marshal(n.data)
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to encode node data").WithCause(err)
	}
	return raw, nil
}

// Clone returns a deep copy.
func (n *Node) Clone() *Node {
	return &Node{id: n.id, kind: n.kind, position: n.position, data: n.data.clone()}
}

// MoveTo sets the node's position.
func (n *Node) MoveTo(position valueobjects.Position) {
	n.position = position
}

// Source reports whether the node is user-authored or model-fed. Kinds
// without a source field are always primitive.
func (n *Node) Source() Source {
	switch d := n.data.(type) {
	case *TextData:
		return d.Source
	case *ImageData:
		return d.Source
	case *AudioData:
		return d.Source
	case *VideoData:
		return d.Source
	case *CodeData:
		return d.Source
	}
	return SourcePrimitive
}

// Model returns the node's explicit model selection, if any.
func (n *Node) Model() string {
	switch d := n.data.(type) {
	case *TextData:
		return d.Model
	case *ImageData:
		return d.Model
	case *AudioData:
		return d.Model
	case *VideoData:
		return d.Model
	case *CodeData:
		return d.Model
	}
	return ""
}

// Instructions returns the node's free-text instructions, if any.
func (n *Node) Instructions() string {
	switch d := n.data.(type) {
	case *TextData:
		return d.Instructions
	case *ImageData:
		return d.Instructions
	case *AudioData:
		return d.Instructions
	case *VideoData:
		return d.Instructions
	case *CodeData:
		return d.Instructions
	}
	return ""
}

// HasGenerated reports whether any generated field is populated.
func (n *Node) HasGenerated() bool {
	switch d := n.data.(type) {
	case *TextData:
		return d.Generated != nil
	case *ImageData:
		return d.Generated != nil || d.Description != ""
	case *AudioData:
		return d.Generated != nil || d.Transcript != ""
	case *VideoData:
		return d.Generated != nil
	case *CodeData:
		return d.Generated != nil
	}
	return false
}

// UpdateData merges a patch of primitive fields into the data record.
// Generated or undeclared fields in the patch are rejected and the node is
// left untouched.
func (n *Node) UpdateData(patch json.RawMessage) error {
	trimmed := bytes.TrimSpace(patch)
	if len(trimmed) == 0 {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return pkgerrors.NewValidationError("node data patch must be a JSON object")
	}
	for name := range fields {
		slot, ok := FieldSlot(n.kind, name)
		if !ok {
			return pkgerrors.NewValidationErrorf("%s nodes have no field %q", n.kind, name)
		}
		if slot == SlotGenerated {
			return pkgerrors.NewValidationErrorf("field %q is written by generation only", name)
		}
	}

	next := n.data.clone()
	if err := decodeStrict(n.kind, trimmed, next); err != nil {
		return err
	}
	if err := next.normalize(); err != nil {
		return err
	}
	n.data = next
	return nil
}

// ApplyGeneration replaces the node's generated fields with a model result.
// On error the node is unchanged.
func (n *Node) ApplyGeneration(g Generation) error {
	if !n.kind.Supports(g.Task) {
		return rejectGeneration(n.kind, g.Task)
	}
	next := n.data.clone()
	if err := next.applyGeneration(g); err != nil {
		return err
	}
	if err := next.normalize(); err != nil {
		return err
	}
	n.data = next
	return nil
}

// ConvertTo changes the node's kind, resetting data to the new default shape.
func (n *Node) ConvertTo(kind Kind) error {
	payload, err := DefaultPayload(kind)
	if err != nil {
		return err
	}
	n.kind = kind
	n.data = payload
	return nil
}

// Equal reports semantic equality: same id, kind, position and encoded data.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if !n.id.Equals(other.id) || n.kind != other.kind || !n.position.Equals(other.position) {
		return false
	}
	a, errA := json.Marshal(n.data)
	b, errB := json.Marshal(other.data)
	return errA == nil && errB == nil && bytes.Equal(a, b)
}
