package valueobjects

import (
	"encoding/json"
	"strings"

	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"

	"github.com/google/uuid"
)

const maxIDLength = 128

// NodeID identifies a node within one project document.
// Canvas clients mint their own identifiers, so any non-blank token is accepted.
type NodeID struct {
	value string
}

// NewNodeID creates a new random NodeID
func NewNodeID() NodeID {
	return NodeID{value: uuid.New().String()}
}

// NewNodeIDFromString creates a NodeID from an existing string
func NewNodeIDFromString(id string) (NodeID, error) {
	if err := validateID("node", id); err != nil {
		return NodeID{}, err
	}
	return NodeID{value: id}, nil
}

func (id NodeID) String() string { return id.value }
func (id NodeID) Equals(other NodeID) bool { return id.value == other.value }
func (id NodeID) IsZero() bool { return id.value == "" }
func (id NodeID) MarshalJSON() ([]byte, error) { return json.Marshal(id.value) }

// UnmarshalJSON implements json.Unmarshaler
func (id *NodeID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return pkgerrors.NewValidationError("node id must be a string")
	}
	parsed, err := NewNodeIDFromString(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// EdgeID identifies an edge within one project document.
type EdgeID struct {
	value string
}

// NewEdgeID creates a new random EdgeID
func NewEdgeID() EdgeID {
	return EdgeID{value: uuid.New().String()}
}

// NewEdgeIDFromString creates an EdgeID from an existing string
func NewEdgeIDFromString(id string) (EdgeID, error) {
	if err := validateID("edge", id); err != nil {
		return EdgeID{}, err
	}
	return EdgeID{value: id}, nil
}

func (id EdgeID) String() string { return id.value }
func (id EdgeID) Equals(other EdgeID) bool { return id.value == other.value }
func (id EdgeID) IsZero() bool { return id.value == "" }
func (id EdgeID) MarshalJSON() ([]byte, error) { return json.Marshal(id.value) }

// UnmarshalJSON implements json.Unmarshaler
func (id *EdgeID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return pkgerrors.NewValidationError("edge id must be a string")
	}
	parsed, err := NewEdgeIDFromString(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ProjectID identifies a persisted project document.
type ProjectID struct {
	value string
}

// NewProjectID creates a new random ProjectID
func NewProjectID() ProjectID {
	return ProjectID{value: uuid.New().String()}
}

// NewProjectIDFromString creates a ProjectID from an existing string
func NewProjectIDFromString(id string) (ProjectID, error) {
	if err := validateID("project", id); err != nil {
		return ProjectID{}, err
	}
	return ProjectID{value: id}, nil
}

func (id ProjectID) String() string { return id.value }
func (id ProjectID) Equals(other ProjectID) bool { return id.value == other.value }
func (id ProjectID) IsZero() bool { return id.value == "" }
func (id ProjectID) MarshalJSON() ([]byte, error) { return json.Marshal(id.value) }

func validateID(kind, id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return pkgerrors.NewValidationErrorf("%s id cannot be empty", kind)
	case len(id) > maxIDLength:
		return pkgerrors.NewValidationErrorf("%s id exceeds %d characters", kind, maxIDLength)
	case strings.ContainsAny(id, " \t\r\n"):
		return pkgerrors.NewValidationErrorf("%s id cannot contain whitespace", kind)
	}
	return nil
}
