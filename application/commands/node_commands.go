package commands

import (
	"encoding/json"

	"github.com/haydenbleasel/tersa-sub001/pkg/utils"
)

// CreateNodeCommand places a new node on the canvas.
type CreateNodeCommand struct {
	ProjectID string          `json:"projectId" validate:"notblank"`
	UserID    string          `json:"userId" validate:"notblank"`
	NodeID    string          `json:"id" validate:"notblank,max=128"`
	Type      string          `json:"type" validate:"nodetype"`
	X         float64         `json:"x"`
	Y         float64         `json:"y"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Validate validates the command
func (c CreateNodeCommand) Validate() error { return utils.ValidateStruct(c) }

// UpdateNodeCommand merges user-authored fields into a node's data.
type UpdateNodeCommand struct {
	ProjectID string          `json:"projectId" validate:"notblank"`
	UserID    string          `json:"userId" validate:"notblank"`
	NodeID    string          `json:"id" validate:"notblank"`
	Data      json.RawMessage `json:"data" validate:"required"`
}

// Validate validates the command
func (c UpdateNodeCommand) Validate() error { return utils.ValidateStruct(c) }

// MoveNodeCommand sets a node's position.
type MoveNodeCommand struct {
	ProjectID string  `json:"projectId" validate:"notblank"`
	UserID    string  `json:"userId" validate:"notblank"`
	NodeID    string  `json:"id" validate:"notblank"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// Validate validates the command
func (c MoveNodeCommand) Validate() error { return utils.ValidateStruct(c) }

// ConvertNodeCommand changes a node's kind.
type ConvertNodeCommand struct {
	ProjectID string `json:"projectId" validate:"notblank"`
	UserID    string `json:"userId" validate:"notblank"`
	NodeID    string `json:"id" validate:"notblank"`
	Type      string `json:"type" validate:"nodetype"`
}

// Validate validates the command
func (c ConvertNodeCommand) Validate() error { return utils.ValidateStruct(c) }

// DeleteNodeCommand removes a node and its edges.
type DeleteNodeCommand struct {
	ProjectID string `json:"projectId" validate:"notblank"`
	UserID    string `json:"userId" validate:"notblank"`
	NodeID    string `json:"id" validate:"notblank"`
}

// Validate validates the command
func (c DeleteNodeCommand) Validate() error { return utils.ValidateStruct(c) }
