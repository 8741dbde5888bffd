package commands

import (
	"github.com/haydenbleasel/tersa-sub001/domain/core/entities"
	"github.com/haydenbleasel/tersa-sub001/pkg/utils"
)

// GenerateNodeCommand runs a model for one node and writes the result into
// its generated fields. Send it by pointer: the handler fills Result.
type GenerateNodeCommand struct {
	ProjectID string `json:"projectId" validate:"notblank"`
	UserID    string `json:"userId" validate:"notblank"`
	NodeID    string `json:"nodeId" validate:"notblank"`
	Task      string `json:"task,omitempty" validate:"omitempty,task"`
	ModelID   string `json:"modelId,omitempty" validate:"max=128"`

	Result *GenerationOutcome `json:"-"`
}

// Validate validates the command
func (c GenerateNodeCommand) Validate() error { return utils.ValidateStruct(c) }

// GenerationTarget is one item of a batch generation.
type GenerationTarget struct {
	NodeID  string `json:"nodeId" validate:"notblank"`
	Task    string `json:"task,omitempty" validate:"omitempty,task"`
	ModelID string `json:"modelId,omitempty" validate:"max=128"`
}

// GenerateNodesCommand runs several independent generations in one
// project. Send it by pointer: the handler fills Results in item order.
type GenerateNodesCommand struct {
	ProjectID string             `json:"projectId" validate:"notblank"`
	UserID    string             `json:"userId" validate:"notblank"`
	Items     []GenerationTarget `json:"items" validate:"required,min=1,dive"`

	Results []GenerationOutcome `json:"-"`
}

// Validate validates the command
func (c GenerateNodesCommand) Validate() error { return utils.ValidateStruct(c) }

// GenerationOutcome reports what one generation produced. Error is set
// instead of Generation when the item failed.
type GenerationOutcome struct {
	NodeID     string               `json:"nodeId"`
	Model      string               `json:"model,omitempty"`
	Generation *entities.Generation `json:"generation,omitempty"`
	Error      error                `json:"-"`
}
