package commands

import (
	"github.com/haydenbleasel/tersa-sub001/domain/core/aggregates"
	"github.com/haydenbleasel/tersa-sub001/pkg/utils"
)

// CreateProjectCommand creates an empty canvas. ProjectID is generated by
// the caller so it can be returned without a read back.
type CreateProjectCommand struct {
	ProjectID          string `json:"id" validate:"notblank,max=128"`
	UserID             string `json:"userId" validate:"notblank"`
	Name               string `json:"name" validate:"max=200"`
	TranscriptionModel string `json:"transcriptionModel" validate:"max=128"`
	VisionModel        string `json:"visionModel" validate:"max=128"`
}

// Validate validates the command
func (c CreateProjectCommand) Validate() error { return utils.ValidateStruct(c) }

// UpdateProjectCommand changes project metadata. Nil fields are left alone.
type UpdateProjectCommand struct {
	ProjectID          string  `json:"id" validate:"notblank"`
	UserID             string  `json:"userId" validate:"notblank"`
	Name               *string `json:"name,omitempty" validate:"omitempty,max=200"`
	TranscriptionModel *string `json:"transcriptionModel,omitempty" validate:"omitempty,max=128"`
	VisionModel        *string `json:"visionModel,omitempty" validate:"omitempty,max=128"`
	Image              *string `json:"image,omitempty"`
}

// Validate validates the command
func (c UpdateProjectCommand) Validate() error { return utils.ValidateStruct(c) }

// DeleteProjectCommand removes a project.
type DeleteProjectCommand struct {
	ProjectID string `json:"id" validate:"notblank"`
	UserID    string `json:"userId" validate:"notblank"`
}

// Validate validates the command
func (c DeleteProjectCommand) Validate() error { return utils.ValidateStruct(c) }

// SaveProjectContentCommand replaces the whole canvas document, as the
// editor's autosave does.
type SaveProjectContentCommand struct {
	ProjectID string             `json:"id" validate:"notblank"`
	UserID    string             `json:"userId" validate:"notblank"`
	Content   aggregates.Content `json:"content"`
}

// Validate validates the command
func (c SaveProjectContentCommand) Validate() error { return utils.ValidateStruct(c) }
