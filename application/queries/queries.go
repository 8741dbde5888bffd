package queries

import (
	"time"

	"github.com/haydenbleasel/tersa-sub001/domain/core/aggregates"
	"github.com/haydenbleasel/tersa-sub001/pkg/utils"
)

// GetProjectQuery represents a query to get one project with its canvas
type GetProjectQuery struct {
	UserID    string `validate:"notblank"`
	ProjectID string `validate:"notblank"`
}

// Validate validates the GetProjectQuery
func (q GetProjectQuery) Validate() error { return utils.ValidateStruct(q) }

// ProjectView is the persisted layout of a project as returned to clients.
type ProjectView struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	TranscriptionModel string             `json:"transcriptionModel"`
	VisionModel        string             `json:"visionModel"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
	Content            aggregates.Content `json:"content"`
	UserID             string             `json:"userId"`
	Image              string             `json:"image,omitempty"`
}

// ListProjectsQuery represents a query to list a user's projects
type ListProjectsQuery struct {
	UserID string `validate:"notblank"`
}

// Validate validates the ListProjectsQuery
func (q ListProjectsQuery) Validate() error { return utils.ValidateStruct(q) }

// GetNodeQuery represents a query to get a single node
type GetNodeQuery struct {
	UserID    string `validate:"notblank"`
	ProjectID string `validate:"notblank"`
	NodeID    string `validate:"notblank"`
}

// Validate validates the GetNodeQuery
func (q GetNodeQuery) Validate() error { return utils.ValidateStruct(q) }

// ListModelsQuery lists the configured model catalog, optionally
// restricted to one capability.
type ListModelsQuery struct {
	Capability string `validate:"omitempty,oneof=text image speech transcription vision video"`
}

// Validate validates the ListModelsQuery
func (q ListModelsQuery) Validate() error { return utils.ValidateStruct(q) }

// ModelView is one entry of the model catalog.
type ModelView struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Provider   string `json:"provider"`
	Capability string `json:"capability"`
	Default    bool   `json:"default"`
}
