package ports

import (
	"context"
	"time"

	"github.com/haydenbleasel/tersa-sub001/domain/core/aggregates"
	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
	"github.com/haydenbleasel/tersa-sub001/domain/events"
)

// ProjectRepository persists project documents scoped by owner.
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type ProjectRepository interface {
	// Create inserts a new project; an existing id is a conflict.
	Create(ctx context.Context, project *aggregates.Project) error

	// Load returns the project if ownerID owns it. Unknown ids are NotFound,
	// projects owned by someone else are Forbidden.
	Load(ctx context.Context, ownerID string, id valueobjects.ProjectID) (*aggregates.Project, error)

	// Save writes the project when ownerID owns it and the stored version
	// still matches project.Version(). On success the project is marked
	// persisted with the next version and a fresh updatedAt.
	Save(ctx context.Context, ownerID string, project *aggregates.Project) error

	// List returns summaries of the owner's projects, most recently updated first.
	List(ctx context.Context, ownerID string) ([]ProjectSummary, error)

	// Delete removes the owner's project.
	Delete(ctx context.Context, ownerID string, id valueobjects.ProjectID) error
}

// ProjectSummary is the listing row of a project.
type ProjectSummary struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	TranscriptionModel string    `json:"transcriptionModel,omitempty"`
	VisionModel        string    `json:"visionModel,omitempty"`
	Image              string    `json:"image,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// SummaryOf builds the listing row of a project.
func SummaryOf(p *aggregates.Project) ProjectSummary {
	d := p.Defaults()
	return ProjectSummary{
		ID:                 p.ID().String(),
		Name:               p.Name(),
		TranscriptionModel: d.TranscriptionModel,
		VisionModel:        d.VisionModel,
		Image:              p.Image(),
		CreatedAt:          p.CreatedAt(),
		UpdatedAt:          p.UpdatedAt(),
	}
}

// ObjectStorage materialises binary model output.
type ObjectStorage interface {
	// Put stores data under the owner's namespace and returns a public URL.
	Put(ctx context.Context, ownerNamespace string, data []byte, mediaType string) (string, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// Entitlements answers whether a user may run generations.
type Entitlements interface {
	IsSubscribed(ctx context.Context, userID string) (bool, error)
}

// RateLimiter bounds how often a key may perform an action.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
