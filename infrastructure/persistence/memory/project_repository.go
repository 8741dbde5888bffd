package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/haydenbleasel/tersa-sub001/application/ports"
	"github.com/haydenbleasel/tersa-sub001/domain/core/aggregates"
	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
)

// ProjectRepository keeps project records in memory. It is used by tests
// and by the API when no database is configured.
type ProjectRepository struct {
	mu      sync.RWMutex
	records map[string]aggregates.ProjectRecord
	opts    []aggregates.Option
	now     func() time.Time
}

// NewProjectRepository creates an empty repository. opts are applied to
// every project it reconstructs.
func NewProjectRepository(opts ...aggregates.Option) *ProjectRepository {
	return &ProjectRepository{
		records: make(map[string]aggregates.ProjectRecord),
		opts:    opts,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts a new project
func (r *ProjectRepository) Create(ctx context.Context, project *aggregates.Project) error {
	rec, err := project.Record()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[rec.ID]; exists {
		return pkgerrors.NewConflictError("project " + rec.ID + " already exists")
	}
	rec.Version = 1
	r.records[rec.ID] = rec
	project.MarkPersisted(rec.Version, rec.UpdatedAt)
	return nil
}

// Load returns the owner's project
func (r *ProjectRepository) Load(ctx context.Context, ownerID string, id valueobjects.ProjectID) (*aggregates.Project, error) {
	r.mu.RLock()
	rec, exists := r.records[id.String()]
	r.mu.RUnlock()

	if !exists {
		return nil, pkgerrors.NewNotFoundError("project " + id.String())
	}
	if rec.UserID != ownerID {
		return nil, pkgerrors.NewForbiddenError("project belongs to another user")
	}
	return aggregates.ReconstructProject(rec, r.opts...)
}

// Save writes the project if the stored version still matches
func (r *ProjectRepository) Save(ctx context.Context, ownerID string, project *aggregates.Project) error {
	rec, err := project.Record()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.records[rec.ID]
	if !exists {
		return pkgerrors.NewNotFoundError("project " + rec.ID)
	}
	if current.UserID != ownerID || rec.UserID != ownerID {
		return pkgerrors.NewForbiddenError("project belongs to another user")
	}
	if current.Version != rec.Version {
		return pkgerrors.NewConflictError("project was modified concurrently").
			WithCode("VERSION_CONFLICT").
			WithDetail("expected", rec.Version).
			WithDetail("actual", current.Version)
	}

	rec.Version++
	rec.UpdatedAt = r.now()
	rec.CreatedAt = current.CreatedAt
	r.records[rec.ID] = rec
	project.MarkPersisted(rec.Version, rec.UpdatedAt)
	return nil
}

// List returns the owner's projects, most recently updated first
func (r *ProjectRepository) List(ctx context.Context, ownerID string) ([]ports.ProjectSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []ports.ProjectSummary{}
	for _, rec := range r.records {
		if rec.UserID != ownerID {
			continue
		}
		out = append(out, ports.ProjectSummary{
			ID:                 rec.ID,
			Name:               rec.Name,
			TranscriptionModel: rec.TranscriptionModel,
			VisionModel:        rec.VisionModel,
			Image:              rec.Image,
			CreatedAt:          rec.CreatedAt,
			UpdatedAt:          rec.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// Delete removes the owner's project
func (r *ProjectRepository) Delete(ctx context.Context, ownerID string, id valueobjects.ProjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.records[id.String()]
	if !exists {
		return pkgerrors.NewNotFoundError("project " + id.String())
	}
	if rec.UserID != ownerID {
		return pkgerrors.NewForbiddenError("project belongs to another user")
	}
	delete(r.records, id.String())
	return nil
}

var _ ports.ProjectRepository = (*ProjectRepository)(nil)
