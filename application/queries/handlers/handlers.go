package handlers

import (
	"context"
	"fmt"

	"github.com/haydenbleasel/tersa-sub001/application/generation"
	"github.com/haydenbleasel/tersa-sub001/application/ports"
	"github.com/haydenbleasel/tersa-sub001/application/queries"
	"github.com/haydenbleasel/tersa-sub001/application/queries/bus"
	"github.com/haydenbleasel/tersa-sub001/domain/core/aggregates"
	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
)

// ProjectQueryHandler answers project and node reads.
type ProjectQueryHandler struct {
	repo ports.ProjectRepository
}

// NewProjectQueryHandler creates a new handler instance
func NewProjectQueryHandler(repo ports.ProjectRepository) *ProjectQueryHandler {
	return &ProjectQueryHandler{repo: repo}
}

// Handle implements bus.QueryHandler
func (h *ProjectQueryHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	switch q := query.(type) {
	case queries.GetProjectQuery:
		p, err := h.load(ctx, q.UserID, q.ProjectID)
		if err != nil {
			return nil, err
		}
		return ViewOf(p)
	case queries.ListProjectsQuery:
		return h.repo.List(ctx, q.UserID)
	case queries.GetNodeQuery:
		p, err := h.load(ctx, q.UserID, q.ProjectID)
		if err != nil {
			return nil, err
		}
		id, err := valueobjects.NewNodeIDFromString(q.NodeID)
		if err != nil {
			return nil, err
		}
		if _, err := p.Node(id); err != nil {
			return nil, err
		}
		content, err := p.Serialize()
		if err != nil {
			return nil, err
		}
		for _, n := range content.Nodes {
			if n.ID == q.NodeID {
				return n, nil
			}
		}
		return nil, pkgerrors.NewNotFoundError("node " + q.NodeID)
	}
	return nil, fmt.Errorf("project query handler cannot handle %T", query)
}

func (h *ProjectQueryHandler) load(ctx context.Context, userID, rawID string) (*aggregates.Project, error) {
	id, err := valueobjects.NewProjectIDFromString(rawID)
	if err != nil {
		return nil, err
	}
	return h.repo.Load(ctx, userID, id)
}

// ViewOf renders the persisted layout of a project.
func ViewOf(p *aggregates.Project) (queries.ProjectView, error) {
	content, err := p.Serialize()
	if err != nil {
		return queries.ProjectView{}, err
	}
	d := p.Defaults()
	return queries.ProjectView{
		ID:                 p.ID().String(),
		Name:               p.Name(),
		TranscriptionModel: d.TranscriptionModel,
		VisionModel:        d.VisionModel,
		CreatedAt:          p.CreatedAt(),
		UpdatedAt:          p.UpdatedAt(),
		Content:            content,
		UserID:             p.UserID(),
		Image:              p.Image(),
	}, nil
}

// Register binds the handler to its queries.
func (h *ProjectQueryHandler) Register(b *bus.QueryBus) error {
	for _, q := range []bus.Query{queries.GetProjectQuery{}, queries.ListProjectsQuery{}, queries.GetNodeQuery{}} {
		if err := b.Register(q, h); err != nil {
			return err
		}
	}
	return nil
}

// CatalogSource returns the model catalog in effect.
type CatalogSource interface {
	Catalog() *generation.Catalog
}

// ModelQueryHandler lists the model catalog.
type ModelQueryHandler struct {
	source CatalogSource
}

// NewModelQueryHandler creates a new handler instance
func NewModelQueryHandler(source CatalogSource) *ModelQueryHandler {
	return &ModelQueryHandler{source: source}
}

// Handle implements bus.QueryHandler
func (h *ModelQueryHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.ListModelsQuery)
	if !ok {
		return nil, fmt.Errorf("model query handler cannot handle %T", query)
	}
	catalog := h.source.Catalog()
	out := []queries.ModelView{}
	for _, m := range catalog.List() {
		if q.Capability != "" && string(m.Capability) != q.Capability {
			continue
		}
		def, _ := catalog.Default(m.Capability)
		out = append(out, queries.ModelView{
			ID:         m.ID,
			Label:      m.Label,
			Provider:   m.Provider,
			Capability: string(m.Capability),
			Default:    def.ID == m.ID,
		})
	}
	return out, nil
}

// Register binds the handler to its query.
func (h *ModelQueryHandler) Register(b *bus.QueryBus) error {
	return b.Register(queries.ListModelsQuery{}, h)
}
