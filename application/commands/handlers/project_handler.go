package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/haydenbleasel/tersa-sub001/application/commands"
	"github.com/haydenbleasel/tersa-sub001/application/commands/bus"
	"github.com/haydenbleasel/tersa-sub001/application/ports"
	"github.com/haydenbleasel/tersa-sub001/domain/core/aggregates"
)

// ProjectHandler handles project lifecycle commands.
type ProjectHandler struct {
	store *projectStore
	opts  []aggregates.Option
}

// NewProjectHandler creates a new handler instance
func NewProjectHandler(
	repo ports.ProjectRepository,
	publisher ports.EventPublisher,
	locks *Locks,
	retries int,
	logger *zap.Logger,
	opts ...aggregates.Option,
) *ProjectHandler {
	return &ProjectHandler{
		store: newProjectStore(repo, publisher, locks.projects(), retries, logger),
		opts:  opts,
	}
}

// Handle implements bus.CommandHandler
func (h *ProjectHandler) Handle(ctx context.Context, cmd bus.Command) error {
	switch c := cmd.(type) {
	case *commands.CreateProjectCommand:
		return h.create(ctx, c)
	case *commands.UpdateProjectCommand:
		return h.update(ctx, c)
	case *commands.DeleteProjectCommand:
		return h.delete(ctx, c)
	case *commands.SaveProjectContentCommand:
		return h.saveContent(ctx, c)
	}
	return fmt.Errorf("project handler cannot handle %T", cmd)
}

func (h *ProjectHandler) create(ctx context.Context, cmd *commands.CreateProjectCommand) error {
	id, err := parseProjectID(cmd.ProjectID)
	if err != nil {
		return err
	}
	p, err := aggregates.NewProject(id, cmd.UserID, cmd.Name, aggregates.Defaults{
		TranscriptionModel: cmd.TranscriptionModel,
		VisionModel:        cmd.VisionModel,
	}, h.opts...)
	if err != nil {
		return err
	}
	if err := h.store.repo.Create(ctx, p); err != nil {
		return err
	}
	h.store.publish(ctx, p)
	return nil
}

func (h *ProjectHandler) update(ctx context.Context, cmd *commands.UpdateProjectCommand) error {
	id, err := parseProjectID(cmd.ProjectID)
	if err != nil {
		return err
	}
	_, err = h.store.mutate(ctx, cmd.UserID, id, func(p *aggregates.Project) error {
		if cmd.Name != nil {
			if err := p.Rename(*cmd.Name); err != nil {
				return err
			}
		}
		if cmd.TranscriptionModel != nil || cmd.VisionModel != nil {
			d := p.Defaults()
			if cmd.TranscriptionModel != nil {
				d.TranscriptionModel = *cmd.TranscriptionModel
			}
			if cmd.VisionModel != nil {
				d.VisionModel = *cmd.VisionModel
			}
			p.SetDefaults(d)
		}
		if cmd.Image != nil {
			return p.SetImage(*cmd.Image)
		}
		return nil
	})
	return err
}

func (h *ProjectHandler) delete(ctx context.Context, cmd *commands.DeleteProjectCommand) error {
	id, err := parseProjectID(cmd.ProjectID)
	if err != nil {
		return err
	}
	unlock := h.store.locks.Lock("project:" + id.String())
	defer unlock()

	p, err := h.store.repo.Load(ctx, cmd.UserID, id)
	if err != nil {
		return err
	}
	if err := h.store.repo.Delete(ctx, cmd.UserID, id); err != nil {
		return err
	}
	p.MarkEventsAsCommitted()
	p.MarkDeleted()
	h.store.publish(ctx, p)
	return nil
}

func (h *ProjectHandler) saveContent(ctx context.Context, cmd *commands.SaveProjectContentCommand) error {
	id, err := parseProjectID(cmd.ProjectID)
	if err != nil {
		return err
	}
	_, err = h.store.mutate(ctx, cmd.UserID, id, func(p *aggregates.Project) error {
		return p.Restore(cmd.Content)
	})
	return err
}

// Register binds the handler to its commands.
func (h *ProjectHandler) Register(b *bus.CommandBus) error {
	for _, c := range []bus.Command{
		&commands.CreateProjectCommand{},
		&commands.UpdateProjectCommand{},
		&commands.DeleteProjectCommand{},
		&commands.SaveProjectContentCommand{},
	} {
		if err := b.Register(c, h); err != nil {
			return err
		}
	}
	return nil
}

