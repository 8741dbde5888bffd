package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/haydenbleasel/tersa-sub001/application/commands"
	"github.com/haydenbleasel/tersa-sub001/application/commands/bus"
	"github.com/haydenbleasel/tersa-sub001/application/ports"
	"github.com/haydenbleasel/tersa-sub001/domain/core/aggregates"
	"github.com/haydenbleasel/tersa-sub001/domain/core/entities"
	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
)

// CanvasHandler handles node and edge edits.
type CanvasHandler struct {
	store *projectStore
}

// NewCanvasHandler creates a new handler instance
func NewCanvasHandler(
	repo ports.ProjectRepository,
	publisher ports.EventPublisher,
	locks *Locks,
	retries int,
	logger *zap.Logger,
) *CanvasHandler {
	return &CanvasHandler{store: newProjectStore(repo, publisher, locks.projects(), retries, logger)}
}

// Handle implements bus.CommandHandler
func (h *CanvasHandler) Handle(ctx context.Context, cmd bus.Command) error {
	switch c := cmd.(type) {
	case *commands.CreateNodeCommand:
		return h.createNode(ctx, c)
	case *commands.UpdateNodeCommand:
		return h.onNode(ctx, c.UserID, c.ProjectID, c.NodeID, func(p *aggregates.Project, id valueobjects.NodeID) error {
			return p.UpdateNodeData(id, c.Data)
		})
	case *commands.MoveNodeCommand:
		position, err := valueobjects.NewPosition(c.X, c.Y)
		if err != nil {
			return err
		}
		return h.onNode(ctx, c.UserID, c.ProjectID, c.NodeID, func(p *aggregates.Project, id valueobjects.NodeID) error {
			return p.MoveNode(id, position)
		})
	case *commands.ConvertNodeCommand:
		kind, err := entities.ParseKind(c.Type)
		if err != nil {
			return err
		}
		return h.onNode(ctx, c.UserID, c.ProjectID, c.NodeID, func(p *aggregates.Project, id valueobjects.NodeID) error {
			return p.ConvertNode(id, kind)
		})
	case *commands.DeleteNodeCommand:
		return h.onNode(ctx, c.UserID, c.ProjectID, c.NodeID, func(p *aggregates.Project, id valueobjects.NodeID) error {
			return p.RemoveNode(id)
		})
	case *commands.ConnectNodesCommand:
		return h.connect(ctx, c)
	case *commands.DisconnectNodesCommand:
		return h.disconnect(ctx, c)
	}
	return fmt.Errorf("canvas handler cannot handle %T", cmd)
}

func (h *CanvasHandler) createNode(ctx context.Context, cmd *commands.CreateNodeCommand) error {
	projectID, err := parseProjectID(cmd.ProjectID)
	if err != nil {
		return err
	}
	nodeID, err := valueobjects.NewNodeIDFromString(cmd.NodeID)
	if err != nil {
		return err
	}
	kind, err := entities.ParseKind(cmd.Type)
	if err != nil {
		return err
	}
	position, err := valueobjects.NewPosition(cmd.X, cmd.Y)
	if err != nil {
		return err
	}
	node, err := entities.ReconstructNode(nodeID, kind, position, cmd.Data)
	if err != nil {
		return err
	}
	_, err = h.store.mutate(ctx, cmd.UserID, projectID, func(p *aggregates.Project) error {
		return p.AddNode(node)
	})
	return err
}

func (h *CanvasHandler) onNode(ctx context.Context, userID, rawProject, rawNode string, fn func(*aggregates.Project, valueobjects.NodeID) error) error {
	projectID, err := parseProjectID(rawProject)
	if err != nil {
		return err
	}
	nodeID, err := valueobjects.NewNodeIDFromString(rawNode)
	if err != nil {
		return err
	}
	_, err = h.store.mutate(ctx, userID, projectID, func(p *aggregates.Project) error {
		return fn(p, nodeID)
	})
	return err
}

func (h *CanvasHandler) connect(ctx context.Context, cmd *commands.ConnectNodesCommand) error {
	projectID, err := parseProjectID(cmd.ProjectID)
	if err != nil {
		return err
	}
	edgeID, err := valueobjects.NewEdgeIDFromString(cmd.EdgeID)
	if err != nil {
		return err
	}
	source, err := valueobjects.NewNodeIDFromString(cmd.Source)
	if err != nil {
		return err
	}
	target, err := valueobjects.NewNodeIDFromString(cmd.Target)
	if err != nil {
		return err
	}
	_, err = h.store.mutate(ctx, cmd.UserID, projectID, func(p *aggregates.Project) error {
		_, err := p.Connect(aggregates.EdgeSpec{
			ID:           edgeID,
			Source:       source,
			Target:       target,
			SourceHandle: cmd.SourceHandle,
			TargetHandle: cmd.TargetHandle,
		})
		return err
	})
	return err
}

func (h *CanvasHandler) disconnect(ctx context.Context, cmd *commands.DisconnectNodesCommand) error {
	projectID, err := parseProjectID(cmd.ProjectID)
	if err != nil {
		return err
	}
	edgeID, err := valueobjects.NewEdgeIDFromString(cmd.EdgeID)
	if err != nil {
		return err
	}
	_, err = h.store.mutate(ctx, cmd.UserID, projectID, func(p *aggregates.Project) error {
		return p.Disconnect(edgeID)
	})
	return err
}

// Register binds the handler to its commands.
func (h *CanvasHandler) Register(b *bus.CommandBus) error {
	for _, c := range []bus.Command{
		&commands.CreateNodeCommand{},
		&commands.UpdateNodeCommand{},
		&commands.MoveNodeCommand{},
		&commands.ConvertNodeCommand{},
		&commands.DeleteNodeCommand{},
		&commands.ConnectNodesCommand{},
		&commands.DisconnectNodesCommand{},
	} {
		if err := b.Register(c, h); err != nil {
			return err
		}
	}
	return nil
}
