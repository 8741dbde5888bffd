package handlers

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/haydenbleasel/tersa-sub001/application/commands"
	"github.com/haydenbleasel/tersa-sub001/application/commands/bus"
	"github.com/haydenbleasel/tersa-sub001/application/generation"
	"github.com/haydenbleasel/tersa-sub001/application/ports"
	"github.com/haydenbleasel/tersa-sub001/domain/core/aggregates"
	"github.com/haydenbleasel/tersa-sub001/domain/core/entities"
	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
)

// GenerationHandler runs model calls for nodes and writes the results back.
//
// A node generates at most once at a time. The model call happens without
// holding the project lock, so other edits and generations on the same
// project proceed; the write-back reloads the project and touches only the
// target node's generated fields.
type GenerationHandler struct {
	store        *projectStore
	nodeLocks    nodeLocker
	dispatcher   *generation.Dispatcher
	entitlements ports.Entitlements
	limiter      ports.RateLimiter
	maxBatch     int
	logger       *zap.Logger
}

type nodeLocker interface {
	Lock(key string) func()
}

// NewGenerationHandler creates a new handler instance
func NewGenerationHandler(
	repo ports.ProjectRepository,
	publisher ports.EventPublisher,
	dispatcher *generation.Dispatcher,
	entitlements ports.Entitlements,
	limiter ports.RateLimiter,
	locks *Locks,
	retries int,
	maxBatch int,
	logger *zap.Logger,
) *GenerationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenerationHandler{
		store:        newProjectStore(repo, publisher, locks.projects(), retries, logger),
		nodeLocks:    locks.nodes(),
		dispatcher:   dispatcher,
		entitlements: entitlements,
		limiter:      limiter,
		maxBatch:     maxBatch,
		logger:       logger,
	}
}

// Handle implements bus.CommandHandler
func (h *GenerationHandler) Handle(ctx context.Context, cmd bus.Command) error {
	switch c := cmd.(type) {
	case *commands.GenerateNodeCommand:
		return h.generateOne(ctx, c)
	case *commands.GenerateNodesCommand:
		return h.generateMany(ctx, c)
	}
	return fmt.Errorf("generation handler cannot handle %T", cmd)
}

// authorize checks the subscription and rate limit of the caller.
func (h *GenerationHandler) authorize(ctx context.Context, userID string) error {
	if h.entitlements != nil {
		ok, err := h.entitlements.IsSubscribed(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(err, "failed to check subscription")
		}
		if !ok {
			return pkgerrors.NewForbiddenError("an active subscription is required to generate").WithCode("SUBSCRIPTION_REQUIRED")
		}
	}
	if h.limiter != nil {
		ok, err := h.limiter.Allow(ctx, "generate:"+userID)
		if err != nil {
			return pkgerrors.Wrap(err, "failed to check rate limit")
		}
		if !ok {
			return pkgerrors.NewTooManyRequestsError("too many generation requests, try again shortly").WithCode("GENERATION_RATE_LIMITED")
		}
	}
	return nil
}

type target struct {
	id      valueobjects.NodeID
	task    entities.Task
	modelID string
}

func parseTarget(nodeID, task, modelID string) (target, error) {
	id, err := valueobjects.NewNodeIDFromString(nodeID)
	if err != nil {
		return target{}, err
	}
	t, err := entities.ParseTask(task)
	if err != nil {
		return target{}, err
	}
	return target{id: id, task: t, modelID: modelID}, nil
}

func (h *GenerationHandler) generateOne(ctx context.Context, cmd *commands.GenerateNodeCommand) error {
	projectID, err := parseProjectID(cmd.ProjectID)
	if err != nil {
		return err
	}
	t, err := parseTarget(cmd.NodeID, cmd.Task, cmd.ModelID)
	if err != nil {
		return err
	}
	if err := h.authorize(ctx, cmd.UserID); err != nil {
		return err
	}

	unlock := h.nodeLocks.Lock(projectID.String() + "/" + t.id.String())
	defer unlock()

	p, err := h.store.repo.Load(ctx, cmd.UserID, projectID)
	if err != nil {
		return err
	}
	req, err := requestFor(p, cmd.UserID, t)
	if err != nil {
		return err
	}
	res, err := h.dispatcher.Generate(ctx, req)
	if err != nil {
		return err
	}

	kind := req.Target.Kind()
	_, err = h.store.mutate(ctx, cmd.UserID, projectID, func(p *aggregates.Project) error {
		return applyGeneration(p, t.id, kind, res.Generation)
	})
	if err != nil {
		return err
	}
	g := res.Generation
	cmd.Result = &commands.GenerationOutcome{NodeID: t.id.String(), Model: res.Model.ID, Generation: &g}
	return nil
}

func (h *GenerationHandler) generateMany(ctx context.Context, cmd *commands.GenerateNodesCommand) error {
	if h.maxBatch > 0 && len(cmd.Items) > h.maxBatch {
		return pkgerrors.NewValidationErrorf("at most %d nodes can be generated at once", h.maxBatch).WithCode("BATCH_TOO_LARGE")
	}
	projectID, err := parseProjectID(cmd.ProjectID)
	if err != nil {
		return err
	}
	targets := make([]target, len(cmd.Items))
	seen := make(map[string]bool, len(cmd.Items))
	for i, item := range cmd.Items {
		t, err := parseTarget(item.NodeID, item.Task, item.ModelID)
		if err != nil {
			return err
		}
		if seen[t.id.String()] {
			return pkgerrors.NewValidationErrorf("node %s appears more than once", t.id).WithCode("DUPLICATE_NODE")
		}
		seen[t.id.String()] = true
		targets[i] = t
	}
	if err := h.authorize(ctx, cmd.UserID); err != nil {
		return err
	}

	keys := make([]string, len(targets))
	for i, t := range targets {
		keys[i] = projectID.String() + "/" + t.id.String()
	}
	sort.Strings(keys)
	for _, k := range keys {
		unlock := h.nodeLocks.Lock(k)
		defer unlock()
	}

	p, err := h.store.repo.Load(ctx, cmd.UserID, projectID)
	if err != nil {
		return err
	}

	outcomes := make([]commands.GenerationOutcome, len(targets))
	kinds := make([]entities.Kind, len(targets))
	var reqs []generation.GenerateRequest
	var reqIndex []int
	for i, t := range targets {
		outcomes[i].NodeID = t.id.String()
		req, err := requestFor(p, cmd.UserID, t)
		if err != nil {
			outcomes[i].Error = err
			continue
		}
		kinds[i] = req.Target.Kind()
		reqs = append(reqs, req)
		reqIndex = append(reqIndex, i)
	}

	for j, r := range h.dispatcher.GenerateBatch(ctx, reqs) {
		i := reqIndex[j]
		if r.Err != nil {
			outcomes[i].Error = r.Err
			continue
		}
		g := r.Result.Generation
		outcomes[i].Model = r.Result.Model.ID
		outcomes[i].Generation = &g
	}

	pending := 0
	for _, o := range outcomes {
		if o.Generation != nil {
			pending++
		}
	}
	if pending > 0 {
		_, err = h.store.mutate(ctx, cmd.UserID, projectID, func(p *aggregates.Project) error {
			for i := range outcomes {
				o := &outcomes[i]
				if o.Generation == nil {
					continue
				}
				if err := applyGeneration(p, targets[i].id, kinds[i], *o.Generation); err != nil {
					o.Error = err
					o.Generation = nil
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	cmd.Results = outcomes
	h.logger.Info("Batch generation finished",
		zap.String("project_id", projectID.String()),
		zap.Int("requested", len(targets)),
		zap.Int("succeeded", countSucceeded(outcomes)),
	)
	return nil
}

// applyGeneration writes g onto the node unless its type changed while the
// model was running; the result was produced for the old type.
func applyGeneration(p *aggregates.Project, id valueobjects.NodeID, kind entities.Kind, g entities.Generation) error {
	node, err := p.Node(id)
	if err != nil {
		return err
	}
	if node.Kind() != kind {
		return pkgerrors.NewConflictError("node changed type during generation").
			WithCode("NODE_CHANGED").
			WithDetail("node", id.String()).
			WithDetail("expected", kind.String()).
			WithDetail("actual", node.Kind().String())
	}
	return p.ApplyGeneration(id, g)
}

func requestFor(p *aggregates.Project, owner string, t target) (generation.GenerateRequest, error) {
	node, err := p.Node(t.id)
	if err != nil {
		return generation.GenerateRequest{}, err
	}
	return generation.GenerateRequest{
		Owner:    owner,
		Target:   node,
		Upstream: p.Upstream(t.id),
		ModelID:  t.modelID,
		Task:     t.task,
		Defaults: p.Defaults(),
	}, nil
}

func countSucceeded(outcomes []commands.GenerationOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Error == nil && o.Generation != nil {
			n++
		}
	}
	return n
}

// Register binds the handler to its commands.
func (h *GenerationHandler) Register(b *bus.CommandBus) error {
	if err := b.Register(&commands.GenerateNodeCommand{}, h); err != nil {
		return err
	}
	return b.Register(&commands.GenerateNodesCommand{}, h)
}
