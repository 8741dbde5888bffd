package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/haydenbleasel/tersa-sub001/application/ports"
	"github.com/haydenbleasel/tersa-sub001/domain/core/aggregates"
	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
	"github.com/haydenbleasel/tersa-sub001/pkg/utils"
)

// projectStore serializes writers of one project inside this process and
// retries saves that lose an optimistic version race with another process.
type projectStore struct {
	repo      ports.ProjectRepository
	publisher ports.EventPublisher
	locks     *utils.KeyedMutex
	retries   int
	logger    *zap.Logger
}

func newProjectStore(repo ports.ProjectRepository, publisher ports.EventPublisher, locks *utils.KeyedMutex, retries int, logger *zap.Logger) *projectStore {
	if locks == nil {
		locks = utils.NewKeyedMutex()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &projectStore{repo: repo, publisher: publisher, locks: locks, retries: retries, logger: logger}
}

func parseProjectID(raw string) (valueobjects.ProjectID, error) {
	return valueobjects.NewProjectIDFromString(raw)
}

// mutate loads the owner's project, applies fn and saves. fn runs again on
// a fresh copy when the save reports a version conflict.
func (s *projectStore) mutate(ctx context.Context, userID string, id valueobjects.ProjectID, fn func(*aggregates.Project) error) (*aggregates.Project, error) {
	unlock := s.locks.Lock("project:" + id.String())
	defer unlock()

	for attempt := 0; ; attempt++ {
		p, err := s.repo.Load(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		if err := fn(p); err != nil {
			return nil, err
		}
		err = s.repo.Save(ctx, userID, p)
		if err == nil {
			s.publish(ctx, p)
			return p, nil
		}
		if !pkgerrors.IsConflict(err) || attempt >= s.retries {
			return nil, err
		}
		s.logger.Info("Retrying project save after version conflict",
			zap.String("project_id", id.String()),
			zap.Int("attempt", attempt+1),
		)
	}
}

// publish sends the project's pending events. The write has already
// succeeded, so a publish failure is logged rather than returned.
func (s *projectStore) publish(ctx context.Context, p *aggregates.Project) {
	evts := p.GetUncommittedEvents()
	if len(evts) == 0 || s.publisher == nil {
		p.MarkEventsAsCommitted()
		return
	}
	if err := s.publisher.PublishBatch(ctx, evts); err != nil {
		s.logger.Error("Failed to publish domain events",
			zap.String("project_id", p.ID().String()),
			zap.Int("count", len(evts)),
			zap.Error(err),
		)
	}
	p.MarkEventsAsCommitted()
}
