// Package mocks provides testify mocks of the application ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/haydenbleasel/tersa-sub001/application/ports"
	"github.com/haydenbleasel/tersa-sub001/domain/core/aggregates"
	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
	"github.com/haydenbleasel/tersa-sub001/domain/events"
)

// MockProjectRepository is a mock implementation of ports.ProjectRepository
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Create(ctx context.Context, project *aggregates.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) Load(ctx context.Context, ownerID string, id valueobjects.ProjectID) (*aggregates.Project, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*aggregates.Project), args.Error(1)
}

func (m *MockProjectRepository) Save(ctx context.Context, ownerID string, project *aggregates.Project) error {
	args := m.Called(ctx, ownerID, project)
	return args.Error(0)
}

func (m *MockProjectRepository) List(ctx context.Context, ownerID string) ([]ports.ProjectSummary, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.ProjectSummary), args.Error(1)
}

func (m *MockProjectRepository) Delete(ctx context.Context, ownerID string, id valueobjects.ProjectID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

// MockObjectStorage is a mock implementation of ports.ObjectStorage
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Put(ctx context.Context, ownerNamespace string, data []byte, mediaType string) (string, error) {
	args := m.Called(ctx, ownerNamespace, data, mediaType)
	return args.String(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of ports.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	args := m.Called(ctx, evts)
	return args.Error(0)
}

// MockEntitlements is a mock implementation of ports.Entitlements
type MockEntitlements struct {
	mock.Mock
}

func (m *MockEntitlements) IsSubscribed(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

// MockRateLimiter is a mock implementation of ports.RateLimiter
type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

var (
	_ ports.ProjectRepository = (*MockProjectRepository)(nil)
	_ ports.ObjectStorage     = (*MockObjectStorage)(nil)
	_ ports.EventPublisher    = (*MockEventPublisher)(nil)
	_ ports.Entitlements      = (*MockEntitlements)(nil)
	_ ports.RateLimiter       = (*MockRateLimiter)(nil)
)
