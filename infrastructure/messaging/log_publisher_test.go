package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/haydenbleasel/tersa-sub001/domain/events"
	"github.com/haydenbleasel/tersa-sub001/internal/mocks"
)

func TestLogPublisher_LogsEvent(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	p := NewLogPublisher(zap.New(core))

	evt := events.NewProjectCreated("p1", "u1", "Untitled", time.Now())
	assert.NoError(t, p.Publish(context.Background(), evt))

	entries := logs.FilterMessage("Domain event").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, events.TypeProjectCreated, entries[0].ContextMap()["eventType"])
	}
}

func TestFanOut_TriesEveryPublisher(t *testing.T) {
	failing := new(mocks.MockEventPublisher)
	ok := new(mocks.MockEventPublisher)
	failing.On("Publish", mock.Anything, mock.Anything).Return(errors.New("down"))
	ok.On("Publish", mock.Anything, mock.Anything).Return(nil)

	err := FanOut{failing, ok}.Publish(context.Background(), events.NewProjectCreated("p1", "u1", "x", time.Now()))

	assert.EqualError(t, err, "down")
	failing.AssertExpectations(t)
	ok.AssertExpectations(t)
}
