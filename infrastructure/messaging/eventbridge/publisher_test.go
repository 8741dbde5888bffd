package eventbridge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haydenbleasel/tersa-sub001/domain/events"
)

type fakeClient struct {
	mu     sync.Mutex
	calls  [][]types.PutEventsRequestEntry
	failN  int
	failed int32
}

func (f *fakeClient) PutEvents(_ context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failN > 0 {
		f.failN--
		return nil, errors.New("throttled")
	}
	f.calls = append(f.calls, in.Entries)
	out := &eventbridge.PutEventsOutput{FailedEntryCount: f.failed}
	if f.failed > 0 {
		out.Entries = []types.PutEventsResultEntry{{ErrorCode: aws.String("InternalFailure")}}
	}
	return out, nil
}

func newEvents(n int) []events.DomainEvent {
	out := make([]events.DomainEvent, n)
	for i := range out {
		out[i] = events.NewNodeAdded("p1", i+1, "n", "text", time.Now())
	}
	return out
}

func TestPublishBatch_SplitsIntoChunksOfTen(t *testing.T) {
	client := &fakeClient{}
	p := NewPublisher(client, "bus", "", zap.NewNop())

	require.NoError(t, p.PublishBatch(context.Background(), newEvents(23)))

	require.Len(t, client.calls, 3)
	assert.Len(t, client.calls[0], 10)
	assert.Len(t, client.calls[2], 3)
	entry := client.calls[0][0]
	assert.Equal(t, events.SourceCanvas, aws.ToString(entry.Source))
	assert.Equal(t, events.TypeNodeAdded, aws.ToString(entry.DetailType))
	assert.Contains(t, aws.ToString(entry.Detail), `"aggregate_id":"p1"`)
}

func TestPublish_RetriesTransientFailure(t *testing.T) {
	client := &fakeClient{failN: 1}
	p := NewPublisher(client, "bus", "canvas.test", zap.NewNop())
	p.backoff = time.Millisecond

	require.NoError(t, p.Publish(context.Background(), newEvents(1)[0]))
	assert.Len(t, client.calls, 1)
}

func TestPublish_FailedEntries(t *testing.T) {
	client := &fakeClient{failed: 1}
	p := NewPublisher(client, "bus", "", zap.NewNop())
	p.backoff = time.Millisecond

	err := p.Publish(context.Background(), newEvents(1)[0])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 events failed to publish")
}

func TestPublishBatch_Empty(t *testing.T) {
	client := &fakeClient{}
	p := NewPublisher(client, "bus", "", zap.NewNop())
	require.NoError(t, p.PublishBatch(context.Background(), nil))
	assert.Empty(t, client.calls)
}
