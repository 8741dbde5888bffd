package handlers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haydenbleasel/tersa-sub001/application/commands"
	"github.com/haydenbleasel/tersa-sub001/application/commands/bus"
	"github.com/haydenbleasel/tersa-sub001/application/generation"
	"github.com/haydenbleasel/tersa-sub001/domain/core/aggregates"
	"github.com/haydenbleasel/tersa-sub001/domain/core/entities"
	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/persistence/memory"
	"github.com/haydenbleasel/tersa-sub001/internal/mocks"
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
)

const owner = "user-1"

type fixture struct {
	bus          *bus.CommandBus
	repo         *memory.ProjectRepository
	publisher    *mocks.MockEventPublisher
	entitlements *mocks.MockEntitlements
	limiter      *mocks.MockRateLimiter
	projectID    string
}

func newFixture(t *testing.T, invoker generation.Invoker) *fixture {
	t.Helper()
	f := &fixture{
		bus:          bus.NewCommandBus(),
		repo:         memory.NewProjectRepository(),
		publisher:    new(mocks.MockEventPublisher),
		entitlements: new(mocks.MockEntitlements),
		limiter:      new(mocks.MockRateLimiter),
		projectID:    uuid.NewString(),
	}
	f.publisher.On("PublishBatch", mock.Anything, mock.Anything).Return(nil)

	catalog, err := generation.NewCatalog(generation.ModelDescriptor{
		ID: "echo", Capability: generation.CapabilityText, Invoker: invoker,
	})
	require.NoError(t, err)
	dispatcher := generation.NewDispatcher(catalog, nil, zap.NewNop())

	locks := NewLocks()
	logger := zap.NewNop()
	require.NoError(t, NewProjectHandler(f.repo, f.publisher, locks, 3, logger).Register(f.bus))
	require.NoError(t, NewCanvasHandler(f.repo, f.publisher, locks, 3, logger).Register(f.bus))
	require.NoError(t, NewGenerationHandler(f.repo, f.publisher, dispatcher, f.entitlements, f.limiter, locks, 5, 16, logger).Register(f.bus))

	require.NoError(t, f.bus.Send(context.Background(), &commands.CreateProjectCommand{
		ProjectID: f.projectID, UserID: owner, Name: "Test",
	}))
	return f
}

func (f *fixture) entitled() {
	f.entitlements.On("IsSubscribed", mock.Anything, owner).Return(true, nil)
	f.limiter.On("Allow", mock.Anything, "generate:"+owner).Return(true, nil)
}

func (f *fixture) addNode(t *testing.T, kind, data string) string {
	t.Helper()
	id := uuid.NewString()
	require.NoError(t, f.bus.Send(context.Background(), &commands.CreateNodeCommand{
		ProjectID: f.projectID, UserID: owner, NodeID: id, Type: kind, Data: []byte(data),
	}))
	return id
}

func (f *fixture) connect(t *testing.T, source, target string) {
	t.Helper()
	require.NoError(t, f.bus.Send(context.Background(), &commands.ConnectNodesCommand{
		ProjectID: f.projectID, UserID: owner, EdgeID: uuid.NewString(), Source: source, Target: target,
	}))
}

func (f *fixture) load(t *testing.T) *aggregates.Project {
	t.Helper()
	id, err := valueobjects.NewProjectIDFromString(f.projectID)
	require.NoError(t, err)
	p, err := f.repo.Load(context.Background(), owner, id)
	require.NoError(t, err)
	return p
}

func (f *fixture) node(t *testing.T, id string) *entities.Node {
	t.Helper()
	nodeID, err := valueobjects.NewNodeIDFromString(id)
	require.NoError(t, err)
	n, err := f.load(t).Node(nodeID)
	require.NoError(t, err)
	return n
}

var echo = generation.InvokerFunc(func(_ context.Context, req generation.Request) (generation.Output, error) {
	return generation.Output{Text: req.Prompt}, nil
})

func TestCanvasCommands(t *testing.T) {
	f := newFixture(t, echo)
	ctx := context.Background()

	a := f.addNode(t, "text", `{"text":"hello"}`)
	b := f.addNode(t, "text", `{"source":"transform"}`)
	f.connect(t, a, b)

	require.NoError(t, f.bus.Send(ctx, &commands.MoveNodeCommand{ProjectID: f.projectID, UserID: owner, NodeID: a, X: 10, Y: 20}))
	require.NoError(t, f.bus.Send(ctx, &commands.UpdateNodeCommand{ProjectID: f.projectID, UserID: owner, NodeID: a, Data: []byte(`{"text":"bye"}`)}))

	p := f.load(t)
	assert.Equal(t, 2, p.NodeCount())
	assert.Equal(t, 1, p.EdgeCount())
	n := f.node(t, a)
	assert.Equal(t, 10.0, n.Position().X())
	assert.Equal(t, "bye", n.Data().(*entities.TextData).Text)

	// a video source may not feed anything
	err := f.bus.Send(ctx, &commands.ConvertNodeCommand{ProjectID: f.projectID, UserID: owner, NodeID: a, Type: "video"})
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Equal(t, entities.KindText, f.node(t, a).Kind())

	err = f.bus.Send(ctx, &commands.ConnectNodesCommand{
		ProjectID: f.projectID, UserID: owner, EdgeID: uuid.NewString(), Source: a, Target: "ghost",
	})
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Equal(t, 1, f.load(t).EdgeCount())

	require.NoError(t, f.bus.Send(ctx, &commands.DeleteNodeCommand{ProjectID: f.projectID, UserID: owner, NodeID: a}))
	p = f.load(t)
	assert.Equal(t, 1, p.NodeCount())
	assert.Equal(t, 0, p.EdgeCount())
}

func TestProjectCommands_OwnerScoping(t *testing.T) {
	f := newFixture(t, echo)
	ctx := context.Background()

	name := "Mine"
	err := f.bus.Send(ctx, &commands.UpdateProjectCommand{ProjectID: f.projectID, UserID: "intruder", Name: &name})
	assert.True(t, pkgerrors.IsForbidden(err))

	err = f.bus.Send(ctx, &commands.DeleteProjectCommand{ProjectID: f.projectID, UserID: "intruder"})
	assert.True(t, pkgerrors.IsForbidden(err))

	vision := "gpt-4o"
	require.NoError(t, f.bus.Send(ctx, &commands.UpdateProjectCommand{ProjectID: f.projectID, UserID: owner, Name: &name, VisionModel: &vision}))
	p := f.load(t)
	assert.Equal(t, "Mine", p.Name())
	assert.Equal(t, "gpt-4o", p.Defaults().VisionModel)

	require.NoError(t, f.bus.Send(ctx, &commands.DeleteProjectCommand{ProjectID: f.projectID, UserID: owner}))
	id, _ := valueobjects.NewProjectIDFromString(f.projectID)
	_, err = f.repo.Load(ctx, owner, id)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestSaveProjectContent(t *testing.T) {
	f := newFixture(t, echo)
	a := f.addNode(t, "text", `{"text":"hello"}`)
	_ = a

	content := aggregates.Content{
		Nodes: []aggregates.SerializedNode{
			{ID: "n1", Type: "text", Data: []byte(`{"source":"primitive","text":"one"}`)},
			{ID: "n2", Type: "image", Data: []byte(`{"source":"transform"}`)},
		},
		Edges: []aggregates.SerializedEdge{{ID: "e1", Source: "n1", Target: "n2"}},
	}
	require.NoError(t, f.bus.Send(context.Background(), &commands.SaveProjectContentCommand{
		ProjectID: f.projectID, UserID: owner, Content: content,
	}))
	p := f.load(t)
	assert.Equal(t, 2, p.NodeCount())
	assert.Equal(t, 1, p.EdgeCount())

	bad := aggregates.Content{
		Nodes: []aggregates.SerializedNode{{ID: "v", Type: "video", Data: []byte(`{}`)}, {ID: "t", Type: "text", Data: []byte(`{}`)}},
		Edges: []aggregates.SerializedEdge{{ID: "e", Source: "v", Target: "t"}},
	}
	err := f.bus.Send(context.Background(), &commands.SaveProjectContentCommand{ProjectID: f.projectID, UserID: owner, Content: bad})
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Equal(t, 2, f.load(t).NodeCount())
}

func TestGenerateNode(t *testing.T) {
	f := newFixture(t, echo)
	f.entitled()

	a := f.addNode(t, "text", `{"text":"Say hello"}`)
	b := f.addNode(t, "text", `{"text":"In French"}`)
	target := f.addNode(t, "text", `{"source":"transform"}`)
	f.connect(t, a, target)
	f.connect(t, b, target)

	cmd := &commands.GenerateNodeCommand{ProjectID: f.projectID, UserID: owner, NodeID: target}
	require.NoError(t, f.bus.Send(context.Background(), cmd))
	require.NotNil(t, cmd.Result)
	assert.Equal(t, "echo", cmd.Result.Model)

	data := f.node(t, target).Data().(*entities.TextData)
	require.NotNil(t, data.Generated)
	assert.Equal(t, "--- Text Prompts ---\nSay hello\nIn French", data.Generated.Text)
}

func TestGenerateNode_UpstreamFailureLeavesGeneratedAbsent(t *testing.T) {
	failing := generation.InvokerFunc(func(context.Context, generation.Request) (generation.Output, error) {
		return generation.Output{}, errors.New("boom")
	})
	f := newFixture(t, failing)
	f.entitled()

	a := f.addNode(t, "text", `{"text":"Say hello"}`)
	target := f.addNode(t, "text", `{"source":"transform"}`)
	f.connect(t, a, target)

	err := f.bus.Send(context.Background(), &commands.GenerateNodeCommand{ProjectID: f.projectID, UserID: owner, NodeID: target})
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUpstream))
	assert.False(t, f.node(t, target).HasGenerated())
}

func TestGenerateNode_RequiresSubscription(t *testing.T) {
	f := newFixture(t, echo)
	f.entitlements.On("IsSubscribed", mock.Anything, owner).Return(false, nil)
	target := f.addNode(t, "text", `{"source":"transform","instructions":"hi"}`)

	err := f.bus.Send(context.Background(), &commands.GenerateNodeCommand{ProjectID: f.projectID, UserID: owner, NodeID: target})
	assert.True(t, pkgerrors.IsForbidden(err))
	f.limiter.AssertNotCalled(t, "Allow", mock.Anything, mock.Anything)
}

func TestGenerateNode_RateLimited(t *testing.T) {
	f := newFixture(t, echo)
	f.entitlements.On("IsSubscribed", mock.Anything, owner).Return(true, nil)
	f.limiter.On("Allow", mock.Anything, "generate:"+owner).Return(false, nil)
	target := f.addNode(t, "text", `{"source":"transform","instructions":"hi"}`)

	err := f.bus.Send(context.Background(), &commands.GenerateNodeCommand{ProjectID: f.projectID, UserID: owner, NodeID: target})
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeRateLimit))
}

func TestGenerateNode_ConcurrentDistinctNodes(t *testing.T) {
	slowEcho := generation.InvokerFunc(func(_ context.Context, req generation.Request) (generation.Output, error) {
		time.Sleep(10 * time.Millisecond)
		return generation.Output{Text: req.Prompt}, nil
	})
	f := newFixture(t, slowEcho)
	f.entitled()

	const n = 6
	targets := make([]string, n)
	for i := range targets {
		src := f.addNode(t, "text", `{"text":"prompt `+string(rune('a'+i))+`"}`)
		targets[i] = f.addNode(t, "text", `{"source":"transform"}`)
		f.connect(t, src, targets[i])
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i, id := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = f.bus.Send(context.Background(), &commands.GenerateNodeCommand{ProjectID: f.projectID, UserID: owner, NodeID: id})
		}()
	}
	wg.Wait()

	for i, id := range targets {
		require.NoError(t, errs[i])
		data := f.node(t, id).Data().(*entities.TextData)
		require.NotNil(t, data.Generated, "node %d lost its result", i)
		assert.True(t, strings.HasSuffix(data.Generated.Text, "prompt "+string(rune('a'+i))))
	}
}

func TestGenerateNode_SameNodeRunsOneAtATime(t *testing.T) {
	var inFlight, peak, calls atomic.Int32
	tracking := generation.InvokerFunc(func(_ context.Context, req generation.Request) (generation.Output, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		calls.Add(1)
		return generation.Output{Text: req.Prompt}, nil
	})
	f := newFixture(t, tracking)
	f.entitled()

	src := f.addNode(t, "text", `{"text":"prompt"}`)
	target := f.addNode(t, "text", `{"source":"transform"}`)
	f.connect(t, src, target)

	const n = 4
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = f.bus.Send(context.Background(), &commands.GenerateNodeCommand{ProjectID: f.projectID, UserID: owner, NodeID: target})
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(n), calls.Load())
	assert.Equal(t, int32(1), peak.Load())
	assert.True(t, f.node(t, target).HasGenerated())
}

func TestGenerateNode_ConvertedDuringCallIsLeftUntouched(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	blocking := generation.InvokerFunc(func(_ context.Context, _ generation.Request) (generation.Output, error) {
		close(started)
		<-release
		return generation.Output{Text: "result"}, nil
	})
	f := newFixture(t, blocking)
	f.entitled()
	ctx := context.Background()

	src := f.addNode(t, "text", `{"text":"prompt"}`)
	target := f.addNode(t, "text", `{"source":"transform"}`)
	f.connect(t, src, target)

	done := make(chan error, 1)
	go func() {
		done <- f.bus.Send(ctx, &commands.GenerateNodeCommand{ProjectID: f.projectID, UserID: owner, NodeID: target})
	}()

	<-started
	require.NoError(t, f.bus.Send(ctx, &commands.ConvertNodeCommand{ProjectID: f.projectID, UserID: owner, NodeID: target, Type: "code"}))
	close(release)

	err := <-done
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))
	assert.Equal(t, "NODE_CHANGED", pkgerrors.GetAppError(err).Code)

	node := f.node(t, target)
	assert.Equal(t, entities.KindCode, node.Kind())
	assert.False(t, node.HasGenerated())
	assert.Nil(t, node.Data().(*entities.CodeData).Generated)
}

func TestGenerateNodes_Batch(t *testing.T) {
	f := newFixture(t, echo)
	f.entitled()

	src := f.addNode(t, "text", `{"text":"shared"}`)
	t1 := f.addNode(t, "text", `{"source":"transform"}`)
	t2 := f.addNode(t, "code", `{"source":"transform"}`)
	f.connect(t, src, t1)
	f.connect(t, src, t2)

	cmd := &commands.GenerateNodesCommand{
		ProjectID: f.projectID,
		UserID:    owner,
		Items: []commands.GenerationTarget{
			{NodeID: t1},
			{NodeID: t2},
			{NodeID: "missing"},
		},
	}
	require.NoError(t, f.bus.Send(context.Background(), cmd))
	require.Len(t, cmd.Results, 3)
	assert.NoError(t, cmd.Results[0].Error)
	assert.NoError(t, cmd.Results[1].Error)
	assert.True(t, pkgerrors.IsNotFound(cmd.Results[2].Error))

	assert.True(t, f.node(t, t1).HasGenerated())
	code := f.node(t, t2).Data().(*entities.CodeData)
	require.NotNil(t, code.Generated)
	assert.Equal(t, "javascript", code.Generated.Language)

	dup := &commands.GenerateNodesCommand{ProjectID: f.projectID, UserID: owner, Items: []commands.GenerationTarget{{NodeID: t1}, {NodeID: t1}}}
	assert.True(t, pkgerrors.IsValidation(f.bus.Send(context.Background(), dup)))
}

func TestCommandValidation(t *testing.T) {
	f := newFixture(t, echo)
	err := f.bus.Send(context.Background(), &commands.CreateNodeCommand{ProjectID: f.projectID, UserID: owner, NodeID: "x", Type: "spreadsheet"})
	assert.True(t, pkgerrors.IsValidation(err))

	err = f.bus.Send(context.Background(), &commands.GenerateNodeCommand{ProjectID: f.projectID, UserID: owner, NodeID: "x", Task: "dream"})
	assert.True(t, pkgerrors.IsValidation(err))
}
