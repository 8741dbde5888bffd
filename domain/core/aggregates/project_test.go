package aggregates

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/haydenbleasel/tersa-sub001/domain/config"
	"github.com/haydenbleasel/tersa-sub001/domain/core/entities"
	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pos(t *testing.T, x, y float64) valueobjects.Position {
	t.Helper()
	p, err := valueobjects.NewPosition(x, y)
	require.NoError(t, err)
	return p
}

func newTestProject(t *testing.T, opts ...Option) *Project {
	t.Helper()
	p, err := NewProject(valueobjects.ProjectID{}, "user-1", "Canvas", Defaults{VisionModel: "gpt-4o"}, opts...)
	require.NoError(t, err)
	return p
}

func addNode(t *testing.T, p *Project, kind entities.Kind, data string) *entities.Node {
	t.Helper()
	n, err := p.CreateNode(kind, pos(t, 0, 0), json.RawMessage(data))
	require.NoError(t, err)
	return n
}

func TestNewProject(t *testing.T) {
	tests := []struct {
		name     string
		userID   string
		pName    string
		wantErr  bool
		wantName string
	}{
		{name: "valid project", userID: "user-1", pName: "Launch video", wantName: "Launch video"},
		{name: "empty name uses default", userID: "user-1", pName: "", wantName: "Untitled"},
		{name: "empty user ID", userID: "", pName: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProject(valueobjects.ProjectID{}, tt.userID, tt.pName, Defaults{})
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, pkgerrors.IsValidation(err))
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.False(t, p.ID().IsZero())
			assert.Equal(t, tt.wantName, p.Name())
			assert.True(t, p.IsOwnedBy(tt.userID))
			assert.False(t, p.IsOwnedBy("someone-else"))
			assert.Equal(t, 0, p.NodeCount())
			assert.Len(t, p.GetUncommittedEvents(), 1)
		})
	}
}

func TestProject_ConnectMissingEndpoint(t *testing.T) {
	p := newTestProject(t)
	a := addNode(t, p, entities.KindText, `{"text":"a"}`)
	b := addNode(t, p, entities.KindText, `{"text":"b"}`)
	_, err := p.Connect(EdgeSpec{Source: a.ID(), Target: b.ID()})
	require.NoError(t, err)
	before := p.Edges()

	ghost := valueobjects.NewNodeID()
	tests := []struct {
		name string
		spec EdgeSpec
	}{
		{name: "missing source", spec: EdgeSpec{Source: ghost, Target: b.ID()}},
		{name: "missing target", spec: EdgeSpec{Source: a.ID(), Target: ghost}},
		{name: "both missing", spec: EdgeSpec{Source: ghost, Target: valueobjects.NewNodeID()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edge, err := p.Connect(tt.spec)
			require.Error(t, err)
			assert.Nil(t, edge)
			assert.True(t, pkgerrors.IsValidation(err))
			assert.Equal(t, before, p.Edges())
		})
	}
}

func TestProject_ConnectRejectsTerminalSources(t *testing.T) {
	p := newTestProject(t)
	video := addNode(t, p, entities.KindVideo, `{}`)
	drop := addNode(t, p, entities.KindDrop, `{}`)
	text := addNode(t, p, entities.KindText, `{}`)

	for _, source := range []*entities.Node{video, drop} {
		_, err := p.Connect(EdgeSpec{Source: source.ID(), Target: text.ID()})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsValidation(err))
	}
	assert.Equal(t, 0, p.EdgeCount())

	_, err := p.Connect(EdgeSpec{Source: text.ID(), Target: video.ID()})
	assert.NoError(t, err)
}

func TestProject_ConnectDuplicate(t *testing.T) {
	p := newTestProject(t)
	a := addNode(t, p, entities.KindText, `{}`)
	b := addNode(t, p, entities.KindImage, `{}`)

	_, err := p.Connect(EdgeSpec{Source: a.ID(), Target: b.ID()})
	require.NoError(t, err)
	_, err = p.Connect(EdgeSpec{Source: a.ID(), Target: b.ID()})
	assert.True(t, pkgerrors.IsConflict(err))

	_, err = p.Connect(EdgeSpec{Source: a.ID(), Target: b.ID(), TargetHandle: "reference"})
	assert.NoError(t, err)
	assert.Equal(t, 2, p.EdgeCount())
}

func TestProject_RemoveNodeDropsIncidentEdges(t *testing.T) {
	p := newTestProject(t)
	a := addNode(t, p, entities.KindText, `{}`)
	b := addNode(t, p, entities.KindText, `{}`)
	c := addNode(t, p, entities.KindText, `{}`)
	_, err := p.Connect(EdgeSpec{Source: a.ID(), Target: b.ID()})
	require.NoError(t, err)
	keep, err := p.Connect(EdgeSpec{Source: a.ID(), Target: c.ID()})
	require.NoError(t, err)
	_, err = p.Connect(EdgeSpec{Source: b.ID(), Target: c.ID()})
	require.NoError(t, err)

	require.NoError(t, p.RemoveNode(b.ID()))
	assert.Equal(t, 2, p.NodeCount())
	require.Len(t, p.Edges(), 1)
	assert.True(t, p.Edges()[0].Equal(keep))

	assert.True(t, pkgerrors.IsNotFound(p.RemoveNode(b.ID())))
}

func TestProject_ConvertNodeRevalidatesEdges(t *testing.T) {
	p := newTestProject(t)
	drop := addNode(t, p, entities.KindDrop, `{}`)
	text := addNode(t, p, entities.KindText, `{}`)
	_, err := p.Connect(EdgeSpec{Source: text.ID(), Target: drop.ID()})
	require.NoError(t, err)

	require.NoError(t, p.ConvertNode(drop.ID(), entities.KindImage))
	img, err := p.Node(drop.ID())
	require.NoError(t, err)
	assert.Equal(t, entities.KindImage, img.Kind())

	// image -> text is legal; turning the image into a video would orphan it.
	_, err = p.Connect(EdgeSpec{Source: img.ID(), Target: text.ID()})
	require.NoError(t, err)
	err = p.ConvertNode(img.ID(), entities.KindVideo)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))

	still, err := p.Node(img.ID())
	require.NoError(t, err)
	assert.Equal(t, entities.KindImage, still.Kind())
}

func TestProject_UpstreamInDocumentOrder(t *testing.T) {
	p := newTestProject(t)
	first := addNode(t, p, entities.KindText, `{"text":"Say hello"}`)
	second := addNode(t, p, entities.KindText, `{"text":"In French"}`)
	target := addNode(t, p, entities.KindText, `{"source":"transform"}`)
	other := addNode(t, p, entities.KindText, `{"text":"unrelated"}`)

	// connect in reverse order; upstream still follows the document
	_, err := p.Connect(EdgeSpec{Source: second.ID(), Target: target.ID()})
	require.NoError(t, err)
	_, err = p.Connect(EdgeSpec{Source: first.ID(), Target: target.ID()})
	require.NoError(t, err)
	_, err = p.Connect(EdgeSpec{Source: target.ID(), Target: other.ID()})
	require.NoError(t, err)

	up := p.Upstream(target.ID())
	assert.Equal(t, []string{"Say hello", "In French"}, entities.ExtractText(up))
}

func TestProject_ApplyGeneration(t *testing.T) {
	p := newTestProject(t)
	n := addNode(t, p, entities.KindText, `{"source":"transform"}`)

	err := p.ApplyGeneration(n.ID(), entities.Generation{Task: entities.TaskGenerate, Text: "Bonjour"})
	require.NoError(t, err)
	got, err := p.Node(n.ID())
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", got.Data().(*entities.TextData).Generated.Text)

	err = p.ApplyGeneration(n.ID(), entities.Generation{Task: entities.TaskTranscribe, Text: "nope"})
	require.Error(t, err)
	got, err = p.Node(n.ID())
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", got.Data().(*entities.TextData).Generated.Text)
}

func TestProject_UpdateNodeDataRejectsGenerated(t *testing.T) {
	p := newTestProject(t)
	n := addNode(t, p, entities.KindImage, `{}`)

	err := p.UpdateNodeData(n.ID(), json.RawMessage(`{"description":"forged"}`))
	require.Error(t, err)
	got, err := p.Node(n.ID())
	require.NoError(t, err)
	assert.False(t, got.HasGenerated())

	require.NoError(t, p.UpdateNodeData(n.ID(), json.RawMessage(`{"instructions":"make it blue","size":"1024x1024"}`)))
	got, err = p.Node(n.ID())
	require.NoError(t, err)
	assert.Equal(t, "make it blue", got.Instructions())
}

func TestProject_Limits(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	cfg.MaxNodesPerProject = 2
	p := newTestProject(t, WithLimits(cfg))

	addNode(t, p, entities.KindText, `{}`)
	addNode(t, p, entities.KindText, `{}`)
	_, err := p.CreateNode(entities.KindText, pos(t, 0, 0), nil)
	require.Error(t, err)
	assert.Equal(t, "NODE_LIMIT", pkgerrors.GetAppError(err).Code)
	assert.Equal(t, 2, p.NodeCount())
}

func TestProject_RenameAndDefaults(t *testing.T) {
	p := newTestProject(t)
	require.NoError(t, p.Rename("  Storyboard  "))
	assert.Equal(t, "Storyboard", p.Name())
	assert.Error(t, p.Rename("   "))

	p.SetDefaults(Defaults{TranscriptionModel: "whisper-1", VisionModel: "gpt-4.1"})
	assert.Equal(t, Defaults{TranscriptionModel: "whisper-1", VisionModel: "gpt-4.1"}, p.Defaults())

	require.NoError(t, p.SetImage("https://cdn.example.com/thumb.png"))
	assert.Error(t, p.SetImage("not a url"))
	assert.Equal(t, "https://cdn.example.com/thumb.png", p.Image())
}

func TestProject_Events(t *testing.T) {
	p := newTestProject(t)
	a := addNode(t, p, entities.KindText, `{}`)
	b := addNode(t, p, entities.KindText, `{}`)
	_, err := p.Connect(EdgeSpec{Source: a.ID(), Target: b.ID()})
	require.NoError(t, err)

	var types []string
	for _, e := range p.GetUncommittedEvents() {
		types = append(types, e.GetEventType())
	}
	assert.Equal(t, []string{"project.created", "project.node_added", "project.node_added", "project.nodes_connected"}, types)

	p.MarkEventsAsCommitted()
	assert.Empty(t, p.GetUncommittedEvents())
}

func BenchmarkProject_Connect(b *testing.B) {
	p, _ := NewProject(valueobjects.ProjectID{}, "user-1", "bench", Defaults{})
	origin, _ := valueobjects.NewPosition(0, 0)
	nodes := make([]*entities.Node, 200)
	for i := range nodes {
		nodes[i], _ = p.CreateNode(entities.KindText, origin, json.RawMessage(fmt.Sprintf(`{"text":"n%d"}`, i)))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s, t := nodes[i%len(nodes)], nodes[(i+1)%len(nodes)]
		_, _ = p.Connect(EdgeSpec{Source: s.ID(), Target: t.ID(), SourceHandle: fmt.Sprint(i)})
	}
}
