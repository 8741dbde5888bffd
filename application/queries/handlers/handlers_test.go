package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haydenbleasel/tersa-sub001/application/generation"
	"github.com/haydenbleasel/tersa-sub001/application/ports"
	"github.com/haydenbleasel/tersa-sub001/application/queries"
	"github.com/haydenbleasel/tersa-sub001/application/queries/bus"
	"github.com/haydenbleasel/tersa-sub001/domain/core/aggregates"
	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/persistence/memory"
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
)

func seed(t *testing.T) (*bus.QueryBus, *aggregates.Project, string) {
	t.Helper()
	repo := memory.NewProjectRepository()
	p, err := aggregates.NewProject(valueobjects.ProjectID{}, "alice", "Board", aggregates.Defaults{VisionModel: "gpt-4o"})
	require.NoError(t, err)
	pos, _ := valueobjects.NewPosition(1, 2)
	n, err := p.CreateNode("text", pos, json.RawMessage(`{"text":"hi"}`))
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), p))

	b := bus.NewQueryBus()
	require.NoError(t, NewProjectQueryHandler(repo).Register(b))
	return b, p, n.ID().String()
}

func TestGetProject(t *testing.T) {
	b, p, _ := seed(t)
	res, err := b.Ask(context.Background(), queries.GetProjectQuery{UserID: "alice", ProjectID: p.ID().String()})
	require.NoError(t, err)
	view := res.(queries.ProjectView)
	assert.Equal(t, "Board", view.Name)
	assert.Equal(t, "gpt-4o", view.VisionModel)
	assert.Equal(t, "alice", view.UserID)
	assert.Len(t, view.Content.Nodes, 1)

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	var keys map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &keys))
	for _, k := range []string{"id", "name", "transcriptionModel", "visionModel", "createdAt", "updatedAt", "content", "userId"} {
		assert.Contains(t, keys, k)
	}

	_, err = b.Ask(context.Background(), queries.GetProjectQuery{UserID: "bob", ProjectID: p.ID().String()})
	assert.True(t, pkgerrors.IsForbidden(err))
}

func TestGetNode(t *testing.T) {
	b, p, nodeID := seed(t)
	res, err := b.Ask(context.Background(), queries.GetNodeQuery{UserID: "alice", ProjectID: p.ID().String(), NodeID: nodeID})
	require.NoError(t, err)
	node := res.(aggregates.SerializedNode)
	assert.Equal(t, "text", node.Type)

	_, err = b.Ask(context.Background(), queries.GetNodeQuery{UserID: "alice", ProjectID: p.ID().String(), NodeID: "nope"})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestListProjects(t *testing.T) {
	b, _, _ := seed(t)
	res, err := b.Ask(context.Background(), queries.ListProjectsQuery{UserID: "alice"})
	require.NoError(t, err)
	assert.Len(t, res.([]ports.ProjectSummary), 1)

	_, err = b.Ask(context.Background(), queries.ListProjectsQuery{})
	assert.True(t, pkgerrors.IsValidation(err))
}

type staticSource struct{ c *generation.Catalog }

func (s staticSource) Catalog() *generation.Catalog { return s.c }

func TestListModels(t *testing.T) {
	noop := generation.InvokerFunc(func(context.Context, generation.Request) (generation.Output, error) {
		return generation.Output{}, nil
	})
	c, err := generation.NewCatalog(
		generation.ModelDescriptor{ID: "dall-e-3", Provider: "openai", Capability: generation.CapabilityImage, Invoker: noop},
		generation.ModelDescriptor{ID: "gpt-4o-mini", Provider: "openai", Capability: generation.CapabilityText, Invoker: noop},
		generation.ModelDescriptor{ID: "claude", Provider: "anthropic", Capability: generation.CapabilityText, Default: true, Invoker: noop},
	)
	require.NoError(t, err)

	b := bus.NewQueryBus()
	require.NoError(t, NewModelQueryHandler(staticSource{c}).Register(b))

	res, err := b.Ask(context.Background(), queries.ListModelsQuery{})
	require.NoError(t, err)
	models := res.([]queries.ModelView)
	require.Len(t, models, 3)
	assert.Equal(t, "gpt-4o-mini", models[0].ID)
	assert.False(t, models[0].Default)
	assert.True(t, models[1].Default)
	assert.Equal(t, "dall-e-3", models[2].ID)
	assert.True(t, models[2].Default)

	res, err = b.Ask(context.Background(), queries.ListModelsQuery{Capability: "image"})
	require.NoError(t, err)
	assert.Len(t, res.([]queries.ModelView), 1)

	_, err = b.Ask(context.Background(), queries.ListModelsQuery{Capability: "smell"})
	assert.True(t, pkgerrors.IsValidation(err))
}
