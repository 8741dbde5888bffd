package aggregates

import (
	"encoding/json"

	"github.com/haydenbleasel/tersa-sub001/domain/config"
	"github.com/haydenbleasel/tersa-sub001/domain/core/entities"
	"github.com/haydenbleasel/tersa-sub001/domain/core/validators"
	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
)

// Content is the persisted projection of a canvas: the shape that crosses
// the storage boundary. Fields a canvas client keeps for display only
// (selection, measured size, drag state) are not part of it and are
// dropped on decode.
type Content struct {
	Nodes []SerializedNode `json:"nodes"`
	Edges []SerializedEdge `json:"edges"`
}

// SerializedNode is a node as stored.
type SerializedNode struct {
	ID       string                `json:"id"`
	Type     string                `json:"type"`
	Position valueobjects.Position `json:"position"`
	Data     json.RawMessage       `json:"data"`
}

// SerializedEdge is an edge as stored.
type SerializedEdge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// EmptyContent returns a canvas with no nodes or edges.
func EmptyContent() Content {
	return Content{Nodes: []SerializedNode{}, Edges: []SerializedEdge{}}
}

// ParseContent decodes stored content JSON. Empty input yields an empty canvas.
func ParseContent(raw []byte) (Content, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return EmptyContent(), nil
	}
	var c Content
	if err := json.Unmarshal(raw, &c); err != nil {
		if appErr := pkgerrors.GetAppError(err); appErr != nil {
			return Content{}, appErr
		}
		return Content{}, pkgerrors.NewValidationErrorf("invalid project content: %v", err).WithCause(err)
	}
	if c.Nodes == nil {
		c.Nodes = []SerializedNode{}
	}
	if c.Edges == nil {
		c.Edges = []SerializedEdge{}
	}
	return c, nil
}

// graph is the validated in-memory form of Content.
type graph struct {
	nodes []*entities.Node
	edges []*entities.Edge
}

// decodeContent validates every node and edge; nothing is returned unless
// the whole document is valid.
func decodeContent(c Content, limits *config.DomainConfig, edgeValidator *validators.EdgeValidator, nodeValidator *validators.NodeValidator) (*graph, error) {
	if len(c.Nodes) > limits.MaxNodesPerProject {
		return nil, pkgerrors.NewValidationErrorf("project exceeds %d nodes", limits.MaxNodesPerProject)
	}
	if len(c.Edges) > limits.MaxEdgesPerProject {
		return nil, pkgerrors.NewValidationErrorf("project exceeds %d edges", limits.MaxEdgesPerProject)
	}

	g := &graph{
		nodes: make([]*entities.Node, 0, len(c.Nodes)),
		edges: make([]*entities.Edge, 0, len(c.Edges)),
	}
	byID := make(map[valueobjects.NodeID]*entities.Node, len(c.Nodes))

	for i, sn := range c.Nodes {
		id, err := valueobjects.NewNodeIDFromString(sn.ID)
		if err != nil {
			return nil, withIndex(err, "nodes", i)
		}
		if _, dup := byID[id]; dup {
			return nil, pkgerrors.NewValidationErrorf("duplicate node id %q", sn.ID)
		}
		kind, err := entities.ParseKind(sn.Type)
		if err != nil {
			return nil, withIndex(err, "nodes", i)
		}
		node, err := entities.ReconstructNode(id, kind, sn.Position, sn.Data)
		if err != nil {
			return nil, withIndex(err, "nodes", i)
		}
		if err := nodeValidator.Validate(node); err != nil {
			return nil, withIndex(err, "nodes", i)
		}
		byID[id] = node
		g.nodes = append(g.nodes, node)
	}

	seen := make(map[valueobjects.EdgeID]struct{}, len(c.Edges))
	for i, se := range c.Edges {
		id, err := valueobjects.NewEdgeIDFromString(se.ID)
		if err != nil {
			return nil, withIndex(err, "edges", i)
		}
		if _, dup := seen[id]; dup {
			return nil, pkgerrors.NewValidationErrorf("duplicate edge id %q", se.ID)
		}
		source, target, err := resolveEndpoints(byID, se.Source, se.Target)
		if err != nil {
			return nil, withIndex(err, "edges", i)
		}
		if err := edgeValidator.Check(source, target); err != nil {
			return nil, withIndex(err, "edges", i)
		}
		edge := entities.ReconstructEdge(id, source.ID(), target.ID(), se.SourceHandle, se.TargetHandle)
		if !limits.AllowDuplicateEdges && hasConnection(g.edges, edge) {
			return nil, pkgerrors.NewValidationErrorf("edge %q duplicates an existing connection", se.ID)
		}
		seen[id] = struct{}{}
		g.edges = append(g.edges, edge)
	}
	return g, nil
}

func resolveEndpoints(byID map[valueobjects.NodeID]*entities.Node, source, target string) (*entities.Node, *entities.Node, error) {
	sourceID, err := valueobjects.NewNodeIDFromString(source)
	if err != nil {
		return nil, nil, err
	}
	targetID, err := valueobjects.NewNodeIDFromString(target)
	if err != nil {
		return nil, nil, err
	}
	s, ok := byID[sourceID]
	if !ok {
		return nil, nil, missingEndpoint("source", source)
	}
	t, ok := byID[targetID]
	if !ok {
		return nil, nil, missingEndpoint("target", target)
	}
	return s, t, nil
}

func missingEndpoint(end, id string) error {
	return pkgerrors.NewValidationErrorf("edge %s %q does not exist", end, id).
		WithCode("MISSING_ENDPOINT").
		WithDetail(end, id)
}

func hasConnection(edges []*entities.Edge, candidate *entities.Edge) bool {
	for _, e := range edges {
		if e.SameConnection(candidate) {
			return true
		}
	}
	return false
}

func withIndex(err error, collection string, index int) error {
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		return appErr.WithDetail(collection+"_index", index)
	}
	return err
}

func encodeContent(nodes []*entities.Node, edges []*entities.Edge) (Content, error) {
	c := Content{
		Nodes: make([]SerializedNode, 0, len(nodes)),
		Edges: make([]SerializedEdge, 0, len(edges)),
	}
	for _, n := range nodes {
		data, err := n.MarshalData()
		if err != nil {
			return Content{}, err
		}
		c.Nodes = append(c.Nodes, SerializedNode{
			ID:       n.ID().String(),
			Type:     n.Kind().String(),
			Position: n.Position(),
			Data:     data,
		})
	}
	for _, e := range edges {
		c.Edges = append(c.Edges, SerializedEdge{
			ID:           e.ID().String(),
			Source:       e.Source().String(),
			Target:       e.Target().String(),
			SourceHandle: e.SourceHandle(),
			TargetHandle: e.TargetHandle(),
		})
	}
	return c, nil
}
