package entities

import (
	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
)

// Edge is a directed connection from one node's output to another's input.
// Handles identify ports on multi-port nodes and may be empty.
type Edge struct {
	id           valueobjects.EdgeID
	source       valueobjects.NodeID
	target       valueobjects.NodeID
	sourceHandle string
	targetHandle string
}

// NewEdge creates an edge with a fresh identifier.
func NewEdge(source, target valueobjects.NodeID, sourceHandle, targetHandle string) *Edge {
	return ReconstructEdge(valueobjects.NewEdgeID(), source, target, sourceHandle, targetHandle)
}

// ReconstructEdge rebuilds a stored edge.
func ReconstructEdge(id valueobjects.EdgeID, source, target valueobjects.NodeID, sourceHandle, targetHandle string) *Edge {
	return &Edge{
		id:           id,
		source:       source,
		target:       target,
		sourceHandle: sourceHandle,
		targetHandle: targetHandle,
	}
}

func (e *Edge) ID() valueobjects.EdgeID { return e.id }
func (e *Edge) Source() valueobjects.NodeID { return e.source }
func (e *Edge) Target() valueobjects.NodeID { return e.target }
func (e *Edge) SourceHandle() string { return e.sourceHandle }
func (e *Edge) TargetHandle() string { return e.targetHandle }

// Touches reports whether the node is either endpoint.
func (e *Edge) Touches(id valueobjects.NodeID) bool {
	return e.source.Equals(id) || e.target.Equals(id)
}

// SameConnection reports whether two edges join the same ports.
func (e *Edge) SameConnection(other *Edge) bool {
	return e.source.Equals(other.source) &&
		e.target.Equals(other.target) &&
		e.sourceHandle == other.sourceHandle &&
		e.targetHandle == other.targetHandle
}

// Equal compares identity and endpoints.
func (e *Edge) Equal(other *Edge) bool {
	return e.id.Equals(other.id) && e.SameConnection(other)
}
