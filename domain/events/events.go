package events

import (
	"time"
)

// SourceCanvas is the event source reported to external buses.
const SourceCanvas = "canvas.backend"

// Event type names.
const (
	TypeProjectCreated    = "project.created"
	TypeProjectUpdated    = "project.updated"
	TypeProjectDeleted    = "project.deleted"
	TypeContentReplaced   = "project.content_replaced"
	TypeNodeAdded         = "project.node_added"
	TypeNodeRemoved       = "project.node_removed"
	TypeNodeConverted     = "project.node_converted"
	TypeNodesConnected    = "project.nodes_connected"
	TypeNodesDisconnected = "project.nodes_disconnected"
	TypeNodeGenerated     = "project.node_generated"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

func newBase(projectID, eventType string, version int, at time.Time) BaseEvent {
	return BaseEvent{AggregateID: projectID, EventType: eventType, Timestamp: at, Version: version}
}

// ProjectCreated is raised when a user creates a project
type ProjectCreated struct {
	BaseEvent
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// NewProjectCreated creates a ProjectCreated event
func NewProjectCreated(projectID, userID, name string, at time.Time) ProjectCreated {
	return ProjectCreated{BaseEvent: newBase(projectID, TypeProjectCreated, 1, at), UserID: userID, Name: name}
}

// ProjectUpdated is raised when project metadata changes
type ProjectUpdated struct {
	BaseEvent
	Fields []string `json:"fields"`
}

// NewProjectUpdated creates a ProjectUpdated event
func NewProjectUpdated(projectID string, version int, fields []string, at time.Time) ProjectUpdated {
	return ProjectUpdated{BaseEvent: newBase(projectID, TypeProjectUpdated, version, at), Fields: fields}
}

// ProjectDeleted is raised when the owner deletes a project
type ProjectDeleted struct {
	BaseEvent
	UserID string `json:"user_id"`
}

// NewProjectDeleted creates a ProjectDeleted event
func NewProjectDeleted(projectID, userID string, version int, at time.Time) ProjectDeleted {
	return ProjectDeleted{BaseEvent: newBase(projectID, TypeProjectDeleted, version, at), UserID: userID}
}

// ContentReplaced is raised when the whole canvas is saved at once
type ContentReplaced struct {
	BaseEvent
	NodeCount int `json:"node_count"`
	EdgeCount int `json:"edge_count"`
}

// NewContentReplaced creates a ContentReplaced event
func NewContentReplaced(projectID string, version, nodes, edges int, at time.Time) ContentReplaced {
	return ContentReplaced{BaseEvent: newBase(projectID, TypeContentReplaced, version, at), NodeCount: nodes, EdgeCount: edges}
}

// NodeAdded is raised when a node is placed on the canvas
type NodeAdded struct {
	BaseEvent
	NodeID   string `json:"node_id"`
	NodeType string `json:"node_type"`
}

// NewNodeAdded creates a NodeAdded event
func NewNodeAdded(projectID string, version int, nodeID, nodeType string, at time.Time) NodeAdded {
	return NodeAdded{BaseEvent: newBase(projectID, TypeNodeAdded, version, at), NodeID: nodeID, NodeType: nodeType}
}

// NodeRemoved is raised when a node and its edges are removed
type NodeRemoved struct {
	BaseEvent
	NodeID       string   `json:"node_id"`
	RemovedEdges []string `json:"removed_edges,omitempty"`
}

// NewNodeRemoved creates a NodeRemoved event
func NewNodeRemoved(projectID string, version int, nodeID string, edges []string, at time.Time) NodeRemoved {
	return NodeRemoved{BaseEvent: newBase(projectID, TypeNodeRemoved, version, at), NodeID: nodeID, RemovedEdges: edges}
}

// NodeConverted is raised when a node changes kind
type NodeConverted struct {
	BaseEvent
	NodeID string `json:"node_id"`
	From   string `json:"from"`
	To     string `json:"to"`
}

// NewNodeConverted creates a NodeConverted event
func NewNodeConverted(projectID string, version int, nodeID, from, to string, at time.Time) NodeConverted {
	return NodeConverted{BaseEvent: newBase(projectID, TypeNodeConverted, version, at), NodeID: nodeID, From: from, To: to}
}

// NodesConnected is raised when an edge is created
type NodesConnected struct {
	BaseEvent
	EdgeID   string `json:"edge_id"`
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
}

// NewNodesConnected creates a NodesConnected event
func NewNodesConnected(projectID string, version int, edgeID, source, target string, at time.Time) NodesConnected {
	return NodesConnected{
		BaseEvent: newBase(projectID, TypeNodesConnected, version, at),
		EdgeID:    edgeID,
		SourceID:  source,
		TargetID:  target,
	}
}

// NodesDisconnected is raised when an edge is removed
type NodesDisconnected struct {
	BaseEvent
	EdgeID string `json:"edge_id"`
}

// NewNodesDisconnected creates a NodesDisconnected event
func NewNodesDisconnected(projectID string, version int, edgeID string, at time.Time) NodesDisconnected {
	return NodesDisconnected{BaseEvent: newBase(projectID, TypeNodesDisconnected, version, at), EdgeID: edgeID}
}

// NodeGenerated is raised when a model result is written to a node
type NodeGenerated struct {
	BaseEvent
	NodeID string `json:"node_id"`
	Task   string `json:"task"`
}

// NewNodeGenerated creates a NodeGenerated event
func NewNodeGenerated(projectID string, version int, nodeID, task string, at time.Time) NodeGenerated {
	return NodeGenerated{BaseEvent: newBase(projectID, TypeNodeGenerated, version, at), NodeID: nodeID, Task: task}
}
