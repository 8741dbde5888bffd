package aggregates

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/haydenbleasel/tersa-sub001/domain/config"
	"github.com/haydenbleasel/tersa-sub001/domain/core/entities"
	"github.com/haydenbleasel/tersa-sub001/domain/core/validators"
	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
	"github.com/haydenbleasel/tersa-sub001/domain/events"
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
)

// Project is the aggregate root for one user's canvas document.
// Every mutation validates first and only then changes state, so a failed
// call leaves the project exactly as it was.
type Project struct {
	id                 valueobjects.ProjectID
	userID             string
	name               string
	transcriptionModel string
	visionModel        string
	image              string
	createdAt          time.Time
	updatedAt          time.Time
	version            int

	nodes []*entities.Node
	edges []*entities.Edge

	limits        *config.DomainConfig
	edgeValidator *validators.EdgeValidator
	nodeValidator *validators.NodeValidator

	events []events.DomainEvent
}

// Defaults are the project-level model selections used when a node has no
// explicit model.
type Defaults struct {
	TranscriptionModel string
	VisionModel        string
}

// EdgeSpec describes a proposed connection.
type EdgeSpec struct {
	// ID is optional; a zero ID gets a fresh identifier.
	ID           valueobjects.EdgeID
	Source       valueobjects.NodeID
	Target       valueobjects.NodeID
	SourceHandle string
	TargetHandle string
}

// Option customises a project's rules.
type Option func(*Project)

// WithLimits overrides the default domain limits.
func WithLimits(cfg *config.DomainConfig) Option {
	return func(p *Project) {
		if cfg != nil {
			p.limits = cfg
		}
	}
}

// WithEdgeValidator overrides the default connection rule table.
func WithEdgeValidator(v *validators.EdgeValidator) Option {
	return func(p *Project) {
		if v != nil {
			p.edgeValidator = v
		}
	}
}

func newProject(opts []Option) *Project {
	p := &Project{
		limits:        config.DefaultDomainConfig(),
		edgeValidator: validators.NewEdgeValidator(),
		nodes:         []*entities.Node{},
		edges:         []*entities.Edge{},
		events:        []events.DomainEvent{},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.nodeValidator = validators.NewNodeValidator(p.limits)
	return p
}

// NewProject creates an empty project owned by userID.
func NewProject(id valueobjects.ProjectID, userID, name string, defaults Defaults, opts ...Option) (*Project, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.NewValidationError("userID required")
	}
	if id.IsZero() {
		id = valueobjects.NewProjectID()
	}

	p := newProject(opts)
	if strings.TrimSpace(name) == "" {
		name = p.limits.DefaultProjectName
	}
	if err := p.checkName(name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p.id = id
	p.userID = userID
	p.name = name
	p.transcriptionModel = defaults.TranscriptionModel
	p.visionModel = defaults.VisionModel
	p.createdAt = now
	p.updatedAt = now

	p.addEvent(events.NewProjectCreated(id.String(), userID, name, now))
	return p, nil
}

// ProjectRecord is the flat form a repository reads back.
type ProjectRecord struct {
	ID                 string
	UserID             string
	Name               string
	TranscriptionModel string
	VisionModel        string
	Image              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Version            int
	Content            Content
}

// ReconstructProject rebuilds a project from storage, validating its content.
func ReconstructProject(rec ProjectRecord, opts ...Option) (*Project, error) {
	id, err := valueobjects.NewProjectIDFromString(rec.ID)
	if err != nil {
		return nil, err
	}
	if rec.UserID == "" {
		return nil, pkgerrors.NewValidationError("required fields missing for project reconstruction")
	}

	p := newProject(opts)
	g, err := decodeContent(rec.Content, p.limits, p.edgeValidator, p.nodeValidator)
	if err != nil {
		return nil, err
	}

	p.id = id
	p.userID = rec.UserID
	p.name = rec.Name
	p.transcriptionModel = rec.TranscriptionModel
	p.visionModel = rec.VisionModel
	p.image = rec.Image
	p.createdAt = rec.CreatedAt
	p.updatedAt = rec.UpdatedAt
	p.version = rec.Version
	p.nodes = g.nodes
	p.edges = g.edges
	return p, nil
}

// Record flattens the project for storage.
func (p *Project) Record() (ProjectRecord, error) {
	content, err := p.Serialize()
	if err != nil {
		return ProjectRecord{}, err
	}
	return ProjectRecord{
		ID:                 p.id.String(),
		UserID:             p.userID,
		Name:               p.name,
		TranscriptionModel: p.transcriptionModel,
		VisionModel:        p.visionModel,
		Image:              p.image,
		CreatedAt:          p.createdAt,
		UpdatedAt:          p.updatedAt,
		Version:            p.version,
		Content:            content,
	}, nil
}

// ID returns the project's unique identifier
func (p *Project) ID() valueobjects.ProjectID {
	return p.id
}

// UserID returns the owner's ID
func (p *Project) UserID() string {
	return p.userID
}

// Name returns the project's display name
func (p *Project) Name() string {
	return p.name
}

// Defaults returns the project-level model selections
func (p *Project) Defaults() Defaults {
	return Defaults{TranscriptionModel: p.transcriptionModel, VisionModel: p.visionModel}
}

// Image returns the project's thumbnail URL
func (p *Project) Image() string {
	return p.image
}

// CreatedAt returns when the project was created
func (p *Project) CreatedAt() time.Time {
	return p.createdAt
}

// UpdatedAt returns when the project was last persisted
func (p *Project) UpdatedAt() time.Time {
	return p.updatedAt
}

// Version returns the persisted revision the project was loaded at.
func (p *Project) Version() int {
	return p.version
}

// IsOwnedBy reports whether userID owns the project.
func (p *Project) IsOwnedBy(userID string) bool {
	return userID != "" && p.userID == userID
}

// MarkPersisted records a successful save.
func (p *Project) MarkPersisted(version int, at time.Time) {
	p.version = version
	p.updatedAt = at
}

// Rename changes the display name.
func (p *Project) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return pkgerrors.NewValidationError("project name required")
	}
	if err := p.checkName(name); err != nil {
		return err
	}
	p.name = name
	p.addEvent(events.NewProjectUpdated(p.id.String(), p.version, []string{"name"}, time.Now().UTC()))
	return nil
}

// SetDefaults replaces the project-level model selections.
func (p *Project) SetDefaults(d Defaults) {
	p.transcriptionModel = d.TranscriptionModel
	p.visionModel = d.VisionModel
	p.addEvent(events.NewProjectUpdated(p.id.String(), p.version, []string{"transcriptionModel", "visionModel"}, time.Now().UTC()))
}

// SetImage sets or clears the thumbnail URL.
func (p *Project) SetImage(rawURL string) error {
	if rawURL != "" {
		if _, err := valueobjects.NewMedia(rawURL, "image/*"); err != nil {
			return err
		}
	}
	p.image = rawURL
	p.addEvent(events.NewProjectUpdated(p.id.String(), p.version, []string{"image"}, time.Now().UTC()))
	return nil
}

// MarkDeleted records deletion by the owner.
func (p *Project) MarkDeleted() {
	p.addEvent(events.NewProjectDeleted(p.id.String(), p.userID, p.version, time.Now().UTC()))
}

// Node returns a copy of the node with the given id.
func (p *Project) Node(id valueobjects.NodeID) (*entities.Node, error) {
	i := p.nodeIndex(id)
	if i < 0 {
		return nil, pkgerrors.NewNotFoundError("node " + id.String())
	}
	return p.nodes[i].Clone(), nil
}

// HasNode checks if a node exists without error
func (p *Project) HasNode(id valueobjects.NodeID) bool {
	return p.nodeIndex(id) >= 0
}

// Nodes returns copies of all nodes in document order.
func (p *Project) Nodes() []*entities.Node {
	out := make([]*entities.Node, len(p.nodes))
	for i, n := range p.nodes {
		out[i] = n.Clone()
	}
	return out
}

// Edges returns all edges in insertion order.
func (p *Project) Edges() []*entities.Edge {
	out := make([]*entities.Edge, len(p.edges))
	copy(out, p.edges)
	return out
}

// NodeCount returns the number of nodes
func (p *Project) NodeCount() int {
	return len(p.nodes)
}

// EdgeCount returns the number of edges
func (p *Project) EdgeCount() int {
	return len(p.edges)
}

// Upstream returns copies of the nodes feeding into id, in document order.
func (p *Project) Upstream(id valueobjects.NodeID) []*entities.Node {
	sources := make(map[valueobjects.NodeID]struct{})
	for _, e := range p.edges {
		if e.Target().Equals(id) {
			sources[e.Source()] = struct{}{}
		}
	}
	var out []*entities.Node
	for _, n := range p.nodes {
		if _, ok := sources[n.ID()]; ok {
			out = append(out, n.Clone())
		}
	}
	return out
}

// CreateNode places a new node of the given kind with a fresh identifier.
func (p *Project) CreateNode(kind entities.Kind, position valueobjects.Position, initial json.RawMessage) (*entities.Node, error) {
	node, err := entities.NewNode(kind, position, initial)
	if err != nil {
		return nil, err
	}
	if err := p.AddNode(node); err != nil {
		return nil, err
	}
	return node.Clone(), nil
}

// AddNode places a node built by the caller.
func (p *Project) AddNode(node *entities.Node) error {
	if node == nil {
		return pkgerrors.NewValidationError("node cannot be nil")
	}
	if p.HasNode(node.ID()) {
		return pkgerrors.NewConflictError("node " + node.ID().String() + " already exists")
	}
	if len(p.nodes) >= p.limits.MaxNodesPerProject {
		return pkgerrors.NewValidationErrorf("maximum of %d nodes reached", p.limits.MaxNodesPerProject).WithCode("NODE_LIMIT")
	}
	if err := p.nodeValidator.Validate(node); err != nil {
		return err
	}

	p.nodes = append(p.nodes, node.Clone())
	p.addEvent(events.NewNodeAdded(p.id.String(), p.version, node.ID().String(), node.Kind().String(), time.Now().UTC()))
	return nil
}

// Connect validates and adds an edge. A missing endpoint or a rejected
// connection leaves the edge set unchanged.
func (p *Project) Connect(spec EdgeSpec) (*entities.Edge, error) {
	si, ti := p.nodeIndex(spec.Source), p.nodeIndex(spec.Target)
	if si < 0 {
		return nil, missingEndpoint("source", spec.Source.String())
	}
	if ti < 0 {
		return nil, missingEndpoint("target", spec.Target.String())
	}
	if err := p.edgeValidator.Check(p.nodes[si], p.nodes[ti]); err != nil {
		return nil, err
	}
	if len(p.edges) >= p.limits.MaxEdgesPerProject {
		return nil, pkgerrors.NewValidationErrorf("maximum of %d edges reached", p.limits.MaxEdgesPerProject).WithCode("EDGE_LIMIT")
	}

	edge := entities.NewEdge(spec.Source, spec.Target, spec.SourceHandle, spec.TargetHandle)
	if !spec.ID.IsZero() {
		for _, e := range p.edges {
			if e.ID().Equals(spec.ID) {
				return nil, pkgerrors.NewConflictError("edge " + spec.ID.String() + " already exists")
			}
		}
		edge = entities.ReconstructEdge(spec.ID, spec.Source, spec.Target, spec.SourceHandle, spec.TargetHandle)
	}
	if !p.limits.AllowDuplicateEdges && hasConnection(p.edges, edge) {
		return nil, pkgerrors.NewConflictError("edge already exists").WithCode("DUPLICATE_EDGE")
	}

	p.edges = append(p.edges, edge)
	p.addEvent(events.NewNodesConnected(p.id.String(), p.version, edge.ID().String(), spec.Source.String(), spec.Target.String(), time.Now().UTC()))
	return edge, nil
}

// Disconnect removes an edge.
func (p *Project) Disconnect(id valueobjects.EdgeID) error {
	for i, e := range p.edges {
		if e.ID().Equals(id) {
			p.edges = append(p.edges[:i:i], p.edges[i+1:]...)
			p.addEvent(events.NewNodesDisconnected(p.id.String(), p.version, id.String(), time.Now().UTC()))
			return nil
		}
	}
	return pkgerrors.NewNotFoundError("edge " + id.String())
}

// RemoveNode deletes a node and every edge touching it.
func (p *Project) RemoveNode(id valueobjects.NodeID) error {
	i := p.nodeIndex(id)
	if i < 0 {
		return pkgerrors.NewNotFoundError("node " + id.String())
	}

	kept := make([]*entities.Edge, 0, len(p.edges))
	var removed []string
	for _, e := range p.edges {
		if e.Touches(id) {
			removed = append(removed, e.ID().String())
			continue
		}
		kept = append(kept, e)
	}

	p.nodes = append(p.nodes[:i:i], p.nodes[i+1:]...)
	p.edges = kept
	p.addEvent(events.NewNodeRemoved(p.id.String(), p.version, id.String(), removed, time.Now().UTC()))
	return nil
}

// MoveNode sets a node's position.
func (p *Project) MoveNode(id valueobjects.NodeID, position valueobjects.Position) error {
	i := p.nodeIndex(id)
	if i < 0 {
		return pkgerrors.NewNotFoundError("node " + id.String())
	}
	p.nodes[i].MoveTo(position)
	return nil
}

// UpdateNodeData merges user-authored fields into a node's data.
func (p *Project) UpdateNodeData(id valueobjects.NodeID, patch json.RawMessage) error {
	i := p.nodeIndex(id)
	if i < 0 {
		return pkgerrors.NewNotFoundError("node " + id.String())
	}
	next := p.nodes[i].Clone()
	if err := next.UpdateData(patch); err != nil {
		return err
	}
	if err := p.nodeValidator.Validate(next); err != nil {
		return err
	}
	p.nodes[i] = next
	return nil
}

// ConvertNode changes a node's kind and re-validates every edge touching it.
func (p *Project) ConvertNode(id valueobjects.NodeID, kind entities.Kind) error {
	i := p.nodeIndex(id)
	if i < 0 {
		return pkgerrors.NewNotFoundError("node " + id.String())
	}
	from := p.nodes[i].Kind()
	next := p.nodes[i].Clone()
	if err := next.ConvertTo(kind); err != nil {
		return err
	}

	for _, e := range p.edges {
		if !e.Touches(id) {
			continue
		}
		source, target := p.nodes[p.nodeIndex(e.Source())], p.nodes[p.nodeIndex(e.Target())]
		if e.Source().Equals(id) {
			source = next
		}
		if e.Target().Equals(id) {
			target = next
		}
		if err := p.edgeValidator.Check(source, target); err != nil {
			if appErr := pkgerrors.GetAppError(err); appErr != nil {
				return appErr.WithDetail("edge", e.ID().String())
			}
			return err
		}
	}

	p.nodes[i] = next
	p.addEvent(events.NewNodeConverted(p.id.String(), p.version, id.String(), from.String(), kind.String(), time.Now().UTC()))
	return nil
}

// ApplyGeneration writes a model result into a node's generated fields.
// This is the only path by which generated fields change.
func (p *Project) ApplyGeneration(id valueobjects.NodeID, g entities.Generation) error {
	i := p.nodeIndex(id)
	if i < 0 {
		return pkgerrors.NewNotFoundError("node " + id.String())
	}
	next := p.nodes[i].Clone()
	if err := next.ApplyGeneration(g); err != nil {
		return err
	}
	p.nodes[i] = next
	p.addEvent(events.NewNodeGenerated(p.id.String(), p.version, id.String(), string(g.Task), time.Now().UTC()))
	return nil
}

// Serialize returns the persisted projection of nodes and edges in
// document order.
func (p *Project) Serialize() (Content, error) {
	return encodeContent(p.nodes, p.edges)
}

// Restore replaces the canvas with decoded content. The whole document is
// validated before anything changes.
func (p *Project) Restore(c Content) error {
	g, err := decodeContent(c, p.limits, p.edgeValidator, p.nodeValidator)
	if err != nil {
		return err
	}
	p.nodes = g.nodes
	p.edges = g.edges
	p.addEvent(events.NewContentReplaced(p.id.String(), p.version, len(g.nodes), len(g.edges), time.Now().UTC()))
	return nil
}

// GetUncommittedEvents returns all uncommitted domain events
func (p *Project) GetUncommittedEvents() []events.DomainEvent {
	out := make([]events.DomainEvent, len(p.events))
	copy(out, p.events)
	return out
}

// MarkEventsAsCommitted clears all uncommitted events
func (p *Project) MarkEventsAsCommitted() {
	p.events = []events.DomainEvent{}
}

func (p *Project) addEvent(event events.DomainEvent) {
	p.events = append(p.events, event)
}

func (p *Project) nodeIndex(id valueobjects.NodeID) int {
	for i, n := range p.nodes {
		if n.ID().Equals(id) {
			return i
		}
	}
	return -1
}

func (p *Project) checkName(name string) error {
	if utf8.RuneCountInString(name) > p.limits.MaxNameLength {
		return pkgerrors.NewValidationErrorf("project name exceeds %d characters", p.limits.MaxNameLength)
	}
	return nil
}
