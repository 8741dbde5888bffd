package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/haydenbleasel/tersa-sub001/application/commands"
	"github.com/haydenbleasel/tersa-sub001/application/commands/bus"
	"github.com/haydenbleasel/tersa-sub001/application/queries"
	querybus "github.com/haydenbleasel/tersa-sub001/application/queries/bus"
	"github.com/haydenbleasel/tersa-sub001/domain/core/aggregates"
	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
)

// CanvasHandler handles node and edge edits on a project's canvas
type CanvasHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewCanvasHandler creates a new canvas handler
func NewCanvasHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *CanvasHandler {
	return &CanvasHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errs,
		logger:     logger,
	}
}

// CreateNodeRequest is the body of POST /nodes. ID is generated when empty.
type CreateNodeRequest struct {
	ID       string                `json:"id,omitempty" validate:"max=128"`
	Type     string                `json:"type" validate:"nodetype"`
	Position valueobjects.Position `json:"position" swaggertype:"object"`
	Data     json.RawMessage       `json:"data,omitempty" swaggertype:"object"`
}

// UpdateNodeRequest is the body of PATCH /nodes/{nodeID}
type UpdateNodeRequest struct {
	Data json.RawMessage `json:"data" validate:"required" swaggertype:"object"`
}

// MoveNodeRequest is the body of PUT /nodes/{nodeID}/position
type MoveNodeRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ConvertNodeRequest is the body of PUT /nodes/{nodeID}/type
type ConvertNodeRequest struct {
	Type string `json:"type" validate:"nodetype"`
}

// ConnectRequest is the body of POST /edges. ID is generated when empty.
type ConnectRequest struct {
	ID           string `json:"id,omitempty" validate:"max=128"`
	Source       string `json:"source" validate:"notblank"`
	Target       string `json:"target" validate:"notblank"`
	SourceHandle string `json:"sourceHandle,omitempty" validate:"max=128"`
	TargetHandle string `json:"targetHandle,omitempty" validate:"max=128"`
}

// CreateNode godoc
// @Summary Add a node
// @Tags Canvas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID"
// @Param request body CreateNodeRequest true "Node"
// @Success 201 {object} aggregates.SerializedNode
// @Failure 400 {object} pkgerrors.ErrorResponse
// @Failure 404 {object} pkgerrors.ErrorResponse
// @Failure 409 {object} pkgerrors.ErrorResponse
// @Router /api/v1/projects/{projectID}/nodes [post]
func (h *CanvasHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	var req CreateNodeRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if req.ID == "" {
		req.ID = valueobjects.NewNodeID().String()
	}

	projectID := chi.URLParam(r, "projectID")
	cmd := &commands.CreateNodeCommand{
		ProjectID: projectID,
		UserID:    user.UserID,
		NodeID:    req.ID,
		Type:      req.Type,
		X:         req.Position.X(),
		Y:         req.Position.Y(),
		Data:      req.Data,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.respondNode(w, r, user.UserID, projectID, req.ID, http.StatusCreated)
}

// UpdateNode godoc
// @Summary Edit a node's data
// @Description Merges user-authored fields into the node. Generated fields cannot be set this way.
// @Tags Canvas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID"
// @Param nodeID path string true "Node ID"
// @Param request body UpdateNodeRequest true "Fields to merge"
// @Success 200 {object} aggregates.SerializedNode
// @Failure 400 {object} pkgerrors.ErrorResponse
// @Failure 404 {object} pkgerrors.ErrorResponse
// @Router /api/v1/projects/{projectID}/nodes/{nodeID} [patch]
func (h *CanvasHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	var req UpdateNodeRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	projectID, nodeID := chi.URLParam(r, "projectID"), chi.URLParam(r, "nodeID")
	cmd := &commands.UpdateNodeCommand{ProjectID: projectID, UserID: user.UserID, NodeID: nodeID, Data: req.Data}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.respondNode(w, r, user.UserID, projectID, nodeID, http.StatusOK)
}

// MoveNode godoc
// @Summary Move a node
// @Tags Canvas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID"
// @Param nodeID path string true "Node ID"
// @Param request body MoveNodeRequest true "New position"
// @Success 200 {object} aggregates.SerializedNode
// @Failure 404 {object} pkgerrors.ErrorResponse
// @Router /api/v1/projects/{projectID}/nodes/{nodeID}/position [put]
func (h *CanvasHandler) MoveNode(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	var req MoveNodeRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	projectID, nodeID := chi.URLParam(r, "projectID"), chi.URLParam(r, "nodeID")
	cmd := &commands.MoveNodeCommand{ProjectID: projectID, UserID: user.UserID, NodeID: nodeID, X: req.X, Y: req.Y}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.respondNode(w, r, user.UserID, projectID, nodeID, http.StatusOK)
}

// ConvertNode godoc
// @Summary Change a node's type
// @Description Converts the node. Its data is reset to the new type's default shape. Edges the new type cannot take part in are rejected.
// @Tags Canvas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID"
// @Param nodeID path string true "Node ID"
// @Param request body ConvertNodeRequest true "Target type"
// @Success 200 {object} aggregates.SerializedNode
// @Failure 400 {object} pkgerrors.ErrorResponse
// @Failure 404 {object} pkgerrors.ErrorResponse
// @Router /api/v1/projects/{projectID}/nodes/{nodeID}/type [put]
func (h *CanvasHandler) ConvertNode(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	var req ConvertNodeRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	projectID, nodeID := chi.URLParam(r, "projectID"), chi.URLParam(r, "nodeID")
	cmd := &commands.ConvertNodeCommand{ProjectID: projectID, UserID: user.UserID, NodeID: nodeID, Type: req.Type}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.respondNode(w, r, user.UserID, projectID, nodeID, http.StatusOK)
}

// DeleteNode godoc
// @Summary Remove a node and its edges
// @Tags Canvas
// @Security BearerAuth
// @Param projectID path string true "Project ID"
// @Param nodeID path string true "Node ID"
// @Success 204
// @Failure 404 {object} pkgerrors.ErrorResponse
// @Router /api/v1/projects/{projectID}/nodes/{nodeID} [delete]
func (h *CanvasHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	cmd := &commands.DeleteNodeCommand{
		ProjectID: chi.URLParam(r, "projectID"),
		UserID:    user.UserID,
		NodeID:    chi.URLParam(r, "nodeID"),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ConnectNodes godoc
// @Summary Connect two nodes
// @Description Adds an edge when the source node type may feed the target node type.
// @Tags Canvas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID"
// @Param request body ConnectRequest true "Edge"
// @Success 201 {object} aggregates.SerializedEdge
// @Failure 400 {object} pkgerrors.ErrorResponse
// @Failure 404 {object} pkgerrors.ErrorResponse
// @Failure 409 {object} pkgerrors.ErrorResponse
// @Router /api/v1/projects/{projectID}/edges [post]
func (h *CanvasHandler) ConnectNodes(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	var req ConnectRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if req.ID == "" {
		req.ID = valueobjects.NewEdgeID().String()
	}

	cmd := &commands.ConnectNodesCommand{
		ProjectID:    chi.URLParam(r, "projectID"),
		UserID:       user.UserID,
		EdgeID:       req.ID,
		Source:       req.Source,
		Target:       req.Target,
		SourceHandle: req.SourceHandle,
		TargetHandle: req.TargetHandle,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, aggregates.SerializedEdge{
		ID:           req.ID,
		Source:       req.Source,
		Target:       req.Target,
		SourceHandle: req.SourceHandle,
		TargetHandle: req.TargetHandle,
	})
}

// DisconnectNodes godoc
// @Summary Remove an edge
// @Tags Canvas
// @Security BearerAuth
// @Param projectID path string true "Project ID"
// @Param edgeID path string true "Edge ID"
// @Success 204
// @Failure 404 {object} pkgerrors.ErrorResponse
// @Router /api/v1/projects/{projectID}/edges/{edgeID} [delete]
func (h *CanvasHandler) DisconnectNodes(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	cmd := &commands.DisconnectNodesCommand{
		ProjectID: chi.URLParam(r, "projectID"),
		UserID:    user.UserID,
		EdgeID:    chi.URLParam(r, "edgeID"),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CanvasHandler) respondNode(w http.ResponseWriter, r *http.Request, userID, projectID, nodeID string, status int) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetNodeQuery{UserID: userID, ProjectID: projectID, NodeID: nodeID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, status, result.(aggregates.SerializedNode))
}
