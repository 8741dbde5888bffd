package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/haydenbleasel/tersa-sub001/application/commands"
	"github.com/haydenbleasel/tersa-sub001/application/commands/bus"
	"github.com/haydenbleasel/tersa-sub001/domain/core/entities"
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
)

// GenerationHandler runs model generations for nodes
type GenerationHandler struct {
	commandBus *bus.CommandBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewGenerationHandler creates a new generation handler
func NewGenerationHandler(commandBus *bus.CommandBus, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *GenerationHandler {
	return &GenerationHandler{
		commandBus: commandBus,
		errors:     errs,
		logger:     logger,
	}
}

// GenerateRequest is the optional body of POST /nodes/{nodeID}/generate.
// An empty task means generate; an empty model means the default for the
// node's capability.
type GenerateRequest struct {
	Task    string `json:"task,omitempty" validate:"omitempty,task"`
	ModelID string `json:"modelId,omitempty" validate:"max=128"`
}

// BatchGenerateRequest is the body of POST /generate
type BatchGenerateRequest struct {
	Items []commands.GenerationTarget `json:"items" validate:"required,min=1,dive"`
}

// GenerationResult is the outcome of one generation
type GenerationResult struct {
	NodeID     string                   `json:"nodeId"`
	Model      string                   `json:"model,omitempty"`
	Generation *entities.Generation     `json:"generation,omitempty"`
	Error      *pkgerrors.ErrorResponse `json:"error,omitempty"`
}

// BatchGenerateResponse lists results in request order
type BatchGenerateResponse struct {
	Results   []GenerationResult `json:"results"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
}

// GenerateNode godoc
// @Summary Generate a node's content
// @Description Runs a model over the node and its upstream inputs and stores the result in the node's generated fields.
// @Tags Generation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID"
// @Param nodeID path string true "Node ID"
// @Param request body GenerateRequest false "Task and model"
// @Success 200 {object} GenerationResult
// @Failure 400 {object} pkgerrors.ErrorResponse
// @Failure 403 {object} pkgerrors.ErrorResponse
// @Failure 404 {object} pkgerrors.ErrorResponse
// @Failure 429 {object} pkgerrors.ErrorResponse
// @Failure 502 {object} pkgerrors.ErrorResponse
// @Router /api/v1/projects/{projectID}/nodes/{nodeID}/generate [post]
func (h *GenerationHandler) GenerateNode(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	var req GenerateRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	cmd := &commands.GenerateNodeCommand{
		ProjectID: chi.URLParam(r, "projectID"),
		UserID:    user.UserID,
		NodeID:    chi.URLParam(r, "nodeID"),
		Task:      req.Task,
		ModelID:   req.ModelID,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, toResult(*cmd.Result))
}

// GenerateNodes godoc
// @Summary Generate several nodes
// @Description Runs independent generations concurrently. Items fail individually; the response lists each outcome in request order.
// @Tags Generation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID"
// @Param request body BatchGenerateRequest true "Nodes to generate"
// @Success 200 {object} BatchGenerateResponse
// @Failure 400 {object} pkgerrors.ErrorResponse
// @Failure 403 {object} pkgerrors.ErrorResponse
// @Failure 404 {object} pkgerrors.ErrorResponse
// @Failure 429 {object} pkgerrors.ErrorResponse
// @Router /api/v1/projects/{projectID}/generate [post]
func (h *GenerationHandler) GenerateNodes(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	var req BatchGenerateRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	cmd := &commands.GenerateNodesCommand{
		ProjectID: chi.URLParam(r, "projectID"),
		UserID:    user.UserID,
		Items:     req.Items,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	resp := BatchGenerateResponse{Results: make([]GenerationResult, len(cmd.Results))}
	for i, o := range cmd.Results {
		resp.Results[i] = toResult(o)
		if o.Error != nil {
			resp.Failed++
			h.logger.Warn("Generation item failed",
				zap.String("projectID", cmd.ProjectID),
				zap.String("nodeID", o.NodeID),
				zap.Error(o.Error),
			)
			continue
		}
		resp.Succeeded++
	}
	respondJSON(w, h.logger, http.StatusOK, resp)
}

func toResult(o commands.GenerationOutcome) GenerationResult {
	res := GenerationResult{NodeID: o.NodeID, Model: o.Model, Generation: o.Generation}
	if o.Error == nil {
		return res
	}
	if appErr := pkgerrors.GetAppError(o.Error); appErr != nil {
		res.Error = &pkgerrors.ErrorResponse{
			Error:   appErr.Message,
			Type:    string(appErr.Type),
			Code:    appErr.Code,
			Details: appErr.Details,
		}
		return res
	}
	res.Error = &pkgerrors.ErrorResponse{Error: "generation failed", Type: string(pkgerrors.ErrorTypeInternal)}
	return res
}
