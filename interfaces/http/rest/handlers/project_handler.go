package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/haydenbleasel/tersa-sub001/application/commands"
	"github.com/haydenbleasel/tersa-sub001/application/commands/bus"
	"github.com/haydenbleasel/tersa-sub001/application/ports"
	"github.com/haydenbleasel/tersa-sub001/application/queries"
	querybus "github.com/haydenbleasel/tersa-sub001/application/queries/bus"
	"github.com/haydenbleasel/tersa-sub001/domain/core/aggregates"
	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
)

// ProjectHandler handles project-level HTTP requests
type ProjectHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errs,
		logger:     logger,
	}
}

// CreateProjectRequest is the body of POST /projects
type CreateProjectRequest struct {
	Name               string `json:"name" validate:"max=200"`
	TranscriptionModel string `json:"transcriptionModel,omitempty" validate:"max=128"`
	VisionModel        string `json:"visionModel,omitempty" validate:"max=128"`
}

// UpdateProjectRequest is the body of PATCH /projects/{projectID}
type UpdateProjectRequest struct {
	Name               *string `json:"name,omitempty" validate:"omitempty,max=200"`
	TranscriptionModel *string `json:"transcriptionModel,omitempty" validate:"omitempty,max=128"`
	VisionModel        *string `json:"visionModel,omitempty" validate:"omitempty,max=128"`
	Image              *string `json:"image,omitempty"`
}

// SaveContentRequest is the body of PUT /projects/{projectID}/content
type SaveContentRequest struct {
	Content aggregates.Content `json:"content"`
}

// ProjectListResponse wraps a project listing
type ProjectListResponse struct {
	Projects []ports.ProjectSummary `json:"projects"`
	Total    int                    `json:"total"`
}

// ListProjects godoc
// @Summary List projects
// @Description Lists the caller's projects, most recently updated first
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ProjectListResponse
// @Failure 401 {object} pkgerrors.ErrorResponse
// @Router /api/v1/projects [get]
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListProjectsQuery{UserID: user.UserID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	projects := result.([]ports.ProjectSummary)
	if projects == nil {
		projects = []ports.ProjectSummary{}
	}
	respondJSON(w, h.logger, http.StatusOK, ProjectListResponse{Projects: projects, Total: len(projects)})
}

// CreateProject godoc
// @Summary Create a project
// @Description Creates an empty canvas owned by the caller
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateProjectRequest true "Project metadata"
// @Success 201 {object} queries.ProjectView
// @Failure 400 {object} pkgerrors.ErrorResponse
// @Failure 401 {object} pkgerrors.ErrorResponse
// @Router /api/v1/projects [post]
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	var req CreateProjectRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	cmd := &commands.CreateProjectCommand{
		ProjectID:          valueobjects.NewProjectID().String(),
		UserID:             user.UserID,
		Name:               req.Name,
		TranscriptionModel: req.TranscriptionModel,
		VisionModel:        req.VisionModel,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.logger.Info("Project created",
		zap.String("projectID", cmd.ProjectID),
		zap.String("userID", user.UserID),
	)
	h.respondProject(w, r, user.UserID, cmd.ProjectID, http.StatusCreated)
}

// GetProject godoc
// @Summary Get a project
// @Description Returns a project with its full canvas content
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID"
// @Success 200 {object} queries.ProjectView
// @Failure 403 {object} pkgerrors.ErrorResponse
// @Failure 404 {object} pkgerrors.ErrorResponse
// @Router /api/v1/projects/{projectID} [get]
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.respondProject(w, r, user.UserID, chi.URLParam(r, "projectID"), http.StatusOK)
}

// UpdateProject godoc
// @Summary Update project metadata
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID"
// @Param request body UpdateProjectRequest true "Fields to change"
// @Success 200 {object} queries.ProjectView
// @Failure 400 {object} pkgerrors.ErrorResponse
// @Failure 404 {object} pkgerrors.ErrorResponse
// @Failure 409 {object} pkgerrors.ErrorResponse
// @Router /api/v1/projects/{projectID} [patch]
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	var req UpdateProjectRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	projectID := chi.URLParam(r, "projectID")
	cmd := &commands.UpdateProjectCommand{
		ProjectID:          projectID,
		UserID:             user.UserID,
		Name:               req.Name,
		TranscriptionModel: req.TranscriptionModel,
		VisionModel:        req.VisionModel,
		Image:              req.Image,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.respondProject(w, r, user.UserID, projectID, http.StatusOK)
}

// DeleteProject godoc
// @Summary Delete a project
// @Tags Projects
// @Security BearerAuth
// @Param projectID path string true "Project ID"
// @Success 204
// @Failure 403 {object} pkgerrors.ErrorResponse
// @Failure 404 {object} pkgerrors.ErrorResponse
// @Router /api/v1/projects/{projectID} [delete]
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	cmd := &commands.DeleteProjectCommand{
		ProjectID: chi.URLParam(r, "projectID"),
		UserID:    user.UserID,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SaveContent godoc
// @Summary Replace canvas content
// @Description Replaces every node and edge of the canvas. The document is validated as a whole.
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID"
// @Param request body SaveContentRequest true "Serialized canvas"
// @Success 200 {object} queries.ProjectView
// @Failure 400 {object} pkgerrors.ErrorResponse
// @Failure 404 {object} pkgerrors.ErrorResponse
// @Failure 409 {object} pkgerrors.ErrorResponse
// @Router /api/v1/projects/{projectID}/content [put]
func (h *ProjectHandler) SaveContent(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	var req SaveContentRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	projectID := chi.URLParam(r, "projectID")
	cmd := &commands.SaveProjectContentCommand{
		ProjectID: projectID,
		UserID:    user.UserID,
		Content:   req.Content,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.respondProject(w, r, user.UserID, projectID, http.StatusOK)
}

func (h *ProjectHandler) respondProject(w http.ResponseWriter, r *http.Request, userID, projectID string, status int) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetProjectQuery{UserID: userID, ProjectID: projectID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, status, result.(queries.ProjectView))
}
