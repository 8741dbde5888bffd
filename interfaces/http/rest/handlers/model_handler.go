package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/haydenbleasel/tersa-sub001/application/queries"
	querybus "github.com/haydenbleasel/tersa-sub001/application/queries/bus"
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
)

// ModelHandler serves the model catalog
type ModelHandler struct {
	queryBus *querybus.QueryBus
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewModelHandler creates a new model handler
func NewModelHandler(queryBus *querybus.QueryBus, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *ModelHandler {
	return &ModelHandler{queryBus: queryBus, errors: errs, logger: logger}
}

// ModelListResponse wraps the catalog listing
type ModelListResponse struct {
	Models []queries.ModelView `json:"models"`
}

// ListModels godoc
// @Summary List models
// @Description Lists the models nodes can generate with, optionally for one capability
// @Tags Models
// @Produce json
// @Security BearerAuth
// @Param capability query string false "text, image, speech, transcription, vision or video"
// @Success 200 {object} ModelListResponse
// @Failure 400 {object} pkgerrors.ErrorResponse
// @Router /api/v1/models [get]
func (h *ModelHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListModelsQuery{Capability: r.URL.Query().Get("capability")})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, ModelListResponse{Models: result.([]queries.ModelView)})
}
