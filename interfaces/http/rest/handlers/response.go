package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/haydenbleasel/tersa-sub001/pkg/auth"
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
	"github.com/haydenbleasel/tersa-sub001/pkg/utils"
)

// Canvas documents may carry inline media as data URLs.
const maxBodyBytes = 32 << 20

// decodeJSON reads a JSON body into dst and validates it. An empty body
// leaves dst untouched when allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, allowEmpty bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF) && allowEmpty:
		case errors.Is(err, io.EOF):
			return pkgerrors.NewValidationError("request body is required")
		case errors.As(err, &tooLarge):
			return pkgerrors.NewValidationErrorf("request body exceeds %d bytes", tooLarge.Limit)
		default:
			return pkgerrors.NewValidationError("invalid request body: " + err.Error())
		}
	}
	return utils.ValidateStruct(dst)
}

func currentUser(r *http.Request) (*auth.UserContext, error) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		return nil, pkgerrors.NewUnauthorizedError("")
	}
	return user, nil
}

func respondJSON(w http.ResponseWriter, logger *zap.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}
