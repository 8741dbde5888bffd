package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/haydenbleasel/tersa-sub001/pkg/auth"
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
)

// Headers set by the Lambda entry point from the API Gateway JWT
// authorizer. They are only honoured with TrustGatewayHeaders.
const (
	GatewayUserHeader  = "X-Gateway-User-Id"
	GatewayEmailHeader = "X-Gateway-User-Email"
)

// AuthConfig configures Authenticate.
type AuthConfig struct {
	Verifier auth.TokenVerifier
	// TrustGatewayHeaders accepts a caller already authenticated by API
	// Gateway.
	TrustGatewayHeaders bool
}

// Authenticate resolves the bearer token to a user and stores it in the
// request context. Requests without a valid token get 401.
func Authenticate(cfg AuthConfig, errs *pkgerrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolveUser(r, cfg)
			if err != nil {
				logger.Debug("Authentication failed",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				errs.Handle(w, r, pkgerrors.NewUnauthorizedError(err.Error()))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.SetUserInContext(r.Context(), user)))
		})
	}
}

func resolveUser(r *http.Request, cfg AuthConfig) (*auth.UserContext, error) {
	if cfg.TrustGatewayHeaders {
		if id := r.Header.Get(GatewayUserHeader); id != "" {
			return &auth.UserContext{UserID: id, Email: r.Header.Get(GatewayEmailHeader)}, nil
		}
	}

	token := extractToken(r)
	if token == "" {
		return nil, auth.ErrMissingToken
	}
	if cfg.Verifier == nil {
		return nil, auth.ErrInvalidToken
	}
	return cfg.Verifier.Verify(r.Context(), token)
}

func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
