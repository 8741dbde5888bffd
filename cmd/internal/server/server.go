// Package server runs the canvas HTTP API from a wired container.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/haydenbleasel/tersa-sub001/infrastructure/di"
	"github.com/haydenbleasel/tersa-sub001/interfaces/http/rest"
)

// Router builds the HTTP router for c.
func Router(c *di.Container) *chi.Mux {
	var metrics = c.Metrics
	if !c.Config.EnableMetrics {
		metrics = nil
	}
	return rest.NewRouter(
		c.CommandBus,
		c.QueryBus,
		c.TokenVerifier,
		metrics,
		c.ErrorHandler,
		c.Logger,
		rest.Options{
			Version:             di.ServiceVersion,
			EnableCORS:          c.Config.EnableCORS,
			CORSOrigins:         c.Config.CORSOrigins,
			RequestTimeout:      c.Config.RequestTimeout,
			TrustGatewayHeaders: c.Config.IsLambda,
		},
	).Setup()
}

// Serve listens on the configured address until ctx is cancelled, then
// drains in-flight requests within the shutdown timeout.
func Serve(ctx context.Context, c *di.Container) error {
	cfg := c.Config
	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           Router(c),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Generations hold the connection for up to RequestTimeout.
		WriteTimeout: cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
			zap.String("database", cfg.DatabaseDriver),
			zap.String("storage", cfg.StorageBackend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	c.Logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
