// @title Canvas API
// @version 1.0
// @description Node-graph canvas projects with model-backed generation
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a JWT
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/haydenbleasel/tersa-sub001/cmd/internal/server"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/config"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/di"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize dependency container
	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer cleanup()

	if err := server.Serve(ctx, container); err != nil {
		container.Logger.Error("Server stopped with error", zap.Error(err))
		cleanup()
		os.Exit(1)
	}
	container.Logger.Info("Server stopped")
}
