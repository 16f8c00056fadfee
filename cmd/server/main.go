package main

import (
	"context"
	"os"

	"github.com/nfrund/neuralfeed/internal/app"
	"github.com/nfrund/neuralfeed/internal/config"
	"github.com/nfrund/neuralfeed/internal/logging"
	"github.com/nfrund/neuralfeed/internal/server"
)

func main() {
	logger := logging.New()
	cfg := config.New()

	ctx, stop := server.SignalContext(context.Background())
	defer stop()

	if err := app.Run(ctx, cfg, logger); err != nil {
		logger.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
