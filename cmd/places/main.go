package main

import (
	"context"
	"os"

	"places/internal/config"
	"places/internal/env"
	"places/internal/logger"
	"places/pkg/graceful"
)

func main() {
	// A .env file is optional; real deployments set the variables directly.
	env.LoadEnv()
	log := logger.Setup()

	cfg, err := config.Load()
	if err != nil {
		log.Error("config_invalid", "error", err)
		os.Exit(1)
	}

	ctx, cancel := graceful.Context(context.Background())
	if err := rootCommand(cfg).ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
	cancel()
}
