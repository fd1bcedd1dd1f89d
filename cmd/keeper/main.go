// ====================================
// File: cmd/keeper/main.go
// ====================================
package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/percolator-keeper/internal/config"
	"github.com/rovshanmuradov/percolator-keeper/internal/keeper"
	"github.com/rovshanmuradov/percolator-keeper/internal/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	configPath := "configs/config.json"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		bootstrap, _ := zap.NewProduction()
		bootstrap.Fatal("Failed to load configuration", zap.Error(err))
	}

	logCfg := logger.DefaultConfig()
	logCfg.Development = cfg.DebugLogging
	log, err := logger.New(logCfg)
	if err != nil {
		bootstrap, _ := zap.NewProduction()
		bootstrap.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer log.Sync()
	log.Info("Starting percolator slab keeper")

	runner := keeper.NewRunner(cfg, log)
	if err := runner.Run(ctx); err != nil {
		log.Fatal("Keeper terminated", zap.Error(err))
	}
	log.Info("Keeper shut down")
}
