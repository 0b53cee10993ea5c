// Package main is the entry point for the spatial mapping viewer.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/spatial-viewer/internal/config"
	"github.com/Faultbox/spatial-viewer/internal/logger"
	"github.com/Faultbox/spatial-viewer/internal/viewer"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup runs before exit.
func run() int {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	logger.Info("=== Spatial Viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if config.Browse() {
		ok, err := chooseDataDir(cfg, browseDir)
		if err != nil {
			logger.Error("directory dialog failed", zap.Error(err))
			return 1
		}
		if !ok {
			logger.Info("no data directory selected")
			return 0
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app, err := viewer.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to start viewer", zap.String("data", cfg.Data.Dir), zap.Error(err))
		return 1
	}
	defer app.Close()

	if err := app.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		return 1
	}

	logger.Info("viewer closed normally")
	return 0
}

func browseDir(start string) (string, error) {
	return dialog.Directory().Title("Select surface data directory").SetStartDir(start).Browse()
}

// chooseDataDir asks pick for a data directory starting from the configured
// one. It reports false when the user cancels.
func chooseDataDir(cfg *config.Config, pick func(start string) (string, error)) (bool, error) {
	dir, err := pick(cfg.Data.Dir)
	if errors.Is(err, dialog.ErrCancelled) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	cfg.Data.Dir = dir
	return true, nil
}
