package main

import (
	"os"

	"github.com/soocke/rustlens/app"
	"github.com/soocke/rustlens/config"
	"github.com/soocke/rustlens/logging"
)

func main() {
	flags, err := config.ParseFlags(os.Args[0], os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	// Base config from file, then flags
	cfg, err := config.Load(flags.ConfigPath)
	cfg.Apply(flags)

	// Set up logger
	logger := logging.NewLogger(os.Stdout, logging.Level(cfg.Debug))
	if err != nil {
		logger.Warn("config load failed, using defaults", "path", flags.ConfigPath, "error", err)
	}
	logger.Info("starting", "endpoint", cfg.Endpoint, "config", flags.ConfigPath, "debug", cfg.Debug)

	c := app.BuildContainer(cfg, flags.ConfigPath, logger)
	application := app.NewApp("RustLens", 1100, 780, c)
	application.Start()
}
