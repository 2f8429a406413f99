// Command rustlens-cli sends images to the detection endpoint and prints the
// coverage and detections for each, optionally writing the overlay PNGs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/soocke/rustlens/config"
	"github.com/soocke/rustlens/domain/detection"
	"github.com/soocke/rustlens/headless"
	"github.com/soocke/rustlens/logging"
	"github.com/soocke/rustlens/metrics"
)

func main() {
	var (
		flags      config.Flags
		overlayDir string
		rawJSON    bool
	)
	fs := flag.NewFlagSet("rustlens-cli", flag.ExitOnError)
	flags.Register(fs)
	fs.StringVar(&overlayDir, "out", "", "directory for <name>.overlay.png files")
	fs.BoolVar(&rawJSON, "json", false, "print the pretty-printed response")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: rustlens-cli [flags] image...\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])
	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}

	cfg, cfgErr := config.Load(flags.ConfigPath)
	cfg.Apply(flags)

	logger := logging.NewLogger(os.Stderr, logging.Level(cfg.Debug))
	if cfgErr != nil {
		logger.Warn("config load failed, using defaults", "path", flags.ConfigPath, "error", cfgErr)
	}

	var m *metrics.Metrics
	if cfg.MetricsAddr != "" {
		m = metrics.New()
		srv := m.Server(cfg.MetricsAddr)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server", "error", err)
			}
		}()
		defer srv.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := detection.NewClient(cfg.Endpoint, &http.Client{}, logger)
	runner := headless.New(cfg, client, m, logger)
	err := runner.Run(ctx, fs.Args(), headless.Options{Out: os.Stdout, OverlayDir: overlayDir, RawJSON: rawJSON})
	runner.Close()
	if err != nil {
		logger.Error("run", "error", err)
		os.Exit(1)
	}
}
