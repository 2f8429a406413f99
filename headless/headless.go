// Package headless runs detections without Tk: each image goes through the
// same lifecycle, coordinator and presenters as the desktop app, and the
// result panel is printed as text.
package headless

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/soocke/rustlens/config"
	"github.com/soocke/rustlens/domain/detection"
	"github.com/soocke/rustlens/domain/lifecycle"
	"github.com/soocke/rustlens/domain/overlay"
	"github.com/soocke/rustlens/domain/request"
	"github.com/soocke/rustlens/metrics"
	"github.com/soocke/rustlens/ui/images"
	"github.com/soocke/rustlens/ui/model"
	"github.com/soocke/rustlens/ui/presenter"
)

// Options controls what Run writes.
type Options struct {
	Out        io.Writer
	OverlayDir string // when set, <name>.overlay.png is written per image
	RawJSON    bool   // print the pretty-printed response too
}

// Runner owns one set of core components for a batch of images.
type Runner struct {
	logger  *slog.Logger
	handles *lifecycle.Lifecycle
	coord   *request.Coordinator
	state   *model.ViewState
	detect  *presenter.DetectPresenter
	overlay *presenter.OverlayPresenter
	alerts  *alertLog
}

type alertLog struct {
	logger *slog.Logger
}

func (a *alertLog) Alert(msg string) {
	if a.logger != nil {
		a.logger.Warn("alert", "message", msg)
	}
}

// New wires a Runner around detector. m may be nil.
func New(cfg *config.Config, detector request.Detector, m *metrics.Metrics, logger *slog.Logger) *Runner {
	r := &Runner{logger: logger, alerts: &alertLog{logger: logger}}
	r.handles = lifecycle.New(images.Backend{MaxW: cfg.MaxDisplayWidth, MaxH: cfg.MaxDisplayHeight}, logger, m.LifecycleHooks())
	r.coord = request.NewCoordinator(detector, cfg.RequestTimeout(), logger, m.RequestHooks())
	r.state = model.NewViewState()
	r.detect = presenter.NewDetectPresenter(r.state, r.handles, r.coord, r.alerts, logger)
	r.overlay = presenter.NewOverlayPresenter(overlay.NewRenderer(cfg.OverlayStyle()), overlay.NewRaster(nil), nil)
	r.state.Subscribe(r.overlay.OnChange)
	return r
}

// Run detects every path in order. It keeps going after a failed image and
// reports how many failed.
func (r *Runner) Run(ctx context.Context, paths []string, opts Options) error {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	failed := 0
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.one(ctx, path, opts); err != nil {
			failed++
			fmt.Fprintf(opts.Out, "%s: %s\n", filepath.Base(path), detection.Message(err))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(paths))
	}
	return nil
}

func (r *Runner) one(ctx context.Context, path string, opts Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	name := filepath.Base(path)
	if err := r.detect.Select(&detection.Selection{Name: name, Data: data}); err != nil {
		return fmt.Errorf("could not open %s: %w", name, err)
	}
	if err := r.detect.Submit(); err != nil {
		return err
	}
	if err := r.coord.Wait(ctx); err != nil {
		r.detect.Reset()
		return err
	}
	if msg := r.state.ErrorMessage(); msg != "" {
		return errors.New(msg)
	}
	if opts.RawJSON && !r.state.Flags().ShowRawResult {
		r.detect.ToggleRawResult()
	}
	WritePanel(opts.Out, name, presenter.BuildPanel(r.state))
	if opts.OverlayDir != "" {
		out := filepath.Join(opts.OverlayDir, strings.TrimSuffix(name, filepath.Ext(name))+".overlay.png")
		if err := r.overlay.SavePNG(out); err != nil {
			return err
		}
		if r.logger != nil {
			r.logger.Info("overlay saved", "path", out)
		}
	}
	return nil
}

// WritePanel prints p the way the result panel lays it out.
func WritePanel(w io.Writer, name string, p presenter.Panel) {
	fmt.Fprintf(w, "%s: %s\n", name, p.Coverage)
	if p.EmptyText != "" {
		fmt.Fprintf(w, "  %s\n", p.EmptyText)
	}
	for _, row := range p.Rows {
		fmt.Fprintf(w, "  %d. %s %s\n", row.Index, row.Name, row.Severity)
	}
	if p.RawJSON != "" {
		fmt.Fprintln(w, p.RawJSON)
	}
}

// Close releases the current handle and stops the coordinator.
func (r *Runner) Close() {
	if r == nil {
		return
	}
	r.detect.Close()
}

// Stats reports handle counters.
func (r *Runner) Stats() lifecycle.Stats { return r.handles.Stats() }
