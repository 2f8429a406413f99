package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/rustlens/capture"
	"github.com/soocke/rustlens/debug"
	"github.com/soocke/rustlens/domain/detection"
	"github.com/soocke/rustlens/ui/presenter"
	"github.com/soocke/rustlens/ui/theme"
	"github.com/soocke/rustlens/ui/view"
)

const (
	tick = 50 * time.Millisecond
)

type app struct {
	c       *AppContainer
	title   string
	width   int
	height  int
	afterID string

	stopDebug  context.CancelFunc
	metricsSrv *http.Server
}

func NewApp(title string, width, height int, c *AppContainer) *app {
	a := &app{c: c, title: title, width: width, height: height}

	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", width, height))
	return a
}

func (a *app) Start() {
	theme.InitStyles()
	a.c.RootView.Build(view.Handlers{
		Choose:        a.chooseImage,
		Grab:          a.grabScreen,
		Detect:        func() { _ = a.c.DetectPresenter.Submit() },
		Reset:         a.c.DetectPresenter.Reset,
		ToggleRaw:     a.c.DetectPresenter.ToggleRawResult,
		Save:          a.saveOverlay,
		Exit:          a.exitHandler,
		ConfigApplied: a.c.ApplyConfig,
	})
	a.c.RootView.ShowPanel(presenter.BuildPanel(a.c.State))

	a.startMetrics()
	a.startDebug()

	// Kick off update loop.
	a.c.Loop.Schedule = a.scheduleUpdate
	a.scheduleUpdate()

	App.Wait()
}

func (a *app) scheduleUpdate() {
	st := a.c.Handles.Stats()
	a.c.RootView.SetHandles(st.Live, st.Released)
	// Schedule the next update using TclAfter to stay on Tk's event loop thread.
	a.afterID = TclAfter(tick, a.c.Loop.Tick)
}

func (a *app) chooseImage() {
	path, ok := a.c.RootView.ChooseImage()
	if !ok {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		a.c.RootView.Alert("Could not read " + filepath.Base(path) + ": " + err.Error())
		return
	}
	if err := a.c.DetectPresenter.Select(&detection.Selection{Name: filepath.Base(path), Data: data}); errors.Is(err, detection.ErrEmptyFile) {
		a.c.RootView.Alert(err.Error())
	}
}

func (a *app) grabScreen() {
	sel, err := capture.GrabSelection()
	if err != nil {
		a.c.RootView.Alert("Screen grab failed: " + err.Error())
		return
	}
	_ = a.c.DetectPresenter.Select(sel)
}

func (a *app) saveOverlay() {
	if a.c.OverlayPresenter.Frame() == nil {
		a.c.RootView.Alert("Nothing to save yet.")
		return
	}
	path, ok := a.c.RootView.ChooseSavePath()
	if !ok {
		return
	}
	if err := a.c.OverlayPresenter.SavePNG(path); err != nil {
		a.c.RootView.Alert("Save failed: " + err.Error())
		return
	}
	a.c.Logger.Info("overlay saved", "path", path)
}

func (a *app) startMetrics() {
	addr := a.c.Config.MetricsAddr
	if addr == "" {
		return
	}
	a.metricsSrv = a.c.Metrics.Server(addr)
	go func() {
		a.c.Logger.Info("metrics listening", "addr", addr)
		if err := a.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.c.Logger.Error("metrics server", "error", err)
		}
	}()
}

func (a *app) startDebug() {
	if !a.c.Config.Debug {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.stopDebug = cancel
	debug.StartGoroutineLogger(ctx, 5*time.Second, a.c.Logger, a.c.Handles.Live)
	debug.StartMemLogger(ctx, 5*time.Second, a.c.Logger, a.c.Handles.Live)
}

func (a *app) exitHandler() {
	// Cancel scheduled after event if any.
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	a.c.DetectPresenter.Close()
	if a.stopDebug != nil {
		a.stopDebug()
	}
	if a.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_ = a.metricsSrv.Shutdown(ctx)
		cancel()
	}
	st := a.c.Handles.Stats()
	a.c.Logger.Info("exit", "handles_created", st.Created, "handles_released", st.Released, "live", st.Live)
	Destroy(App)
}
