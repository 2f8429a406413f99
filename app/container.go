package app

import (
	"log/slog"
	"net/http"

	"github.com/soocke/rustlens/config"
	"github.com/soocke/rustlens/domain/detection"
	"github.com/soocke/rustlens/domain/lifecycle"
	"github.com/soocke/rustlens/domain/overlay"
	"github.com/soocke/rustlens/domain/request"
	"github.com/soocke/rustlens/metrics"
	"github.com/soocke/rustlens/ui/images"
	"github.com/soocke/rustlens/ui/model"
	"github.com/soocke/rustlens/ui/presenter"
	"github.com/soocke/rustlens/ui/view"
)

// AppContainer assembles models, services, presenters and the root view.
type AppContainer struct {
	Config   *config.Config
	CfgPath  string
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Client   *detection.Client
	Handles  *lifecycle.Lifecycle
	Coord    *request.Coordinator
	State    *model.ViewState
	RootView *view.RootView

	// Presenters
	DetectPresenter  *presenter.DetectPresenter
	OverlayPresenter *presenter.OverlayPresenter
	ResultPresenter  *presenter.ResultPresenter
	Loop             *presenter.Loop
}

// BuildContainer constructs all components. No Tk widgets are created here;
// the root view builds its widgets in app.Start.
func BuildContainer(cfg *config.Config, cfgPath string, logger *slog.Logger) *AppContainer {
	c := &AppContainer{Config: cfg, CfgPath: cfgPath, Logger: logger}
	c.Metrics = metrics.New()
	c.Client = detection.NewClient(cfg.Endpoint, &http.Client{}, logger)
	c.Handles = lifecycle.New(images.Backend{MaxW: cfg.MaxDisplayWidth, MaxH: cfg.MaxDisplayHeight}, logger, c.Metrics.LifecycleHooks())
	c.Coord = request.NewCoordinator(c.Client, cfg.RequestTimeout(), logger, c.Metrics.RequestHooks())
	c.State = model.NewViewState()

	// View
	c.RootView = view.NewRootView(cfg, cfgPath, logger)

	// Presenters
	c.DetectPresenter = presenter.NewDetectPresenter(c.State, c.Handles, c.Coord, c.RootView, logger)
	c.OverlayPresenter = presenter.NewOverlayPresenter(overlay.NewRenderer(cfg.OverlayStyle()), overlay.NewRaster(nil), c.RootView)
	c.ResultPresenter = presenter.NewResultPresenter(c.RootView)
	c.State.Subscribe(c.OverlayPresenter.OnChange)
	c.State.Subscribe(c.ResultPresenter.OnChange)
	c.State.Subscribe(func(ch model.Change, vs *model.ViewState) {
		if ch.Has(model.ChangeSelection) {
			name := ""
			if sel := vs.Selection(); sel != nil {
				name = sel.Name
			}
			c.RootView.SetFileName(name)
		}
	})
	// Loop scheduling is bound by app.Start once Tk is running.
	c.Loop = presenter.NewLoop(c.DetectPresenter, nil)
	return c
}

// ApplyConfig re-applies live settings after the config panel saved cfg.
func (c *AppContainer) ApplyConfig(cfg *config.Config) {
	if c == nil || cfg == nil {
		return
	}
	c.OverlayPresenter.SetRenderer(overlay.NewRenderer(cfg.OverlayStyle()), c.State)
	if cfg.Endpoint != c.Client.Endpoint() && c.Logger != nil {
		c.Logger.Info("endpoint change applies on restart", "current", c.Client.Endpoint(), "saved", cfg.Endpoint)
	}
}
