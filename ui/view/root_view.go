package view

import (
	"image"
	"log/slog"

	"github.com/soocke/rustlens/config"
	"github.com/soocke/rustlens/ui/presenter"
	"github.com/soocke/rustlens/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// imageTypes lists the formats ui/images can decode.
var imageTypes = []FileType{
	{TypeName: "Images", Extensions: []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}},
	{TypeName: "All files", Extensions: []string{"*"}},
}

// Handlers are the user actions the root view forwards.
type Handlers struct {
	Choose    func()
	Grab      func()
	Detect    func()
	Reset     func()
	ToggleRaw func()
	Save      func()
	Exit      func()
	// ConfigApplied runs after the config panel saved new values.
	ConfigApplied func(*config.Config)
}

// RootView composes the top-level application layout and wires UI callbacks.
// It owns high-level subviews but exposes minimal exported fields for presenters.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	// Subviews
	Status      StatusBar
	Preview     ImagePreview
	Results     ResultPanel
	ConfigPanel ConfigPanel

	// Widgets
	FileLabel *LabelWidget
	DetectBtn *TButtonWidget
}

// UI abstracts the subset of view operations needed by presenters, enabling decoupling
// from the concrete RootView implementation.
type UI interface {
	presenter.OverlayView
	presenter.ResultView
	presenter.Alerter
}

var _ UI = (*RootView)(nil)

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger}
}

// Build constructs the layout. Handlers are invoked on user actions.
func (rv *RootView) Build(h Handlers) {
	if rv == nil {
		return
	}
	// Row 0: status
	top := Frame()
	Grid(top, Row(0), Column(0), Columnspan(2), Sticky("we"), Padx("0.3m"), Pady("0.3m"))
	rv.Status = NewStatusBar(top, 0, 0)
	if rv.cfg != nil {
		rv.Status.SetEndpoint(rv.cfg.Endpoint)
	}

	// Row 1: action buttons
	btnFrame := Frame()
	Grid(btnFrame, Row(1), Column(0), Columnspan(2), Sticky("we"), Padx("0.3m"), Pady("0.3m"))
	button := func(col int, text, style string, cmd func()) *TButtonWidget {
		b := TButton(Txt(text), Style(style), Command(cmd))
		Grid(b, In(btnFrame), Row(0), Column(col), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
		return b
	}
	button(0, "Choose Image", theme.StylePrimaryButton, h.Choose)
	button(1, "Screen Grab", theme.StyleSecondaryButton, h.Grab)
	rv.DetectBtn = button(2, "Detect", theme.StylePrimaryButton, h.Detect)
	button(3, "Reset", theme.StyleDangerButton, h.Reset)
	button(4, "Save Overlay", theme.StyleSuccessButton, h.Save)
	button(5, "Exit", theme.StyleDangerButton, h.Exit)

	rv.FileLabel = Label(Txt("No file chosen"), Anchor("w"))
	Grid(rv.FileLabel, Row(2), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"))

	// Row 3: preview (left) and results (right)
	left := Frame()
	Grid(left, Row(3), Column(0), Sticky("nw"), Padx("0.3m"), Pady("0.3m"))
	w, hgt := 600, 400
	if rv.cfg != nil && rv.cfg.MaxDisplayWidth > 0 && rv.cfg.MaxDisplayHeight > 0 {
		w, hgt = rv.cfg.MaxDisplayWidth, min(rv.cfg.MaxDisplayHeight, 400)
	}
	rv.Preview = NewImagePreview(left, 0, w, hgt)

	right := Frame()
	Grid(right, Row(3), Column(1), Sticky("nw"), Padx("0.3m"), Pady("0.3m"))
	rv.Results = NewResultPanel(right, 0, h.ToggleRaw)

	// Row 4: config form
	cfgFrame := Frame()
	Grid(cfgFrame, Row(4), Column(0), Columnspan(2), Sticky("we"), Padx("0.3m"), Pady("0.3m"))
	rv.ConfigPanel = NewConfigPanel(rv.cfg, rv.cfgPath, rv.logger, h.ConfigApplied)
	rv.ConfigPanel.Build(cfgFrame, 0)
}

// ShowImage proxies to the preview.
func (rv *RootView) ShowImage(img image.Image) {
	if rv != nil && rv.Preview != nil {
		rv.Preview.ShowImage(img)
	}
}

// ShowPanel updates the detect button and the result panel.
func (rv *RootView) ShowPanel(p presenter.Panel) {
	if rv == nil {
		return
	}
	if rv.DetectBtn != nil {
		state := "normal"
		if p.Busy {
			state = "disabled"
		}
		rv.DetectBtn.Configure(Txt(p.SubmitLabel), State(state))
	}
	if rv.Results != nil {
		rv.Results.ShowPanel(p)
	}
	if rv.ConfigPanel != nil {
		rv.ConfigPanel.SetEditable(p.ConfigEditable)
	}
}

// SetFileName shows the chosen file name, or the placeholder for "".
func (rv *RootView) SetFileName(name string) {
	if rv == nil || rv.FileLabel == nil {
		return
	}
	if name == "" {
		name = "No file chosen"
	}
	rv.FileLabel.Configure(Txt(name))
}

// SetHandles proxies to the status bar.
func (rv *RootView) SetHandles(live int64, released uint64) {
	if rv != nil && rv.Status != nil {
		rv.Status.SetHandles(live, released)
	}
}

// Alert shows a modal notice.
func (rv *RootView) Alert(msg string) {
	if rv != nil && rv.logger != nil {
		rv.logger.Warn("alert", "message", msg)
	}
	MessageBox(Icon("warning"), Msg(msg), Title("RustLens"))
}

// ChooseImage asks for an image file. ok is false when the dialog was cancelled.
func (rv *RootView) ChooseImage() (path string, ok bool) {
	files := GetOpenFile(Title("Choose Image"), Filetypes(imageTypes), Multiple(false))
	if len(files) == 0 || files[0] == "" {
		return "", false
	}
	return files[0], true
}

// ChooseSavePath asks where to write the overlay PNG.
func (rv *RootView) ChooseSavePath() (path string, ok bool) {
	path = GetSaveFile(Title("Save Overlay"), Defaultextension(".png"), Initialfile("overlay.png"),
		Filetypes([]FileType{{TypeName: "PNG", Extensions: []string{".png"}}}))
	return path, path != ""
}
