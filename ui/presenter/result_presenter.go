package presenter

import (
	"strconv"

	"github.com/soocke/rustlens/ui/model"
)

// Row is one line of the detections table.
type Row struct {
	Index    int
	Name     string
	Severity string
}

// Panel is everything the result area shows, derived from the view state.
type Panel struct {
	Busy           bool
	SubmitLabel    string
	ConfigEditable bool // the config form is locked while a request is pending
	ErrorText   string

	HasResult   bool
	Coverage    string
	Rows        []Row
	EmptyText   string
	ToggleLabel string
	RawJSON     string // empty while the raw view is hidden
}

// BuildPanel derives the panel from vs.
func BuildPanel(vs *model.ViewState) Panel {
	p := Panel{Busy: vs.Loading(), SubmitLabel: "Detect"}
	p.ConfigEditable = !p.Busy
	if p.Busy {
		p.SubmitLabel = "Detecting..."
	}
	if msg := vs.ErrorMessage(); msg != "" {
		p.ErrorText = "Error: " + msg
	}
	res := vs.Result()
	if res == nil {
		return p
	}
	p.HasResult = true
	p.Coverage = "Corrosion Coverage: " + strconv.FormatFloat(res.CorrosionPercent, 'f', -1, 64) + "%"
	for i, d := range res.Detections {
		p.Rows = append(p.Rows, Row{
			Index:    i + 1,
			Name:     d.Name,
			Severity: strconv.FormatFloat(d.Confidence*100, 'f', 2, 64) + "%",
		})
	}
	if len(p.Rows) == 0 {
		p.EmptyText = "No corrosion detected."
	}
	p.ToggleLabel = "Show JSON Response"
	if vs.Flags().ShowRawResult {
		p.ToggleLabel = "Hide JSON Response"
		p.RawJSON = res.PrettyJSON()
	}
	return p
}

// ResultView displays a Panel.
type ResultView interface{ ShowPanel(Panel) }

// ResultPresenter pushes a fresh Panel on every view state change.
type ResultPresenter struct{ view ResultView }

func NewResultPresenter(view ResultView) *ResultPresenter { return &ResultPresenter{view: view} }

// OnChange is a model.Listener.
func (p *ResultPresenter) OnChange(_ model.Change, vs *model.ViewState) {
	if p == nil || p.view == nil {
		return
	}
	p.view.ShowPanel(BuildPanel(vs))
}
