package presenter

// Loop drives periodic updates on the UI thread.
//
// It applies finished detection requests and invokes a scheduler callback.
// The zero value is usable (methods are nil-safe).
type Loop struct {
	Detect   *DetectPresenter
	Schedule func()
}

func NewLoop(detect *DetectPresenter, schedule func()) *Loop {
	return &Loop{Detect: detect, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	if l.Detect != nil {
		l.Detect.Tick()
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
