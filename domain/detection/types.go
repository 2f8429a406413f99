package detection

import (
	"bytes"
	"encoding/json"
)

// Selection is the image payload chosen by the user. The zero value and nil are
// both treated as "nothing selected".
type Selection struct {
	Name string
	Data []byte
}

// Empty reports whether the selection carries no payload.
func (s *Selection) Empty() bool { return s == nil || len(s.Data) == 0 }

// Detection is one box reported by the detection service. Coordinates are in
// the native pixel space of the submitted image.
type Detection struct {
	XMin       float64 `json:"xmin"`
	YMin       float64 `json:"ymin"`
	XMax       float64 `json:"xmax"`
	YMax       float64 `json:"ymax"`
	Confidence float64 `json:"confidence"`
	Class      *int    `json:"class,omitempty"`
	Name       string  `json:"name"`
}

// Result is a decoded response of the detection endpoint. Detections keep the
// order the service returned them in.
type Result struct {
	CorrosionPercent float64     `json:"corrosion_percent"`
	Detections       []Detection `json:"detections"`

	// Raw is the response body as received, kept for the raw JSON view.
	Raw json.RawMessage `json:"-"`
}

type wireResult struct {
	CorrosionPercent *float64    `json:"corrosion_percent"`
	Detections       []Detection `json:"detections"`
}

// ParseResult decodes a response body. Bodies missing either top level field
// are rejected with a *MalformedResponseError.
func ParseResult(body []byte) (*Result, error) {
	var w wireResult
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, &MalformedResponseError{Cause: err}
	}
	if w.CorrosionPercent == nil {
		return nil, &MalformedResponseError{Cause: errMissingField("corrosion_percent")}
	}
	if w.Detections == nil {
		return nil, &MalformedResponseError{Cause: errMissingField("detections")}
	}
	raw := make(json.RawMessage, len(body))
	copy(raw, body)
	return &Result{CorrosionPercent: *w.CorrosionPercent, Detections: w.Detections, Raw: raw}, nil
}

// PrettyJSON renders the result the way the raw response panel shows it:
// two space indentation of the body as received, falling back to the decoded
// fields when no body was kept.
func (r *Result) PrettyJSON() string {
	if r == nil {
		return ""
	}
	src := []byte(r.Raw)
	if len(src) == 0 {
		b, err := json.Marshal(r)
		if err != nil {
			return ""
		}
		src = b
	}
	var out bytes.Buffer
	if err := json.Indent(&out, src, "", "  "); err != nil {
		return string(src)
	}
	return out.String()
}
