package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"image/color"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/soocke/rustlens/domain/overlay"
)

const (
	DefaultEndpoint       = "http://127.0.0.1:8000/detect"
	DefaultMaxDisplayW    = 600
	DefaultMaxDisplayH    = 600
	DefaultBoxLineWidth   = 2.0
	DefaultLabelHeight    = 20.0
	DefaultLabelPadding   = 6.0
	DefaultBoxColor       = "#ff0000"
	DefaultLabelTextColor = "#ffffff"
)

// Config holds runtime configuration for the detection client and overlay.
// Fields may be loaded from a JSON file and overridden by command-line flags.
type Config struct {
	Debug bool `json:"debug"`

	Endpoint              string `json:"endpoint"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds"`

	// Display
	MaxDisplayWidth  int `json:"max_display_width"`
	MaxDisplayHeight int `json:"max_display_height"`

	// Overlay style
	BoxLineWidth   float64 `json:"box_line_width"`
	LabelHeight    float64 `json:"label_height"`
	LabelPadding   float64 `json:"label_padding"`
	BoxColor       string  `json:"box_color"`
	LabelTextColor string  `json:"label_text_color"`

	// Empty disables the Prometheus listener.
	MetricsAddr string `json:"metrics_addr"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:            false,
		Endpoint:         DefaultEndpoint,
		MaxDisplayWidth:  DefaultMaxDisplayW,
		MaxDisplayHeight: DefaultMaxDisplayH,
		BoxLineWidth:     DefaultBoxLineWidth,
		LabelHeight:      DefaultLabelHeight,
		LabelPadding:     DefaultLabelPadding,
		BoxColor:         DefaultBoxColor,
		LabelTextColor:   DefaultLabelTextColor,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	if u, err := url.Parse(c.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.RequestTimeoutSeconds < 0 {
		c.RequestTimeoutSeconds = 0
	}
	if c.MaxDisplayWidth < 0 {
		c.MaxDisplayWidth = DefaultMaxDisplayW
	}
	if c.MaxDisplayHeight < 0 {
		c.MaxDisplayHeight = DefaultMaxDisplayH
	}
	if c.BoxLineWidth <= 0 {
		c.BoxLineWidth = DefaultBoxLineWidth
	}
	if c.LabelHeight <= 0 {
		c.LabelHeight = DefaultLabelHeight
	}
	if c.LabelPadding < 0 {
		c.LabelPadding = DefaultLabelPadding
	}
	if _, err := ParseColor(c.BoxColor); err != nil {
		c.BoxColor = DefaultBoxColor
	}
	if _, err := ParseColor(c.LabelTextColor); err != nil {
		c.LabelTextColor = DefaultLabelTextColor
	}
	return nil
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// Flags are the command-line overrides. Zero values leave the file value alone.
type Flags struct {
	ConfigPath string
	Endpoint   string
	Metrics    string
	Debug      bool
}

// Register adds the shared flags to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.ConfigPath, "config", "rustlens.json", "path to the JSON config file")
	fs.StringVar(&f.Endpoint, "endpoint", "", "detection endpoint URL")
	fs.StringVar(&f.Metrics, "metrics", "", "address for the Prometheus listener, e.g. :9090")
	fs.BoolVar(&f.Debug, "debug", false, "enable debug logging and runtime loggers")
}

// ParseFlags parses args (without the program name) into Flags.
func ParseFlags(name string, args []string) (Flags, error) {
	var f Flags
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	f.Register(fs)
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	return f, nil
}

// Apply overlays non-zero flag values onto c and re-validates.
func (c *Config) Apply(f Flags) {
	if f.Endpoint != "" {
		c.Endpoint = f.Endpoint
	}
	if f.Metrics != "" {
		c.MetricsAddr = f.Metrics
	}
	if f.Debug {
		c.Debug = true
	}
	_ = c.Validate()
}

// RequestTimeout is the per-request deadline; 0 leaves it to the transport.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// OverlayStyle builds the overlay style. Invalid colors fall back to the
// renderer defaults.
func (c *Config) OverlayStyle() overlay.Style {
	st := overlay.Style{
		LineWidth:    c.BoxLineWidth,
		LabelHeight:  c.LabelHeight,
		LabelPadding: c.LabelPadding,
	}
	if box, err := ParseColor(c.BoxColor); err == nil {
		st.BoxColor, st.LabelColor = box, box
	}
	if txt, err := ParseColor(c.LabelTextColor); err == nil {
		st.TextColor = txt
	}
	return st
}

// ParseColor parses #rgb or #rrggbb into an opaque color.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
