package capture

import (
	"errors"
	"image"

	"github.com/vova616/screenshot"

	"github.com/soocke/rustlens/domain/detection"
	"github.com/soocke/rustlens/ui/images"
)

// ScreenName is the file name given to screen grabs sent for detection.
const ScreenName = "screen.png"

// Grab returns a screen capture of the current active monitor.
func Grab() (*image.RGBA, error) {
	img, err := screenshot.CaptureScreen()
	if err != nil {
		return nil, err
	}
	return img, nil
}

// GrabSelection captures the screen and wraps it as a PNG Selection.
func GrabSelection() (*detection.Selection, error) {
	img, err := Grab()
	if err != nil {
		return nil, err
	}
	return Selection(img)
}

// Selection encodes img as PNG under ScreenName.
func Selection(img image.Image) (*detection.Selection, error) {
	data := images.EncodePNG(img)
	if len(data) == 0 {
		return nil, errors.New("capture: empty image")
	}
	return &detection.Selection{Name: ScreenName, Data: data}, nil
}
