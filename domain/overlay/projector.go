package overlay

import "github.com/soocke/rustlens/domain/detection"

// Projector maps native image pixels onto displayed pixels.
type Projector struct {
	NativeW, NativeH   int
	DisplayW, DisplayH int
	ScaleX, ScaleY     float64
}

// NewProjector returns the projection for an image decoded at nativeW x nativeH
// and shown at displayW x displayH. ok is false while the native size is
// unknown (zero), which callers treat as "not ready".
func NewProjector(nativeW, nativeH, displayW, displayH int) (p Projector, ok bool) {
	if nativeW <= 0 || nativeH <= 0 {
		return Projector{}, false
	}
	return Projector{
		NativeW:  nativeW,
		NativeH:  nativeH,
		DisplayW: displayW,
		DisplayH: displayH,
		ScaleX:   float64(displayW) / float64(nativeW),
		ScaleY:   float64(displayH) / float64(nativeH),
	}, true
}

// Box is a rectangle in displayed pixel space.
type Box struct{ X, Y, W, H float64 }

// Project converts a detection's native corners into a displayed box.
func (p Projector) Project(d detection.Detection) Box {
	return Box{
		X: d.XMin * p.ScaleX,
		Y: d.YMin * p.ScaleY,
		W: (d.XMax - d.XMin) * p.ScaleX,
		H: (d.YMax - d.YMin) * p.ScaleY,
	}
}
