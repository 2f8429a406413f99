package presenter

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/soocke/rustlens/domain/overlay"
	"github.com/soocke/rustlens/ui/images"
	"github.com/soocke/rustlens/ui/model"
)

// DisplaySource is what a display handle resolves to: the decoded image with
// its intrinsic and displayed sizes.
type DisplaySource interface {
	NaturalSize() (int, int)
	DisplaySize() (int, int)
	DisplayImage() image.Image
}

// OverlayView shows the displayed image with the overlay on top. nil clears it.
type OverlayView interface {
	ShowImage(img image.Image)
}

// OverlayPresenter redraws the overlay when the accepted result or the display
// handle changes.
type OverlayPresenter struct {
	renderer *overlay.Renderer
	surface  *overlay.Raster
	view     OverlayView
	frame    *image.RGBA
}

func NewOverlayPresenter(renderer *overlay.Renderer, surface *overlay.Raster, view OverlayView) *OverlayPresenter {
	return &OverlayPresenter{renderer: renderer, surface: surface, view: view}
}

// OnChange is a model.Listener.
func (p *OverlayPresenter) OnChange(c model.Change, vs *model.ViewState) {
	if p == nil || !c.Has(model.ChangeSelection|model.ChangeResult) {
		return
	}
	p.Redraw(vs)
}

// Redraw renders the current state from scratch.
func (p *OverlayPresenter) Redraw(vs *model.ViewState) {
	if p == nil || p.renderer == nil || p.surface == nil {
		return
	}
	src, _ := vs.Handle().Resource().(DisplaySource)
	var proj *overlay.Projector
	if src != nil {
		nw, nh := src.NaturalSize()
		dw, dh := src.DisplaySize()
		if pr, ok := overlay.NewProjector(nw, nh, dw, dh); ok {
			proj = &pr
		}
	}
	p.renderer.Render(p.surface, vs.Result(), proj)

	if src == nil || src.DisplayImage() == nil {
		p.frame = nil
	} else {
		p.frame = images.Composite(src.DisplayImage(), p.surface.Image())
	}
	if p.view != nil {
		if p.frame == nil {
			p.view.ShowImage(nil)
		} else {
			p.view.ShowImage(p.frame)
		}
	}
}

// SetRenderer swaps the overlay style and redraws vs with it.
func (p *OverlayPresenter) SetRenderer(r *overlay.Renderer, vs *model.ViewState) {
	if p == nil || r == nil {
		return
	}
	p.renderer = r
	p.Redraw(vs)
}

// Frame returns the last composited image, or nil.
func (p *OverlayPresenter) Frame() *image.RGBA {
	if p == nil {
		return nil
	}
	return p.frame
}

// SavePNG writes the last composited image to path.
func (p *OverlayPresenter) SavePNG(path string) error {
	frame := p.Frame()
	if frame == nil {
		return errors.New("nothing to save")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, frame); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
