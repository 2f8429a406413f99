package view

import (
	"image"

	"github.com/soocke/rustlens/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ImagePreview shows the displayed image with its overlay in a label.
type ImagePreview interface {
	ShowImage(img image.Image)
	Reset()
}

type imagePreview struct {
	label *LabelWidget
	photo *Img // current Tk photo, deleted before it is replaced
	w, h  int
}

// NewImagePreview creates the preview label inside parent at row and grids it.
// w x h is the placeholder size shown while nothing is selected.
func NewImagePreview(parent *FrameWidget, row, w, h int) ImagePreview {
	v := &imagePreview{w: max(w, 50), h: max(h, 50)}
	v.photo = NewPhoto(Data(v.placeholder()))
	v.label = Label(Image(v.photo), Borderwidth(1), Relief("sunken"))
	Grid(v.label, In(parent), Row(row), Column(0), Columnspan(4), Sticky("nw"), Padx("0.4m"), Pady("0.4m"))
	return v
}

func (v *imagePreview) placeholder() []byte {
	return images.EncodePNG(image.NewRGBA(image.Rect(0, 0, v.w, v.h)))
}

// ShowImage replaces the shown photo. nil restores the placeholder.
func (v *imagePreview) ShowImage(img image.Image) {
	if v == nil || v.label == nil {
		return
	}
	if img == nil {
		v.Reset()
		return
	}
	v.replace(images.EncodePNG(img))
}

func (v *imagePreview) Reset() {
	if v == nil || v.label == nil {
		return
	}
	v.replace(v.placeholder())
}

func (v *imagePreview) replace(pngBytes []byte) {
	if len(pngBytes) == 0 {
		return
	}
	if v.photo != nil {
		v.photo.Delete()
	}
	v.photo = NewPhoto(Data(pngBytes))
	v.label.Configure(Image(v.photo))
}
