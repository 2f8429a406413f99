package capture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestSelection_EncodesPNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	sel, err := Selection(img)
	if err != nil {
		t.Fatalf("selection: %v", err)
	}
	if sel.Name != "screen.png" || sel.Empty() {
		t.Fatalf("unexpected selection name=%q len=%d", sel.Name, len(sel.Data))
	}
	got, err := png.Decode(bytes.NewReader(sel.Data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := got.Bounds(); b.Dx() != 8 || b.Dy() != 4 {
		t.Fatalf("bounds = %v", b)
	}
}

func TestSelection_NilImage(t *testing.T) {
	if _, err := Selection(nil); err == nil {
		t.Fatalf("expected error for nil image")
	}
}
