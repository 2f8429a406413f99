package images

import (
	"bytes"
	"image"
	"image/png"

	"golang.org/x/image/draw"
)

// EncodePNG encodes an image to PNG bytes. Errors are ignored and may return an empty slice.
func EncodePNG(img image.Image) []byte {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// FitSize returns the largest w x h with the aspect ratio of srcW x srcH that
// fits within maxW x maxH. Sources that already fit are returned unchanged;
// images are never enlarged.
func FitSize(srcW, srcH, maxW, maxH int) (int, int) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0
	}
	if (maxW <= 0 || srcW <= maxW) && (maxH <= 0 || srcH <= maxH) {
		return srcW, srcH
	}
	ratio := 1.0
	if maxW > 0 {
		ratio = min(ratio, float64(maxW)/float64(srcW))
	}
	if maxH > 0 {
		ratio = min(ratio, float64(maxH)/float64(srcH))
	}
	w := max(1, int(float64(srcW)*ratio+0.5))
	h := max(1, int(float64(srcH)*ratio+0.5))
	return w, h
}

// ScaleToFit scales src so that it fits within maxW x maxH preserving aspect
// ratio. If the source already fits, the original is returned.
func ScaleToFit(src image.Image, maxW, maxH int) image.Image {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	w, h := FitSize(b.Dx(), b.Dy(), maxW, maxH)
	if w == b.Dx() && h == b.Dy() {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// Composite returns a copy of base with overlay drawn over it, both anchored
// at the top-left corner.
func Composite(base, overlay image.Image) *image.RGBA {
	if base == nil {
		return nil
	}
	b := base.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), base, b.Min, draw.Src)
	if overlay != nil {
		draw.Draw(out, out.Bounds(), overlay, overlay.Bounds().Min, draw.Over)
	}
	return out
}
