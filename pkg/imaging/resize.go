package imaging

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Resize scales img to exactly width x height with bilinear filtering.
func Resize(img image.Image, width, height int) *image.RGBA {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height && b.Min == (image.Point{}) {
		if rgba, ok := img.(*image.RGBA); ok {
			return rgba
		}
	}
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.BiLinear.Scale(out, out.Bounds(), img, b, xdraw.Src, nil)
	return out
}

// FitWidth scales img to the given width, preserving aspect ratio. The
// height is rounded to the nearest pixel and never drops below one.
func FitWidth(img image.Image, width int) *image.RGBA {
	b := img.Bounds()
	height := (b.Dy()*width + b.Dx()/2) / b.Dx()
	if height < 1 {
		height = 1
	}
	return Resize(img, width, height)
}

// Roll shifts img horizontally by offset pixels with wraparound, so the
// columns leaving one edge re-enter on the other. Negative offsets shift
// the other way.
func Roll(img *image.RGBA, offset int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return img
	}
	offset = ((offset % w) + w) % w
	if offset == 0 {
		return img
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		srcOff := img.PixOffset(b.Min.X, b.Min.Y+y)
		dstOff := out.PixOffset(0, y)
		row := img.Pix[srcOff : srcOff+w*4]
		// Source column x lands on output column (x+offset) mod w.
		copy(out.Pix[dstOff+offset*4:dstOff+w*4], row[:(w-offset)*4])
		copy(out.Pix[dstOff:dstOff+offset*4], row[(w-offset)*4:])
	}
	return out
}
