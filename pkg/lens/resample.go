package lens

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// ShadowColor paints pixels whose rays never escaped the horizon.
var ShadowColor = color.RGBA{A: 255}

// resample produces the output color for one pixel mapping: bilinear
// interpolation over the four nearest source pixels, with coordinates
// clamped to the source border (out-of-frame rays repeat the edge rather
// than wrapping or going transparent). Shadow mappings paint ShadowColor.
func resample(src *image.RGBA, m Mapping) color.RGBA {
	if m.Shadow {
		return ShadowColor
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	// Sample positions are pixel centers; shift so integer coordinates land
	// on them before splitting into base cell and fractional weight.
	fx := clampF(m.X-0.5, 0, float64(w-1))
	fy := clampF(m.Y-0.5, 0, float64(h-1))

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	x1 := min(x0+1, w-1)
	y1 := min(y0+1, h-1)
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	c00 := src.RGBAAt(b.Min.X+x0, b.Min.Y+y0)
	c10 := src.RGBAAt(b.Min.X+x1, b.Min.Y+y0)
	c01 := src.RGBAAt(b.Min.X+x0, b.Min.Y+y1)
	c11 := src.RGBAAt(b.Min.X+x1, b.Min.Y+y1)

	return color.RGBA{
		R: lerp2(c00.R, c10.R, c01.R, c11.R, tx, ty),
		G: lerp2(c00.G, c10.G, c01.G, c11.G, tx, ty),
		B: lerp2(c00.B, c10.B, c01.B, c11.B, tx, ty),
		A: lerp2(c00.A, c10.A, c01.A, c11.A, tx, ty),
	}
}

// lerp2 bilinearly blends four channel values with weights (tx, ty).
func lerp2(v00, v10, v01, v11 uint8, tx, ty float64) uint8 {
	top := float64(v00) + tx*(float64(v10)-float64(v00))
	bot := float64(v01) + tx*(float64(v11)-float64(v01))
	return uint8(math.Round(top + ty*(bot-top)))
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// toRGBA returns src as *image.RGBA with bounds anchored at the origin,
// copying only when the representation differs.
func toRGBA(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), src, b.Min, draw.Src)
	return out
}
