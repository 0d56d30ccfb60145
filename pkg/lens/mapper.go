package lens

import (
	"math"

	"github.com/gravitymirage/gravitymirage/pkg/physics"
)

// Mapping is the origin of one output pixel: either a fractional source
// coordinate or the shadow marker.
type Mapping struct {
	X, Y   float64
	Shadow bool
}

// mapper converts output pixels to source coordinates through the thin-lens
// remap. Because the mass is circularly symmetric about the lens center, the
// radial displacement depends only on the distance from center — azimuth is
// preserved. That invariant is what makes the 1-D radial profile sufficient.
type mapper struct {
	cx, cy    float64 // lens center in output pixel coordinates
	scale     float64 // meters per output pixel
	rsPx      float64 // Schwarzschild radius in output pixels
	deflector Deflector

	// Output→source coordinate ratios, for source images whose dimensions
	// differ from the output grid.
	sx, sy float64
}

func newMapper(p Params, bh physics.BlackHole, d Deflector, srcW, srcH int) *mapper {
	return &mapper{
		cx:        float64(p.Width)/2 + p.OffsetX,
		cy:        float64(p.Height)/2 + p.OffsetY,
		scale:     p.Scale,
		rsPx:      bh.SchwarzschildRadius() / p.Scale,
		deflector: d,
		sx:        float64(srcW) / float64(p.Width),
		sy:        float64(srcH) / float64(p.Height),
	}
}

// mapPixel maps the output pixel (x, y) to its source coordinate.
//
// The pixel's distance from the lens center gives the impact parameter
// b = r·scale. The deflector supplies the bending angle α(b); shadow
// propagates unchanged. The thin-lens remap moves the source point radially
// inward by α expressed in pixels, with the Schwarzschild radius as the
// lever arm: Δr = α·r_s/scale. A negative source radius means the ray
// crossed the optical axis — the point maps to the opposite azimuth, which
// is what produces the inverted inner image of strong lensing.
func (m *mapper) mapPixel(x, y int) Mapping {
	dx := float64(x) + 0.5 - m.cx
	dy := float64(y) + 0.5 - m.cy
	r := math.Hypot(dx, dy)

	alpha, ok := m.deflector.Deflection(r * m.scale)
	if !ok {
		return Mapping{Shadow: true}
	}

	rSrc := r - alpha*m.rsPx
	theta := math.Atan2(dy, dx)
	if rSrc < 0 {
		rSrc = -rSrc
		theta += math.Pi
	}

	sx := m.cx + rSrc*math.Cos(theta)
	sy := m.cy + rSrc*math.Sin(theta)
	return Mapping{X: sx * m.sx, Y: sy * m.sy}
}
