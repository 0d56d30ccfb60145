package lens

import (
	"math"
	"testing"

	"github.com/gravitymirage/gravitymirage/pkg/physics"
)

// testMapper builds a 64x64 mapper whose scale puts the Schwarzschild
// radius at exactly one output pixel, so impact parameters read directly
// in pixel units.
func testMapper(t *testing.T, offsetX, offsetY float64) (*mapper, physics.BlackHole) {
	t.Helper()
	bh := physics.NewBlackHole(10)
	p := Params{
		Mass:    10,
		Scale:   bh.SchwarzschildRadius(),
		Method:  MethodWeakField,
		Width:   64,
		Height:  64,
		OffsetX: offsetX,
		OffsetY: offsetY,
	}
	return newMapper(p, bh, NewWeakFieldDeflector(bh), p.Width, p.Height), bh
}

func TestMapperFarPixelNearIdentity(t *testing.T) {
	m, _ := testMapper(t, 0, 0)

	// A corner pixel sits ~45 r_s out; weak-field displacement there is
	// 2/45 of a pixel, so the mapping is essentially the identity.
	got := m.mapPixel(0, 0)
	if got.Shadow {
		t.Fatal("far pixel must not be shadow")
	}
	if math.Abs(got.X-0.5) > 0.1 || math.Abs(got.Y-0.5) > 0.1 {
		t.Errorf("corner pixel mapped to (%g, %g), want near its own center (0.5, 0.5)", got.X, got.Y)
	}
}

func TestMapperShadowInsideSchwarzschildRadius(t *testing.T) {
	m, _ := testMapper(t, 0, 0)

	// The pixel whose center is closest to the lens center has r < 1 r_s.
	got := m.mapPixel(31, 31)
	if !got.Shadow {
		t.Error("pixel inside the Schwarzschild radius must map to shadow")
	}
}

func TestMapperAzimuthPreserved(t *testing.T) {
	m, _ := testMapper(t, 0, 0)

	// Pixels at the same radius on different azimuths must be displaced by
	// the same radial amount.
	right := m.mapPixel(41, 31) // center (41.5, 31.5): dx=9.5, dy=-0.5
	down := m.mapPixel(31, 41)  // center (31.5, 41.5): dx=-0.5, dy=9.5
	if right.Shadow || down.Shadow {
		t.Fatal("pixels well outside the shadow must map")
	}

	rRight := math.Hypot(right.X-32, right.Y-32)
	rDown := math.Hypot(down.X-32, down.Y-32)
	if math.Abs(rRight-rDown) > 1e-9 {
		t.Errorf("source radii differ across azimuth: %g vs %g", rRight, rDown)
	}

	// The displacement is strictly inward.
	if rRight >= math.Hypot(9.5, -0.5) {
		t.Errorf("source radius %g not inside output radius %g", rRight, math.Hypot(9.5, -0.5))
	}
}

func TestMapperNegativeRadiusFlipsAzimuth(t *testing.T) {
	// Center at (32.3, 32.5) so the pixel centered on (33.5, 32.5) sits at
	// r = 1.2 r_s, where the weak-field displacement 2/r = 1.67 exceeds r:
	// the ray crosses the optical axis and samples the opposite side.
	m, _ := testMapper(t, 0.3, 0.5)

	got := m.mapPixel(33, 32)
	if got.Shadow {
		t.Fatal("pixel outside r_s must map")
	}
	if got.X >= 32.3 {
		t.Errorf("axis-crossing ray should sample x < center, got X=%g", got.X)
	}
	if math.Abs(got.Y-32.5) > 1e-9 {
		t.Errorf("flip must stay on the same axis, got Y=%g", got.Y)
	}
}

func TestMapperCenterOffset(t *testing.T) {
	centered, _ := testMapper(t, 0, 0)
	shifted, _ := testMapper(t, 8, -4)

	// The shifted lens reproduces the centered mapping at the shifted pixel.
	a := centered.mapPixel(40, 20)
	b := shifted.mapPixel(48, 16)
	if a.Shadow != b.Shadow {
		t.Fatal("shifted pixel should share the centered pixel's shadow state")
	}
	if math.Abs((b.X-a.X)-8) > 1e-9 || math.Abs((b.Y-a.Y)-(-4)) > 1e-9 {
		t.Errorf("offset mapping (%g, %g) does not track centered mapping (%g, %g)", b.X, b.Y, a.X, a.Y)
	}
}

func TestMapperSourceDimensionScaling(t *testing.T) {
	bh := physics.NewBlackHole(10)
	p := Params{
		Mass:   10,
		Scale:  bh.SchwarzschildRadius(),
		Method: MethodWeakField,
		Width:  64,
		Height: 64,
	}
	m1 := newMapper(p, bh, NewWeakFieldDeflector(bh), 64, 64)
	m2 := newMapper(p, bh, NewWeakFieldDeflector(bh), 128, 32)

	a := m1.mapPixel(5, 50)
	b := m2.mapPixel(5, 50)
	if math.Abs(b.X-2*a.X) > 1e-9 || math.Abs(b.Y-a.Y/2) > 1e-9 {
		t.Errorf("source of size 128x32 should scale mapping to (%g, %g), got (%g, %g)", 2*a.X, a.Y/2, b.X, b.Y)
	}
}
