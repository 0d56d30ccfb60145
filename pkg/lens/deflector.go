package lens

import "github.com/gravitymirage/gravitymirage/pkg/physics"

// Deflector is the single contract both strategies satisfy: the deflection
// angle in radians for an impact parameter b in meters, or ok=false when the
// photon is unobservable (shadow). The renderer picks an implementation once
// per render, outside the per-pixel loop.
type Deflector interface {
	Deflection(b float64) (alpha float64, ok bool)
}

// weakFieldDeflector wraps the closed-form approximation.
type weakFieldDeflector struct {
	bh physics.BlackHole
}

// NewWeakFieldDeflector returns a Deflector backed by the closed-form
// weak-field formula. Pure and allocation-free.
func NewWeakFieldDeflector(bh physics.BlackHole) Deflector {
	return weakFieldDeflector{bh: bh}
}

func (d weakFieldDeflector) Deflection(b float64) (float64, bool) {
	return d.bh.DeflectWeakField(b)
}

// Profile implements Deflector via interpolation; see profile.go.
var _ Deflector = (*Profile)(nil)
