package physics

import "math"

// TraceOutcome classifies the fate of an integrated photon.
type TraceOutcome int

const (
	// TraceEscaped means the photon passed the mass and returned to infinity.
	TraceEscaped TraceOutcome = iota

	// TraceCaptured means the photon crossed the event horizon.
	TraceCaptured

	// TraceDiverged means the integration exhausted its step budget without
	// escaping or being captured. Callers treat this like capture: the sample
	// degrades to shadow instead of failing the whole computation.
	TraceDiverged
)

// String returns a short label for the outcome, for logs and tests.
func (o TraceOutcome) String() string {
	switch o {
	case TraceEscaped:
		return "escaped"
	case TraceCaptured:
		return "captured"
	default:
		return "diverged"
	}
}

// SolverConfig bounds the geodesic integration. The zero value is not
// useful; start from DefaultSolverConfig.
type SolverConfig struct {
	// Step is the base integration step in radians of orbital angle φ.
	Step float64

	// MaxSteps bounds the number of RK4 steps per ray. Exceeding it yields
	// TraceDiverged, never an unbounded loop.
	MaxSteps int
}

// DefaultSolverConfig returns the solver configuration used by the renderer.
// The step is small enough that the computed deflection agrees with the
// weak-field formula to well under a percent in the far field.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		Step:     1e-3,
		MaxSteps: 400000,
	}
}

// TraceDeflection integrates a photon trajectory with impact parameter b
// (meters) through the Schwarzschild metric and returns the total deflection
// angle in radians.
//
// The integration uses the equatorial photon orbit equation in the
// dimensionless variable w = r_s/r with orbital angle φ as the independent
// variable:
//
//	d²w/dφ² = -w + (3/2)·w²
//
// A ray arriving from infinity has w(0) = 0 and dw/dφ = r_s/b. The photon
// escapes when w drops back through zero after the closest approach; the
// deflection is the accumulated φ minus π. It is captured when w reaches 1
// (r = r_s). Classic fixed-stage RK4 with a step that shrinks near the
// horizon keeps the scheme fully deterministic: identical inputs reproduce
// identical angles bit-for-bit.
func (bh BlackHole) TraceDeflection(b float64, cfg SolverConfig) (alpha float64, outcome TraceOutcome) {
	if b <= bh.rs {
		return 0, TraceCaptured
	}

	w := 0.0
	v := bh.rs / b // dw/dφ
	phi := 0.0

	for i := 0; i < cfg.MaxSteps; i++ {
		h := cfg.Step
		if w > 0.5 {
			// Sub-horizon-scale radii: the orbit curvature is strongest here,
			// refine the step to hold local error down.
			h = cfg.Step * 0.25
		}

		w1, v1 := rk4Step(w, v, h)
		phi += h

		if w1 >= 1 {
			return 0, TraceCaptured
		}
		if w1 <= 0 && v1 < 0 {
			// Crossed back out to infinity. Interpolate the exact crossing
			// angle within the last step for sub-step accuracy.
			frac := w / (w - w1)
			phiExit := phi - h + h*frac
			return phiExit - math.Pi, TraceEscaped
		}
		w, v = w1, v1
	}
	return 0, TraceDiverged
}

// rk4Step advances (w, v) by one RK4 step of size h under the orbit equation.
func rk4Step(w, v, h float64) (float64, float64) {
	accel := func(w float64) float64 { return -w + 1.5*w*w }

	k1w := v
	k1v := accel(w)

	k2w := v + 0.5*h*k1v
	k2v := accel(w + 0.5*h*k1w)

	k3w := v + 0.5*h*k2v
	k3v := accel(w + 0.5*h*k2w)

	k4w := v + h*k3v
	k4v := accel(w + h*k3w)

	wOut := w + (h/6)*(k1w+2*k2w+2*k3w+k4w)
	vOut := v + (h/6)*(k1v+2*k2v+2*k3v+k4v)
	return wOut, vOut
}
