// Package physics implements the gravitational optics of a Schwarzschild
// (non-rotating, uncharged) black hole.
//
// Two deflection strategies are provided:
//
//   - The weak-field approximation: Einstein's closed-form deflection angle
//     4GM/(c²b), cheap and accurate far from the horizon.
//   - A numeric geodesic solver that integrates the photon orbit equation in
//     the Schwarzschild metric, accurate all the way down to the photon
//     sphere where the weak-field formula badly underestimates bending.
//
// All quantities use SI units. Masses are given in solar masses; impact
// parameters and radii are in meters; deflection angles are in radians.
package physics

import "math"

// Physical constants (SI).
const (
	// G is the gravitational constant (m³/(kg·s²)).
	G = 6.674e-11

	// C is the speed of light (m/s).
	C = 299792458

	// SolarMass is one solar mass (kg).
	SolarMass = 1.989e30
)

// BlackHole represents a Schwarzschild black hole of a given mass.
// The zero value is not useful; construct with NewBlackHole.
type BlackHole struct {
	// MassKg is the mass in kilograms.
	MassKg float64

	// rs is the precomputed Schwarzschild radius in meters.
	rs float64
}

// NewBlackHole creates a black hole from a mass in solar masses.
func NewBlackHole(solarMasses float64) BlackHole {
	kg := solarMasses * SolarMass
	return BlackHole{
		MassKg: kg,
		rs:     2 * G * kg / (C * C),
	}
}

// SchwarzschildRadius returns the event horizon radius r_s = 2GM/c² in meters.
func (bh BlackHole) SchwarzschildRadius() float64 {
	return bh.rs
}

// DeflectWeakField computes the weak-field deflection angle for a light ray
// with impact parameter b (meters).
//
// For b ≥ r_s it returns Einstein's closed-form angle α = 4GM/(c²b) and
// ok=true. For b < r_s the photon is captured and it returns ok=false.
// The angle is positive and strictly decreasing in b.
func (bh BlackHole) DeflectWeakField(b float64) (alpha float64, ok bool) {
	if b < bh.rs {
		return 0, false
	}
	return 4 * G * bh.MassKg / (C * C * b), true
}

// CriticalImpactParameter returns b_crit = (3√3/2)·r_s, the impact parameter
// of the photon sphere. Rays with b below this value spiral into the horizon;
// the geodesic solver reports them as captured.
func (bh BlackHole) CriticalImpactParameter() float64 {
	return 1.5 * math.Sqrt(3) * bh.rs
}
