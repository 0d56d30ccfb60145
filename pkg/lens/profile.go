package lens

import (
	"context"
	"math"
	"sort"

	"github.com/gravitymirage/gravitymirage/pkg/errors"
	"github.com/gravitymirage/gravitymirage/pkg/physics"
)

// ProfileConfig controls radial profile construction. Start from
// DefaultProfileConfig; the zero value builds nothing useful.
type ProfileConfig struct {
	// Samples is the number of impact parameters to integrate.
	Samples int

	// Epsilon offsets the innermost sample above the horizon: the sampled
	// range starts at r_s·(1+Epsilon).
	Epsilon float64

	// MaxFactor sets the outermost sample at r_s·MaxFactor. Beyond that the
	// profile extrapolates with the weak-field asymptote, which is accurate
	// to well under a percent at these radii.
	MaxFactor float64

	// Solver bounds the per-sample geodesic integration.
	Solver physics.SolverConfig
}

// DefaultProfileConfig returns the sampling configuration used by the
// renderer: 128 log-spaced samples concentrated near the horizon, where
// deflection changes fastest.
func DefaultProfileConfig() ProfileConfig {
	return ProfileConfig{
		Samples:   128,
		Epsilon:   1e-3,
		MaxFactor: 64,
		Solver:    physics.DefaultSolverConfig(),
	}
}

type profileSample struct {
	b     float64 // impact parameter, meters
	alpha float64 // deflection, radians
}

// Profile is an immutable radial deflection table for one black hole:
// strictly increasing impact parameters with their integrated deflection
// angles. Impact parameters below the smallest convergent sample are shadow;
// above the largest sample the weak-field asymptote takes over. Profiles are
// built once per (mass, scale) key, shared read-only across renders.
type Profile struct {
	bh       physics.BlackHole
	samples  []profileSample
	minB     float64
	maxB     float64
	diverged int
}

// BuildProfile integrates the geodesic deflection for cfg.Samples log-spaced
// impact parameters over [r_s·(1+ε), r_s·MaxFactor]. Captured rays fall out
// of the table (they bound minB from below); rays that exhaust the step
// budget are counted as diverged and degrade to shadow rather than failing
// the build. A table with no convergent samples at all is an error. The
// result is deterministic for identical inputs.
func BuildProfile(ctx context.Context, bh physics.BlackHole, cfg ProfileConfig) (*Profile, error) {
	if cfg.Samples < 2 {
		cfg.Samples = 2
	}
	rs := bh.SchwarzschildRadius()
	bMin := rs * (1 + cfg.Epsilon)
	bMax := rs * cfg.MaxFactor
	logMin := math.Log(bMin)
	logStep := (math.Log(bMax) - logMin) / float64(cfg.Samples-1)

	p := &Profile{
		bh:      bh,
		samples: make([]profileSample, 0, cfg.Samples),
		minB:    math.Inf(1),
		maxB:    bMax,
	}

	for i := 0; i < cfg.Samples; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b := math.Exp(logMin + float64(i)*logStep)
		alpha, outcome := bh.TraceDeflection(b, cfg.Solver)
		switch outcome {
		case physics.TraceEscaped:
			p.samples = append(p.samples, profileSample{b: b, alpha: alpha})
		case physics.TraceDiverged:
			p.diverged++
		}
	}

	// Log spacing produces distinct, ascending samples, but keep the table's
	// invariant independent of the integration details.
	sort.Slice(p.samples, func(i, j int) bool { return p.samples[i].b < p.samples[j].b })
	dedup := p.samples[:0]
	for _, s := range p.samples {
		if len(dedup) == 0 || s.b > dedup[len(dedup)-1].b {
			dedup = append(dedup, s)
		}
	}
	p.samples = dedup

	if len(p.samples) == 0 && p.diverged > 0 {
		return nil, errors.New(errors.ErrCodeNumericDivergence,
			"no geodesic sample converged over [%g, %g] meters", bMin, bMax)
	}
	if len(p.samples) > 0 {
		p.minB = p.samples[0].b
		p.maxB = p.samples[len(p.samples)-1].b
	}
	return p, nil
}

// Deflection interpolates the profile at impact parameter b.
//
// Policy (pinned by regression tests): b below the smallest convergent
// sample is shadow; b above the largest sample extrapolates with the
// weak-field formula 4GM/(c²b); in between, linear interpolation between the
// bracketing samples. The table is monotone decreasing, so interpolation
// cannot introduce angle inversions or banding.
func (p *Profile) Deflection(b float64) (float64, bool) {
	if b < p.minB {
		return 0, false
	}
	if b > p.maxB {
		return p.bh.DeflectWeakField(b)
	}
	i := sort.Search(len(p.samples), func(i int) bool { return p.samples[i].b >= b })
	if i == 0 {
		return p.samples[0].alpha, true
	}
	lo, hi := p.samples[i-1], p.samples[i]
	t := (b - lo.b) / (hi.b - lo.b)
	return lo.alpha + t*(hi.alpha-lo.alpha), true
}

// MinB returns the smallest convergent impact parameter: the geodesic
// shadow boundary in meters.
func (p *Profile) MinB() float64 { return p.minB }

// MaxB returns the largest sampled impact parameter.
func (p *Profile) MaxB() float64 { return p.maxB }

// Len returns the number of convergent samples.
func (p *Profile) Len() int { return len(p.samples) }

// Degraded reports whether any sample exhausted its integration budget.
// Degraded profiles still render; the affected samples read as shadow.
func (p *Profile) Degraded() bool { return p.diverged > 0 }
