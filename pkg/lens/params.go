// Package lens implements the gravitational lensing transform engine.
//
// Given a source image and physical parameters (mass, a pixel-to-physical
// scale, a rendering method), it computes per output pixel where that light
// ray originated on the source image — or that it is unobservable — and
// resamples the source accordingly.
//
// # Architecture
//
// The engine is a fixed pipeline over the output grid:
//
//  1. Deflection strategy: closed-form weak-field physics, or a cached
//     radial profile built by numeric geodesic integration (pkg/physics).
//  2. Coordinate mapper: output pixel → polar physical coordinates →
//     deflected source coordinate or shadow marker.
//  3. Resampler: bilinear sampling of the source, shadow painted black.
//
// Because the mass is centered and circularly symmetric, deflection depends
// only on the distance from center. That symmetry is what licenses the 1-D
// radial profile in place of a per-pixel ray trace.
//
// # Usage
//
//	renderer := lens.NewRenderer(lens.NewProfileCache(0, lens.DefaultProfileConfig()), logger)
//	res, err := renderer.Render(ctx, src, lens.Params{
//	    Mass:   10,
//	    Scale:  2000,
//	    Method: lens.MethodGeodesic,
//	    Width:  512,
//	    Height: 512,
//	})
//	if err != nil {
//	    return err
//	}
//	png.Encode(w, res.Image)
package lens

import (
	"fmt"
	"strings"

	"github.com/gravitymirage/gravitymirage/pkg/errors"
)

// Method selects the deflection strategy.
type Method string

const (
	// MethodWeakField uses Einstein's closed-form deflection angle. Cheap,
	// accurate away from the horizon.
	MethodWeakField Method = "weak-field"

	// MethodGeodesic numerically integrates photon geodesics into a cached
	// radial profile. Accurate down to the photon sphere.
	MethodGeodesic Method = "geodesic"
)

// ParseMethod normalizes a user-supplied method string. The legacy short
// form "weak" is accepted as an alias for "weak-field".
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weak", "weak-field":
		return MethodWeakField, nil
	case "geodesic":
		return MethodGeodesic, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidMethod, "unknown render method %q", s)
	}
}

// Params describes one lensing render. All validation happens up front in
// Validate; no computation starts on invalid parameters.
type Params struct {
	// Mass is the black hole mass in solar masses. Must be positive.
	Mass float64

	// Scale is the physical length of one output pixel in meters. Must be
	// positive. Together with Mass it fixes how many pixels the event
	// horizon covers: r_s(Mass)/Scale.
	Scale float64

	// Method selects the deflection strategy.
	Method Method

	// Width and Height are the output dimensions in pixels. Must be positive.
	Width  int
	Height int

	// OffsetX and OffsetY shift the lens center away from the image center,
	// in pixels. Zero keeps the mass centered.
	OffsetX float64
	OffsetY float64
}

// Validate checks all parameters and returns a typed validation error for
// the first violation found.
func (p Params) Validate() error {
	if p.Mass <= 0 {
		return errors.New(errors.ErrCodeInvalidMass, "mass must be positive, got %g", p.Mass)
	}
	if p.Scale <= 0 {
		return errors.New(errors.ErrCodeInvalidScale, "scale must be positive, got %g", p.Scale)
	}
	if p.Method != MethodWeakField && p.Method != MethodGeodesic {
		return errors.New(errors.ErrCodeInvalidMethod, "unknown render method %q", string(p.Method))
	}
	if p.Width <= 0 || p.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidDimensions, "output dimensions must be positive, got %dx%d", p.Width, p.Height)
	}
	return nil
}

// CacheKey returns a canonical string identifying the render output for a
// given source, used to key the rendered-image cache.
func (p Params) CacheKey() string {
	return fmt.Sprintf("m=%.9g s=%.9g x=%s w=%d h=%d ox=%.9g oy=%.9g",
		p.Mass, p.Scale, p.Method, p.Width, p.Height, p.OffsetX, p.OffsetY)
}
