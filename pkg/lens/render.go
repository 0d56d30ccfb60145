package lens

import (
	"context"
	"fmt"
	"image"
	"io"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/gravitymirage/gravitymirage/pkg/errors"
	"github.com/gravitymirage/gravitymirage/pkg/observability"
	"github.com/gravitymirage/gravitymirage/pkg/physics"
)

// Renderer drives the full lensing pipeline: validate parameters, obtain a
// deflection strategy (building and caching the radial profile for geodesic
// renders), map every output pixel, resample the source.
//
// A Renderer is stateless apart from its profile cache and logger; multiple
// goroutines can share one Renderer.
type Renderer struct {
	profiles *ProfileCache
	logger   *log.Logger
	workers  int
}

// NewRenderer creates a renderer. A nil cache gets a fresh default-sized
// profile cache; a nil logger discards output.
func NewRenderer(profiles *ProfileCache, logger *log.Logger) *Renderer {
	if profiles == nil {
		profiles = NewProfileCache(0, DefaultProfileConfig())
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Renderer{
		profiles: profiles,
		logger:   logger,
		workers:  runtime.NumCPU(),
	}
}

// Result is a completed render. The image is fully populated — every pixel
// carries exactly one color, shadow included — and immutable by convention
// once returned.
type Result struct {
	// Image is the lensed output, Params.Width × Params.Height.
	Image *image.RGBA

	// Degraded reports that at least one geodesic sample exhausted its
	// integration budget and was demoted to shadow. Inspectable, never
	// fatal.
	Degraded bool

	// ProfileHit reports whether the radial profile came from the cache.
	ProfileHit bool

	// Stats carries timing and pixel counts.
	Stats Stats
}

// Stats contains render execution statistics.
type Stats struct {
	ProfileTime  time.Duration
	RenderTime   time.Duration
	ShadowPixels int
}

// Render computes the lensed image of src under params.
//
// The render is all-or-nothing: either a fully populated image or an error,
// never a partial result. Validation failures surface as typed INVALID_*
// errors before any computation. Per-sample numeric divergence inside the
// geodesic build degrades those samples to shadow and sets Result.Degraded.
func (r *Renderer) Render(ctx context.Context, src image.Image, params Params) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if src == nil || src.Bounds().Empty() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "source image is empty")
	}

	start := time.Now()
	observability.Render().OnRenderStart(ctx, string(params.Method), params.Width, params.Height)

	bh := physics.NewBlackHole(params.Mass)
	res := &Result{}

	var deflector Deflector
	switch params.Method {
	case MethodGeodesic:
		profileStart := time.Now()
		profile, hit, err := r.profiles.GetOrBuild(ctx, params.Mass, params.Scale)
		if err != nil {
			return nil, fmt.Errorf("build radial profile: %w", err)
		}
		res.ProfileHit = hit
		res.Degraded = profile.Degraded()
		res.Stats.ProfileTime = time.Since(profileStart)
		observability.Render().OnProfile(ctx, hit, profile.Len(), res.Stats.ProfileTime)
		r.logger.Debug("radial profile ready",
			"samples", profile.Len(),
			"cached", hit,
			"degraded", res.Degraded,
			"duration", res.Stats.ProfileTime)
		deflector = profile
	default:
		deflector = NewWeakFieldDeflector(bh)
	}

	srcRGBA := toRGBA(src)
	m := newMapper(params, bh, deflector, srcRGBA.Bounds().Dx(), srcRGBA.Bounds().Dy())
	out := image.NewRGBA(image.Rect(0, 0, params.Width, params.Height))

	var shadow atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for y := 0; y < params.Height; y++ {
		y := y
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var rowShadow int64
			off := out.PixOffset(0, y)
			for x := 0; x < params.Width; x++ {
				c := resample(srcRGBA, m.mapPixel(x, y))
				if c == ShadowColor {
					rowShadow++
				}
				out.Pix[off+0] = c.R
				out.Pix[off+1] = c.G
				out.Pix[off+2] = c.B
				out.Pix[off+3] = c.A
				off += 4
			}
			shadow.Add(rowShadow)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		observability.Render().OnRenderComplete(ctx, string(params.Method), time.Since(start), res.Degraded, err)
		return nil, err
	}

	res.Image = out
	res.Stats.ShadowPixels = int(shadow.Load())
	res.Stats.RenderTime = time.Since(start)
	observability.Render().OnRenderComplete(ctx, string(params.Method), res.Stats.RenderTime, res.Degraded, nil)
	r.logger.Debug("rendered lensed image",
		"method", params.Method,
		"size", fmt.Sprintf("%dx%d", params.Width, params.Height),
		"shadow_pixels", res.Stats.ShadowPixels,
		"duration", res.Stats.RenderTime)
	return res, nil
}
