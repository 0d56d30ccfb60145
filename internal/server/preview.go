package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gravitymirage/gravitymirage/pkg/cache"
	"github.com/gravitymirage/gravitymirage/pkg/errors"
	"github.com/gravitymirage/gravitymirage/pkg/imaging"
	"github.com/gravitymirage/gravitymirage/pkg/lens"
	"github.com/gravitymirage/gravitymirage/pkg/observability"
)

// Preview width bounds; requests outside are clamped, not rejected.
const (
	minPreviewWidth = 64
	maxPreviewWidth = 2048
)

// renderRequest is a parsed and defaulted set of render query parameters.
type renderRequest struct {
	mass    float64
	scale   float64
	method  lens.Method
	width   int
	offsetX float64
	offsetY float64
}

// parseRenderRequest reads query parameters, falling back to the configured
// defaults. Numeric parse failures surface as validation errors naming the
// parameter.
func (s *Server) parseRenderRequest(r *http.Request) (renderRequest, error) {
	q := r.URL.Query()
	req := renderRequest{
		mass:  s.cfg.Render.DefaultMass,
		scale: s.cfg.Render.DefaultScale,
		width: s.cfg.Render.PreviewWidth,
	}
	// Config validation guarantees the default parses.
	req.method, _ = lens.ParseMethod(s.cfg.Render.DefaultMethod)

	var err error
	if v := q.Get("mass"); v != "" {
		if req.mass, err = strconv.ParseFloat(v, 64); err != nil {
			return req, errors.New(errors.ErrCodeInvalidMass, "mass %q is not a number", v)
		}
	}
	if v := q.Get("scale"); v != "" {
		if req.scale, err = strconv.ParseFloat(v, 64); err != nil {
			return req, errors.New(errors.ErrCodeInvalidScale, "scale %q is not a number", v)
		}
	}
	if v := q.Get("method"); v != "" {
		if req.method, err = lens.ParseMethod(v); err != nil {
			return req, err
		}
	}
	if v := q.Get("width"); v != "" {
		if req.width, err = strconv.Atoi(v); err != nil {
			return req, errors.New(errors.ErrCodeInvalidDimensions, "width %q is not an integer", v)
		}
	}
	if v := q.Get("offset_x"); v != "" {
		if req.offsetX, err = strconv.ParseFloat(v, 64); err != nil {
			return req, errors.New(errors.ErrCodeInvalidInput, "offset_x %q is not a number", v)
		}
	}
	if v := q.Get("offset_y"); v != "" {
		if req.offsetY, err = strconv.ParseFloat(v, 64); err != nil {
			return req, errors.New(errors.ErrCodeInvalidInput, "offset_y %q is not a number", v)
		}
	}

	if req.width < minPreviewWidth {
		req.width = minPreviewWidth
	}
	if req.width > maxPreviewWidth {
		req.width = maxPreviewWidth
	}
	return req, nil
}

// params sizes the render to width while preserving the source aspect ratio.
func (req renderRequest) params(srcW, srcH int) lens.Params {
	height := (srcH*req.width + srcW/2) / srcW
	if height < 1 {
		height = 1
	}
	return lens.Params{
		Mass:    req.mass,
		Scale:   req.scale,
		Method:  req.method,
		Width:   req.width,
		Height:  height,
		OffsetX: req.offsetX,
		OffsetY: req.offsetY,
	}
}

// handleRender serves a lensed PNG preview of a stored image. Encoded
// output is cached by source content and parameters.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "filename")

	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	data, err := s.store.Read(name)
	if err != nil {
		writeError(w, err)
		return
	}

	srcHash := cache.Hash(data)
	src, _, err := imaging.DecodeBytes(data)
	if err != nil {
		writeError(w, err)
		return
	}

	b := src.Bounds()
	params := req.params(b.Dx(), b.Dy())
	if err := params.Validate(); err != nil {
		writeError(w, err)
		return
	}

	key := s.keyer.RenderKey(srcHash, cache.RenderKeyOpts{Params: params.CacheKey()})
	if cached, hit, err := s.artifacts.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, s.backend)
		servePNG(w, cached, true)
		return
	}
	observability.Cache().OnCacheMiss(ctx, s.backend)

	scaled := imaging.FitWidth(src, params.Width)
	res, err := s.renderer.Render(ctx, scaled, params)
	if err != nil {
		writeError(w, err)
		return
	}

	encoded, err := imaging.EncodePNGBytes(res.Image)
	if err != nil {
		writeError(w, err)
		return
	}

	ttl := time.Duration(s.cfg.Cache.TTLMinutes) * time.Minute
	if err := cache.RetryWithBackoff(ctx, func() error {
		return s.artifacts.Set(ctx, key, encoded, ttl)
	}); err != nil {
		s.logger.Warn("cache preview", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, s.backend, len(encoded))
	}

	if res.Degraded {
		w.Header().Set("X-Render-Degraded", "true")
	}
	servePNG(w, encoded, false)
}

func servePNG(w http.ResponseWriter, data []byte, cached bool) {
	w.Header().Set("Content-Type", "image/png")
	if cached {
		w.Header().Set("X-Cache", "hit")
	}
	_, _ = w.Write(data)
}
