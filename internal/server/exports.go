package server

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gravitymirage/gravitymirage/pkg/cache"
	"github.com/gravitymirage/gravitymirage/pkg/errors"
	"github.com/gravitymirage/gravitymirage/pkg/imaging"
	"github.com/gravitymirage/gravitymirage/pkg/lens"
)

// Animation settings: frame count bounds and the fixed per-frame delay.
const (
	defaultFrames = 24
	minFrames     = 2
	maxFrames     = 200
	frameDelayMS  = 50
)

// ExportStore keeps finished animation files on disk.
type ExportStore struct {
	dir string
}

// NewExportStore opens (creating if necessary) the exports directory.
func NewExportStore(dir string) (*ExportStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create exports dir: %w", err)
	}
	return &ExportStore{dir: dir}, nil
}

// Save writes a finished export under name.
func (s *ExportStore) Save(name string, data []byte) error {
	if err := errors.ValidateImageFilename(name); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0644); err != nil {
		return fmt.Errorf("store export: %w", err)
	}
	return nil
}

// Read returns the stored export bytes for name.
func (s *ExportStore) Read(name string) ([]byte, error) {
	if err := errors.ValidateImageFilename(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeNotFound, "export %q not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("read export %s: %w", name, err)
	}
	return data, nil
}

// buildAnimation renders a scrolling animation: each frame rolls the source
// horizontally by one more step before lensing, so the background drifts
// behind the stationary lens. progress is reported per finished frame.
func (s *Server) buildAnimation(ctx context.Context, src image.Image, params lens.Params, frames int, progress func(int)) ([]byte, error) {
	scaled := imaging.FitWidth(src, params.Width)

	rendered := make([]*image.RGBA, 0, frames)
	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		shift := i * params.Width / frames
		res, err := s.renderer.Render(ctx, imaging.Roll(scaled, shift), params)
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, res.Image)
		if progress != nil {
			progress((i + 1) * 100 / frames)
		}
	}

	var buf bytes.Buffer
	if err := imaging.EncodeAnimation(&buf, rendered, frameDelayMS); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// handleExport queues an animated GIF export and returns the job ID. The
// heavy rendering happens on the job worker; clients poll /api/jobs/{id}.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")

	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	frames := defaultFrames
	if v := r.URL.Query().Get("frames"); v != "" {
		if frames, err = strconv.Atoi(v); err != nil {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "frames %q is not an integer", v))
			return
		}
	}
	if frames < minFrames || frames > maxFrames {
		writeError(w, errors.New(errors.ErrCodeInvalidInput,
			"frames must be between %d and %d, got %d", minFrames, maxFrames, frames))
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

	jobID, err := s.jobs.Submit(func(ctx context.Context, progress func(int)) (string, error) {
		key := s.keyer.AnimationKey(srcHash, cache.AnimationKeyOpts{
			Params:  params.CacheKey(),
			Frames:  frames,
			DelayMS: frameDelayMS,
		})
		output := key[len(key)-16:] + ".gif"

		if cached, hit, err := s.artifacts.Get(ctx, key); err == nil && hit {
			if err := s.exports.Save(output, cached); err != nil {
				return "", err
			}
			return output, nil
		}

		encoded, err := s.buildAnimation(ctx, src, params, frames, progress)
		if err != nil {
			return "", err
		}
		if err := s.exports.Save(output, encoded); err != nil {
			return "", err
		}
		if err := s.artifacts.Set(ctx, key, encoded, 0); err != nil {
			s.logger.Warn("cache animation", "err", err)
		}
		return output, nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	s.logger.Info("export queued", "job", jobID, "image", name, "frames", frames)
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobs.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleGetExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.exports.Read(chi.URLParam(r, "filename"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/gif")
	_, _ = w.Write(data)
}
