package server

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/gravitymirage/gravitymirage/pkg/errors"
	"github.com/gravitymirage/gravitymirage/pkg/imaging"
)

// handleUpload accepts a multipart form with an "image" file field, decodes
// it to verify it really is an image, and stores it under a sequential name.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "missing image form field"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "read upload: %v", err))
		return
	}
	if _, _, err := imaging.DecodeBytes(data); err != nil {
		writeError(w, err)
		return
	}

	name, err := s.store.Save(header.Filename, data)
	if err != nil {
		writeError(w, err)
		return
	}

	s.logger.Info("image uploaded", "name", name, "bytes", len(data))
	writeJSON(w, http.StatusCreated, map[string]string{"filename": name})
}

func (s *Server) handleListImages(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.List()
	if err != nil {
		writeError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"images": names})
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	data, err := s.store.Read(name)
	if err != nil {
		writeError(w, err)
		return
	}

	ctype := mime.TypeByExtension(filepath.Ext(name))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)
	_, _ = w.Write(data)
}

func (s *Server) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if err := s.store.Delete(name); err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("image deleted", "name", name)
	w.WriteHeader(http.StatusNoContent)
}
