package server

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gravitymirage/gravitymirage/pkg/errors"
)

// allowedExtensions lists the upload formats the decoder supports.
var allowedExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff", ".webp"}

// ImageStore keeps uploaded source images on disk under a single directory.
// Uploads are renamed to sequential "imageN" names so clients get stable,
// predictable handles regardless of what they uploaded. The store is safe
// for concurrent use; the mutex serializes name allocation.
type ImageStore struct {
	dir string

	mu   sync.Mutex
	next int
}

// NewImageStore opens (creating if necessary) the store directory and scans
// it to continue the sequential naming where a previous run stopped.
func NewImageStore(dir string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}

	s := &ImageStore{dir: dir, next: 1}
	names, err := s.List()
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if n, ok := imageSeq(name); ok && n >= s.next {
			s.next = n + 1
		}
	}
	return s, nil
}

// Save stores data under the next sequential name, keeping the extension of
// the uploaded filename, and returns the assigned name.
func (s *ImageStore) Save(uploadName string, data []byte) (string, error) {
	if err := errors.ValidateImageFilename(uploadName); err != nil {
		return "", err
	}
	if err := errors.ValidateImageExtension(uploadName, allowedExtensions); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := fmt.Sprintf("image%d%s", s.next, strings.ToLower(filepath.Ext(uploadName)))
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0644); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	s.next++
	return name, nil
}

// Read returns the stored bytes for name.
func (s *ImageStore) Read(name string) ([]byte, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeImageNotFound, "image %q not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", name, err)
	}
	return data, nil
}

// Delete removes a stored image. Deleting a missing image is an error so
// clients learn about stale handles.
func (s *ImageStore) Delete(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); os.IsNotExist(err) {
		return errors.New(errors.ErrCodeImageNotFound, "image %q not found", name)
	} else if err != nil {
		return fmt.Errorf("delete image %s: %w", name, err)
	}
	return nil
}

// List returns the stored image names in sequence order.
func (s *ImageStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := imageSeq(e.Name()); ok {
			names = append(names, e.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool {
		a, _ := imageSeq(names[i])
		b, _ := imageSeq(names[j])
		return a < b
	})
	return names, nil
}

// resolve validates name and joins it with the store directory.
func (s *ImageStore) resolve(name string) (string, error) {
	if err := errors.ValidateImageFilename(name); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

// imageSeq extracts N from an "imageN.ext" name.
func imageSeq(name string) (int, bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	digits, found := strings.CutPrefix(base, "image")
	if !found || digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
