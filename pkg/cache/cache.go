// Package cache provides byte-level caching for rendered artifacts.
//
// Rendered previews and exported animations are expensive to recompute and
// cheap to store, so the server keeps encoded image bytes behind the Cache
// interface. Backends cover the deployment spectrum: an in-process bounded
// LRU for single-node serving, Redis for shared deployments, a file cache
// for CLI runs, and a null cache to disable caching entirely.
//
// Keys are derived from content hashes and render parameters through the
// Keyer interface, so identical inputs always map to identical entries and
// any change to the source image or parameters misses cleanly.
package cache

import (
	"context"
	"time"
)

// Cache is the interface all cache backends implement. Values are opaque
// encoded bytes (PNG or GIF). Implementations must be safe for concurrent
// use.
type Cache interface {
	// Get retrieves a value. hit is false on a miss; err is reserved for
	// backend failures, never for misses.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores a value. ttl <= 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// RenderKeyOpts carries the render parameters that shape a cached preview.
// Params is the canonical parameter string from the lens package.
type RenderKeyOpts struct {
	Params string
}

// AnimationKeyOpts carries the settings that shape a cached animation.
type AnimationKeyOpts struct {
	Params  string
	Frames  int
	DelayMS int
}

// Keyer generates cache keys for rendered artifacts. sourceHash is the
// SHA-256 of the source image bytes.
type Keyer interface {
	// RenderKey generates a key for a cached still render.
	RenderKey(sourceHash string, opts RenderKeyOpts) string

	// AnimationKey generates a key for a cached scrolling animation.
	AnimationKey(sourceHash string, opts AnimationKeyOpts) string
}

// DefaultKeyer hashes all key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// RenderKey generates a key for a cached still render.
func (k *DefaultKeyer) RenderKey(sourceHash string, opts RenderKeyOpts) string {
	return hashKey("render", sourceHash, opts)
}

// AnimationKey generates a key for a cached scrolling animation.
func (k *DefaultKeyer) AnimationKey(sourceHash string, opts AnimationKeyOpts) string {
	return hashKey("anim", sourceHash, opts)
}
