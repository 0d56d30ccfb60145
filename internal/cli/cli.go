// Package cli implements the gravitymirage command-line interface.
//
// This package provides commands for serving the HTTP API, rendering lensed
// images and scrolling animations from the terminal, and managing the
// rendered-artifact cache. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - serve: Run the HTTP server (uploads, previews, exports)
//   - render: Lens a single image into a PNG
//   - gif: Render a scrolling animation into an animated GIF
//   - cache: Manage the local render cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/gravitymirage/gravitymirage/pkg/buildinfo"
	"github.com/gravitymirage/gravitymirage/pkg/cache"
	"github.com/gravitymirage/gravitymirage/pkg/config"
	"github.com/gravitymirage/gravitymirage/pkg/lens"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "gravitymirage"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Gravity Mirage renders images as seen through a black hole lens",
		Long:         `Gravity Mirage bends images around a Schwarzschild black hole: photon geodesics are traced through curved spacetime to compute where each output pixel's light actually came from, shadow and inverted inner images included.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.gifCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Renderer Factory
// =============================================================================

// newRenderer creates a lens renderer with a profile cache sized from cfg.
func (c *CLI) newRenderer(cfg config.Config) *lens.Renderer {
	profiles := lens.NewProfileCache(cfg.Render.ProfileCacheSize, lens.DefaultProfileConfig())
	return lens.NewRenderer(profiles, c.Logger)
}

// newArtifactCache builds the artifact cache backend selected by cfg,
// returning the backend name for logging. Backend failures fall back to the
// null cache so rendering still works without caching.
func (c *CLI) newArtifactCache(ctx context.Context, cfg config.Config) (cache.Cache, string) {
	switch cfg.Cache.Backend {
	case "redis":
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisAddr)
		if err != nil {
			c.Logger.Warn("redis unavailable, caching disabled", "addr", cfg.Cache.RedisAddr, "err", err)
			return cache.NewNullCache(), "null"
		}
		return rc, "redis"
	case "file":
		fc, err := cache.NewFileCache(cfg.Cache.Dir)
		if err != nil {
			c.Logger.Warn("file cache unavailable, caching disabled", "dir", cfg.Cache.Dir, "err", err)
			return cache.NewNullCache(), "null"
		}
		return fc, "file"
	case "none":
		return cache.NewNullCache(), "null"
	default:
		return cache.NewMemoryCache(cfg.Cache.Capacity), "memory"
	}
}

// newLocalCache opens the file cache used by the render and gif commands.
func newLocalCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/gravitymirage/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
