// Package config loads server and renderer settings from a TOML file with
// environment overrides for deployment platforms that inject them.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/gravitymirage/gravitymirage/pkg/errors"
	"github.com/gravitymirage/gravitymirage/pkg/lens"
)

// Config is the full application configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Render  RenderConfig  `toml:"render"`
	Cache   CacheConfig   `toml:"cache"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig locates the on-disk image directories.
type StorageConfig struct {
	UploadsDir string `toml:"uploads_dir"`
	ExportsDir string `toml:"exports_dir"`
}

// RenderConfig sets render defaults and limits.
type RenderConfig struct {
	// PreviewWidth is the output width when a request does not specify one.
	PreviewWidth int `toml:"preview_width"`

	// DefaultMass is the lens mass in solar masses when unspecified.
	DefaultMass float64 `toml:"default_mass"`

	// DefaultScale is the pixel scale in meters per pixel when unspecified.
	DefaultScale float64 `toml:"default_scale"`

	// DefaultMethod selects the deflection strategy when unspecified.
	DefaultMethod string `toml:"default_method"`

	// ProfileCacheSize bounds the in-process radial profile cache.
	ProfileCacheSize int `toml:"profile_cache_size"`
}

// CacheConfig selects and sizes the rendered-artifact cache backend.
type CacheConfig struct {
	// Backend is one of "memory", "redis", "file" or "none".
	Backend string `toml:"backend"`

	// Capacity bounds the memory backend's entry count.
	Capacity int `toml:"capacity"`

	// RedisAddr is the host:port of the Redis server for the redis backend.
	RedisAddr string `toml:"redis_addr"`

	// Dir is the cache directory for the file backend.
	Dir string `toml:"dir"`

	// TTLMinutes expires cached artifacts; 0 keeps them until evicted.
	TTLMinutes int `toml:"ttl_minutes"`
}

// Default returns the configuration used when no file is provided.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			UploadsDir: "data/uploads",
			ExportsDir: "data/exports",
		},
		Render: RenderConfig{
			PreviewWidth:     512,
			DefaultMass:      10,
			DefaultScale:     20000,
			DefaultMethod:    string(lens.MethodGeodesic),
			ProfileCacheSize: lens.DefaultProfileCacheCapacity,
		},
		Cache: CacheConfig{
			Backend:    "memory",
			Capacity:   256,
			RedisAddr:  "localhost:6379",
			Dir:        "data/cache",
			TTLMinutes: 60,
		},
	}
}

// Load reads the configuration from path, layering it over the defaults and
// applying environment overrides. An empty path skips the file entirely.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays settings that hosting platforms inject as environment
// variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
}

// Validate checks the configuration for values no component could run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.New(errors.ErrCodeInvalidInput, "server port %d out of range", c.Server.Port)
	}
	if c.Render.PreviewWidth < 64 || c.Render.PreviewWidth > 2048 {
		return errors.New(errors.ErrCodeInvalidInput, "preview width %d outside [64, 2048]", c.Render.PreviewWidth)
	}
	if c.Render.DefaultMass <= 0 {
		return errors.New(errors.ErrCodeInvalidMass, "default mass must be positive")
	}
	if c.Render.DefaultScale <= 0 {
		return errors.New(errors.ErrCodeInvalidScale, "default scale must be positive")
	}
	if _, err := lens.ParseMethod(c.Render.DefaultMethod); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case "memory", "redis", "file", "none":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Storage.UploadsDir == "" || c.Storage.ExportsDir == "" {
		return errors.New(errors.ErrCodeInvalidInput, "storage directories must be set")
	}
	return nil
}
