// Package pkg provides the core libraries for Gravity Mirage gravitational
// lens rendering.
//
// # Overview
//
// Gravity Mirage renders a flat background image as it would appear through
// the gravitational lens of a Schwarzschild black hole placed between the
// image and the observer. The pkg directory is organized into these areas:
//
//  1. [physics] - Schwarzschild metric constants and photon geodesic tracing
//  2. [lens] - Deflection profiles, pixel mapping, and image rendering
//  3. [imaging] - Decoding, resizing, rolling, and animated GIF encoding
//  4. [cache] - Artifact caching backends and deterministic cache keys
//  5. [config] - TOML configuration with environment overrides
//
// # Architecture
//
// The typical data flow through a render:
//
//	Source Image
//	     ↓
//	[physics] package (trace photon geodesics, compute deflection)
//	     ↓
//	[lens] package (radial profile → pixel mapping → resampling)
//	     ↓
//	[imaging] package (PNG / animated GIF output)
//
// # Quick Start
//
// Render a lensed view of a background image:
//
//	import (
//	    "context"
//	    "github.com/gravitymirage/gravitymirage/pkg/lens"
//	)
//
//	// 1. Describe the lens
//	params := lens.Params{
//	    Mass:   10,    // solar masses
//	    Scale:  20000, // meters per pixel
//	    Method: lens.MethodGeodesic,
//	    Width:  512,
//	    Height: 512,
//	}
//
//	// 2. Render
//	renderer := lens.NewRenderer(lens.NewProfileCache(4, lens.DefaultProfileConfig()))
//	out, stats, err := renderer.Render(context.Background(), src, params)
//
// # Main Packages
//
// [physics] - Schwarzschild radius, weak-field deflection, and a fixed-step
// RK4 integrator for the dimensionless photon orbit equation. Classifies each
// ray as escaped, captured, or diverged.
//
// [lens] - The rendering pipeline. A [lens.RadialProfile] samples deflection
// angles over log-spaced impact parameters, a [lens.Mapper] inverts the lens
// equation per pixel, and bilinear resampling pulls source colors into the
// output frame. Profiles are memoized through [lens.ProfileCache].
//
// [imaging] - Format-agnostic decoding (PNG, JPEG, GIF, BMP, TIFF, WebP),
// bilinear resizing, horizontal rolling for scroll animations, and paletted
// animated GIF encoding.
//
// [cache] - The [cache.Cache] interface with memory, Redis, file, and null
// backends, plus [cache.Keyer] for deterministic render and animation keys
// and retry helpers for transient backend failures.
//
// [config] - Server and render configuration loaded from TOML with
// environment variable overrides.
//
// [errors] - Typed application errors with stable codes and user-safe
// messages.
//
// [observability] - Pluggable hooks for cache and render instrumentation.
//
// [buildinfo] - Version metadata injected at build time via ldflags.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...             # All tests
//	go test ./pkg/lens/...        # Specific package
//	go test -run TestRender ./... # By name
//
// [physics]: https://pkg.go.dev/github.com/gravitymirage/gravitymirage/pkg/physics
// [lens]: https://pkg.go.dev/github.com/gravitymirage/gravitymirage/pkg/lens
// [imaging]: https://pkg.go.dev/github.com/gravitymirage/gravitymirage/pkg/imaging
// [cache]: https://pkg.go.dev/github.com/gravitymirage/gravitymirage/pkg/cache
// [config]: https://pkg.go.dev/github.com/gravitymirage/gravitymirage/pkg/config
// [errors]: https://pkg.go.dev/github.com/gravitymirage/gravitymirage/pkg/errors
// [observability]: https://pkg.go.dev/github.com/gravitymirage/gravitymirage/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/gravitymirage/gravitymirage/pkg/buildinfo
package pkg
