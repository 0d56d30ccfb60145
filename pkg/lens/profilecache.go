package lens

import (
	"container/list"
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/gravitymirage/gravitymirage/pkg/physics"
)

// DefaultProfileCacheCapacity bounds the number of cached radial profiles
// when no explicit capacity is configured.
const DefaultProfileCacheCapacity = 32

// ProfileCache is a bounded LRU cache of radial profiles keyed by
// (mass, scale) rounded to a relative tolerance. Completed profiles are
// immutable, so cache hits hand out shared read-only snapshots. Building a
// missing profile goes through singleflight: concurrent requests for the
// same uncached key await one in-flight build instead of duplicating the
// integration cost.
//
// The cache is explicit, injectable state with a defined lifecycle: created
// at process start, bounded capacity, clearable. It is safe for concurrent
// use.
type ProfileCache struct {
	cfg ProfileConfig

	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently used
	items    map[string]*list.Element

	group singleflight.Group
}

type profileEntry struct {
	key     string
	profile *Profile
}

// NewProfileCache creates a profile cache with the given capacity and build
// configuration. capacity <= 0 selects DefaultProfileCacheCapacity.
func NewProfileCache(capacity int, cfg ProfileConfig) *ProfileCache {
	if capacity <= 0 {
		capacity = DefaultProfileCacheCapacity
	}
	return &ProfileCache{
		cfg:      cfg,
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

// GetOrBuild returns the profile for (mass, scale), building and caching it
// on a miss. hit reports whether the profile came from the cache without
// waiting on a build.
func (c *ProfileCache) GetOrBuild(ctx context.Context, mass, scale float64) (p *Profile, hit bool, err error) {
	key := profileKey(mass, scale)

	if p := c.lookup(key); p != nil {
		return p, true, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent build may have completed while we queued.
		if p := c.lookup(key); p != nil {
			return p, nil
		}
		bh := physics.NewBlackHole(mass)
		p, err := BuildProfile(ctx, bh, c.cfg)
		if err != nil {
			return nil, err
		}
		c.insert(key, p)
		return p, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*Profile), false, nil
}

// Len returns the number of cached profiles.
func (c *ProfileCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear drops all cached profiles.
func (c *ProfileCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[string]*list.Element)
}

func (c *ProfileCache) lookup(key string) *Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return nil
	}
	c.order.MoveToFront(el)
	return el.Value.(*profileEntry).profile
}

func (c *ProfileCache) insert(key string, p *Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		el.Value.(*profileEntry).profile = p
		return
	}
	c.items[key] = c.order.PushFront(&profileEntry{key: key, profile: p})
	for len(c.items) > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*profileEntry).key)
	}
}

// profileKey rounds mass and scale to nine significant digits so that
// float noise from parameter parsing cannot split one physical
// configuration across multiple cache entries.
func profileKey(mass, scale float64) string {
	return strconv.FormatFloat(mass, 'e', 8, 64) + "|" + strconv.FormatFloat(scale, 'e', 8, 64)
}
