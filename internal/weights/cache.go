// Package weights maintains the versioned WeightsConfig value as one
// immutable configuration value, hot-swapped on reload rather than re-read
// from scattered constants. Follows config.Load()/validate()'s shape,
// generalized with an atomic swap since weights can change independently
// while the service is running, unlike process config.
package weights

import (
	"sync/atomic"

	"github.com/pageza/smartscheduler/internal/domain"
)

// Cache holds the single active WeightsConfig, safe for concurrent reads
// from many in-flight recommendation requests and occasional writer swaps.
type Cache struct {
	active atomic.Pointer[domain.WeightsConfig]
}

// NewCache seeds the cache with an initial, already-validated config.
func NewCache(initial domain.WeightsConfig) (*Cache, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	c := &Cache{}
	cfg := initial
	cfg.IsActive = true
	c.active.Store(&cfg)
	return c, nil
}

// Current returns the active config. Never returns a nil pointer after
// NewCache has succeeded.
func (c *Cache) Current() domain.WeightsConfig {
	return *c.active.Load()
}

// Swap replaces the active config if the candidate validates and its
// version is newer than the currently active one. Returns InvalidConfig if
// validation fails, or a no-op (returning nil) if the version is stale.
func (c *Cache) Swap(next domain.WeightsConfig) error {
	if err := next.Validate(); err != nil {
		return err
	}
	current := c.Current()
	if next.Version <= current.Version {
		return nil
	}
	cfg := next
	cfg.IsActive = true
	c.active.Store(&cfg)
	return nil
}
