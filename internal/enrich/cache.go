package enrich

import (
	gocache "github.com/patrickmn/go-cache"
)

// IndexCache memoizes per-species spatial indexes for the lifetime of a
// run: populated on first access, never evicted. A species with no
// range file is cached as nil so its file is only probed once.
type IndexCache struct {
	cache *gocache.Cache
}

// NewIndexCache creates an empty run-scoped cache.
func NewIndexCache() *IndexCache {
	return &IndexCache{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// Get retrieves a cached index. The second return reports whether the
// species has been looked up before; the index itself may be nil.
func (ic *IndexCache) Get(slug string) (*SpeciesIndex, bool) {
	v, found := ic.cache.Get(slug)
	if !found {
		return nil, false
	}
	return v.(*SpeciesIndex), true
}

// Set stores an index (or nil for a species without a range).
func (ic *IndexCache) Set(slug string, idx *SpeciesIndex) {
	ic.cache.Set(slug, idx, gocache.NoExpiration)
}
