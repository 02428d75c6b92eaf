package refdata

import (
	"context"

	"github.com/partstream/fitment/internal/cache"
	"github.com/partstream/fitment/internal/model"
)

// CachedPositionSource decorates a PositionFinder with bounded lookup caches.
// Part-type terminology and positions change rarely and the legacy dataset is
// slow, so hits bypass it entirely. Entries never expire on a timer; call
// Invalidate after the reference dataset changes.
type CachedPositionSource struct {
	source    PositionFinder
	partTypes cache.Cache
	positions cache.Cache
}

var _ PositionFinder = (*CachedPositionSource)(nil)
var _ Invalidator = (*CachedPositionSource)(nil)
var _ LookupCounter = (*CachedPositionSource)(nil)

// NewCachedPositionSource wraps a position source with lookup caches
func NewCachedPositionSource(source PositionFinder, maxEntries int) *CachedPositionSource {
	return &CachedPositionSource{
		source:    source,
		partTypes: cache.NewMemoryCache(maxEntries),
		positions: cache.NewMemoryCache(maxEntries),
	}
}

// FindPositions returns the valid positions for a part type, cached
func (c *CachedPositionSource) FindPositions(ctx context.Context, partTypeID int64) ([]model.Position, error) {
	key := cache.PositionsKey(partTypeID)
	if cached, found := c.positions.Get(key); found {
		return cached.([]model.Position), nil
	}

	positions, err := c.source.FindPositions(ctx, partTypeID)
	if err != nil {
		return nil, err
	}

	c.positions.Set(key, positions)
	return positions, nil
}

// FindPartType returns the part type descriptor, cached. Unknown part types
// are cached too so repeated bad lookups do not hammer the legacy dataset.
func (c *CachedPositionSource) FindPartType(ctx context.Context, partTypeID int64) (*model.PartType, error) {
	key := cache.PartTypeKey(partTypeID)
	if cached, found := c.partTypes.Get(key); found {
		return cached.(*model.PartType), nil
	}

	partType, err := c.source.FindPartType(ctx, partTypeID)
	if err != nil {
		return nil, err
	}

	c.partTypes.Set(key, partType)
	return partType, nil
}

// Invalidate clears both lookup caches
func (c *CachedPositionSource) Invalidate() {
	c.partTypes.Clear()
	c.positions.Clear()
}

// CachedLookups reports the number of cached part types and position sets
func (c *CachedPositionSource) CachedLookups() (partTypes, positions int) {
	return c.partTypes.Len(), c.positions.Len()
}
