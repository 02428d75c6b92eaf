package cache

import "fmt"

// Cache defines the interface for the reference lookup caches. Entries are
// immutable once inserted; a miss is answered by recomputing and re-inserting.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
	Delete(key string)
	Clear()
	Len() int
}

// PartTypeKey generates the cache key for a part type lookup
func PartTypeKey(partTypeID int64) string {
	return fmt.Sprintf("parttype:%d", partTypeID)
}

// PositionsKey generates the cache key for a part type's position lookup
func PositionsKey(partTypeID int64) string {
	return fmt.Sprintf("positions:%d", partTypeID)
}
