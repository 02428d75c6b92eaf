// Package refdata provides read-only access to the two external reference
// datasets: valid vehicle configurations and valid part positions. Concrete
// adapters are selected at construction time; the engine only sees the
// capability interfaces.
package refdata

import (
	"context"

	"github.com/partstream/fitment/internal/model"
)

// VehicleQuery narrows a reference vehicle lookup. Zero fields are
// unconstrained.
type VehicleQuery struct {
	YearFrom int
	YearTo   int
	Make     string
	Model    string
}

// VehicleFinder queries the external vehicle configuration dataset
type VehicleFinder interface {
	FindVehicles(ctx context.Context, query VehicleQuery) ([]model.ReferenceVehicle, error)
}

// PositionFinder queries the external part-position dataset
type PositionFinder interface {
	FindPositions(ctx context.Context, partTypeID int64) ([]model.Position, error)
	FindPartType(ctx context.Context, partTypeID int64) (*model.PartType, error)
}

// Invalidator is implemented by adapters that cache lookups. The reference
// datasets have no change feed, so staleness is resolved by an explicit
// invalidate call rather than a restart.
type Invalidator interface {
	Invalidate()
}

// LookupCounter reports how many reference lookups an adapter holds cached
type LookupCounter interface {
	CachedLookups() (partTypes, positions int)
}
