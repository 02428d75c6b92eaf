package model

// Position is a canonical mounting position for a part
type Position string

const (
	PositionFront  Position = "Front"
	PositionRear   Position = "Rear"
	PositionLeft   Position = "Left"
	PositionRight  Position = "Right"
	PositionUpper  Position = "Upper"
	PositionLower  Position = "Lower"
	PositionInner  Position = "Inner"
	PositionOuter  Position = "Outer"
	PositionCenter Position = "Center"
	PositionNA     Position = "N/A"
	PositionVaries Position = "Varies with Application" // Position could not be determined from text
)

// PositionGroup is an ordered set of positions that must co-occur for one fitment.
// Multiple groups extracted from one phrase are alternatives (OR across groups).
type PositionGroup []Position

// Contains reports whether the group includes the given position
func (g PositionGroup) Contains(p Position) bool {
	for _, pos := range g {
		if pos == p {
			return true
		}
	}
	return false
}

// Equal reports whether two groups hold the same positions in the same order
func (g PositionGroup) Equal(other PositionGroup) bool {
	if len(g) != len(other) {
		return false
	}
	for i, pos := range g {
		if pos != other[i] {
			return false
		}
	}
	return true
}

// String renders the group as "Front Left" style text
func (g PositionGroup) String() string {
	s := ""
	for i, pos := range g {
		if i > 0 {
			s += " "
		}
		s += string(pos)
	}
	return s
}

// FitmentCandidate is one concrete (year, vehicle, positions) combination to validate.
// Candidates are ephemeral: produced by expansion, consumed by validation.
type FitmentCandidate struct {
	Year         int           `json:"year"`
	Make         string        `json:"make"`
	VehicleCode  string        `json:"vehicle_code"`
	Model        string        `json:"model"`
	Engine       string        `json:"engine,omitempty"`       // Optional constraint from the mapping
	Transmission string        `json:"transmission,omitempty"` // Optional constraint from the mapping
	Positions    PositionGroup `json:"positions"`
}

// ReferenceVehicle is one row from the external vehicle configuration dataset
type ReferenceVehicle struct {
	Year         int    `json:"year"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Submodel     string `json:"submodel,omitempty"`
	Engine       string `json:"engine,omitempty"`
	Transmission string `json:"transmission,omitempty"`
}

// PartType describes a part type from the external position dataset
type PartType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`

	// MandatoryPositions, when non-empty, lists positions the part type requires.
	// A candidate satisfying none of them is invalid, not merely non-standard.
	MandatoryPositions []Position `json:"mandatory_positions,omitempty"`
}

// ValidationStatus classifies a validation verdict
type ValidationStatus string

const (
	StatusValid   ValidationStatus = "valid"
	StatusWarning ValidationStatus = "warning"
	StatusError   ValidationStatus = "error"
)

// ValidationResult is the verdict for one fitment candidate. A Valid/Warning/Error
// status is normal output, not a fault; faults are returned as errors instead.
type ValidationResult struct {
	Candidate       FitmentCandidate  `json:"candidate"`
	Status          ValidationStatus  `json:"status"`
	Message         string            `json:"message"`
	MatchedVehicle  *ReferenceVehicle `json:"matched_vehicle,omitempty"`
	MatchedPosition Position          `json:"matched_position,omitempty"`
}
