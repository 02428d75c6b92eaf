package model

import "time"

// CanonicalVehicle is the resolved identity a mapping translates a phrase into
type CanonicalVehicle struct {
	Make         string `json:"make" yaml:"make"`
	VehicleCode  string `json:"vehicle_code" yaml:"vehicle_code"`
	Model        string `json:"model" yaml:"model"`
	Engine       string `json:"engine,omitempty" yaml:"engine,omitempty"`
	Transmission string `json:"transmission,omitempty" yaml:"transmission,omitempty"`
}

// VehiclePhraseMapping is one configurable rule translating free-text vehicle
// phrases into a canonical vehicle. Rows live in the primary store and are
// loaded into an immutable snapshot by the engine.
//
// When several active patterns match the same phrase, the highest Priority wins;
// ties break by lowest ID (earliest created).
type VehiclePhraseMapping struct {
	ID        int64            `json:"id" yaml:"id,omitempty"`
	Pattern   string           `json:"pattern" yaml:"pattern"`
	IsRegex   bool             `json:"is_regex" yaml:"is_regex,omitempty"`
	Canonical CanonicalVehicle `json:"canonical" yaml:"canonical"`
	Priority  int              `json:"priority" yaml:"priority"`
	Active    bool             `json:"active" yaml:"active"`
	CreatedAt time.Time        `json:"created_at,omitempty" yaml:"-"`
	UpdatedAt time.Time        `json:"updated_at,omitempty" yaml:"-"`
}

// MappingPayload is the bulk import/export document for mapping rules
type MappingPayload struct {
	Mappings []VehiclePhraseMapping `yaml:"mappings"`
}
