package mapping

import (
	"strings"

	"github.com/partstream/fitment/internal/model"
)

// Resolve matches a vehicle phrase against every rule in the snapshot and
// returns the canonical vehicles of all matches, best-ranked first. An empty
// result means no rule matched; turning that into a MappingError is the
// caller's job. Ambiguity is deliberately not resolved here: downstream tries
// candidates in order until one validates.
func Resolve(vehiclePhrase string, snap *Snapshot) []model.CanonicalVehicle {
	matched := Matches(vehiclePhrase, snap)
	if len(matched) == 0 {
		return nil
	}

	candidates := make([]model.CanonicalVehicle, 0, len(matched))
	seen := make(map[model.CanonicalVehicle]bool)
	for _, rule := range matched {
		if seen[rule.Canonical] {
			continue
		}
		seen[rule.Canonical] = true
		candidates = append(candidates, rule.Canonical)
	}
	return candidates
}

// Matches returns every active rule whose pattern matches the phrase, in
// snapshot rank order (priority descending, id ascending)
func Matches(vehiclePhrase string, snap *Snapshot) []model.VehiclePhraseMapping {
	lower := strings.ToLower(vehiclePhrase)

	var matched []model.VehiclePhraseMapping
	for _, cm := range snap.mappings {
		if cm.pattern != nil {
			if cm.pattern.MatchString(vehiclePhrase) {
				matched = append(matched, cm.mapping)
			}
			continue
		}
		if strings.Contains(lower, cm.needle) {
			matched = append(matched, cm.mapping)
		}
	}
	return matched
}
