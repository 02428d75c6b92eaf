package mapping

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/partstream/fitment/internal/model"
)

// compiledMapping pairs a mapping with its prepared matcher
type compiledMapping struct {
	mapping model.VehiclePhraseMapping
	pattern *regexp.Regexp // nil for substring patterns
	needle  string         // lowercased substring for non-regex patterns
}

// Snapshot is an immutable, match-ready view of the active mapping rules.
// Snapshots are built once and swapped wholesale; they are never mutated, so
// any number of resolve calls may share one concurrently.
type Snapshot struct {
	mappings []compiledMapping
}

// NewSnapshot filters inactive rules, orders by priority descending then id
// ascending, and compiles regex patterns. An invalid regex fails the whole
// snapshot: a half-usable mapping table is worse than a loud configuration
// error.
func NewSnapshot(rules []model.VehiclePhraseMapping) (*Snapshot, error) {
	active := make([]model.VehiclePhraseMapping, 0, len(rules))
	for _, rule := range rules {
		if rule.Active {
			active = append(active, rule)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		if active[i].Priority != active[j].Priority {
			return active[i].Priority > active[j].Priority
		}
		return active[i].ID < active[j].ID
	})

	compiled := make([]compiledMapping, 0, len(active))
	for _, rule := range active {
		cm := compiledMapping{mapping: rule}
		if rule.IsRegex {
			re, err := regexp.Compile("(?i)" + rule.Pattern)
			if err != nil {
				return nil, fmt.Errorf("compile mapping %d pattern %q: %w", rule.ID, rule.Pattern, err)
			}
			cm.pattern = re
		} else {
			cm.needle = strings.ToLower(rule.Pattern)
		}
		compiled = append(compiled, cm)
	}

	return &Snapshot{mappings: compiled}, nil
}

// Len returns the number of active rules in the snapshot
func (s *Snapshot) Len() int {
	return len(s.mappings)
}
