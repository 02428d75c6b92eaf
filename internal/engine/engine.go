// Package engine orchestrates the full resolve-and-validate flow: parse the
// raw application string, resolve the vehicle phrase against the mapping
// snapshot, expand to concrete candidates and validate each one against the
// reference datasets.
package engine

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/partstream/fitment/internal/expand"
	"github.com/partstream/fitment/internal/mapping"
	"github.com/partstream/fitment/internal/model"
	"github.com/partstream/fitment/internal/parse"
	"github.com/partstream/fitment/internal/refdata"
	"github.com/partstream/fitment/internal/validate"
	"github.com/partstream/fitment/internal/worker"
)

// MappingLoader reads the active mapping rules from the configuration store
type MappingLoader interface {
	ListActive(ctx context.Context) ([]model.VehiclePhraseMapping, error)
}

// Options wires an engine's collaborators at construction time
type Options struct {
	Vehicles  refdata.VehicleFinder
	Positions refdata.PositionFinder

	// Mappings is required for ConfigureFromStore and RefreshMappings;
	// engines configured directly with Configure may leave it nil
	Mappings MappingLoader

	// Parser overrides the default plausibility window when set
	Parser *parse.Parser

	// Concurrency bounds batch processing workers
	Concurrency int
}

// Engine is an explicitly constructed, owned instance; there is no ambient
// global. It starts unconfigured and fails every operation until Configure or
// ConfigureFromStore installs a mapping snapshot.
type Engine struct {
	parser      *parse.Parser
	validator   *validate.Validator
	vehicles    refdata.VehicleFinder
	positions   refdata.PositionFinder
	loader      MappingLoader
	concurrency int

	// snapshot is replaced wholesale on refresh; in-flight calls keep the
	// pointer they loaded, so a concurrent swap never tears a read
	snapshot atomic.Pointer[mapping.Snapshot]
}

var _ worker.Processor = (*Engine)(nil)

// New creates an unconfigured engine
func New(opts Options) *Engine {
	parser := opts.Parser
	if parser == nil {
		parser = parse.NewParser(0, -1)
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Engine{
		parser:      parser,
		validator:   validate.NewValidator(),
		vehicles:    opts.Vehicles,
		positions:   opts.Positions,
		loader:      opts.Mappings,
		concurrency: concurrency,
	}
}

// Configure installs an immutable snapshot built from the given rules
func (e *Engine) Configure(rules []model.VehiclePhraseMapping) error {
	snap, err := mapping.NewSnapshot(rules)
	if err != nil {
		return &model.ConfigurationError{Reason: err.Error()}
	}
	e.snapshot.Store(snap)
	return nil
}

// ConfigureFromStore loads the active rules from the configuration store and
// installs them
func (e *Engine) ConfigureFromStore(ctx context.Context) error {
	if e.loader == nil {
		return &model.ConfigurationError{Reason: "no mapping store configured"}
	}
	rules, err := e.loader.ListActive(ctx)
	if err != nil {
		return err
	}
	return e.Configure(rules)
}

// RefreshMappings re-reads the configuration store and atomically swaps the
// snapshot. Only the mapping table is refreshed; the reference lookup caches
// are untouched (see InvalidateReferenceCaches).
func (e *Engine) RefreshMappings(ctx context.Context) error {
	if e.snapshot.Load() == nil {
		return &model.ConfigurationError{Reason: "engine not configured"}
	}
	return e.ConfigureFromStore(ctx)
}

// InvalidateReferenceCaches clears the part-type/position lookup caches after
// an out-of-band reference dataset change
func (e *Engine) InvalidateReferenceCaches() {
	if inv, ok := e.positions.(refdata.Invalidator); ok {
		inv.Invalidate()
	}
}

// ReferenceCacheStats reports the cached part-type and position lookup counts,
// or zeros when the position source does not cache
func (e *Engine) ReferenceCacheStats() (partTypes, positions int) {
	if counter, ok := e.positions.(refdata.LookupCounter); ok {
		return counter.CachedLookups()
	}
	return 0, 0
}

// MappingCount reports the number of active rules in the current snapshot
func (e *Engine) MappingCount() int {
	snap := e.snapshot.Load()
	if snap == nil {
		return 0
	}
	return snap.Len()
}

// ProcessApplication resolves and validates one raw application string. It
// returns every candidate's result in deterministic order, not just the first
// valid one, so callers and diagnostics see the full search trace. Use
// BestResult to collapse the trace into a single verdict.
func (e *Engine) ProcessApplication(ctx context.Context, rawText string, partTypeID int64) ([]model.ValidationResult, error) {
	snap := e.snapshot.Load()
	if snap == nil {
		return nil, &model.ConfigurationError{Reason: "engine not configured"}
	}

	parsed, err := e.parser.Parse(rawText)
	if err != nil {
		return nil, err
	}

	vehicles := mapping.Resolve(parsed.VehiclePhrase, snap)
	if len(vehicles) == 0 {
		return nil, &model.MappingError{Phrase: parsed.VehiclePhrase}
	}

	candidates := expand.Expand(parsed, vehicles)

	refPositions, partType, err := e.lookupPartType(ctx, partTypeID)
	if err != nil {
		return nil, err
	}

	refVehicles, err := e.lookupVehicles(ctx, parsed, vehicles)
	if err != nil {
		return nil, err
	}

	results := make([]model.ValidationResult, 0, len(candidates))
	for _, candidate := range candidates {
		refs := refVehicles[vehicleKey(candidate.Make, candidate.Model)]
		results = append(results, e.validator.Validate(candidate, refs, refPositions, partType))
	}
	return results, nil
}

// lookupPartType fetches the part type descriptor and its valid positions
// once per call; the position source caches behind the interface
func (e *Engine) lookupPartType(ctx context.Context, partTypeID int64) ([]model.Position, *model.PartType, error) {
	if e.positions == nil || partTypeID <= 0 {
		return nil, nil, nil
	}
	partType, err := e.positions.FindPartType(ctx, partTypeID)
	if err != nil {
		return nil, nil, err
	}
	positions, err := e.positions.FindPositions(ctx, partTypeID)
	if err != nil {
		return nil, nil, err
	}
	return positions, partType, nil
}

// lookupVehicles issues one broad reference query per distinct make/model
// over the application's full year span
func (e *Engine) lookupVehicles(ctx context.Context, parsed *model.ParsedApplication, vehicles []model.CanonicalVehicle) (map[string][]model.ReferenceVehicle, error) {
	found := make(map[string][]model.ReferenceVehicle, len(vehicles))
	if e.vehicles == nil {
		return found, nil
	}

	for _, v := range vehicles {
		key := vehicleKey(v.Make, v.Model)
		if _, done := found[key]; done {
			continue
		}
		refs, err := e.vehicles.FindVehicles(ctx, refdata.VehicleQuery{
			YearFrom: parsed.YearStart,
			YearTo:   parsed.YearEnd,
			Make:     v.Make,
			Model:    v.Model,
		})
		if err != nil {
			return nil, err
		}
		found[key] = refs
	}
	return found, nil
}

func vehicleKey(make, vmodel string) string {
	return strings.ToLower(make) + "\x00" + strings.ToLower(vmodel)
}

// BatchProcess processes many application strings concurrently and keys the
// results by input text. A single input's parse or mapping failure is
// recorded as one Error-status result for that key; database and
// configuration faults abort the whole batch since no input can succeed.
func (e *Engine) BatchProcess(ctx context.Context, rawTexts []string, partTypeID int64) (map[string][]model.ValidationResult, error) {
	if e.snapshot.Load() == nil {
		return nil, &model.ConfigurationError{Reason: "engine not configured"}
	}

	processor := worker.NewBatchProcessor(e, e.concurrency)
	outcomes := processor.ProcessApplications(ctx, rawTexts, partTypeID)

	results := make(map[string][]model.ValidationResult, len(outcomes))
	for _, outcome := range outcomes {
		if outcome.Error == nil {
			results[outcome.RawText] = outcome.Results
			continue
		}

		var parseErr *model.ParseError
		var mappingErr *model.MappingError
		if errors.As(outcome.Error, &parseErr) || errors.As(outcome.Error, &mappingErr) {
			results[outcome.RawText] = []model.ValidationResult{{
				Status:  model.StatusError,
				Message: outcome.Error.Error(),
			}}
			continue
		}

		// Database or configuration faults mean the batch as a whole
		// cannot do useful work
		return nil, outcome.Error
	}
	return results, nil
}

// BestResult collapses a search trace into a single verdict: the best-ranked
// Valid result, else the best-ranked Warning, else the first Error. Returns
// nil for an empty trace.
func BestResult(results []model.ValidationResult) *model.ValidationResult {
	var warning, errResult *model.ValidationResult
	for i := range results {
		switch results[i].Status {
		case model.StatusValid:
			return &results[i]
		case model.StatusWarning:
			if warning == nil {
				warning = &results[i]
			}
		case model.StatusError:
			if errResult == nil {
				errResult = &results[i]
			}
		}
	}
	if warning != nil {
		return warning
	}
	return errResult
}
