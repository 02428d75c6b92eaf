package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/partstream/fitment/internal/model"
	"github.com/partstream/fitment/internal/refdata"
)

// fakeVehicles serves reference vehicles from memory, filtering like the SQL
// adapter does
type fakeVehicles struct {
	vehicles []model.ReferenceVehicle
	err      error
}

func (f *fakeVehicles) FindVehicles(ctx context.Context, q refdata.VehicleQuery) ([]model.ReferenceVehicle, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.ReferenceVehicle
	for _, v := range f.vehicles {
		if q.YearFrom > 0 && v.Year < q.YearFrom {
			continue
		}
		if q.YearTo > 0 && v.Year > q.YearTo {
			continue
		}
		if q.Make != "" && !strings.EqualFold(q.Make, v.Make) {
			continue
		}
		if q.Model != "" && !strings.EqualFold(q.Model, v.Model) {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

type fakePositions struct {
	positions []model.Position
	partType  *model.PartType
}

func (f *fakePositions) FindPositions(ctx context.Context, partTypeID int64) ([]model.Position, error) {
	return f.positions, nil
}

func (f *fakePositions) FindPartType(ctx context.Context, partTypeID int64) (*model.PartType, error) {
	return f.partType, nil
}

type fakeLoader struct {
	mu    sync.Mutex
	rules []model.VehiclePhraseMapping
	err   error
}

func (f *fakeLoader) ListActive(ctx context.Context) ([]model.VehiclePhraseMapping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.VehiclePhraseMapping(nil), f.rules...), nil
}

func camryMapping() model.VehiclePhraseMapping {
	return model.VehiclePhraseMapping{
		ID:       1,
		Pattern:  "Camry",
		Priority: 10,
		Active:   true,
		Canonical: model.CanonicalVehicle{
			Make:        "Toyota",
			VehicleCode: "CAM",
			Model:       "Camry",
		},
	}
}

func testEngine(vehicles []model.ReferenceVehicle) *Engine {
	eng := New(Options{
		Vehicles: &fakeVehicles{vehicles: vehicles},
		Positions: &fakePositions{
			positions: []model.Position{model.PositionFront, model.PositionRear, model.PositionLeft, model.PositionRight},
			partType:  &model.PartType{ID: 1001, Name: "Wheel Bearing"},
		},
	})
	_ = eng.Configure([]model.VehiclePhraseMapping{camryMapping()})
	return eng
}

func TestProcessApplication_TwoValidYears(t *testing.T) {
	eng := testEngine([]model.ReferenceVehicle{
		{Year: 2015, Make: "Toyota", Model: "Camry"},
		{Year: 2016, Make: "Toyota", Model: "Camry"},
	})

	results, err := eng.ProcessApplication(context.Background(), "2015-2016 Toyota Camry Front Left", 1001)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	wantGroup := model.PositionGroup{model.PositionFront, model.PositionLeft}
	for i, want := range []int{2015, 2016} {
		r := results[i]
		if r.Status != model.StatusValid {
			t.Errorf("result %d: expected valid, got %s (%s)", i, r.Status, r.Message)
		}
		if r.Candidate.Year != want {
			t.Errorf("result %d: expected year %d, got %d", i, want, r.Candidate.Year)
		}
		if !r.Candidate.Positions.Equal(wantGroup) {
			t.Errorf("result %d: expected positions %v, got %v", i, wantGroup, r.Candidate.Positions)
		}
	}
}

func TestProcessApplication_MissingYearIsError(t *testing.T) {
	eng := testEngine([]model.ReferenceVehicle{
		{Year: 2015, Make: "Toyota", Model: "Camry"},
	})

	results, err := eng.ProcessApplication(context.Background(), "2015-2016 Toyota Camry Front Left", 1001)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != model.StatusValid {
		t.Errorf("2015: expected valid, got %s", results[0].Status)
	}
	if results[1].Status != model.StatusError {
		t.Errorf("2016: expected error, got %s", results[1].Status)
	}
	if !strings.Contains(results[1].Message, "not recognized") {
		t.Errorf("2016: unexpected message %q", results[1].Message)
	}
}

func TestProcessApplication_Unconfigured(t *testing.T) {
	eng := New(Options{Vehicles: &fakeVehicles{}})

	_, err := eng.ProcessApplication(context.Background(), "2015 Camry", 0)

	var cfgErr *model.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Errorf("expected *model.ConfigurationError, got %v", err)
	}
}

func TestProcessApplication_NoMappingMatch(t *testing.T) {
	eng := testEngine(nil)

	_, err := eng.ProcessApplication(context.Background(), "2015 Gremlin Front", 0)

	var mapErr *model.MappingError
	if !errors.As(err, &mapErr) {
		t.Fatalf("expected *model.MappingError, got %v", err)
	}
	if mapErr.Phrase != "Gremlin" {
		t.Errorf("expected unmatched phrase %q in error, got %q", "Gremlin", mapErr.Phrase)
	}
}

func TestBatchProcess_MixedOutcomes(t *testing.T) {
	eng := testEngine([]model.ReferenceVehicle{
		{Year: 2015, Make: "Toyota", Model: "Camry"},
	})

	inputs := []string{
		"2015 Camry Front",
		"no year here at all",
		"2015 Gremlin Front",
	}

	results, err := eng.BatchProcess(context.Background(), inputs, 1001)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("expected 3 keyed entries, got %d", len(results))
	}

	good := results["2015 Camry Front"]
	if len(good) != 1 || good[0].Status != model.StatusValid {
		t.Errorf("expected one valid result for good input, got %v", good)
	}

	for _, bad := range []string{"no year here at all", "2015 Gremlin Front"} {
		entry := results[bad]
		if len(entry) != 1 || entry[0].Status != model.StatusError {
			t.Errorf("%q: expected single error-status result, got %v", bad, entry)
		}
	}
}

func TestBatchProcess_DatabaseFaultAborts(t *testing.T) {
	eng := New(Options{
		Vehicles: &fakeVehicles{err: &model.DatabaseError{Op: "find vehicles", Cause: errors.New("connection hang")}},
	})
	_ = eng.Configure([]model.VehiclePhraseMapping{camryMapping()})

	_, err := eng.BatchProcess(context.Background(), []string{"2015 Camry Front"}, 0)

	var dbErr *model.DatabaseError
	if !errors.As(err, &dbErr) {
		t.Errorf("expected *model.DatabaseError to propagate, got %v", err)
	}
}

func TestConfigureFromStore_AndRefresh(t *testing.T) {
	loader := &fakeLoader{rules: []model.VehiclePhraseMapping{camryMapping()}}
	eng := New(Options{
		Vehicles: &fakeVehicles{},
		Mappings: loader,
	})

	// Refresh before configure is a configuration error
	var cfgErr *model.ConfigurationError
	if err := eng.RefreshMappings(context.Background()); !errors.As(err, &cfgErr) {
		t.Errorf("expected configuration error before configure, got %v", err)
	}

	if err := eng.ConfigureFromStore(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eng.MappingCount() != 1 {
		t.Errorf("expected 1 active rule, got %d", eng.MappingCount())
	}

	corolla := camryMapping()
	corolla.ID = 2
	corolla.Pattern = "Corolla"
	corolla.Canonical.VehicleCode = "COR"
	corolla.Canonical.Model = "Corolla"
	loader.mu.Lock()
	loader.rules = append(loader.rules, corolla)
	loader.mu.Unlock()

	if err := eng.RefreshMappings(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eng.MappingCount() != 2 {
		t.Errorf("expected 2 active rules after refresh, got %d", eng.MappingCount())
	}
}

func TestRefresh_ConcurrentWithProcessing(t *testing.T) {
	loader := &fakeLoader{rules: []model.VehiclePhraseMapping{camryMapping()}}
	eng := New(Options{
		Vehicles: &fakeVehicles{vehicles: []model.ReferenceVehicle{{Year: 2015, Make: "Toyota", Model: "Camry"}}},
		Mappings: loader,
	})
	if err := eng.ConfigureFromStore(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				results, err := eng.ProcessApplication(context.Background(), "2015 Camry Front", 0)
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				// Whichever snapshot the call pinned, the result set is coherent
				if len(results) != 1 {
					t.Errorf("expected 1 result, got %d", len(results))
					return
				}
			}
		}()
	}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := eng.RefreshMappings(context.Background()); err != nil {
				t.Errorf("refresh failed: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestBestResult(t *testing.T) {
	valid := model.ValidationResult{Status: model.StatusValid, Message: "ok"}
	warning := model.ValidationResult{Status: model.StatusWarning, Message: "maybe"}
	errResult := model.ValidationResult{Status: model.StatusError, Message: "no"}

	if got := BestResult([]model.ValidationResult{errResult, warning, valid}); got == nil || got.Status != model.StatusValid {
		t.Error("expected valid result to win")
	}
	if got := BestResult([]model.ValidationResult{errResult, warning}); got == nil || got.Status != model.StatusWarning {
		t.Error("expected warning to beat error")
	}
	if got := BestResult([]model.ValidationResult{errResult}); got == nil || got.Status != model.StatusError {
		t.Error("expected error result when nothing better exists")
	}
	if got := BestResult(nil); got != nil {
		t.Error("expected nil for empty trace")
	}
}
