package expand

import (
	"testing"

	"github.com/partstream/fitment/internal/model"
)

func TestExpand_CrossProduct(t *testing.T) {
	app := &model.ParsedApplication{
		YearStart: 2015,
		YearEnd:   2017,
		PositionGroups: []model.PositionGroup{
			{model.PositionFront},
			{model.PositionRear},
		},
	}
	candidates := []model.CanonicalVehicle{
		{Make: "Toyota", VehicleCode: "CAM", Model: "Camry"},
		{Make: "Toyota", VehicleCode: "COR", Model: "Corolla"},
	}

	out := Expand(app, candidates)

	// 3 years x 2 vehicles x 2 groups
	if len(out) != 12 {
		t.Fatalf("expected 12 candidates, got %d", len(out))
	}

	// Ordering: years ascending, then resolver rank, then extraction order
	first := out[0]
	if first.Year != 2015 || first.VehicleCode != "CAM" || !first.Positions.Equal(model.PositionGroup{model.PositionFront}) {
		t.Errorf("unexpected first candidate: %+v", first)
	}
	second := out[1]
	if second.Year != 2015 || second.VehicleCode != "CAM" || !second.Positions.Equal(model.PositionGroup{model.PositionRear}) {
		t.Errorf("unexpected second candidate: %+v", second)
	}
	third := out[2]
	if third.Year != 2015 || third.VehicleCode != "COR" {
		t.Errorf("unexpected third candidate: %+v", third)
	}
	last := out[len(out)-1]
	if last.Year != 2017 || last.VehicleCode != "COR" || !last.Positions.Equal(model.PositionGroup{model.PositionRear}) {
		t.Errorf("unexpected last candidate: %+v", last)
	}
}

func TestExpand_Deterministic(t *testing.T) {
	app := &model.ParsedApplication{
		YearStart:      2015,
		YearEnd:        2016,
		PositionGroups: []model.PositionGroup{{model.PositionFront, model.PositionLeft}},
	}
	candidates := []model.CanonicalVehicle{{Make: "Honda", VehicleCode: "CIV", Model: "Civic"}}

	a := Expand(app, candidates)
	b := Expand(app, candidates)

	if len(a) != len(b) {
		t.Fatalf("expansion not deterministic: %d vs %d candidates", len(a), len(b))
	}
	for i := range a {
		if a[i].Year != b[i].Year || !a[i].Positions.Equal(b[i].Positions) {
			t.Errorf("candidate %d differs between runs", i)
		}
	}
}

func TestExpand_Empty(t *testing.T) {
	app := &model.ParsedApplication{
		YearStart:      2015,
		YearEnd:        2015,
		PositionGroups: []model.PositionGroup{{model.PositionFront}},
	}

	if out := Expand(app, nil); out != nil {
		t.Errorf("expected nil for no candidates, got %d", len(out))
	}
}

func TestExpand_CarriesDrivetrainConstraints(t *testing.T) {
	app := &model.ParsedApplication{
		YearStart:      2015,
		YearEnd:        2015,
		PositionGroups: []model.PositionGroup{{model.PositionFront}},
	}
	candidates := []model.CanonicalVehicle{
		{Make: "Toyota", VehicleCode: "CAM", Model: "Camry", Engine: "2.5L L4", Transmission: "Automatic"},
	}

	out := Expand(app, candidates)
	if len(out) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(out))
	}
	if out[0].Engine != "2.5L L4" || out[0].Transmission != "Automatic" {
		t.Errorf("drivetrain constraints not carried: %+v", out[0])
	}
}
