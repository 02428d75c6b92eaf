package validate

import (
	"reflect"
	"testing"

	"github.com/partstream/fitment/internal/model"
)

var camry2015 = model.ReferenceVehicle{
	Year: 2015, Make: "Toyota", Model: "Camry", Engine: "2.5L L4", Transmission: "Automatic",
}

func candidate() model.FitmentCandidate {
	return model.FitmentCandidate{
		Year:        2015,
		Make:        "Toyota",
		VehicleCode: "CAM",
		Model:       "Camry",
		Positions:   model.PositionGroup{model.PositionFront, model.PositionLeft},
	}
}

func TestValidate_Valid(t *testing.T) {
	v := NewValidator()

	result := v.Validate(candidate(), []model.ReferenceVehicle{camry2015},
		[]model.Position{model.PositionFront, model.PositionRear, model.PositionLeft, model.PositionRight}, nil)

	if result.Status != model.StatusValid {
		t.Errorf("expected valid, got %s (%s)", result.Status, result.Message)
	}
	if result.MatchedVehicle == nil || result.MatchedVehicle.Year != 2015 {
		t.Error("expected matched vehicle to be set")
	}
	if result.MatchedPosition != model.PositionFront {
		t.Errorf("expected matched position Front, got %s", result.MatchedPosition)
	}
}

func TestValidate_VehicleNotRecognized(t *testing.T) {
	v := NewValidator()

	c := candidate()
	c.Year = 2016

	result := v.Validate(c, []model.ReferenceVehicle{camry2015}, nil, nil)

	if result.Status != model.StatusError {
		t.Errorf("expected error, got %s", result.Status)
	}
	if result.MatchedVehicle != nil {
		t.Error("expected no matched vehicle")
	}
}

func TestValidate_DrivetrainMismatchIsWarning(t *testing.T) {
	v := NewValidator()

	c := candidate()
	c.Engine = "3.5L V6"

	result := v.Validate(c, []model.ReferenceVehicle{camry2015}, nil, nil)

	if result.Status != model.StatusWarning {
		t.Errorf("expected warning, got %s", result.Status)
	}
	if result.MatchedVehicle == nil {
		t.Error("expected base vehicle match to be reported")
	}
}

func TestValidate_DrivetrainMatchAcrossRows(t *testing.T) {
	v := NewValidator()

	c := candidate()
	c.Engine = "3.5L V6"

	v6 := camry2015
	v6.Engine = "3.5L V6"

	result := v.Validate(c, []model.ReferenceVehicle{camry2015, v6}, nil, nil)

	if result.Status != model.StatusValid {
		t.Errorf("expected valid via second row, got %s", result.Status)
	}
	if result.MatchedVehicle == nil || result.MatchedVehicle.Engine != "3.5L V6" {
		t.Error("expected the V6 row to be the match")
	}
}

func TestValidate_NonStandardPositionIsWarning(t *testing.T) {
	v := NewValidator()

	c := candidate()
	c.Positions = model.PositionGroup{model.PositionUpper}

	result := v.Validate(c, []model.ReferenceVehicle{camry2015},
		[]model.Position{model.PositionFront, model.PositionRear}, nil)

	if result.Status != model.StatusWarning {
		t.Errorf("expected warning for non-standard position, got %s", result.Status)
	}
}

func TestValidate_MandatoryPositionMissingIsError(t *testing.T) {
	v := NewValidator()

	c := candidate()
	c.Positions = model.PositionGroup{model.PositionUpper}

	partType := &model.PartType{
		ID:                 1001,
		Name:               "Brake Rotor",
		MandatoryPositions: []model.Position{model.PositionFront, model.PositionRear},
	}

	result := v.Validate(c, []model.ReferenceVehicle{camry2015}, nil, partType)

	if result.Status != model.StatusError {
		t.Errorf("expected error for unmet mandatory position, got %s", result.Status)
	}
}

func TestValidate_CaseInsensitiveVehicleMatch(t *testing.T) {
	v := NewValidator()

	c := candidate()
	c.Make = "TOYOTA"
	c.Model = "camry"

	result := v.Validate(c, []model.ReferenceVehicle{camry2015}, nil, nil)

	if result.Status != model.StatusValid {
		t.Errorf("expected case-insensitive match, got %s", result.Status)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	v := NewValidator()

	refs := []model.ReferenceVehicle{camry2015}
	positions := []model.Position{model.PositionFront}

	a := v.Validate(candidate(), refs, positions, nil)
	b := v.Validate(candidate(), refs, positions, nil)

	if !reflect.DeepEqual(a, b) {
		t.Error("expected identical results for identical inputs")
	}
}
