// Package validate checks fitment candidates against reference data.
//
// The validator is stateless and side-effect-free: reference vehicles and
// positions are handed in by the caller, never queried here, so it can be
// unit tested without any data access layer.
package validate

import (
	"fmt"
	"strings"

	"github.com/partstream/fitment/internal/model"
)

// Validator emits a verdict for one fitment candidate
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks the candidate's positions against the part type's reference
// positions and its vehicle against the reference vehicle rows. The result is
// data, not a fault: Valid, Warning and Error statuses are all normal outputs.
func (v *Validator) Validate(candidate model.FitmentCandidate, refVehicles []model.ReferenceVehicle, refPositions []model.Position, partType *model.PartType) model.ValidationResult {
	result := model.ValidationResult{Candidate: candidate}

	posStatus, posMessage, matchedPos := v.checkPositions(candidate, refPositions, partType)
	vehStatus, vehMessage, matchedVeh := v.checkVehicle(candidate, refVehicles)

	result.MatchedPosition = matchedPos
	result.MatchedVehicle = matchedVeh

	switch {
	case posStatus == model.StatusError:
		result.Status = model.StatusError
		result.Message = posMessage
	case vehStatus == model.StatusError:
		result.Status = model.StatusError
		result.Message = vehMessage
	case posStatus == model.StatusWarning:
		result.Status = model.StatusWarning
		result.Message = posMessage
	case vehStatus == model.StatusWarning:
		result.Status = model.StatusWarning
		result.Message = vehMessage
	default:
		result.Status = model.StatusValid
		result.Message = "fitment confirmed against reference data"
	}
	return result
}

// checkPositions verifies the candidate's position group against the part
// type's valid and mandatory positions
func (v *Validator) checkPositions(candidate model.FitmentCandidate, refPositions []model.Position, partType *model.PartType) (model.ValidationStatus, string, model.Position) {
	if partType != nil && len(partType.MandatoryPositions) > 0 {
		for _, required := range partType.MandatoryPositions {
			if candidate.Positions.Contains(required) {
				return model.StatusValid, "", required
			}
		}
		return model.StatusError, fmt.Sprintf("part type %s requires one of: %s", partType.Name, joinPositions(partType.MandatoryPositions)), ""
	}

	if len(refPositions) == 0 {
		return model.StatusValid, "", ""
	}

	for _, pos := range refPositions {
		if candidate.Positions.Contains(pos) {
			return model.StatusValid, "", pos
		}
	}
	return model.StatusWarning, fmt.Sprintf("non-standard position %q for this part type", candidate.Positions.String()), ""
}

// checkVehicle searches the reference rows for an exact year/make/model match,
// then confirms the optional engine/transmission constraints
func (v *Validator) checkVehicle(candidate model.FitmentCandidate, refVehicles []model.ReferenceVehicle) (model.ValidationStatus, string, *model.ReferenceVehicle) {
	var baseMatch *model.ReferenceVehicle
	for i := range refVehicles {
		ref := &refVehicles[i]
		if ref.Year != candidate.Year {
			continue
		}
		if !strings.EqualFold(ref.Make, candidate.Make) || !strings.EqualFold(ref.Model, candidate.Model) {
			continue
		}
		if baseMatch == nil {
			baseMatch = ref
		}
		if matchesDrivetrain(candidate, ref) {
			return model.StatusValid, "", ref
		}
	}

	if baseMatch == nil {
		return model.StatusError, fmt.Sprintf("vehicle not recognized: %d %s %s", candidate.Year, candidate.Make, candidate.Model), nil
	}
	return model.StatusWarning, "vehicle found but engine/transmission unconfirmed", baseMatch
}

// matchesDrivetrain checks the candidate's optional engine/transmission
// constraints against one reference row
func matchesDrivetrain(candidate model.FitmentCandidate, ref *model.ReferenceVehicle) bool {
	if candidate.Engine != "" && !strings.EqualFold(candidate.Engine, ref.Engine) {
		return false
	}
	if candidate.Transmission != "" && !strings.EqualFold(candidate.Transmission, ref.Transmission) {
		return false
	}
	return true
}

func joinPositions(positions []model.Position) string {
	parts := make([]string, len(positions))
	for i, p := range positions {
		parts[i] = string(p)
	}
	return strings.Join(parts, ", ")
}
