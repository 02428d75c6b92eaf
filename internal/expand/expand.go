// Package expand turns a parsed application and its resolved vehicle
// candidates into the flat list of concrete fitment candidates to validate.
package expand

import "github.com/partstream/fitment/internal/model"

// Expand produces the cross product of years, resolved vehicles and position
// groups. Ordering is deterministic (years ascending, vehicles in resolver
// rank order, groups in extraction order) so "first successful candidate"
// tie-breaking downstream is reproducible.
func Expand(app *model.ParsedApplication, candidates []model.CanonicalVehicle) []model.FitmentCandidate {
	years := app.Years()
	if len(years) == 0 || len(candidates) == 0 || len(app.PositionGroups) == 0 {
		return nil
	}

	out := make([]model.FitmentCandidate, 0, len(years)*len(candidates)*len(app.PositionGroups))
	for _, year := range years {
		for _, vehicle := range candidates {
			for _, group := range app.PositionGroups {
				out = append(out, model.FitmentCandidate{
					Year:         year,
					Make:         vehicle.Make,
					VehicleCode:  vehicle.VehicleCode,
					Model:        vehicle.Model,
					Engine:       vehicle.Engine,
					Transmission: vehicle.Transmission,
					Positions:    group,
				})
			}
		}
	}
	return out
}
