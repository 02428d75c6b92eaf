package model

// ParsedApplication is the structured form of one raw catalog application string.
// It is built once by the parser, is immutable, and is never persisted.
type ParsedApplication struct {
	RawText        string          `json:"raw_text"`
	YearStart      int             `json:"year_start"`
	YearEnd        int             `json:"year_end"` // Inclusive; equals YearStart for single years
	VehiclePhrase  string          `json:"vehicle_phrase"`
	PositionPhrase string          `json:"position_phrase,omitempty"`
	PositionGroups []PositionGroup `json:"position_groups"`
}

// Years returns the inclusive list of years covered by the application
func (a *ParsedApplication) Years() []int {
	if a.YearEnd < a.YearStart {
		return nil
	}
	years := make([]int, 0, a.YearEnd-a.YearStart+1)
	for y := a.YearStart; y <= a.YearEnd; y++ {
		years = append(years, y)
	}
	return years
}
