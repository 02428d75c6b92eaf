package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/partstream/fitment/internal/model"
)

// yearPattern matches "2015", "2015-2018" (hyphen or en dash) and the
// open-ended "2015+" and "2015-" forms
var yearPattern = regexp.MustCompile(`\b(\d{4})(?:\s*[-–]\s*(\d{4})|\s*([+\-–]))?`)

// Parser converts raw catalog application strings into structured applications
type Parser struct {
	minYear       int
	maxYearsAhead int
	nowFunc       func() time.Time // injectable for tests
}

// NewParser creates a parser with the given plausibility window. Years below
// minYear or beyond the current year plus maxYearsAhead are parse errors.
func NewParser(minYear, maxYearsAhead int) *Parser {
	if minYear <= 0 {
		minYear = 1900
	}
	if maxYearsAhead < 0 {
		maxYearsAhead = 2
	}
	return &Parser{
		minYear:       minYear,
		maxYearsAhead: maxYearsAhead,
		nowFunc:       time.Now,
	}
}

// Parse extracts the year span, position groups and residual vehicle phrase
// from one application string. It fails with *model.ParseError when no year
// token or no vehicle phrase can be found; ambiguous position text is not
// fatal and yields a single Varies-with-Application group.
func (p *Parser) Parse(rawText string) (*model.ParsedApplication, error) {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return nil, &model.ParseError{Input: rawText, Reason: "empty input"}
	}

	yearStart, yearEnd, residual, err := p.extractYears(rawText, text)
	if err != nil {
		return nil, err
	}

	groups, posWords, vehicleWords := extractPositions(tokenize(residual))
	if len(vehicleWords) == 0 {
		return nil, &model.ParseError{Input: rawText, Reason: "no vehicle phrase after year and position extraction"}
	}
	if len(groups) == 0 {
		// Position ambiguity is a validation-time concern, not a parse failure
		groups = []model.PositionGroup{{model.PositionVaries}}
	}

	return &model.ParsedApplication{
		RawText:        rawText,
		YearStart:      yearStart,
		YearEnd:        yearEnd,
		VehiclePhrase:  strings.Join(vehicleWords, " "),
		PositionPhrase: strings.Join(posWords, " "),
		PositionGroups: groups,
	}, nil
}

// extractYears finds the first plausible year token, validates it and returns
// the text with the token removed. Four-digit tokens outside the plausibility
// window are left alone so model names like "Ram 1500" survive; if the only
// year-shaped token is implausible, that is a parse error rather than a
// silently accepted year.
func (p *Parser) extractYears(raw, text string) (start, end int, residual string, err error) {
	matches := yearPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return 0, 0, "", &model.ParseError{Input: raw, Reason: "no year token found"}
	}

	maxYear := p.nowFunc().Year() + p.maxYearsAhead

	var firstReason string
	for _, loc := range matches {
		startText := text[loc[2]:loc[3]]
		start, _ = strconv.Atoi(startText)

		switch {
		case loc[4] >= 0:
			end, _ = strconv.Atoi(text[loc[4]:loc[5]])
		case loc[6] >= 0:
			// Open-ended range: clamp to the plausibility ceiling
			end = maxYear
		default:
			end = start
		}

		reason := ""
		switch {
		case start < p.minYear || start > maxYear:
			reason = "year " + startText + " outside plausible range"
		case end < p.minYear || end > maxYear:
			reason = "year " + text[loc[4]:loc[5]] + " outside plausible range"
		case end < start:
			reason = "year range is reversed"
		}
		if reason == "" {
			residual = strings.TrimSpace(text[:loc[0]] + " " + text[loc[1]:])
			return start, end, residual, nil
		}
		if firstReason == "" {
			firstReason = reason
		}
	}

	return 0, 0, "", &model.ParseError{Input: raw, Reason: firstReason}
}
