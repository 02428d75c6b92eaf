package parse

import (
	"regexp"
	"strings"

	"github.com/partstream/fitment/internal/model"
)

// positionKeywords maps lowercased tokens to canonical positions. Catalog feeds
// use a mix of full words and legacy two-letter abbreviations.
var positionKeywords = map[string]model.Position{
	"front":     model.PositionFront,
	"frt":       model.PositionFront,
	"fr":        model.PositionFront,
	"rear":      model.PositionRear,
	"rr":        model.PositionRear,
	"back":      model.PositionRear,
	"left":      model.PositionLeft,
	"lh":        model.PositionLeft,
	"driver":    model.PositionLeft,
	"right":     model.PositionRight,
	"rh":        model.PositionRight,
	"passenger": model.PositionRight,
	"upper":     model.PositionUpper,
	"lower":     model.PositionLower,
	"inner":     model.PositionInner,
	"outer":     model.PositionOuter,
	"center":    model.PositionCenter,
	"centre":    model.PositionCenter,
	"n/a":       model.PositionNA,
	"na":        model.PositionNA,
}

// continuationWords follow a position keyword without ending its run
// ("left hand", "driver side")
var continuationWords = map[string]bool{
	"hand": true,
	"side": true,
}

// groupSeparators split one position group from the next. A phrase like
// "Front and Rear" offers alternatives, not a combined location.
var groupSeparators = map[string]bool{
	",":   true,
	"/":   true,
	"&":   true,
	"and": true,
	"or":  true,
}

// extractPositions walks the year-stripped tokens, pulling contiguous position
// keyword runs into groups and returning everything else as vehicle words.
func extractPositions(tokens []string) (groups []model.PositionGroup, posWords, vehicleWords []string) {
	var current model.PositionGroup
	inRun := false

	closeGroup := func() {
		if len(current) > 0 {
			groups = append(groups, current)
		}
		current = nil
		inRun = false
	}

	for _, token := range tokens {
		lower := strings.ToLower(token)

		if groupSeparators[lower] {
			if inRun {
				closeGroup()
			} else if lower != "," {
				// "and"/"or" between vehicle words stays in the phrase
				vehicleWords = append(vehicleWords, token)
			}
			continue
		}

		if pos, ok := positionKeywords[lower]; ok {
			if !inRun {
				inRun = true
			}
			if !current.Contains(pos) {
				current = append(current, pos)
			}
			posWords = append(posWords, token)
			continue
		}

		if inRun && continuationWords[lower] {
			posWords = append(posWords, token)
			continue
		}

		if inRun {
			closeGroup()
		}
		vehicleWords = append(vehicleWords, token)
	}

	closeGroup()
	return groups, posWords, vehicleWords
}

// naPattern protects "N/A" from being split on its slash
var naPattern = regexp.MustCompile(`(?i)\bn/a\b`)

// tokenize splits the residual text into words, detaching the punctuation that
// acts as a group separator
func tokenize(text string) []string {
	text = naPattern.ReplaceAllString(text, "na")
	replacer := strings.NewReplacer(",", " , ", "/", " / ", "&", " & ", ";", " , ")
	return strings.Fields(replacer.Replace(text))
}
