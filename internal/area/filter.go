package area

import (
	"math"
	"strconv"
	"strings"
)

// Bounds of a plausible single-room area in square meters (exclusive).
const (
	MinArea = 1.0
	MaxArea = 75.0
)

// ExcludedCategories lists room categories that are not living space.
var ExcludedCategories = []string{"kitchen", "bathroom", "hall", "corridor"}

// excludedRoomNames are the Russian plan labels of ExcludedCategories,
// as lowercase stems.
var excludedRoomNames = []string{
	"кухн",     // kitchen
	"ванн",     // bathroom
	"санузел",  // bathroom
	"сан.узел", // bathroom
	"с/у",      // bathroom
	"туалет",   // toilet
	"холл",     // hall
	"прихож",   // hall
	"коридор",  // corridor
}

// AreaMeasurement is a number accepted as a room area.
type AreaMeasurement struct {
	Value float64 `json:"value"`
}

// LabeledArea is an area read from a label that does not name an excluded
// room category.
type LabeledArea struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// InRange reports whether v lies strictly between MinArea and MaxArea.
func InRange(v float64) bool {
	return v > MinArea && v < MaxArea
}

// AcceptFirst applies the batch acceptance policy to a token: only the
// first number is considered, and it is accepted only when InRange.
// Later numbers in the same token are never used as a fallback. Tokens
// that name a non-living room (see NamesExcludedRoom) are rejected before
// any number is read.
func AcceptFirst(tok Token) (AreaMeasurement, bool) {
	if NamesExcludedRoom(tok.Text) {
		return AreaMeasurement{}, false
	}

	candidates := Candidates(tok)
	if len(candidates) == 0 {
		return AreaMeasurement{}, false
	}

	first := candidates[0].Value
	if !InRange(first) {
		return AreaMeasurement{}, false
	}
	return AreaMeasurement{Value: first}, true
}

// MeasureTokens runs AcceptFirst over tokens and returns the accepted
// measurements in token order.
func MeasureTokens(tokens []Token) []AreaMeasurement {
	var measurements []AreaMeasurement
	for _, tok := range tokens {
		if m, ok := AcceptFirst(tok); ok {
			measurements = append(measurements, m)
		}
	}
	return measurements
}

// IsExcludedCategory reports whether label is exactly one of
// ExcludedCategories. Matching is case-sensitive, as detector labels are.
func IsExcludedCategory(label string) bool {
	for _, c := range ExcludedCategories {
		if label == c {
			return true
		}
	}
	return false
}

// MentionsExcludedCategory reports whether the lowercased text contains any
// of ExcludedCategories as a substring.
func MentionsExcludedCategory(text string) bool {
	lower := strings.ToLower(text)
	for _, c := range ExcludedCategories {
		if strings.Contains(lower, c) {
			return true
		}
	}
	return false
}

// NamesExcludedRoom reports whether text names a non-living room either by
// one of ExcludedCategories or by its Russian plan label ("Кухня",
// "Санузел", "Коридор", ...).
func NamesExcludedRoom(text string) bool {
	if MentionsExcludedCategory(text) {
		return true
	}
	lower := strings.ToLower(text)
	for _, name := range excludedRoomNames {
		if strings.Contains(lower, name) {
			return true
		}
	}
	return false
}

// LabelArea applies the keyword-exclusion policy to a label.
//
// The label is lowercased; if it mentions an excluded category no number is
// read at all. Otherwise the label is split on whitespace and the first
// field that parses as a number (comma or period decimal separator) is
// returned. No range check is applied. Zero and non-finite values such as
// "inf" or "nan" count as no area.
func LabelArea(label string) (LabeledArea, bool) {
	lower := strings.ToLower(label)
	if MentionsExcludedCategory(lower) {
		return LabeledArea{}, false
	}

	for _, field := range strings.Fields(lower) {
		v, err := strconv.ParseFloat(strings.ReplaceAll(field, ",", "."), 64)
		if err != nil {
			continue
		}
		if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return LabeledArea{}, false
		}
		return LabeledArea{Label: lower, Value: v}, true
	}
	return LabeledArea{}, false
}

// LabelAreas runs LabelArea over the text of each token.
func LabelAreas(tokens []Token) []LabeledArea {
	var areas []LabeledArea
	for _, tok := range tokens {
		if a, ok := LabelArea(tok.Text); ok {
			areas = append(areas, a)
		}
	}
	return areas
}
