package area

import (
	"errors"
	"image"
	"regexp"
	"strconv"
	"strings"
)

// numberPattern matches a decimal ("15.2") or an integer ("8"). The
// decimal alternative comes first so "15.2" is not split into 15 and 2.
var numberPattern = regexp.MustCompile(`\d+\.\d+|\d+`)

// Token is a piece of text recognized on an image together with its
// location and the recognizer's confidence (0.0 to 1.0).
type Token struct {
	Text       string          `json:"text"`
	Bounds     image.Rectangle `json:"bounds"`
	Confidence float64         `json:"confidence"`
}

// NumericCandidate is a number parsed out of a token's text.
type NumericCandidate struct {
	Value  float64 `json:"value"`
	Source Token   `json:"source"`
}

// ParseNumbers returns every number found in text, left to right.
//
// Commas are replaced with periods before scanning, so "21,5" reads as
// 21.5. Text without digits yields an empty (nil) slice. A digit run too
// long for a float64 is kept as +Inf so it still occupies its position.
func ParseNumbers(text string) []float64 {
	normalized := strings.ReplaceAll(text, ",", ".")

	matches := numberPattern.FindAllString(normalized, -1)
	if len(matches) == 0 {
		return nil
	}

	values := make([]float64, 0, len(matches))
	for _, m := range matches {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			continue
		}
		values = append(values, v)
	}
	return values
}

// Candidates returns the numeric candidates of a token in order of
// appearance.
func Candidates(tok Token) []NumericCandidate {
	values := ParseNumbers(tok.Text)
	if len(values) == 0 {
		return nil
	}

	candidates := make([]NumericCandidate, len(values))
	for i, v := range values {
		candidates[i] = NumericCandidate{Value: v, Source: tok}
	}
	return candidates
}
