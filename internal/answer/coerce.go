package answer

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Number is the result of coercing answer text to a number. OK is false
// when the text is not a number; Value is then NaN and must not be used.
type Number struct {
	Value float64
	OK    bool
}

// NaN returns the not-a-number marker.
func NaN() Number {
	return Number{Value: math.NaN()}
}

// Coerce interprets text as a number. English cardinal words are tried
// first ("three", "twenty one"), then a plain numeric parse ("33", "-4.5").
// Text that is neither yields NaN().
func Coerce(text string) Number {
	if v, err := wordsToNumber(text); err == nil {
		return Number{Value: v, OK: true}
	}
	if v, ok := parseFloat(text); ok {
		return Number{Value: v, OK: true}
	}
	return NaN()
}

// parseFloat parses trimmed text as a float. Out-of-range values parse to
// ±Inf rather than failing.
func parseFloat(text string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return v, true
		}
		return 0, false
	}
	return v, true
}
