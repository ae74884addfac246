package answer

import (
	"math"
	"strconv"
	"strings"

	"github.com/abhisek/chartqa-eval/internal/dataset"
	"github.com/abhisek/chartqa-eval/internal/records"
)

// relativeTolerance is the fraction used by the lenient tier.
const relativeTolerance = 0.05

// Triple holds the three correctness tiers of one answer.
type Triple struct {
	// Correct is exact equality with the gold answer.
	Correct bool
	// LenientCorrect allows ±5% of the gold value.
	LenientCorrect bool
	// LenientCorrectBounded uses the dataset-specific window, falling back
	// to the ±5% window where the split has none.
	LenientCorrectBounded bool
}

// Context carries the row fields that select the dataset-specific window.
type Context struct {
	Split        dataset.Split
	QuestionType string
	XRange       float64
	YRange       float64
}

// ContextOf extracts the tolerance context of a processed record.
func ContextOf(rec records.ProcessedRecord) Context {
	c := Context{Split: dataset.Split(rec.Split)}
	if rec.QuestionType != nil {
		c.QuestionType = *rec.QuestionType
	}
	if rec.XRange != nil {
		c.XRange = *rec.XRange
	}
	if rec.YRange != nil {
		c.YRange = *rec.YRange
	}
	return c
}

// Classify scores a processed record. It extracts the answer from the
// model's formatted output and compares it against the record's correct
// answer. It never fails: anything that cannot be compared numerically is
// compared as text.
func Classify(rec records.ProcessedRecord) Triple {
	return ClassifyAnswer(Extract(rec.ModelFormattedOutput), rec.CorrectAnswer, ContextOf(rec))
}

// ClassifyAnswer scores an already extracted answer.
//
// When both values are numeric, Correct is exact float equality,
// LenientCorrect tests the closed interval [0.95c, 1.05c] and
// LenientCorrectBounded tests [c-t, c+t] for the resolved tolerance t.
// Otherwise all three tiers equal a case-insensitive comparison of the two
// strings.
func ClassifyAnswer(modelAnswer, correctAnswer string, c Context) Triple {
	got := Coerce(modelAnswer)
	want, ok := parseFloat(correctAnswer)
	if !got.OK || !ok {
		return matchText(modelAnswer, correctAnswer)
	}

	lo, hi := window(want*(1-relativeTolerance), want*(1+relativeTolerance))
	boundedLo, boundedHi := lo, hi
	if t, ok := ResolveTolerance(c.Split, c.QuestionType, c.XRange, c.YRange); ok {
		boundedLo, boundedHi = window(want-t, want+t)
	}

	return Triple{
		Correct:               got.Value == want,
		LenientCorrect:        lo <= got.Value && got.Value <= hi,
		LenientCorrectBounded: boundedLo <= got.Value && got.Value <= boundedHi,
	}
}

func matchText(modelAnswer, correctAnswer string) Triple {
	eq := strings.EqualFold(modelAnswer, correctAnswer)
	return Triple{Correct: eq, LenientCorrect: eq, LenientCorrectBounded: eq}
}

// window orders two endpoints so negative gold values produce a valid
// interval.
func window(a, b float64) (float64, float64) {
	return math.Min(a, b), math.Max(a, b)
}

// FormatValue renders a numeric answer compactly for reports.
func FormatValue(n Number) string {
	if !n.OK {
		return "NaN"
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}
