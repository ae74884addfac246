package answer

import (
	"strings"

	"github.com/abhisek/chartqa-eval/internal/dataset"
)

// pieTolerance is the absolute window for pie questions, in percentage
// points.
const pieTolerance = 5

// ResolveTolerance returns the absolute tolerance window for a question of
// the given split and type, derived from the chart's axis ranges. It
// reports false when the split has no dataset-specific tolerance.
func ResolveTolerance(split dataset.Split, questionType string, xRange, yRange float64) (float64, bool) {
	switch split {
	case dataset.Bar:
		if strings.Contains(questionType, "count") {
			return 0.05 * xRange, true
		}
		return 0.05 * yRange, true
	case dataset.Pie:
		return pieTolerance, true
	case dataset.Scatter:
		switch {
		case strings.Contains(questionType, "x_"):
			return 0.05 * xRange, true
		case strings.Contains(questionType, "y_"):
			return 0.05 * yRange, true
		}
	}
	return 0, false
}
