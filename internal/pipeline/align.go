package pipeline

import (
	"fmt"
	"strings"

	"github.com/abhisek/chartqa-eval/internal/records"
)

// maxReportedProblems caps the problems spelled out in an AlignmentError
// message. All of them stay available in Problems.
const maxReportedProblems = 3

// AlignmentError reports a raw output file that cannot be paired one to one
// with its question source.
type AlignmentError struct {
	Raw       string
	Questions string
	Problems  []string
}

func (e *AlignmentError) Error() string {
	shown := e.Problems
	suffix := ""
	if len(shown) > maxReportedProblems {
		suffix = fmt.Sprintf(" (and %d more)", len(shown)-maxReportedProblems)
		shown = shown[:maxReportedProblems]
	}
	return fmt.Sprintf("%s does not align with %s: %s%s", e.Raw, e.Questions, strings.Join(shown, "; "), suffix)
}

// align pairs every raw row with its question by id. The returned slice is
// parallel to raws. Row counts must agree, ids must be unique on both sides
// and every raw question text must equal the source text.
func align(rawPath, questionPath string, raws []records.RawModelOutput, questions []records.Question) ([]records.Question, error) {
	var problems []string

	if len(raws) != len(questions) {
		problems = append(problems, fmt.Sprintf("raw output has %d rows, question source has %d", len(raws), len(questions)))
	}

	byID := make(map[string]records.Question, len(questions))
	for _, q := range questions {
		if _, dup := byID[q.ID.String()]; dup {
			problems = append(problems, fmt.Sprintf("duplicate question id %s in question source", q.ID))
			continue
		}
		byID[q.ID.String()] = q
	}

	paired := make([]records.Question, len(raws))
	seen := make(map[string]bool, len(raws))
	for i, r := range raws {
		id := r.ID.String()
		if seen[id] {
			problems = append(problems, fmt.Sprintf("duplicate question id %s", r.ID))
			continue
		}
		seen[id] = true

		q, ok := byID[id]
		if !ok {
			problems = append(problems, fmt.Sprintf("question id %s not in question source", r.ID))
			continue
		}
		if q.Text != r.Question {
			problems = append(problems, fmt.Sprintf("question %s: text differs from question source", r.ID))
		}
		paired[i] = q
	}

	if len(problems) > 0 {
		return nil, &AlignmentError{Raw: rawPath, Questions: questionPath, Problems: problems}
	}
	return paired, nil
}
