package dataset

import (
	"fmt"
	"path/filepath"
)

// Layout resolves file paths under the consolidated dataset root:
//
//	<root>/SourceQuestion/<dataset>/<split>.jsonl
//	<root>/ModelRawOutput/<model>/<dataset>/<split>/<seed>.jsonl
//	<root>/ModelProcessedOutput/<model>/<dataset>/<split>/<seed>.jsonl
type Layout struct {
	Root string
}

// QuestionSource returns the question file for a split.
func (l Layout) QuestionSource(s Split) string {
	return filepath.Join(l.Root, "SourceQuestion", string(s.Dataset()), string(s)+".jsonl")
}

// RawOutputs returns the raw output file of one (model, split, seed) cell.
func (l Layout) RawOutputs(m Model, s Split, seed int) string {
	return l.cellPath("ModelRawOutput", m, s, seed)
}

// ProcessedOutputs returns the processed output file of one
// (model, split, seed) cell.
func (l Layout) ProcessedOutputs(m Model, s Split, seed int) string {
	return l.cellPath("ModelProcessedOutput", m, s, seed)
}

func (l Layout) cellPath(kind string, m Model, s Split, seed int) string {
	return filepath.Join(l.Root, kind, string(m), string(s.Dataset()), string(s), fmt.Sprintf("%d.jsonl", seed))
}
