package pipeline

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/abhisek/chartqa-eval/internal/dataset"
	"github.com/abhisek/chartqa-eval/internal/records"
)

// Issue is one problem found in the dataset layout.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return i.Path + ": " + i.Message
}

// Scope narrows what Validate inspects. Zero fields mean everything.
type Scope struct {
	Models    []dataset.Model
	Splits    []dataset.Split
	Seeds     []int
	Processed bool // also check processed files that exist
}

func (s Scope) models() []dataset.Model {
	if len(s.Models) == 0 {
		return dataset.Models()
	}
	return s.Models
}

func (s Scope) splits() []dataset.Split {
	if len(s.Splits) == 0 {
		return dataset.Splits()
	}
	return s.Splits
}

func (s Scope) seeds() []int {
	if len(s.Seeds) == 0 {
		return dataset.Seeds
	}
	return s.Seeds
}

// Validate checks the question sources and raw outputs under layout:
// every file exists and parses against its row schema, identifiers are
// unique, raw rows pair one to one with their questions, outputs are not
// blank and no two raw files are byte-identical. Issues come back in
// traversal order; an empty result means the layout is sound.
func Validate(layout dataset.Layout, scope Scope) []Issue {
	var issues []Issue
	report := func(path, format string, args ...any) {
		issues = append(issues, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	questions := make(map[dataset.Split][]records.Question)
	for _, s := range scope.splits() {
		path := layout.QuestionSource(s)
		qs, ok := validateQuestions(path, s.Dataset(), report)
		if ok {
			questions[s] = qs
		}
	}

	digests := rawDigests(layout)

	for _, m := range scope.models() {
		for _, s := range scope.splits() {
			if dataset.Skipped(m, s) {
				continue
			}
			for _, seed := range scope.seeds() {
				path := layout.RawOutputs(m, s, seed)
				if !fileExists(path) {
					report(path, "raw output file does not exist")
					continue
				}
				for _, dup := range duplicates(digests, m, s, seed) {
					report(path, "content is identical to %s", layout.RawOutputs(dup.Model, dup.Split, dup.Seed))
				}

				raws, ok := validateRaw(path, m, s, report)
				if !ok {
					continue
				}
				qs, haveQuestions := questions[s]
				if haveQuestions {
					if _, err := align(path, layout.QuestionSource(s), raws, qs); err != nil {
						reportAlignment(path, err, report)
					}
				}

				if scope.Processed {
					validateProcessed(layout.ProcessedOutputs(m, s, seed), raws, report)
				}
			}
		}
	}
	return issues
}

type reporter func(path, format string, args ...any)

func validateQuestions(path string, d dataset.Name, report reporter) ([]records.Question, bool) {
	if !fileExists(path) {
		report(path, "question source does not exist")
		return nil, false
	}
	qs, err := records.ReadQuestions(path, d)
	if err != nil {
		report(path, "%v", unwrapRow(err))
		return nil, false
	}
	if len(qs) == 0 {
		report(path, "question source is empty")
		return nil, false
	}

	seen := make(map[string]bool, len(qs))
	for _, q := range qs {
		if seen[q.ID.String()] {
			report(path, "duplicate q_id %s", q.ID)
		}
		seen[q.ID.String()] = true
	}
	return qs, true
}

func validateRaw(path string, m dataset.Model, s dataset.Split, report reporter) ([]records.RawModelOutput, bool) {
	raws, err := records.ReadRawOutputs(path, m, s.Dataset())
	if err != nil {
		report(path, "%v", unwrapRow(err))
		return nil, false
	}

	blank := 0
	for _, r := range raws {
		if strings.TrimSpace(r.Output.String()) == "" {
			blank++
		}
	}
	// Candidate-list models only need one usable answer per file.
	if m == dataset.Pali {
		if blank == len(raws) {
			report(path, "every model output is empty")
		}
	} else if blank > 0 {
		report(path, "%d empty model outputs", blank)
	}
	return raws, true
}

func validateProcessed(path string, raws []records.RawModelOutput, report reporter) {
	if !fileExists(path) {
		return
	}
	recs, err := records.ReadProcessed(path)
	if err != nil {
		report(path, "%v", unwrapRow(err))
		return
	}
	if len(recs) != len(raws) {
		report(path, "processed file has %d rows, raw output has %d", len(recs), len(raws))
		return
	}
	for i, rec := range recs {
		if rec.QuestionID.String() != raws[i].ID.String() || rec.Question != raws[i].Question {
			report(path, "row %d does not match raw question %s", i+1, raws[i].ID)
			return
		}
	}
}

func reportAlignment(path string, err error, report reporter) {
	var ae *AlignmentError
	if !errors.As(err, &ae) {
		report(path, "%v", err)
		return
	}
	for _, p := range ae.Problems {
		report(path, "%s", p)
	}
}

// unwrapRow drops the path prefix a RowError carries, since the issue
// already names the file.
func unwrapRow(err error) string {
	var re *records.RowError
	if errors.As(err, &re) {
		return fmt.Sprintf("line %d: %v", re.Line, re.Err)
	}
	return err.Error()
}

// rawDigests hashes every raw output file that exists under layout,
// regardless of scope, so duplicates are found across the whole tree.
func rawDigests(layout dataset.Layout) map[Unit][sha256.Size]byte {
	out := make(map[Unit][sha256.Size]byte)
	for _, m := range dataset.Models() {
		for _, s := range dataset.Splits() {
			for _, seed := range dataset.Seeds {
				b, err := os.ReadFile(layout.RawOutputs(m, s, seed))
				if err != nil {
					continue
				}
				out[Unit{Model: m, Split: s, Seed: seed}] = sha256.Sum256(b)
			}
		}
	}
	return out
}

// duplicates lists the other cells whose raw file is byte-identical to the
// given one, apart from pairs known to coincide.
func duplicates(digests map[Unit][sha256.Size]byte, m dataset.Model, s dataset.Split, seed int) []Unit {
	self := Unit{Model: m, Split: s, Seed: seed}
	sum, ok := digests[self]
	if !ok {
		return nil
	}

	var out []Unit
	for _, om := range dataset.Models() {
		for _, osplit := range dataset.Splits() {
			for _, oseed := range dataset.Seeds {
				other := Unit{Model: om, Split: osplit, Seed: oseed}
				if other == self || knownDuplicate(self, other) {
					continue
				}
				if d, ok := digests[other]; ok && d == sum {
					out = append(out, other)
				}
			}
		}
	}
	return out
}

// knownDuplicate reports pairs of cells whose identical content is
// expected: ChartLlama's bar seeds 0 and 3 were produced by the same run,
// and Pali scatter cells never exist.
func knownDuplicate(a, b Unit) bool {
	if a.Model == dataset.ChartLlama && b.Model == dataset.ChartLlama && a.Split == dataset.Bar &&
		isSeed03(a.Seed) && isSeed03(b.Seed) {
		return true
	}
	return b.Model == dataset.Pali && b.Split == dataset.Scatter
}

func isSeed03(seed int) bool { return seed == 0 || seed == 3 }

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
