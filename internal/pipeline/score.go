package pipeline

import (
	"fmt"
	"slices"

	"github.com/abhisek/chartqa-eval/internal/answer"
	"github.com/abhisek/chartqa-eval/internal/dataset"
	"github.com/abhisek/chartqa-eval/internal/records"
)

// Aggregate reads every processed file of dataset d, in model, split and
// seed order. Cells that were never produced are skipped; any other missing
// file is an error.
func Aggregate(layout dataset.Layout, d dataset.Name) ([]records.ProcessedRecord, error) {
	var all []records.ProcessedRecord
	for _, m := range dataset.Models() {
		for _, s := range d.Splits() {
			if dataset.Skipped(m, s) {
				continue
			}
			for _, seed := range dataset.Seeds {
				recs, err := records.ReadProcessed(layout.ProcessedOutputs(m, s, seed))
				if err != nil {
					return nil, fmt.Errorf("aggregate %s: %w", d, err)
				}
				all = append(all, recs...)
			}
		}
	}
	return all, nil
}

// CellSummary holds accuracy figures for one (model, split, seed) cell, or
// for a (model, split) pair averaged over its seeds when Seed is nil.
// Accuracies are fractions in [0, 1].
type CellSummary struct {
	Model   string `json:"model"`
	Split   string `json:"split"`
	Seed    *int   `json:"seed,omitempty"`
	Seeds   int    `json:"seeds"`
	Records int    `json:"records"`

	Correct        float64 `json:"correct"`
	Lenient        float64 `json:"lenient_correct"`
	LenientBounded float64 `json:"lenient_correct_bounded"`

	// NotProvided counts records whose formatted output held no answer
	// sentence.
	NotProvided int `json:"answer_not_provided"`
}

// IsAverage reports whether the summary spans all seeds of its pair.
func (c CellSummary) IsAverage() bool { return c.Seed == nil }

type tally struct {
	records, correct, lenient, bounded, notProvided int
}

func (t *tally) add(rec records.ProcessedRecord) {
	t.records++
	if answer.Extract(rec.ModelFormattedOutput) == answer.NotProvided {
		t.notProvided++
	}
	tr := answer.Classify(rec)
	if tr.Correct {
		t.correct++
	}
	if tr.LenientCorrect {
		t.lenient++
	}
	if tr.LenientCorrectBounded {
		t.bounded++
	}
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

type pairKey struct {
	model, split string
}

type cellKey struct {
	pairKey
	seed int
}

// Score classifies every record and summarizes the results. For each
// (model, split) pair it returns one summary per seed in ascending seed
// order followed by the mean of those per-seed accuracies. Pairs follow the
// catalog order of models and splits; unknown names sort after known ones.
func Score(recs []records.ProcessedRecord) []CellSummary {
	cells := make(map[cellKey]*tally)
	seeds := make(map[pairKey][]int)
	for _, rec := range recs {
		k := cellKey{pairKey{rec.ModelName, rec.Split}, rec.Seed}
		t, ok := cells[k]
		if !ok {
			t = &tally{}
			cells[k] = t
			seeds[k.pairKey] = append(seeds[k.pairKey], rec.Seed)
		}
		t.add(rec)
	}

	pairs := make([]pairKey, 0, len(seeds))
	for p := range seeds {
		pairs = append(pairs, p)
	}
	slices.SortFunc(pairs, comparePairs)

	var out []CellSummary
	for _, p := range pairs {
		ss := seeds[p]
		slices.Sort(ss)

		avg := CellSummary{Model: p.model, Split: p.split, Seeds: len(ss)}
		for _, seed := range ss {
			t := cells[cellKey{p, seed}]
			c := CellSummary{
				Model:          p.model,
				Split:          p.split,
				Seed:           &seed,
				Seeds:          1,
				Records:        t.records,
				Correct:        ratio(t.correct, t.records),
				Lenient:        ratio(t.lenient, t.records),
				LenientBounded: ratio(t.bounded, t.records),
				NotProvided:    t.notProvided,
			}
			out = append(out, c)

			avg.Records += c.Records
			avg.NotProvided += c.NotProvided
			avg.Correct += c.Correct
			avg.Lenient += c.Lenient
			avg.LenientBounded += c.LenientBounded
		}
		n := float64(len(ss))
		avg.Correct /= n
		avg.Lenient /= n
		avg.LenientBounded /= n
		out = append(out, avg)
	}
	return out
}

// Averages keeps only the per-pair summaries.
func Averages(summaries []CellSummary) []CellSummary {
	var out []CellSummary
	for _, s := range summaries {
		if s.IsAverage() {
			out = append(out, s)
		}
	}
	return out
}

func comparePairs(a, b pairKey) int {
	if c := compareRank(modelRank(a.model), modelRank(b.model), a.model, b.model); c != 0 {
		return c
	}
	return compareRank(splitRank(a.split), splitRank(b.split), a.split, b.split)
}

func compareRank(ra, rb int, a, b string) int {
	if ra != rb {
		return ra - rb
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func modelRank(name string) int {
	if i := slices.Index(dataset.Models(), dataset.Model(name)); i >= 0 {
		return i
	}
	return len(dataset.Models())
}

func splitRank(name string) int {
	if i := slices.Index(dataset.Splits(), dataset.Split(name)); i >= 0 {
		return i
	}
	return len(dataset.Splits())
}
