// Package pipeline turns raw model outputs into processed records, checks
// the dataset layout and scores processed results.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/chartqa-eval/internal/dataset"
	"github.com/abhisek/chartqa-eval/internal/llm"
	"github.com/abhisek/chartqa-eval/internal/normalize"
	"github.com/abhisek/chartqa-eval/internal/records"
)

// DefaultWorkers is the normalization concurrency when none is configured.
const DefaultWorkers = 4

// Unit identifies one (model, split, seed) cell.
type Unit struct {
	Model dataset.Model
	Split dataset.Split
	Seed  int
}

func (u Unit) String() string {
	return fmt.Sprintf("%s/%s/%d", u.Model, u.Split, u.Seed)
}

// UnitResult describes a processed unit.
type UnitResult struct {
	Unit     Unit
	RunID    string
	Rows     int
	Output   string
	Duration time.Duration
}

// Processor normalizes raw outputs and writes processed files.
type Processor struct {
	layout    dataset.Layout
	completer normalize.Completer
	workers   int
	logger    *slog.Logger
}

// Options configures a Processor. Completer may be nil when only models
// without a prompted normalizer are processed.
type Options struct {
	Completer normalize.Completer
	Workers   int
	Logger    *slog.Logger
}

// NewProcessor creates a Processor over layout.
func NewProcessor(layout dataset.Layout, opts Options) *Processor {
	p := &Processor{
		layout:    layout,
		completer: opts.Completer,
		workers:   opts.Workers,
		logger:    opts.Logger,
	}
	if p.workers < 1 {
		p.workers = DefaultWorkers
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// ProcessUnit reads the raw outputs of one cell, normalizes every row and
// writes the processed file. Rows keep their input order. A failing row
// aborts the unit and nothing is written.
func (p *Processor) ProcessUnit(ctx context.Context, m dataset.Model, s dataset.Split, seed int) (*UnitResult, error) {
	unit := Unit{Model: m, Split: s, Seed: seed}
	start := time.Now()

	d := s.Dataset()
	if d == "" {
		return nil, fmt.Errorf("%s: unknown split %q", unit, s)
	}

	norm, err := normalize.For(m, p.completer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", unit, err)
	}

	questionPath := p.layout.QuestionSource(s)
	questions, err := records.ReadQuestions(questionPath, d)
	if err != nil {
		return nil, fmt.Errorf("%s: read questions: %w", unit, err)
	}

	rawPath := p.layout.RawOutputs(m, s, seed)
	raws, err := records.ReadRawOutputs(rawPath, m, d)
	if err != nil {
		return nil, fmt.Errorf("%s: read raw outputs: %w", unit, err)
	}

	paired, err := align(rawPath, questionPath, raws, questions)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", unit, err)
	}

	runID := uuid.NewString()
	ctx = llm.WithRunID(ctx, runID)
	p.logger.Info("processing unit", "unit", unit.String(), "rows", len(raws), "run_id", runID)

	out := make([]records.ProcessedRecord, len(raws))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := range raws {
		g.Go(func() error {
			raw := raws[i]
			formatted, err := norm.Normalize(gctx, raw.Question, raw.Output)
			if err != nil {
				return fmt.Errorf("question %s: %w", raw.ID, err)
			}
			out[i] = processedRecord(unit, raw, paired[i], strings.TrimSpace(formatted))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", unit, err)
	}

	outPath := p.layout.ProcessedOutputs(m, s, seed)
	if err := records.WriteProcessed(outPath, out); err != nil {
		return nil, fmt.Errorf("%s: %w", unit, err)
	}

	res := &UnitResult{
		Unit:     unit,
		RunID:    runID,
		Rows:     len(out),
		Output:   outPath,
		Duration: time.Since(start),
	}
	p.logger.Info("unit processed", "unit", unit.String(), "rows", res.Rows, "output", outPath, "duration", res.Duration)
	return res, nil
}

// ProcessAll processes every combination of models, splits and seeds in
// that order. Cells that were never produced are skipped. The first failing
// unit stops the run; results of the units finished before it are returned.
func (p *Processor) ProcessAll(ctx context.Context, models []dataset.Model, splits []dataset.Split, seeds []int) ([]UnitResult, error) {
	var results []UnitResult
	for _, m := range models {
		for _, s := range splits {
			if dataset.Skipped(m, s) {
				p.logger.Info("skipping missing cell", "model", string(m), "split", string(s))
				continue
			}
			for _, seed := range seeds {
				if err := ctx.Err(); err != nil {
					return results, err
				}
				res, err := p.ProcessUnit(ctx, m, s, seed)
				if err != nil {
					return results, err
				}
				results = append(results, *res)
			}
		}
	}
	return results, nil
}

func processedRecord(u Unit, raw records.RawModelOutput, q records.Question, formatted string) records.ProcessedRecord {
	rec := records.ProcessedRecord{
		ModelName:            string(u.Model),
		Split:                string(u.Split),
		Seed:                 u.Seed,
		QuestionID:           raw.ID,
		Question:             raw.Question,
		CorrectAnswer:        q.GoldAnswer,
		ModelRawOutput:       raw.Output.String(),
		ModelFormattedOutput: formatted,
		FigureID:             q.FigureID,
	}
	if q.Synthetic {
		qt, x, y := q.QuestionType, q.XRange, q.YRange
		rec.QuestionType = &qt
		rec.XRange = &x
		rec.YRange = &y
	}
	return rec
}
