package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/chartqa-eval/internal/dataset"
	"github.com/abhisek/chartqa-eval/internal/records"
)

func rec(model, split string, seed int, formatted, gold string) records.ProcessedRecord {
	r := records.ProcessedRecord{
		ModelName:            model,
		Split:                split,
		Seed:                 seed,
		CorrectAnswer:        gold,
		ModelFormattedOutput: formatted,
	}
	if dataset.Split(split).Dataset() == dataset.Synthetic {
		qt, x, y := "count_bars", 10.0, 100.0
		r.QuestionType, r.XRange, r.YRange = &qt, &x, &y
	}
	return r
}

func sentence(ans string) string {
	return "The answer is " + ans + ". I hope the answer is correct."
}

func TestScore(t *testing.T) {
	recs := []records.ProcessedRecord{
		rec("GPT4", "bar", 1, sentence("5"), "5"),
		rec("GPT4", "bar", 0, sentence("5"), "5"),
		rec("GPT4", "bar", 0, "I cannot tell.", "3"),
		rec("GPT4", "bar", 0, sentence("5.2"), "5"),
		rec("GPT4", "bar", 0, sentence("5.4"), "5"),
	}

	got := Score(recs)
	require.Len(t, got, 3)

	seed0, seed1, avg := got[0], got[1], got[2]

	require.NotNil(t, seed0.Seed)
	assert.Equal(t, 0, *seed0.Seed)
	assert.Equal(t, 4, seed0.Records)
	assert.Equal(t, 1, seed0.NotProvided)
	assert.InDelta(t, 0.25, seed0.Correct, 1e-9)
	// 5.2 is within 5% of 5; 5.4 is not, but both are inside the count
	// window of 0.05 * x_range = 0.5.
	assert.InDelta(t, 0.5, seed0.Lenient, 1e-9)
	assert.InDelta(t, 0.75, seed0.LenientBounded, 1e-9)

	require.NotNil(t, seed1.Seed)
	assert.Equal(t, 1, *seed1.Seed)
	assert.InDelta(t, 1.0, seed1.Correct, 1e-9)

	assert.True(t, avg.IsAverage())
	assert.Equal(t, 2, avg.Seeds)
	assert.Equal(t, 5, avg.Records)
	assert.Equal(t, 1, avg.NotProvided)
	assert.InDelta(t, 0.625, avg.Correct, 1e-9)
	assert.InDelta(t, 0.75, avg.Lenient, 1e-9)
	assert.InDelta(t, 0.875, avg.LenientBounded, 1e-9)
}

func TestScore_Order(t *testing.T) {
	recs := []records.ProcessedRecord{
		rec("Zeta", "bar", 0, sentence("1"), "1"),
		rec("CogVLM", "pie", 0, sentence("1"), "1"),
		rec("GPT4", "original", 0, sentence("Italy"), "italy"),
		rec("GPT4", "bar", 0, sentence("1"), "1"),
	}

	var pairs []string
	for _, s := range Averages(Score(recs)) {
		pairs = append(pairs, s.Model+"/"+s.Split)
	}
	assert.Equal(t, []string{"GPT4/bar", "GPT4/original", "CogVLM/pie", "Zeta/bar"}, pairs)
}

func TestScore_Empty(t *testing.T) {
	assert.Empty(t, Score(nil))
}

func TestAggregate(t *testing.T) {
	layout := dataset.Layout{Root: t.TempDir()}
	for _, m := range dataset.Models() {
		for _, s := range dataset.ChartQA.Splits() {
			for _, seed := range dataset.Seeds {
				r := rec(string(m), string(s), seed, sentence("1"), "1")
				require.NoError(t, records.WriteProcessed(layout.ProcessedOutputs(m, s, seed), []records.ProcessedRecord{r}))
			}
		}
	}

	all, err := Aggregate(layout, dataset.ChartQA)
	require.NoError(t, err)
	assert.Len(t, all, len(dataset.Models())*2*len(dataset.Seeds))
	assert.Equal(t, "GPT4", all[0].ModelName)
	assert.Equal(t, "additional", all[0].Split)

	summaries := Averages(Score(all))
	assert.Len(t, summaries, len(dataset.Models())*2)
	for _, s := range summaries {
		assert.InDelta(t, 1.0, s.Correct, 1e-9, "%s/%s", s.Model, s.Split)
	}

	// Synthetic has no processed files at all.
	_, err = Aggregate(layout, dataset.Synthetic)
	assert.Error(t, err)
}
