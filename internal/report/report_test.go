package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/chartqa-eval/internal/pipeline"
	"github.com/abhisek/chartqa-eval/internal/ui/components"
)

func summaries() []pipeline.CellSummary {
	zero, one := 0, 1
	return []pipeline.CellSummary{
		{Model: "GPT4", Split: "bar", Seed: &zero, Seeds: 1, Records: 10, Correct: 0.5, Lenient: 0.6, LenientBounded: 0.7, NotProvided: 1},
		{Model: "GPT4", Split: "bar", Seed: &one, Seeds: 1, Records: 10, Correct: 0.3, Lenient: 0.4, LenientBounded: 0.5},
		{Model: "GPT4", Split: "bar", Seeds: 2, Records: 20, Correct: 0.4, Lenient: 0.5, LenientBounded: 0.6, NotProvided: 1},
	}
}

func TestTable_AveragesOnly(t *testing.T) {
	out := ansi.Strip(Table(summaries(), Options{Title: "Synthetic"}))

	assert.True(t, strings.HasPrefix(out, "Synthetic\n"))
	assert.Contains(t, out, "Bounded accuracy")
	assert.Contains(t, out, "avg")
	assert.Contains(t, out, "40.0%")
	assert.Contains(t, out, "60.0%")
	assert.NotContains(t, out, "70.0%", "per-seed rows are hidden")
}

func TestTable_PerSeed(t *testing.T) {
	out := ansi.Strip(Table(summaries(), Options{PerSeed: true}))

	assert.Contains(t, out, "70.0%")
	assert.Contains(t, out, "30.0%")
	assert.Less(t, strings.Index(out, "70.0%"), strings.Index(out, "avg"))
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil, Options{}))
	assert.Contains(t, buf.String(), "No processed records found.")

	buf.Reset()
	require.NoError(t, Write(&buf, summaries(), Options{}))
	assert.Contains(t, ansi.Strip(buf.String()), "GPT4")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, summaries()))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, 0.0, got[0]["seed"])
	assert.NotContains(t, got[2], "seed")
	assert.Equal(t, 0.6, got[2]["lenient_correct_bounded"])

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "0.0%", Percent(0))
	assert.Equal(t, "62.5%", Percent(0.625))
	assert.Equal(t, "100.0%", Percent(1))
}

func TestAccuracyBar(t *testing.T) {
	bar := ansi.Strip(components.NewAccuracyBar(0.5, false, 10).View())
	assert.Equal(t, "█████░░░░░", bar)

	bar = ansi.Strip(components.NewAccuracyBar(1.2, true, 11).View())
	assert.Equal(t, "████ 120.0%", bar)

	bar = ansi.Strip(components.NewAccuracyBar(-1, false, 2).View())
	assert.Equal(t, "░░░░", bar)
}
