package records

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/chartqa-eval/internal/dataset"
)

func writeLines(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rows.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestRawOutputString(t *testing.T) {
	assert.Equal(t, "hello", Text("hello").String())
	assert.Equal(t, "a", Candidates([]string{"a", "b"}).String())
	assert.Equal(t, "", Candidates(nil).String())
	assert.Equal(t, "", Candidates([]string{}).String())
	assert.Equal(t, "", RawOutput{}.String())

	assert.False(t, Text("x").IsCandidates())
	assert.True(t, Candidates(nil).IsCandidates())
}

func TestReadQuestions_Synthetic(t *testing.T) {
	path := writeLines(t,
		`{"q_id": 1, "question": "How many bars?", "gold_answer": "3", "figure_id": "f1", "question_type": "count_bars", "x_range": 40, "y_range": 10.5}`,
		``,
		`{"q_id": 2, "question": "Max value?", "gold_answer": 12.5, "figure_id": "f2", "question_type": "y_max", "x_range": 4, "y_range": 100}`,
	)

	qs, err := ReadQuestions(path, dataset.Synthetic)
	require.NoError(t, err)
	require.Len(t, qs, 2)

	assert.Equal(t, Question{
		ID: NumberID("1"), Text: "How many bars?", GoldAnswer: "3", FigureID: "f1",
		Synthetic: true, QuestionType: "count_bars", XRange: 40, YRange: 10.5,
	}, qs[0])
	assert.Equal(t, "12.5", qs[1].GoldAnswer)
}

func TestReadQuestions_NumericGoldAnswers(t *testing.T) {
	path := writeLines(t,
		`{"q_id": 1, "query": "a", "label": 1e2, "imgname": "1.png"}`,
		`{"q_id": 2, "query": "b", "label": 12.50, "imgname": "2.png"}`,
		`{"q_id": 3, "query": "c", "label": -0.25, "imgname": "3.png"}`,
		`{"q_id": 4, "query": "d", "label": 2.5E-3, "imgname": "4.png"}`,
		`{"q_id": 5, "query": "e", "label": "1e2", "imgname": "5.png"}`,
	)

	qs, err := ReadQuestions(path, dataset.ChartQA)
	require.NoError(t, err)
	require.Len(t, qs, 5)

	got := make([]string, len(qs))
	for i, q := range qs {
		got[i] = q.GoldAnswer
	}
	// Strings are kept verbatim.
	assert.Equal(t, []string{"100", "12.5", "-0.25", "0.0025", "1e2"}, got)
}

func TestReadQuestions_ChartQA(t *testing.T) {
	path := writeLines(t,
		`{"q_id": 7, "query": "Which country is highest?", "label": "Italy", "imgname": "123.png"}`,
	)

	qs, err := ReadQuestions(path, dataset.ChartQA)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, NumberID("7"), qs[0].ID)
	assert.Equal(t, "Italy", qs[0].GoldAnswer)
	assert.Equal(t, "123.png", qs[0].FigureID)
	assert.False(t, qs[0].Synthetic)
}

func TestReadQuestions_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"missing gold", `{"q_id": 1, "question": "q", "figure_id": "f", "question_type": "t", "x_range": 1, "y_range": 1}`},
		{"zero range", `{"q_id": 1, "question": "q", "gold_answer": "1", "figure_id": "f", "question_type": "t", "x_range": 0, "y_range": 1}`},
		{"negative range", `{"q_id": 1, "question": "q", "gold_answer": "1", "figure_id": "f", "question_type": "t", "x_range": 1, "y_range": -2}`},
		{"not json", `{"q_id": 1,`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeLines(t, tt.line)
			_, err := ReadQuestions(path, dataset.Synthetic)
			require.Error(t, err)

			var rowErr *RowError
			require.True(t, errors.As(err, &rowErr))
			assert.Equal(t, 1, rowErr.Line)
			assert.Equal(t, path, rowErr.Path)
		})
	}
}

func TestReadRawOutputs_Text(t *testing.T) {
	path := writeLines(t,
		`{"question_id": 1, "prompt": "How many bars?", "text": "There are 3 bars.</s>"}`,
	)

	rows, err := ReadRawOutputs(path, dataset.ChartLlama, dataset.Synthetic)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, NumberID("1"), rows[0].ID)
	assert.Equal(t, "How many bars?", rows[0].Question)
	assert.False(t, rows[0].Output.IsCandidates())
	assert.Equal(t, "There are 3 bars.</s>", rows[0].Output.String())
}

func TestReadRawOutputs_TextModelRejectsList(t *testing.T) {
	path := writeLines(t,
		`{"q_id": 1, "question": "q", "model_output": ["a"]}`,
	)
	_, err := ReadRawOutputs(path, dataset.GPT4, dataset.Synthetic)
	assert.Error(t, err)
}

func TestReadRawOutputs_PaliShapes(t *testing.T) {
	path := writeLines(t,
		`{"q_id": 1, "question": "q1", "model_answer": ["<extra_id_0> 3", "<extra_id_0> 4"]}`,
		`{"q_id": 2, "question": "q2", "model_answer": []}`,
		`{"q_id": 3, "question": "q3", "model_answer": null}`,
		`{"q_id": 4, "question": "q4"}`,
		`{"q_id": 5, "question": "q5", "model_answer": "<extra_id_0> Italy"}`,
	)

	rows, err := ReadRawOutputs(path, dataset.Pali, dataset.Synthetic)
	require.NoError(t, err)
	require.Len(t, rows, 5)

	assert.Equal(t, []string{"<extra_id_0> 3", "<extra_id_0> 4"}, rows[0].Output.CandidateList())
	assert.Equal(t, "<extra_id_0> 3", rows[0].Output.String())
	assert.Equal(t, "", rows[1].Output.String())
	assert.True(t, rows[2].Output.IsCandidates())
	assert.Equal(t, "", rows[3].Output.String())
	assert.False(t, rows[4].Output.IsCandidates())
	assert.Equal(t, "<extra_id_0> Italy", rows[4].Output.String())
}

func TestProcessedRoundTrip(t *testing.T) {
	qt := "count_bars"
	x, y := 40.0, 10.0
	recs := []ProcessedRecord{
		{
			ModelName: "CogVLM", Split: "bar", Seed: 2, QuestionID: NumberID("11"),
			Question: "How many bars?", CorrectAnswer: "3",
			ModelRawOutput: "There are 3 bars.", ModelFormattedOutput: "The answer is 3. I hope the answer is correct.",
			FigureID: "f1", QuestionType: &qt, XRange: &x, YRange: &y,
		},
		{
			ModelName: "CogVLM", Split: "original", Seed: 2, QuestionID: StringID("abc"),
			Question: "Which?", CorrectAnswer: "Italy", FigureID: "1.png",
		},
	}

	path := filepath.Join(t.TempDir(), "nested", "dir", "2.jsonl")
	require.NoError(t, WriteProcessed(path, recs))

	got, err := ReadProcessed(path)
	require.NoError(t, err)
	assert.Equal(t, recs, got)
}

func TestWriteProcessed_FieldOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "0.jsonl")
	require.NoError(t, WriteProcessed(path, []ProcessedRecord{{
		ModelName: "GPT4", Split: "original", Seed: 0, QuestionID: NumberID("5"),
		Question: "q", CorrectAnswer: "a", ModelRawOutput: "r", ModelFormattedOutput: "f", FigureID: "img",
	}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		`{"model_name":"GPT4","split":"original","seed":0,"question_id":5,"question":"q","correct_answer":"a","model_raw_output":"r","model_formatted_output":"f","figure_id":"img"}`+"\n",
		string(data))
}

func TestQuestionIDJSON(t *testing.T) {
	var id QuestionID
	require.NoError(t, json.Unmarshal([]byte(`42`), &id))
	assert.Equal(t, NumberID("42"), id)
	assert.True(t, id.IsNumber())

	require.NoError(t, json.Unmarshal([]byte(`"q-42"`), &id))
	assert.Equal(t, StringID("q-42"), id)
	assert.False(t, id.IsNumber())

	tests := []struct {
		id   QuestionID
		want string
	}{
		{NumberID("42"), `42`},
		{NumberID("-3"), `-3`},
		{StringID("q-42"), `"q-42"`},
		{StringID("12"), `"12"`},
		{StringID("007"), `"007"`},
		{StringID("+5"), `"+5"`},
		{NumberID("007"), `"007"`},
		{NumberID("+5"), `"+5"`},
		{NumberID(""), `""`},
	}
	for _, tt := range tests {
		b, err := json.Marshal(tt.id)
		require.NoError(t, err, tt.id.String())
		assert.Equal(t, tt.want, string(b), tt.id.String())
	}
}

func TestQuestionIDKeepsSourceKind(t *testing.T) {
	path := writeLines(t,
		`{"q_id": "007", "query": "Zero padded?", "label": "yes", "imgname": "a.png"}`,
		`{"q_id": "+5", "query": "Signed?", "label": "no", "imgname": "b.png"}`,
		`{"q_id": "12", "query": "Quoted digits?", "label": "1", "imgname": "c.png"}`,
		`{"q_id": 13, "query": "Bare number?", "label": "2", "imgname": "d.png"}`,
	)
	qs, err := ReadQuestions(path, dataset.ChartQA)
	require.NoError(t, err)
	require.Len(t, qs, 4)

	recs := make([]ProcessedRecord, len(qs))
	for i, q := range qs {
		recs[i] = ProcessedRecord{
			ModelName: "GPT4", Split: "original", QuestionID: q.ID,
			Question: q.Text, CorrectAnswer: q.GoldAnswer, FigureID: q.FigureID,
		}
	}

	out := filepath.Join(t.TempDir(), "0.jsonl")
	require.NoError(t, WriteProcessed(out, recs))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], `"question_id":"007"`)
	assert.Contains(t, lines[1], `"question_id":"+5"`)
	assert.Contains(t, lines[2], `"question_id":"12"`)
	assert.Contains(t, lines[3], `"question_id":13`)

	got, err := ReadProcessed(out)
	require.NoError(t, err)
	assert.Equal(t, recs, got)
}
