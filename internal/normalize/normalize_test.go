package normalize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/chartqa-eval/internal/dataset"
	"github.com/abhisek/chartqa-eval/internal/llm"
	"github.com/abhisek/chartqa-eval/internal/records"
)

type fakeCompleter struct {
	reply    string
	err      error
	prompts  []string
	purposes []string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.purposes = append(f.purposes, llm.PurposeFrom(ctx))
	return f.reply, f.err
}

func TestPassthrough(t *testing.T) {
	for _, m := range []dataset.Model{dataset.GPT4, dataset.GeminiPro} {
		n, err := For(m, nil)
		require.NoError(t, err)

		in := " The answer is 12. I hope the answer is correct "
		got, err := n.Normalize(context.Background(), "q", records.Text(in))
		require.NoError(t, err)
		assert.Equal(t, in, got)
	}
}

func TestPrompted_RendersFamilyExemplars(t *testing.T) {
	fc := &fakeCompleter{reply: " The answer is 11. I hope the answer is correct."}
	n, err := For(dataset.CogVLM, fc)
	require.NoError(t, err)

	got, err := n.Normalize(context.Background(), "How many bars?", records.Text("There are 11 bars.</s>"))
	require.NoError(t, err)
	assert.Equal(t, fc.reply, got, "completion text is returned verbatim")

	require.Len(t, fc.prompts, 1)
	prompt := fc.prompts[0]
	assert.True(t, strings.HasPrefix(prompt, "Extract the concise answer"))
	assert.Contains(t, prompt, `"The answer is ANS. I hope the answer is correct."`)
	assert.Contains(t, prompt, "Example 3:\nQuestion: \"What is the colour of India in the graph?\"")
	assert.NotContains(t, prompt, "Example 4:")
	assert.Contains(t, prompt, "Extracted Answer: The answer is orange. I hope the answer is correct.")
	assert.True(t, strings.HasSuffix(prompt, "Question: \"How many bars?\"\nModel Answer: \"There are 11 bars.</s>\"\nExtracted Answer:"))
	assert.Equal(t, []string{"answer-extraction"}, fc.purposes)
}

func TestPrompted_ChartLlamaSharesSentenceExemplars(t *testing.T) {
	ps, err := LoadPrompts()
	require.NoError(t, err)

	cog, ok := ps.Family("CogVLM")
	require.True(t, ok)
	llama, ok := ps.Family("ChartLlama")
	require.True(t, ok)
	assert.Equal(t, cog, llama)

	pali, ok := ps.Family("Pali")
	require.True(t, ok)
	assert.Len(t, pali, 4)
	assert.Equal(t, "three", pali[1].Answer)
}

func TestListUnwrap(t *testing.T) {
	tests := []struct {
		name string
		raw  records.RawOutput
		want string
	}{
		{"first candidate", records.Candidates([]string{"<extra_id_0> 3", "<extra_id_0> 4"}), `Model Answer: "<extra_id_0> 3"`},
		{"empty list", records.Candidates(nil), `Model Answer: ""`},
		{"text", records.Text("<extra_id_0> Italy"), `Model Answer: "<extra_id_0> Italy"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeCompleter{reply: "The answer is 3. I hope the answer is correct."}
			n, err := For(dataset.Pali, fc)
			require.NoError(t, err)

			_, err = n.Normalize(context.Background(), "How many?", tt.raw)
			require.NoError(t, err)
			require.Len(t, fc.prompts, 1)
			assert.Contains(t, fc.prompts[0], tt.want)
			assert.Contains(t, fc.prompts[0], "Example 4:")
		})
	}
}

func TestPrompted_CompletionErrorPropagates(t *testing.T) {
	boom := &llm.ErrProviderUnavailable{Provider: "openai", Err: errors.New("down")}
	n, err := For(dataset.ChartLlama, &fakeCompleter{err: boom})
	require.NoError(t, err)

	_, err = n.Normalize(context.Background(), "q", records.Text("a"))
	require.Error(t, err)

	var pu *llm.ErrProviderUnavailable
	assert.True(t, errors.As(err, &pu))
}

func TestFor_Errors(t *testing.T) {
	for _, m := range []dataset.Model{dataset.CogVLM, dataset.ChartLlama, dataset.Pali} {
		_, err := For(m, nil)
		assert.ErrorIs(t, err, ErrNoCompleter, string(m))
		assert.True(t, RequiresCompleter(m))
	}

	_, err := For(dataset.Model("Llava"), &fakeCompleter{})
	assert.ErrorContains(t, err, "unknown model")
	assert.False(t, RequiresCompleter(dataset.GPT4))
}

func TestParsePrompts(t *testing.T) {
	_, err := ParsePrompts([]byte("instruction: x\ntask: y\nfamilies:\n  empty: []\n"))
	assert.ErrorContains(t, err, `family "empty" has no exemplars`)

	_, err = ParsePrompts([]byte("families: {}\n"))
	assert.ErrorContains(t, err, "instruction and task are required")

	ps, err := ParsePrompts([]byte("instruction: x\ntask: y\nfamilies:\n  m:\n    - {question: q, model_answer: a, answer: b}\n"))
	require.NoError(t, err)
	_, err = ps.BuildPrompt("other", "q", "a")
	assert.Error(t, err)
}
