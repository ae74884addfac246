package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/chartqa-eval/internal/dataset"
	"github.com/abhisek/chartqa-eval/internal/pipeline"
)

// addSelectionFlags registers the repeatable --model, --split and --seed
// flags. Each accepts "all".
func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("model", "m", []string{"all"}, "Model(s) to include: GPT4, GeminiPro, ChartLlama, CogVLM, Pali or all")
	cmd.Flags().StringSliceP("split", "s", []string{"all"}, "Split(s) to include: bar, scatter, pie, additional, original or all")
	cmd.Flags().StringSlice("seed", []string{"all"}, "Seed(s) to include: 0-4 or all")
}

// selection reads the selection flags into a validation scope.
func selection(cmd *cobra.Command) (pipeline.Scope, error) {
	var scope pipeline.Scope

	models, _ := cmd.Flags().GetStringSlice("model")
	if !isAll(models) {
		for _, name := range models {
			m, err := dataset.ParseModel(name)
			if err != nil {
				return scope, err
			}
			scope.Models = append(scope.Models, m)
		}
	}

	splits, _ := cmd.Flags().GetStringSlice("split")
	if !isAll(splits) {
		for _, name := range splits {
			s, err := dataset.ParseSplit(name)
			if err != nil {
				return scope, err
			}
			scope.Splits = append(scope.Splits, s)
		}
	}

	seeds, _ := cmd.Flags().GetStringSlice("seed")
	if !isAll(seeds) {
		for _, raw := range seeds {
			seed, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil || seed < 0 {
				return scope, fmt.Errorf("invalid seed %q", raw)
			}
			scope.Seeds = append(scope.Seeds, seed)
		}
	}
	return scope, nil
}

func isAll(values []string) bool {
	if len(values) == 0 {
		return true
	}
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), "all") {
			return true
		}
	}
	return false
}
