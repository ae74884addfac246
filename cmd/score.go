package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/chartqa-eval/internal/dataset"
	"github.com/abhisek/chartqa-eval/internal/pipeline"
	"github.com/abhisek/chartqa-eval/internal/report"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score processed results and report accuracy per model and split",
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := datasetNames(cmd)
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")
		perSeed, _ := cmd.Flags().GetBool("per-seed")

		var all []pipeline.CellSummary
		for i, d := range names {
			recs, err := pipeline.Aggregate(cfg.Layout(), d)
			if err != nil {
				return err
			}
			summaries := pipeline.Score(recs)
			if asJSON {
				all = append(all, summaries...)
				continue
			}
			if i > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			if err := report.Write(cmd.OutOrStdout(), summaries, report.Options{Title: string(d), PerSeed: perSeed}); err != nil {
				return err
			}
		}

		if asJSON {
			return report.WriteJSON(cmd.OutOrStdout(), all)
		}
		return nil
	},
}

func datasetNames(cmd *cobra.Command) ([]dataset.Name, error) {
	name, _ := cmd.Flags().GetString("dataset")
	if name == "" || name == "all" {
		return dataset.Names(), nil
	}
	d, err := dataset.ParseName(name)
	if err != nil {
		return nil, err
	}
	return []dataset.Name{d}, nil
}

func init() {
	scoreCmd.Flags().StringP("dataset", "d", "all", "Dataset to score: Synthetic, ChartQA or all")
	scoreCmd.Flags().Bool("json", false, "Emit summaries as JSON")
	scoreCmd.Flags().Bool("per-seed", false, "Show one row per seed as well as the seed average")
}
