package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/chartqa-eval/internal/pipeline"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check question sources and raw outputs for consistency",
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, err := selection(cmd)
		if err != nil {
			return err
		}
		scope.Processed, _ = cmd.Flags().GetBool("processed")

		issues := pipeline.Validate(cfg.Layout(), scope)
		out := cmd.OutOrStdout()
		if len(issues) == 0 {
			fmt.Fprintln(out, "Dataset layout is valid.")
			return nil
		}
		for _, is := range issues {
			fmt.Fprintln(out, is)
		}
		return fmt.Errorf("%d issues found", len(issues))
	},
}

func init() {
	addSelectionFlags(validateCmd)
	validateCmd.Flags().Bool("processed", false, "Also check existing processed files against raw outputs")
}
