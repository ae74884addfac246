package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/chartqa-eval/internal/dataset"
	"github.com/abhisek/chartqa-eval/internal/llm"
	"github.com/abhisek/chartqa-eval/internal/normalize"
	"github.com/abhisek/chartqa-eval/internal/pipeline"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Normalize raw model outputs into processed result files",
	Long: "Reads ModelRawOutput files, turns every answer into the canonical\n" +
		"\"The answer is X. I hope the answer is correct.\" sentence and writes\n" +
		"ModelProcessedOutput files. CogVLM, ChartLlama and Pali answers are\n" +
		"extracted with a completion provider.",
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, err := selection(cmd)
		if err != nil {
			return err
		}
		models := orAll(scope.Models, dataset.Models())
		splits := orAll(scope.Splits, dataset.Splits())
		seeds := orAll(scope.Seeds, dataset.Seeds)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var completer normalize.Completer
		if slices.ContainsFunc(models, normalize.RequiresCompleter) {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			llmCfg := cfg.LLMConfig()
			stores := llm.Stores{Events: s.EventRepo()}
			if !cfg.NoCache {
				stores.Cache = s.CacheRepo()
			}
			provider, err := llm.NewProvider(ctx, llmCfg, stores)
			if err != nil {
				return fmt.Errorf("completion provider: %w", err)
			}
			slog.Debug("completion provider ready", "provider", llmCfg.Provider, "model", provider.ModelID(), "cache", !cfg.NoCache)
			completer = llm.NewCompleter(provider, llmCfg.MaxTokens)
		}

		proc := pipeline.NewProcessor(cfg.Layout(), pipeline.Options{
			Completer: completer,
			Workers:   cfg.Workers,
			Logger:    slog.Default(),
		})

		results, err := proc.ProcessAll(ctx, models, splits, seeds)
		out := cmd.OutOrStdout()
		for _, r := range results {
			fmt.Fprintf(out, "%-24s  %6d rows  %8s  %s\n", r.Unit, r.Rows, r.Duration.Round(time.Millisecond), r.Output)
		}
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("interrupted: %w", err)
			}
			return err
		}
		fmt.Fprintf(out, "Processed %d units.\n", len(results))
		return nil
	},
}

func orAll[T any](selected, all []T) []T {
	if len(selected) == 0 {
		return all
	}
	return selected
}

func init() {
	addSelectionFlags(processCmd)
	f := processCmd.Flags()
	f.Int("workers", pipeline.DefaultWorkers, "Concurrent completion calls per unit")
	f.Bool("no-cache", false, "Do not read or write the completion cache")
	f.String("key-file", "", "File holding the completion provider API key")
	f.String("provider", "openai", "Completion provider: openai, anthropic, gemini, openrouter or mock")
	f.String("llm-model", "", "Completion model (provider default when empty)")
	f.Duration("timeout", llm.DefaultConfig().Timeout, "Timeout for a single completion attempt")

	_ = settings.BindPFlag("workers", f.Lookup("workers"))
	_ = settings.BindPFlag("no_cache", f.Lookup("no-cache"))
	_ = settings.BindPFlag("key_file", f.Lookup("key-file"))
	_ = settings.BindPFlag("provider", f.Lookup("provider"))
	_ = settings.BindPFlag("model", f.Lookup("llm-model"))
	_ = settings.BindPFlag("timeout", f.Lookup("timeout"))
}
