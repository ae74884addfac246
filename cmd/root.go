package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/chartqa-eval/internal/config"
	"github.com/abhisek/chartqa-eval/internal/store"
)

var (
	cfgFile  string
	settings = config.New()
	cfg      config.Config
)

var rootCmd = &cobra.Command{
	Use:   "chartqa",
	Short: "Score chart question answering results of vision-language models",
	Long: "chartqa normalizes raw model answers into canonical answer sentences,\n" +
		"checks the dataset layout and reports strict and lenient accuracy.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(settings, cfgFile)
		if err != nil {
			return err
		}
		logger, err := loaded.Logger(os.Stderr)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		cfg = loaded
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (YAML, JSON or TOML)")
	pf.String("root", ".", "Dataset root holding SourceQuestion, ModelRawOutput and ModelProcessedOutput")
	pf.String("db", "", "Path to SQLite database file (overrides CHARTQA_DB env var)")
	pf.String("log-level", "info", "Log level: debug, info, warn or error")
	pf.String("log-format", "text", "Log format: text or json")

	_ = settings.BindPFlag("root", pf.Lookup("root"))
	_ = settings.BindPFlag("db", pf.Lookup("db"))
	_ = settings.BindPFlag("log_level", pf.Lookup("log-level"))
	_ = settings.BindPFlag("log_format", pf.Lookup("log-format"))

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db / CHARTQA_DB / the
// config file, then the default XDG path.
func resolveDBPath() (string, error) {
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}

// openStore opens the telemetry and cache database.
func openStore() (*store.Store, error) {
	dbPath, err := resolveDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
