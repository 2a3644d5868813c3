package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose     bool
	workDir     string
	backendFlag string
	dataDirFlag string
	localeFlag  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "forge",
	Short: "Write, archive and export use cases",
	Long: `Forge is an editor for use cases: title, actor, context, scenario steps,
postconditions and constraints. Use cases are archived in a local collection
(files, SQLite, Postgres or S3) and rendered to Markdown.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workDir, "dir", "C", "", "Run as if forge was started in this directory")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Storage backend: fs, memory, sqlite, postgres, s3")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Directory of the fs backend (default .forge)")
	rootCmd.PersistentFlags().StringVar(&localeFlag, "locale", "", "Rendering language: en, fr")
}
