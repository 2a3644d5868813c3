package main

import (
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/forge/pkg/core"
	"github.com/aretw0/forge/pkg/export"
	"github.com/aretw0/forge/pkg/render"
)

var (
	exportFormat string
	exportMatch  string
	exportWatch  bool
)

var exportCmd = &cobra.Command{
	Use:   "export [dir]",
	Short: "Write every archived use case to a directory",
	Long: `Export writes one file per use case (md, json or yaml). Files written by a
previous export for use cases that no longer exist are removed.
With --watch, the directory is kept in sync until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		dir := a.cfg.ExportDir(a.root)
		if len(args) == 1 {
			dir = args[0]
		}
		format := a.cfg.Export.Format
		if cmd.Flags().Changed("format") {
			format = exportFormat
		}
		match := a.cfg.Export.Match
		if cmd.Flags().Changed("match") {
			match = exportMatch
		}

		exporter, err := export.New(export.Config{
			Dir:         dir,
			Format:      format,
			Match:       match,
			Serializers: export.DefaultSerializers(render.New(render.LabelsFor(a.cfg.Locale))),
			Logger:      slog.Default(),
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !exportWatch {
			res, err := exporter.Export(cmd.Context(), a.svc.List())
			if err != nil {
				return err
			}
			printResult(out, res)
			return nil
		}

		watchable, ok := a.svc.Collection().Storage().(core.Watchable)
		if !ok {
			return fmt.Errorf("backend %q cannot be watched", a.cfg.Backend)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return exporter.Watch(ctx, a.svc.Collection(), watchable, func(res export.Result, err error) {
			if err != nil {
				return
			}
			printResult(out, res)
		})
	},
}

func printResult(out io.Writer, res export.Result) {
	line := fmt.Sprintf("%d written, %d removed, %d skipped", len(res.Written), len(res.Removed), res.Skipped)
	fmt.Fprintln(out, successStyle.Render("✓ "+line))
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "md", "File format: md, json, yaml")
	exportCmd.Flags().StringVar(&exportMatch, "match", "", "Only titles matching this glob (case-insensitive)")
	exportCmd.Flags().BoolVarP(&exportWatch, "watch", "w", false, "Re-export whenever the collection changes")
}
