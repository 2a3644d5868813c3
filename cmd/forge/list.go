package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/aretw0/forge/pkg/core"
	"github.com/aretw0/forge/pkg/export"
)

var (
	listJSON  bool
	listMatch string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived use cases, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if listMatch != "" && !doublestar.ValidatePattern(listMatch) {
			return fmt.Errorf("invalid match pattern %q", listMatch)
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		var filtered []core.UseCase
		for _, uc := range a.svc.List() {
			if export.Matches(listMatch, uc) {
				filtered = append(filtered, uc)
			}
		}

		out := cmd.OutOrStdout()
		if listJSON {
			if filtered == nil {
				filtered = []core.UseCase{}
			}
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			return encoder.Encode(filtered)
		}

		writeTable(out, filtered)
		fmt.Fprintln(cmd.ErrOrStderr(), mutedStyle.Render(countLine(len(filtered))))
		return nil
	},
}

func writeTable(out io.Writer, docs []core.UseCase) {
	if len(docs) == 0 {
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tACTOR\tSTEPS\tMODIFIED")
	for _, uc := range docs {
		modified := ""
		if !uc.LastModified.IsZero() {
			modified = uc.LastModified.Local().Format("2006-01-02 15:04")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			shortID(uc.Identity), core.DisplayTitle(uc), uc.Actor, len(uc.Steps), modified)
	}
	_ = w.Flush()
}

func countLine(n int) string {
	if n == 1 {
		return "1 use case"
	}
	return fmt.Sprintf("%d use cases", n)
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVar(&listMatch, "match", "", "Only titles matching this glob (case-insensitive)")
}
