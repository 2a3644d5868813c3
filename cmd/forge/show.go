package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aretw0/forge/pkg/render"
)

var (
	showPreview bool
	showJSON    bool
	showWidth   int
)

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print the Markdown of an archived use case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := resolveID(a.svc.Collection(), args[0])
		if err != nil {
			return err
		}
		if err := a.svc.Open(id); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch {
		case showJSON:
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			return encoder.Encode(a.svc.Session().Snapshot())
		case showPreview:
			styled, err := render.Preview(a.svc.Session().Snapshot(), render.PreviewOptions{
				Style:  a.cfg.PreviewStyle,
				Width:  showWidth,
				Labels: render.LabelsFor(a.cfg.Locale),
			})
			if err != nil {
				slog.Warn("terminal preview unavailable, printing markdown", "error", err)
			}
			fmt.Fprint(out, styled)
		default:
			fmt.Fprint(out, a.svc.Render())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVarP(&showPreview, "preview", "p", false, "Render for the terminal")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print the stored record as JSON")
	showCmd.Flags().IntVar(&showWidth, "width", 0, "Word wrap width of the preview (default 80)")
}
