package main

import (
	"github.com/spf13/cobra"
)

var copyCmd = &cobra.Command{
	Use:   "copy [id]",
	Short: "Copy the Markdown of an archived use case to the clipboard",
	Long: `Copy renders a use case and hands the text to the clipboard. The command set by
copy_command in forge.yaml (e.g. "wl-copy") is used when present.`,
	Args: cobra.ExactArgs(1),
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
		return a.svc.Export(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(copyCmd)
}
