package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/aretw0/forge/pkg/core"
)

var (
	newFields fieldFlags
	newCopy   bool
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Write a new use case and archive it",
	Long: `New opens the three-step editor (context, scenario, validation) on an empty
use case and archives the result. Passing any field flag skips the editor.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		a.svc.New()
		if err := edit(cmd, &newFields, a.svc.Session()); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			if errors.Is(err, core.ErrTitleRequired) {
				return err
			}
			return fmt.Errorf("form: %w", err)
		}

		stored, err := a.svc.Archive(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), stored.Identity)

		if newCopy {
			return a.svc.Export(cmd.Context())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
	newFields.register(newCmd)
	newCmd.Flags().BoolVar(&newCopy, "copy", false, "Copy the Markdown to the clipboard after archiving")
}
