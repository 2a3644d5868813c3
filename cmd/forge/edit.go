package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/aretw0/forge/pkg/core"
)

var (
	editFields fieldFlags
	editCopy   bool
)

var editCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit an archived use case",
	Long: `Edit loads an archived use case into the editor and archives it again in place.
The id may be any unambiguous prefix. Passing any field flag skips the editor.`,
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

		if err := edit(cmd, &editFields, a.svc.Session()); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			if errors.Is(err, core.ErrTitleRequired) {
				return err
			}
			return fmt.Errorf("form: %w", err)
		}

		if _, err := a.svc.Archive(cmd.Context()); err != nil {
			return err
		}
		if editCopy {
			return a.svc.Export(cmd.Context())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
	editFields.register(editCmd)
	editCmd.Flags().BoolVar(&editCopy, "copy", false, "Copy the Markdown to the clipboard after archiving")
}
