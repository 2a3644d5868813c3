package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/forge/pkg/core"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an archived use case",
	Long:  `Delete asks for confirmation, then removes the use case from the collection.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var confirmer core.Confirmer = formConfirmer{}
		if deleteYes {
			confirmer = core.ConfirmerFunc(func(string) bool { return true })
		}

		a, err := openApp(cmd, core.WithConfirmer(confirmer))
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := resolveID(a.svc.Collection(), args[0])
		if err != nil {
			return err
		}
		_, err = a.svc.Delete(cmd.Context(), id)
		return err
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")
}
