package main

import (
	"encoding/json"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"

	"github.com/aretw0/forge"
)

// statusReport is the output of `forge status`.
type statusReport struct {
	Version string `json:"version"`
	Root    string `json:"root"`
	Backend string `json:"backend"`
	Locale  string `json:"locale"`
	Service any    `json:"service"`
	Storage any    `json:"storage,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the state of the collection and its storage as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		report := statusReport{
			Version: forge.Version,
			Root:    a.root,
			Backend: a.cfg.Backend,
			Locale:  a.cfg.Locale,
			Service: a.svc.State(),
		}
		if st, ok := a.svc.Collection().Storage().(introspection.Introspectable); ok {
			report.Storage = st.State()
		}

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
