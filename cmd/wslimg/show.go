package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newShowCmd(a *app) *cobra.Command {
	var validate bool

	cmd := &cobra.Command{
		Use:   "show <distro>",
		Short: "Print a guest's manifest as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			distro := args[0]
			read := a.manager.GetManifest
			if validate {
				read = a.manager.GetManifestValidated
			}
			m, err := read(cmd.Context(), distro)
			if err != nil {
				return err
			}
			if m == nil {
				fmt.Fprintf(os.Stderr, "%s has no manifest\n", distro)
				return nil
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(m)
		},
	}

	cmd.Flags().BoolVar(&validate, "validate", false, "Reject manifests that fail schema validation")
	return cmd
}
