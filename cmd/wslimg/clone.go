package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCloneCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clone <source-distro> <new-name>",
		Short: "Record the manifest for a cloned image",
		Long: `Clone reads the source image's manifest, derives a new manifest with the
source appended to the lineage, and writes it into the new guest. A source
without a manifest is treated as a legacy image and still produces a valid
lineage.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.manager.Clone(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Created manifest %s for %s (lineage: %s)\n",
				m.Metadata.ID, m.Metadata.Name, strings.Join(m.Metadata.Lineage, " -> "))
			return nil
		},
	}
	return cmd
}

func newImportLegacyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-legacy <distro>",
		Short: "Synthesize a manifest for an image that predates tracking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.manager.ImportLegacy(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Imported %s with manifest %s\n", args[0], m.Metadata.ID)
			return nil
		},
	}
	return cmd
}
