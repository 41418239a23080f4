package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wslkit/wsl-image-manager/lib/images"
)

func newCreateCmd(a *app) *cobra.Command {
	var distroVersion string
	var backup bool

	cmd := &cobra.Command{
		Use:   "create <source-distro> <image-name>",
		Short: "Record a pristine manifest for a freshly imported image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.manager.CreateDistro(cmd.Context(), images.CreateDistroRequest{
				SourceDistro:  args[0],
				Name:          args[1],
				DistroVersion: distroVersion,
				Backup:        backup,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created manifest %s for %s\n", m.Metadata.ID, m.Metadata.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&distroVersion, "distro-version", "unknown", "Version of the base distribution")
	cmd.Flags().BoolVar(&backup, "backup", false, "Back up an existing manifest before overwriting")
	return cmd
}
