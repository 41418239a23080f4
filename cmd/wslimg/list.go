package main

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/wslkit/wsl-image-manager/lib/catalog"
)

func newListCmd(a *app) *cobra.Command {
	var availableOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List distributions known to the host catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Load(a.cfg.CatalogPath)
			if err != nil {
				return err
			}
			entries := c.Distributions
			if availableOnly {
				entries = c.Available()
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Name", "Display Name", "Available", "File"})
			for _, e := range entries {
				t.AppendRow(table.Row{e.Name, e.DisplayName, e.Available, e.FilePath})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&availableOnly, "available", false, "Only list distributions with a downloaded artifact")
	return cmd
}
