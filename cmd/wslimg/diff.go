package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/wslkit/wsl-image-manager/lib/manifest"
)

func newDiffCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <distro-a> <distro-b>",
		Short: "Compare the manifests of two guests",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			left, err := a.manager.GetManifest(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if left == nil {
				return fmt.Errorf("%s has no manifest", args[0])
			}
			right, err := a.manager.GetManifest(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			if right == nil {
				return fmt.Errorf("%s has no manifest", args[1])
			}

			renderDiff(manifest.Compare(left, right))
			return nil
		},
	}
	return cmd
}

func renderDiff(d *manifest.Diff) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Change", "Detail", "Old", "New"})
	for _, l := range d.AddedLayers {
		t.AppendRow(table.Row{"layer added", fmt.Sprintf("%s (%s)", l.Name, l.Type), "", l.Applied.Format("2006-01-02 15:04:05")})
	}
	for _, l := range d.RemovedLayers {
		t.AppendRow(table.Row{"layer removed", fmt.Sprintf("%s (%s)", l.Name, l.Type), l.Applied.Format("2006-01-02 15:04:05"), ""})
	}
	for field, change := range d.MetadataChanges {
		t.AppendRow(table.Row{"metadata", field, change.Old, change.New})
	}
	for _, tag := range d.TagChanges.Added {
		t.AppendRow(table.Row{"tag added", tag, "", tag})
	}
	for _, tag := range d.TagChanges.Removed {
		t.AppendRow(table.Row{"tag removed", tag, tag, ""})
	}
	for key, change := range d.EnvChanges {
		t.AppendRow(table.Row{"env", key, deref(change.Old), deref(change.New)})
	}
	t.Render()
}

func deref(s *string) string {
	if s == nil {
		return "(unset)"
	}
	return *s
}
