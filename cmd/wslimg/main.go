package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/wslkit/wsl-image-manager/cmd/wslimg/config"
	"github.com/wslkit/wsl-image-manager/lib/images"
	"github.com/wslkit/wsl-image-manager/lib/providers"
)

// app carries the wired dependencies into the command implementations.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	manager images.Manager
}

func main() {
	cfg := providers.ProvideConfig()
	log := providers.ProvideLogger(cfg)
	exec := providers.ProvideExecutor(cfg)
	st := providers.ProvideStore(cfg, exec, log)

	a := &app{
		cfg:     cfg,
		log:     log,
		manager: providers.ProvideImageManager(st, log),
	}

	root := &cobra.Command{
		Use:           "wslimg",
		Short:         "Manage provenance manifests for WSL images",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newListCmd(a),
		newShowCmd(a),
		newCreateCmd(a),
		newCloneCmd(a),
		newDiffCmd(a),
		newImportLegacyCmd(a),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
