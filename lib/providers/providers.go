package providers

import (
	"log/slog"
	"os"

	"github.com/wslkit/wsl-image-manager/cmd/wslimg/config"
	"github.com/wslkit/wsl-image-manager/lib/guest"
	"github.com/wslkit/wsl-image-manager/lib/images"
	"github.com/wslkit/wsl-image-manager/lib/store"
)

// ProvideLogger provides a structured logger
func ProvideLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// ProvideConfig provides the application configuration
func ProvideConfig() *config.Config {
	return config.Load()
}

// ProvideExecutor provides the WSL-backed guest executor
func ProvideExecutor(cfg *config.Config) guest.Executor {
	return guest.NewWSLExecutor(cfg.ExecTimeout)
}

// ProvideStore provides the guest manifest store
func ProvideStore(cfg *config.Config, exec guest.Executor, log *slog.Logger) *store.Store {
	return store.New(exec, log, store.WithManifestPath(cfg.ManifestPath))
}

// ProvideImageManager provides the image manifest manager
func ProvideImageManager(st *store.Store, log *slog.Logger) images.Manager {
	return images.NewManager(st, log)
}
