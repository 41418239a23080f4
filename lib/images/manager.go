package images

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wslkit/wsl-image-manager/lib/manifest"
	"github.com/wslkit/wsl-image-manager/lib/store"
)

// Manager handles image manifest lifecycle operations. It ties the manifest
// factory and validator to the guest persistence store; it does not manage
// the images' root filesystems themselves.
//
// Manager holds no per-guest locks. Concurrent writers to the same guest may
// interleave; callers needing at-most-one-writer semantics serialize
// externally.
type Manager interface {
	// CreateDistro builds, validates and persists the manifest for a
	// pristine image imported from a base distribution.
	CreateDistro(ctx context.Context, req CreateDistroRequest) (*manifest.Manifest, error)

	// Clone derives a manifest for newName from sourceDistro's manifest and
	// persists it into the new guest. A source without a manifest is treated
	// as a legacy image.
	Clone(ctx context.Context, sourceDistro, newName string) (*manifest.Manifest, error)

	// GetManifest reads a guest's manifest. nil means no manifest.
	GetManifest(ctx context.Context, distro string) (*manifest.Manifest, error)

	// GetManifestValidated reads a guest's manifest with schema validation
	// enforced.
	GetManifestValidated(ctx context.Context, distro string) (*manifest.Manifest, error)

	// ImportLegacy synthesizes and persists a manifest for an image that
	// predates manifest tracking.
	ImportLegacy(ctx context.Context, distro string) (*manifest.Manifest, error)
}

// CreateDistroRequest describes a pristine image to record.
type CreateDistroRequest struct {
	SourceDistro  string
	Name          string
	DistroVersion string
	Backup        bool
}

type manager struct {
	store *store.Store
	log   *slog.Logger
}

// NewManager creates a manifest manager over the given store.
func NewManager(st *store.Store, log *slog.Logger) Manager {
	return &manager{store: st, log: log}
}

func (m *manager) CreateDistro(ctx context.Context, req CreateDistroRequest) (*manifest.Manifest, error) {
	mf := manifest.NewDistroManifest(req.SourceDistro, req.Name, req.DistroVersion)
	if err := m.gate(mf); err != nil {
		return nil, err
	}
	if err := m.store.Write(ctx, req.Name, mf, store.WriteOptions{Backup: req.Backup}); err != nil {
		return nil, fmt.Errorf("persist manifest for %s: %w", req.Name, err)
	}
	m.log.Info("created distro manifest", "distro", req.Name, "source", req.SourceDistro, "id", mf.Metadata.ID)
	return mf, nil
}

func (m *manager) Clone(ctx context.Context, sourceDistro, newName string) (*manifest.Manifest, error) {
	src, err := m.store.Read(ctx, sourceDistro)
	if err != nil {
		return nil, fmt.Errorf("read source manifest: %w", err)
	}
	if src == nil {
		// Pre-manifest image: fall back to a synthesized record so the
		// clone still gets a lineage.
		m.log.Info("source has no manifest, using legacy record", "distro", sourceDistro)
		src = manifest.NewLegacyManifest(sourceDistro)
	}

	clone := manifest.NewCloneManifest(src, sourceDistro, newName)
	clone.AppendHistory("clone", fmt.Sprintf("Cloned from %s", sourceDistro), map[string]string{
		"parent":    sourceDistro,
		"parent_id": src.Metadata.ID,
	})
	if err := m.gate(clone); err != nil {
		return nil, err
	}
	if err := m.store.Write(ctx, newName, clone, store.WriteOptions{}); err != nil {
		return nil, fmt.Errorf("persist manifest for %s: %w", newName, err)
	}
	m.log.Info("created clone manifest", "distro", newName, "parent", sourceDistro, "id", clone.Metadata.ID)
	return clone, nil
}

func (m *manager) GetManifest(ctx context.Context, distro string) (*manifest.Manifest, error) {
	return m.store.Read(ctx, distro)
}

func (m *manager) GetManifestValidated(ctx context.Context, distro string) (*manifest.Manifest, error) {
	return m.store.ReadValidated(ctx, distro)
}

func (m *manager) ImportLegacy(ctx context.Context, distro string) (*manifest.Manifest, error) {
	mf := manifest.NewLegacyManifest(distro)
	mf.AppendHistory("import", "Imported legacy image without provenance records", nil)
	if err := m.store.Write(ctx, distro, mf, store.WriteOptions{Backup: true}); err != nil {
		return nil, fmt.Errorf("persist legacy manifest for %s: %w", distro, err)
	}
	m.log.Info("imported legacy manifest", "distro", distro, "id", mf.Metadata.ID)
	return mf, nil
}

// gate turns blocking validation errors into an error; warnings are logged
// and let through.
func (m *manager) gate(mf *manifest.Manifest) error {
	res := manifest.Validate(mf)
	for _, w := range res.Warnings {
		m.log.Warn("manifest validation warning", "distro", mf.Metadata.Name, "warning", w)
	}
	if !res.Valid {
		return fmt.Errorf("%w: %s", ErrInvalidManifest, strings.Join(res.Errors, "; "))
	}
	return nil
}
