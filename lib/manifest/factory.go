package manifest

import (
	"sort"
	"time"

	"github.com/nrednav/cuid2"
)

// Timestamps are truncated to whole seconds so that a manifest survives a
// serialize/parse round-trip bit-identical.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// NewDistroManifest builds the manifest for a pristine image imported from a
// base distribution. Lineage starts at the distribution itself.
func NewDistroManifest(sourceDistro, imageName, distroVersion string) *Manifest {
	ts := now()
	tags := []string{"pristine", sourceDistro}
	sort.Strings(tags)
	return &Manifest{
		Version: SchemaVersion,
		Metadata: Metadata{
			ID:        cuid2.Generate(),
			Name:      imageName,
			Source:    sourceDistro,
			Lineage:   []string{sourceDistro},
			Created:   ts,
			CreatedBy: CreatedBy,
		},
		Layers: []Layer{{
			Type:    LayerDistro,
			Name:    sourceDistro,
			Applied: ts,
			Version: distroVersion,
		}},
		Tags:                 tags,
		EnvironmentVariables: map[string]string{},
		History:              []HistoryEntry{},
	}
}

// NewCloneManifest builds the manifest for a clone of src. The clone inherits
// layers, tags and environment by value, records parentName as its immediate
// parent, and extends the lineage without mutating src.
func NewCloneManifest(src *Manifest, parentName, newImageName string) *Manifest {
	lineage := make([]string, 0, len(src.Metadata.Lineage)+1)
	lineage = append(lineage, src.Metadata.Lineage...)
	lineage = append(lineage, parentName)

	return &Manifest{
		Version: SchemaVersion,
		Metadata: Metadata{
			ID:          cuid2.Generate(),
			Name:        newImageName,
			Source:      src.Metadata.Source,
			Lineage:     lineage,
			Created:     now(),
			CreatedBy:   CreatedBy,
			Description: src.Metadata.Description,
			Parent:      parentName,
		},
		Layers:               cloneLayers(src.Layers),
		Tags:                 append([]string(nil), src.Tags...),
		EnvironmentVariables: cloneStringMap(src.EnvironmentVariables),
		Notes:                src.Notes,
		History:              []HistoryEntry{},
	}
}

// NewLegacyManifest synthesizes a best-effort manifest for an image that
// predates manifest tracking. It never fails; everything unknowable is
// recorded as such.
func NewLegacyManifest(existingName string) *Manifest {
	ts := now()
	return &Manifest{
		Version: SchemaVersion,
		Metadata: Metadata{
			ID:          cuid2.Generate(),
			Name:        existingName,
			Source:      existingName,
			Lineage:     []string{existingName},
			Created:     ts,
			CreatedBy:   "legacy-import",
			Description: "Imported from an existing distribution without provenance records",
		},
		Layers: []Layer{{
			Type:    LayerDistro,
			Name:    existingName,
			Applied: ts,
			Version: "unknown",
		}},
		Tags:                 []string{"imported", "legacy"},
		EnvironmentVariables: map[string]string{},
		History:              []HistoryEntry{},
	}
}

// AddLayer appends a layer, preserving application order. Applied defaults to
// the current time when unset.
func (m *Manifest) AddLayer(l Layer) {
	if l.Applied.IsZero() {
		l.Applied = now()
	}
	m.Layers = append(m.Layers, l)
}

// AppendHistory records one audit entry. History is append-only.
func (m *Manifest) AppendHistory(action, description string, changes map[string]string) {
	m.History = append(m.History, HistoryEntry{
		Action:      action,
		Description: description,
		Changes:     cloneStringMap(changes),
		Timestamp:   now(),
	})
}
