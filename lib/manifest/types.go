package manifest

import "time"

// SchemaVersion is the only manifest schema version this build understands.
// Any other value fails validation; there is no migration path.
const SchemaVersion = "1.0"

// CreatedBy identifies this tool as the producer of a manifest.
const CreatedBy = "wsl-image-manager"

// LayerType tags one recorded provenance step.
type LayerType string

const (
	LayerDistro        LayerType = "DISTRO"
	LayerApplication   LayerType = "APPLICATION"
	LayerConfiguration LayerType = "CONFIGURATION"
	LayerEnvironment   LayerType = "ENVIRONMENT"
	LayerCustom        LayerType = "CUSTOM"
)

// Known reports whether t is one of the five recognized layer kinds.
func (t LayerType) Known() bool {
	switch t {
	case LayerDistro, LayerApplication, LayerConfiguration, LayerEnvironment, LayerCustom:
		return true
	}
	return false
}

// Manifest is the complete provenance record for one image. It is the exact
// shape of the JSON file persisted inside the guest filesystem.
type Manifest struct {
	Version              string            `json:"version"`
	Metadata             Metadata          `json:"metadata"`
	Layers               []Layer           `json:"layers"`
	Tags                 []string          `json:"tags"`
	EnvironmentVariables map[string]string `json:"environment_variables"`
	Notes                string            `json:"notes,omitempty"`
	History              []HistoryEntry    `json:"history"`
}

// Metadata describes the image itself and its lineage.
type Metadata struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Source      string    `json:"source"`
	Lineage     []string  `json:"lineage"`
	Created     time.Time `json:"created"`
	CreatedBy   string    `json:"created_by"`
	Description string    `json:"description,omitempty"`
	Parent      string    `json:"parent,omitempty"`
}

// Layer is one recorded modification step. Type decides which of the
// kind-specific fields are meaningful: Version for DISTRO, Commands for
// APPLICATION/CONFIGURATION, Details for ENVIRONMENT.
type Layer struct {
	Type        LayerType         `json:"type"`
	Name        string            `json:"name"`
	Applied     time.Time         `json:"applied"`
	Description string            `json:"description,omitempty"`
	Version     string            `json:"version,omitempty"`
	Commands    []string          `json:"commands,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
}

// HistoryEntry is one append-only audit record.
type HistoryEntry struct {
	Action      string            `json:"action"`
	Description string            `json:"description"`
	Changes     map[string]string `json:"changes,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// Clone returns a deep copy sharing no mutable containers with m.
func (m *Manifest) Clone() *Manifest {
	c := *m
	c.Metadata.Lineage = append([]string(nil), m.Metadata.Lineage...)
	c.Layers = cloneLayers(m.Layers)
	c.Tags = append([]string(nil), m.Tags...)
	c.EnvironmentVariables = cloneStringMap(m.EnvironmentVariables)
	c.History = make([]HistoryEntry, len(m.History))
	for i, h := range m.History {
		c.History[i] = h
		c.History[i].Changes = cloneStringMap(h.Changes)
	}
	return &c
}

func cloneLayers(layers []Layer) []Layer {
	out := make([]Layer, len(layers))
	for i, l := range layers {
		out[i] = l
		out[i].Commands = append([]string(nil), l.Commands...)
		out[i].Details = cloneStringMap(l.Details)
	}
	return out
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
