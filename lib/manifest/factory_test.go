package manifest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDistroManifest(t *testing.T) {
	m := NewDistroManifest("ubuntu-22.04", "dev-image", "22.04.3")

	require.Equal(t, SchemaVersion, m.Version)
	require.Equal(t, "dev-image", m.Metadata.Name)
	require.Equal(t, "ubuntu-22.04", m.Metadata.Source)
	require.Equal(t, []string{"ubuntu-22.04"}, m.Metadata.Lineage)
	require.NotEmpty(t, m.Metadata.ID)
	require.False(t, m.Metadata.Created.IsZero())
	require.Equal(t, CreatedBy, m.Metadata.CreatedBy)

	require.Len(t, m.Layers, 1)
	require.Equal(t, LayerDistro, m.Layers[0].Type)
	require.Equal(t, "22.04.3", m.Layers[0].Version)

	require.Contains(t, m.Tags, "pristine")
	require.Contains(t, m.Tags, "ubuntu-22.04")
	require.Empty(t, m.History)
}

func TestNewDistroManifestDistinctIDs(t *testing.T) {
	a := NewDistroManifest("ubuntu-22.04", "a", "22.04")
	b := NewDistroManifest("ubuntu-22.04", "b", "22.04")
	require.NotEqual(t, a.Metadata.ID, b.Metadata.ID)
}

func TestNewCloneManifestLineage(t *testing.T) {
	src := NewDistroManifest("ubuntu-22.04", "dev-image", "22.04.3")
	clone := NewCloneManifest(src, "dev-image", "proj-image")

	require.Equal(t, []string{"ubuntu-22.04", "dev-image"}, clone.Metadata.Lineage)
	require.Equal(t, "dev-image", clone.Metadata.Parent)
	require.Equal(t, "proj-image", clone.Metadata.Name)
	require.Equal(t, "ubuntu-22.04", clone.Metadata.Source)
	require.NotEqual(t, src.Metadata.ID, clone.Metadata.ID)

	// The source lineage must not have been touched.
	require.Equal(t, []string{"ubuntu-22.04"}, src.Metadata.Lineage)
}

func TestNewCloneManifestNoAliasing(t *testing.T) {
	src := NewDistroManifest("ubuntu-22.04", "dev-image", "22.04.3")
	src.EnvironmentVariables["PATH_SUFFIX"] = "/opt/tools"
	clone := NewCloneManifest(src, "dev-image", "proj-image")

	clone.Layers[0].Name = "mutated"
	clone.Tags = append(clone.Tags, "extra")
	clone.EnvironmentVariables["PATH_SUFFIX"] = "/changed"
	clone.Metadata.Lineage[0] = "mutated"

	require.Equal(t, "ubuntu-22.04", src.Layers[0].Name)
	require.NotContains(t, src.Tags, "extra")
	require.Equal(t, "/opt/tools", src.EnvironmentVariables["PATH_SUFFIX"])
	require.Equal(t, "ubuntu-22.04", src.Metadata.Lineage[0])
}

func TestNewLegacyManifest(t *testing.T) {
	m := NewLegacyManifest("old-distro")

	require.Equal(t, "legacy-import", m.Metadata.CreatedBy)
	require.Equal(t, []string{"old-distro"}, m.Metadata.Lineage)
	require.Len(t, m.Layers, 1)
	require.Equal(t, LayerDistro, m.Layers[0].Type)
	require.Equal(t, "unknown", m.Layers[0].Version)
	require.ElementsMatch(t, []string{"legacy", "imported"}, m.Tags)

	res := Validate(m)
	require.True(t, res.Valid, "legacy manifests must validate: %v", res.Errors)
}

func TestAddLayerPreservesOrder(t *testing.T) {
	m := NewDistroManifest("ubuntu-22.04", "dev-image", "22.04.3")
	m.AddLayer(Layer{Type: LayerApplication, Name: "golang", Commands: []string{"apt-get install -y golang"}})
	m.AddLayer(Layer{Type: LayerConfiguration, Name: "locale"})

	require.Len(t, m.Layers, 3)
	require.Equal(t, "golang", m.Layers[1].Name)
	require.Equal(t, "locale", m.Layers[2].Name)
	require.False(t, m.Layers[1].Applied.IsZero())
}

func TestAppendHistory(t *testing.T) {
	m := NewDistroManifest("ubuntu-22.04", "dev-image", "22.04.3")
	m.AppendHistory("clone", "Cloned from dev-image", map[string]string{"parent": "dev-image"})
	m.AppendHistory("layer", "Installed golang", nil)

	require.Len(t, m.History, 2)
	require.Equal(t, "clone", m.History[0].Action)
	require.Equal(t, "dev-image", m.History[0].Changes["parent"])
	require.False(t, m.History[1].Timestamp.IsZero())
}
