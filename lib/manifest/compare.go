package manifest

import (
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
)

// FieldChange records one metadata field differing between two manifests.
type FieldChange struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// EnvChange records one environment variable differing between two
// manifests. A nil side means the key is absent there.
type EnvChange struct {
	Old *string `json:"old,omitempty"`
	New *string `json:"new,omitempty"`
}

// TagChanges is the set difference of two tag sets.
type TagChanges struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// Diff is the result of comparing two manifests. Added/Removed are relative
// to the first argument: layers in b but not a are added.
type Diff struct {
	AddedLayers     []Layer                `json:"added_layers"`
	RemovedLayers   []Layer                `json:"removed_layers"`
	MetadataChanges map[string]FieldChange `json:"metadata_changes"`
	TagChanges      TagChanges             `json:"tag_changes"`
	EnvChanges      map[string]EnvChange   `json:"env_changes"`
}

// layerKey is the identity of a layer for diffing purposes.
func layerKey(l Layer) string {
	return l.Name + "\x00" + string(l.Type) + "\x00" + l.Applied.UTC().Format(time.RFC3339)
}

// Compare computes the difference between a and b. It is pure: neither input
// is touched, and swapping the arguments mirrors the added/removed sets.
func Compare(a, b *Manifest) *Diff {
	aKeys := lo.SliceToMap(a.Layers, func(l Layer) (string, struct{}) { return layerKey(l), struct{}{} })
	bKeys := lo.SliceToMap(b.Layers, func(l Layer) (string, struct{}) { return layerKey(l), struct{}{} })

	added := lo.Filter(b.Layers, func(l Layer, _ int) bool {
		_, ok := aKeys[layerKey(l)]
		return !ok
	})
	removed := lo.Filter(a.Layers, func(l Layer, _ int) bool {
		_, ok := bKeys[layerKey(l)]
		return !ok
	})

	diff := &Diff{
		AddedLayers:     cloneLayers(added),
		RemovedLayers:   cloneLayers(removed),
		MetadataChanges: map[string]FieldChange{},
		TagChanges:      compareTags(a.Tags, b.Tags),
		EnvChanges:      compareEnv(a.EnvironmentVariables, b.EnvironmentVariables),
	}

	for field, pair := range metadataFields(a.Metadata, b.Metadata) {
		if pair.Old != pair.New {
			diff.MetadataChanges[field] = pair
		}
	}
	return diff
}

func metadataFields(a, b Metadata) map[string]FieldChange {
	return map[string]FieldChange{
		"id":          {a.ID, b.ID},
		"name":        {a.Name, b.Name},
		"source":      {a.Source, b.Source},
		"lineage":     {strings.Join(a.Lineage, ","), strings.Join(b.Lineage, ",")},
		"created":     {a.Created.UTC().Format(time.RFC3339), b.Created.UTC().Format(time.RFC3339)},
		"created_by":  {a.CreatedBy, b.CreatedBy},
		"description": {a.Description, b.Description},
		"parent":      {a.Parent, b.Parent},
	}
}

func compareTags(a, b []string) TagChanges {
	added := lo.Without(lo.Uniq(b), a...)
	removed := lo.Without(lo.Uniq(a), b...)
	sort.Strings(added)
	sort.Strings(removed)
	return TagChanges{Added: added, Removed: removed}
}

func compareEnv(a, b map[string]string) map[string]EnvChange {
	changes := map[string]EnvChange{}
	for _, key := range lo.Uniq(append(lo.Keys(a), lo.Keys(b)...)) {
		oldVal, inA := a[key]
		newVal, inB := b[key]
		if inA && inB && oldVal == newVal {
			continue
		}
		var change EnvChange
		if inA {
			v := oldVal
			change.Old = &v
		}
		if inB {
			v := newVal
			change.New = &v
		}
		changes[key] = change
	}
	return changes
}
