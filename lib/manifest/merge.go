package manifest

import (
	"fmt"
	"sort"

	"github.com/nrednav/cuid2"
	"github.com/samber/lo"
)

// ConflictResolution selects which side wins when both manifests carry a
// differing value for the same scalar field.
type ConflictResolution string

const (
	ConflictUseFirst  ConflictResolution = "useFirst"
	ConflictUseSecond ConflictResolution = "useSecond"
)

// MergeOptions configures Merge. The zero value uses ConflictUseFirst.
type MergeOptions struct {
	ConflictResolution ConflictResolution
}

// Merge combines a and b into a new manifest sharing no mutable state with
// either input. Layers are concatenated in order (a then b) without
// de-duplication: duplicate provenance entries are valid history. Tags are
// unioned. Scalar conflicts follow the configured policy.
func Merge(a, b *Manifest, opts MergeOptions) (*Manifest, error) {
	policy := opts.ConflictResolution
	if policy == "" {
		policy = ConflictUseFirst
	}
	switch policy {
	case ConflictUseFirst, ConflictUseSecond:
	default:
		return nil, fmt.Errorf("unknown conflict resolution policy %q", policy)
	}

	pick := func(first, second string) string {
		if first == "" {
			return second
		}
		if second == "" || policy == ConflictUseFirst {
			return first
		}
		return second
	}

	layers := make([]Layer, 0, len(a.Layers)+len(b.Layers))
	layers = append(layers, cloneLayers(a.Layers)...)
	layers = append(layers, cloneLayers(b.Layers)...)

	tags := lo.Uniq(append(append([]string(nil), a.Tags...), b.Tags...))
	sort.Strings(tags)

	env := cloneStringMap(a.EnvironmentVariables)
	if env == nil {
		env = map[string]string{}
	}
	for k, v := range b.EnvironmentVariables {
		if existing, ok := env[k]; !ok || existing == "" || policy == ConflictUseSecond {
			env[k] = v
		}
	}

	lineageOf := a
	if policy == ConflictUseSecond {
		lineageOf = b
	}

	history := make([]HistoryEntry, 0, len(a.History)+len(b.History))
	history = append(history, a.Clone().History...)
	history = append(history, b.Clone().History...)

	merged := &Manifest{
		Version: SchemaVersion,
		Metadata: Metadata{
			ID:          cuid2.Generate(),
			Name:        pick(a.Metadata.Name, b.Metadata.Name),
			Source:      pick(a.Metadata.Source, b.Metadata.Source),
			Lineage:     append([]string(nil), lineageOf.Metadata.Lineage...),
			Created:     now(),
			CreatedBy:   CreatedBy,
			Description: pick(a.Metadata.Description, b.Metadata.Description),
			Parent:      pick(a.Metadata.Parent, b.Metadata.Parent),
		},
		Layers:               layers,
		Tags:                 tags,
		EnvironmentVariables: env,
		Notes:                pick(a.Notes, b.Notes),
		History:              history,
	}
	merged.AppendHistory("merge", fmt.Sprintf("Merged manifests %s and %s", a.Metadata.ID, b.Metadata.ID), map[string]string{
		"first":  a.Metadata.ID,
		"second": b.Metadata.ID,
		"policy": string(policy),
	})
	return merged, nil
}
