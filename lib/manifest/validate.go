package manifest

import (
	"encoding/json"
	"fmt"
)

const (
	// Layer counts above this trigger an advisory warning.
	layerCountWarning = 50
	// Serialized manifests above this size trigger an advisory warning.
	serializedSizeWarning = 1 << 20
)

// ValidationResult reports structural errors (blocking) and advisory
// warnings. Callers decide whether errors are fatal.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Validate checks an in-memory manifest. It round-trips m through JSON so the
// same shape checks apply to freshly built and disk-loaded manifests alike.
func Validate(m *Manifest) ValidationResult {
	data, err := json.Marshal(m)
	if err != nil {
		return ValidationResult{Errors: []string{fmt.Sprintf("Manifest not serializable: %v", err)}}
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return ValidationResult{Errors: []string{fmt.Sprintf("Manifest not parseable: %v", err)}}
	}
	return ValidateRaw(raw)
}

// ValidateRaw checks a decoded JSON value of unknown shape. Disk content is
// never trusted to match the typed Manifest until it passes here. It never
// panics and never returns an error; everything wrong lands in the result.
func ValidateRaw(raw any) ValidationResult {
	res := ValidationResult{Errors: []string{}, Warnings: []string{}}

	obj, ok := raw.(map[string]any)
	if !ok {
		res.Errors = append(res.Errors, "Manifest is not a JSON object")
		return res
	}

	version, _ := obj["version"].(string)
	switch {
	case version == "":
		res.Errors = append(res.Errors, "Missing version")
	case version != SchemaVersion:
		res.Errors = append(res.Errors, fmt.Sprintf("Unsupported manifest version %q (supported: %q)", version, SchemaVersion))
	}

	meta, _ := obj["metadata"].(map[string]any)
	if meta == nil {
		res.Errors = append(res.Errors, "Missing metadata")
	} else {
		if id, _ := meta["id"].(string); id == "" {
			res.Errors = append(res.Errors, "Missing metadata.id")
		}
		if created, _ := meta["created"].(string); created == "" {
			res.Errors = append(res.Errors, "Missing metadata.created")
		}
		if lineage, _ := meta["lineage"].([]any); len(lineage) == 0 {
			res.Errors = append(res.Errors, "Missing metadata.lineage")
		}
	}

	layers, ok := obj["layers"].([]any)
	if !ok {
		res.Errors = append(res.Errors, "Missing layers")
	} else {
		hasDistro := false
		for i, entry := range layers {
			layer, _ := entry.(map[string]any)
			typ, _ := layer["type"].(string)
			name, _ := layer["name"].(string)
			if !LayerType(typ).Known() {
				res.Errors = append(res.Errors, fmt.Sprintf("Layer %d (%s) has unknown type %q", i, name, typ))
				continue
			}
			if LayerType(typ) == LayerDistro {
				hasDistro = true
			}
		}
		if !hasDistro {
			res.Warnings = append(res.Warnings, "No DISTRO layer present; image may not have a base distribution recorded")
		}
		if len(layers) > layerCountWarning {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Manifest has %d layers; consider pruning history", len(layers)))
		}
	}

	if data, err := json.Marshal(obj); err == nil && len(data) > serializedSizeWarning {
		res.Warnings = append(res.Warnings, fmt.Sprintf("Serialized manifest is %d bytes; consider pruning history", len(data)))
	}

	res.Valid = len(res.Errors) == 0
	return res
}
