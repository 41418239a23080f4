// Package catalog reads the host-side catalog of known distributions and
// images. The catalog is produced by the download pipeline; this package
// only consumes it so callers can locate a guest's on-host artifact before
// touching the guest itself.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/samber/lo"
)

// Entry describes one known distribution or image.
type Entry struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Available   bool   `json:"available"`
	FilePath    string `json:"filePath,omitempty"`
}

// Catalog is the on-disk catalog document.
type Catalog struct {
	Distributions []Entry `json:"distributions"`
}

// Load reads the catalog at path. A missing file is an empty catalog, not an
// error: a fresh host simply has nothing downloaded yet.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Catalog{}, nil
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return &c, nil
}

// Lookup finds an entry by name.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	return lo.Find(c.Distributions, func(e Entry) bool { return e.Name == name })
}

// Available returns the entries whose on-host artifact is present.
func (c *Catalog) Available() []Entry {
	return lo.Filter(c.Distributions, func(e Entry, _ int) bool { return e.Available })
}
