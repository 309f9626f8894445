package catalog

import "sort"

// Catalog is an immutable mapping from package name to version string. Once
// composed it is never mutated; templates hold one for the process lifetime.
type Catalog struct {
	entries map[string]string
}

// NewCatalog builds a catalog from a plain entry map. The map is copied.
func NewCatalog(entries map[string]string) *Catalog {
	copied := make(map[string]string, len(entries))
	for k, v := range entries {
		copied[k] = v
	}

	return &Catalog{entries: copied}
}

// ComposeCatalog merges zero or more base catalogs left-to-right, then the
// additions layer, under the duplicate/conflict policy described in the
// package comment.
func ComposeCatalog(bases []*Catalog, additions map[string]string) (*Catalog, []DuplicateWarning, error) {
	baseMaps := make([]map[string]string, 0, len(bases))
	for _, base := range bases {
		baseMaps = append(baseMaps, base.entries)
	}

	merged, warnings, err := mergeEntries("catalog", baseMaps, additions)
	if err != nil {
		return nil, nil, err
	}

	return &Catalog{entries: merged}, warnings, nil
}

// Version returns the pinned version for a package name.
func (c *Catalog) Version(name string) (string, bool) {
	version, ok := c.entries[name]

	return version, ok
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Names returns all package names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Overrides is an immutable mapping from package name to override pin. It is
// structurally identical to Catalog and composes under the same rules.
type Overrides struct {
	entries map[string]string
}

// NewOverrides builds an overrides set from a plain entry map. The map is
// copied.
func NewOverrides(entries map[string]string) *Overrides {
	copied := make(map[string]string, len(entries))
	for k, v := range entries {
		copied[k] = v
	}

	return &Overrides{entries: copied}
}

// ComposeOverrides merges base overrides left-to-right, then the additions
// layer, sharing Catalog's merge routine and policy.
func ComposeOverrides(bases []*Overrides, additions map[string]string) (*Overrides, []DuplicateWarning, error) {
	baseMaps := make([]map[string]string, 0, len(bases))
	for _, base := range bases {
		baseMaps = append(baseMaps, base.entries)
	}

	merged, warnings, err := mergeEntries("overrides", baseMaps, additions)
	if err != nil {
		return nil, nil, err
	}

	return &Overrides{entries: merged}, warnings, nil
}

// Pin returns the override pin for a package name.
func (o *Overrides) Pin(name string) (string, bool) {
	pin, ok := o.entries[name]

	return pin, ok
}

// Len returns the number of entries.
func (o *Overrides) Len() int {
	return len(o.entries)
}

// Names returns all package names, sorted.
func (o *Overrides) Names() []string {
	names := make([]string, 0, len(o.entries))
	for name := range o.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
