// Package catalog implements the version-catalog and overrides composition
// used by templates to resolve shared dependency pins.
//
// Composition is a pure left-to-right merge with strict conflict semantics: a
// key contributed twice with different values fails construction, because a
// composed catalog cannot exist in an inconsistent state. Re-declaring an
// unchanged pin in the new layer is harmless and surfaces as a warning, not
// an error. Catalogs and overrides share one generic merge routine; they
// differ only in what the values mean.
package catalog

import (
	"fmt"
	"sort"
)

// ConflictError reports a key contributed with two different values.
type ConflictError struct {
	Kind     string
	Key      string
	Existing string
	Incoming string
}

// Error implements the error interface, naming the key and both values.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict for %q: %q vs %q", e.Kind, e.Key, e.Existing, e.Incoming)
}

// DuplicateWarning records an addition that re-declared an existing entry
// with an identical value. Duplicates are accepted; the warning is a side
// channel, logged and never fatal.
type DuplicateWarning struct {
	Kind  string
	Key   string
	Value string
}

// String renders the warning for logging.
func (w DuplicateWarning) String() string {
	return fmt.Sprintf("duplicate %s entry %q (%s)", w.Kind, w.Key, w.Value)
}

// mergeEntries merges bases left-to-right, then the additions layer, into a
// fresh map. Base-to-base conflicts fail immediately and are never silently
// resolved; identical base-to-base repeats are accepted without a warning.
// Warnings are emitted only for the additions layer.
func mergeEntries(kind string, bases []map[string]string, additions map[string]string) (map[string]string, []DuplicateWarning, error) {
	merged := make(map[string]string)

	for _, base := range bases {
		for _, key := range sortedKeys(base) {
			value := base[key]
			if existing, ok := merged[key]; ok && existing != value {
				return nil, nil, &ConflictError{Kind: kind, Key: key, Existing: existing, Incoming: value}
			}
			merged[key] = value
		}
	}

	var warnings []DuplicateWarning
	for _, key := range sortedKeys(additions) {
		value := additions[key]
		existing, ok := merged[key]
		if ok {
			if existing != value {
				return nil, nil, &ConflictError{Kind: kind, Key: key, Existing: existing, Incoming: value}
			}
			warnings = append(warnings, DuplicateWarning{Kind: kind, Key: key, Value: value})
			continue
		}
		merged[key] = value
	}

	return merged, warnings, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys
}
