package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeCatalogDuplicateIsWarningNotError(t *testing.T) {
	base := NewCatalog(map[string]string{"react": "18.3.1"})

	composed, warnings, err := ComposeCatalog([]*Catalog{base}, map[string]string{"react": "18.3.1"})
	require.NoError(t, err)

	version, ok := composed.Version("react")
	require.True(t, ok)
	assert.Equal(t, "18.3.1", version)

	require.Len(t, warnings, 1)
	assert.Equal(t, "react", warnings[0].Key)
}

func TestComposeCatalogConflictNamesKeyAndBothValues(t *testing.T) {
	base := NewCatalog(map[string]string{"react": "18.3.1"})

	_, _, err := ComposeCatalog([]*Catalog{base}, map[string]string{"react": "19.0.0"})
	require.Error(t, err)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "react", conflict.Key)
	assert.Equal(t, "18.3.1", conflict.Existing)
	assert.Equal(t, "19.0.0", conflict.Incoming)
	assert.Contains(t, err.Error(), `"18.3.1"`)
	assert.Contains(t, err.Error(), `"19.0.0"`)
}

func TestComposeCatalogBaseConflictNeverSilentlyResolved(t *testing.T) {
	a := NewCatalog(map[string]string{"lodash": "4.17.21"})
	b := NewCatalog(map[string]string{"lodash": "4.17.20"})

	_, _, err := ComposeCatalog([]*Catalog{a, b}, nil)
	require.Error(t, err)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "lodash", conflict.Key)
}

func TestComposeCatalogIdenticalBasesNoWarning(t *testing.T) {
	a := NewCatalog(map[string]string{"typescript": "5.6.2"})
	b := NewCatalog(map[string]string{"typescript": "5.6.2"})

	composed, warnings, err := ComposeCatalog([]*Catalog{a, b}, nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 1, composed.Len())
}

func TestCatalogIsImmutable(t *testing.T) {
	source := map[string]string{"react": "18.3.1"}
	c := NewCatalog(source)

	source["react"] = "mutated"

	version, _ := c.Version("react")
	assert.Equal(t, "18.3.1", version)
}

func TestComposeOverridesSharesMergePolicy(t *testing.T) {
	base := NewOverrides(map[string]string{"lodash": "npm:lodash-es@4.17.21"})

	_, _, err := ComposeOverrides([]*Overrides{base}, map[string]string{"lodash": "npm:lodash-es@5.0.0"})
	require.Error(t, err)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "overrides", conflict.Kind)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "versions.yml")
	require.NoError(t, os.WriteFile(path, []byte("catalog:\n  react: \"18.3.1\"\noverrides:\n  lodash: \"npm:lodash-es@4\"\n"), 0o644))

	file, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "18.3.1", file.Catalog["react"])
	assert.Equal(t, "npm:lodash-es@4", file.Overrides["lodash"])
}

func TestLoadFileRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "versions.yml")
	require.NoError(t, os.WriteFile(path, []byte("catalgo:\n  react: \"18\"\n"), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestComposeFromFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yml")
	b := filepath.Join(dir, "b.yml")
	require.NoError(t, os.WriteFile(a, []byte("catalog:\n  react: \"18.3.1\"\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("catalog:\n  typescript: \"5.6.2\"\n"), 0o644))

	composed, overrides, warnings, err := ComposeFromFiles([]string{a, b}, map[string]string{"react": "18.3.1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, composed.Len())
	assert.Equal(t, 0, overrides.Len())
	require.Len(t, warnings, 1)
	assert.Equal(t, "react", warnings[0].Key)
}

// TestComposeProperties checks order-independence of conflict detection and
// that successful composition always contains the union of its inputs.
func TestComposeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(8642)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("successful compose contains every input key", prop.ForAll(
		func(base map[string]string, additionKeys []string) bool {
			additions := make(map[string]string, len(additionKeys))
			for _, key := range additionKeys {
				if _, ok := base[key]; ok {
					continue
				}
				additions[key] = "v-" + key
			}

			composed, _, err := ComposeCatalog([]*Catalog{NewCatalog(base)}, additions)
			if err != nil {
				return false
			}

			for key, value := range base {
				got, ok := composed.Version(key)
				if !ok || got != value {
					return false
				}
			}
			for key, value := range additions {
				got, ok := composed.Version(key)
				if !ok || got != value {
					return false
				}
			}

			return composed.Len() == len(base)+len(additions)
		},
		gen.MapOf(gen.Identifier(), gen.Identifier()),
		gen.SliceOf(gen.Identifier()),
	))

	properties.Property("re-declaring the full base is all warnings, no error", prop.ForAll(
		func(base map[string]string) bool {
			composed, warnings, err := ComposeCatalog([]*Catalog{NewCatalog(base)}, base)
			if err != nil {
				return false
			}

			return composed.Len() == len(base) && len(warnings) == len(base)
		},
		gen.MapOf(gen.Identifier(), gen.Identifier()),
	))

	properties.TestingRun(t)
}
