package template

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geniehq/genie/internal/errors"
	"github.com/geniehq/genie/internal/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestComputeContextFindsRepoRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".genie.yml"), "")
	tmplPath := filepath.Join(root, "packages", "core", "package.json"+types.TemplateSuffix)
	writeFile(t, tmplPath, "")

	ctx := ComputeContext(tmplPath, "/elsewhere")

	assert.Equal(t, filepath.Join("packages", "core"), ctx.Location)
	assert.Equal(t, "/elsewhere", ctx.CWD)
}

func TestComputeContextFallsBackToCWD(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "a", "file.txt"+types.TemplateSuffix)
	writeFile(t, tmplPath, "")

	ctx := ComputeContext(tmplPath, dir)

	assert.Equal(t, "a", ctx.Location)
}

func TestLoadFileTemplate(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".genie.yml"), "")
	tmplPath := filepath.Join(root, "pkg", "notes.md"+types.TemplateSuffix)
	writeFile(t, tmplPath, "location: {{.Location}}")

	loader := NewLoader(NewRegistry(), root)
	out, err := loader.Load(types.TemplatePath(tmplPath))
	require.NoError(t, err)
	assert.Equal(t, "location: pkg", out)
}

func TestLoadIsFreshPerInvocation(t *testing.T) {
	root := t.TempDir()
	tmplPath := filepath.Join(root, "file.txt"+types.TemplateSuffix)
	writeFile(t, tmplPath, "one")

	loader := NewLoader(NewRegistry(), root)

	out, err := loader.Load(types.TemplatePath(tmplPath))
	require.NoError(t, err)
	assert.Equal(t, "one", out)

	// No module-level caching across loads: edits are observed.
	writeFile(t, tmplPath, "two")
	out, err = loader.Load(types.TemplatePath(tmplPath))
	require.NoError(t, err)
	assert.Equal(t, "two", out)
}

func TestLoadRegisteredTemplate(t *testing.T) {
	root := t.TempDir()
	tmplPath := filepath.Join(root, "gen.txt"+types.TemplateSuffix)

	registry := NewRegistry()
	registry.Register(tmplPath, StringifyFunc(func(ctx Context) (string, error) {
		return "from " + ctx.CWD, nil
	}))

	loader := NewLoader(registry, root)
	out, err := loader.Load(types.TemplatePath(tmplPath))
	require.NoError(t, err)
	assert.Equal(t, "from "+root, out)
}

func TestLoadWrongRegisteredShape(t *testing.T) {
	root := t.TempDir()
	tmplPath := filepath.Join(root, "gen.txt"+types.TemplateSuffix)

	registry := NewRegistry()
	registry.Register(tmplPath, 42)

	loader := NewLoader(registry, root)
	_, err := loader.Load(types.TemplatePath(tmplPath))
	require.Error(t, err)
	assert.True(t, errors.IsLoadError(err))
	// The error names the observed type, as a dynamic loader would.
	assert.Contains(t, err.Error(), "int")
	assert.Contains(t, err.Error(), tmplPath)
}

func TestLoadPanickingTemplateIsLoadError(t *testing.T) {
	root := t.TempDir()
	tmplPath := filepath.Join(root, "gen.txt"+types.TemplateSuffix)

	registry := NewRegistry()
	registry.Register(tmplPath, StringifyFunc(func(Context) (string, error) {
		panic("boom")
	}))

	loader := NewLoader(registry, root)
	_, err := loader.Load(types.TemplatePath(tmplPath))
	require.Error(t, err)
	assert.True(t, errors.IsLoadError(err))
	assert.Contains(t, err.Error(), "boom")
}

func TestIncludeResolvesAgainstRepoRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".genie.yml"), "")
	writeFile(t, filepath.Join(root, "lib", "header.tmpl"), "generated for {{.Location}}")
	tmplPath := filepath.Join(root, "deep", "nested", "pkg", "file.txt"+types.TemplateSuffix)
	writeFile(t, tmplPath, `{{include "#lib/header"}}`)

	loader := NewLoader(NewRegistry(), root)
	out, err := loader.Load(types.TemplatePath(tmplPath))
	require.NoError(t, err)
	assert.Equal(t, "generated for "+filepath.Join("deep", "nested", "pkg"), out)
}

func TestPartialInitializationRunsOnce(t *testing.T) {
	root := t.TempDir()
	broken := filepath.Join(root, "lib", "bad.tmpl")
	writeFile(t, broken, "{{.Unclosed")

	cache := NewPartialCache()

	_, first := cache.Load("#lib/bad", broken)
	require.Error(t, first)
	assert.False(t, IsCascadeSignature(first), "first accessor sees the original error")

	_, second := cache.Load("#lib/bad", broken)
	require.Error(t, second)
	assert.True(t, IsCascadeSignature(second), "later accessors see the poisoned state")
	assert.Contains(t, second.Error(), "#lib/bad")
}

func TestIsCascadeSignature(t *testing.T) {
	assert.True(t, IsCascadeSignature(&UninitializedError{Name: "#lib/x"}))
	assert.True(t, IsCascadeSignature(fmt.Errorf("wrapped: %w", &UninitializedError{Name: "#lib/x"})))
	assert.True(t, IsCascadeSignature(fmt.Errorf(`cannot access "#lib/x" before initialization`)))
	assert.False(t, IsCascadeSignature(fmt.Errorf("plain failure")))
	assert.False(t, IsCascadeSignature(nil))
}

func TestWithFreshPartialsBustsPoisonedState(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".genie.yml"), "")
	writeFile(t, filepath.Join(root, "lib", "bad.tmpl"), "{{.Unclosed")
	tmplPath := filepath.Join(root, "pkg", "file.txt"+types.TemplateSuffix)
	writeFile(t, tmplPath, `{{include "#lib/bad"}}`)

	loader := NewLoader(NewRegistry(), root)

	_, err := loader.Load(types.TemplatePath(tmplPath))
	require.Error(t, err)

	_, err = loader.Load(types.TemplatePath(tmplPath))
	require.Error(t, err)
	assert.True(t, IsCascadeSignature(err), "same cache observes the poisoned partial")

	fresh := loader.WithFreshPartials()
	_, err = fresh.Load(types.TemplatePath(tmplPath))
	require.Error(t, err)
	assert.False(t, IsCascadeSignature(err), "fresh cache re-runs the original initializer")
}

func TestValidateHook(t *testing.T) {
	root := t.TempDir()
	tmplPath := filepath.Join(root, "gen.txt"+types.TemplateSuffix)

	registry := NewRegistry()
	registry.Register(tmplPath, validatingTemplate{})

	loader := NewLoader(registry, root)
	issues := loader.Validate(types.TemplatePath(tmplPath))
	require.Len(t, issues, 1)
	assert.Equal(t, "missing license field", issues[0].Message)

	assert.Nil(t, loader.Validate(types.TemplatePath(filepath.Join(root, "other"+types.TemplateSuffix))))
}

type validatingTemplate struct{}

func (validatingTemplate) Stringify(Context) (string, error) { return "{}", nil }

func (validatingTemplate) Validate(ctx Context) []types.ValidationIssue {
	return []types.ValidationIssue{{Path: ctx.Location, Message: "missing license field"}}
}
