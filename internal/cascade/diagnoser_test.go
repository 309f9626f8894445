package cascade

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geniehq/genie/internal/config"
	"github.com/geniehq/genie/internal/logging"
	"github.com/geniehq/genie/internal/pipeline"
	"github.com/geniehq/genie/internal/template"
	"github.com/geniehq/genie/internal/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// brokenSharedRepo builds the canonical cascade scenario: T1's template is
// itself broken, T2 and T3 only include it.
func brokenSharedRepo(t *testing.T) (root string, t1, t2, t3 types.TemplatePath) {
	t.Helper()
	root = t.TempDir()
	writeFile(t, filepath.Join(root, ".genie.yml"), "")

	t1 = types.TemplatePath(filepath.Join(root, "pkg-a", "util.ts"+types.TemplateSuffix))
	writeFile(t, string(t1), "{{.Unclosed")

	t2 = types.TemplatePath(filepath.Join(root, "pkg-b", "index.ts"+types.TemplateSuffix))
	writeFile(t, string(t2), `{{include "#pkg-a/util.ts`+types.TemplateSuffix+`"}}`)

	t3 = types.TemplatePath(filepath.Join(root, "pkg-c", "index.ts"+types.TemplateSuffix))
	writeFile(t, string(t3), `{{include "#pkg-a/util.ts`+types.TemplateSuffix+`"}}`)

	return root, t1, t2, t3
}

func newPipe(t *testing.T, root string) (*pipeline.Pipeline, *template.Loader) {
	t.Helper()
	loader := template.NewLoader(template.NewRegistry(), root)
	formatter := pipeline.NewFormatter(config.FormatterConfig{Command: "missing-formatter"}, logging.NewNop())

	return pipeline.New(loader, formatter, root, false, logging.NewNop()), loader
}

func TestNeeded(t *testing.T) {
	root, t1, t2, t3 := brokenSharedRepo(t)
	pipe, _ := newPipe(t, root)

	// A shared loader reproduces the race's steady state: one includer
	// observes the original error, the next the poisoned partial.
	var outcomes []types.GenerationOutcome
	for _, tp := range []types.TemplatePath{t1, t2, t3} {
		outcomes = append(outcomes, pipe.Generate(context.Background(), tp))
	}

	for _, outcome := range outcomes {
		assert.Equal(t, types.OutcomeFailed, outcome.Kind)
	}
	assert.True(t, Needed(outcomes))
}

func TestNeededFalseForPlainFailures(t *testing.T) {
	outcomes := []types.GenerationOutcome{
		{Kind: types.OutcomeFailed, Err: assert.AnError},
		{Kind: types.OutcomeUnchanged},
	}
	assert.False(t, Needed(outcomes))
}

func TestDiagnoseAttributesRootCauseAndDependents(t *testing.T) {
	root, t1, t2, t3 := brokenSharedRepo(t)
	pipe, loader := newPipe(t, root)

	var outcomes []types.GenerationOutcome
	for _, tp := range []types.TemplatePath{t1, t2, t3} {
		outcomes = append(outcomes, pipe.Generate(context.Background(), tp))
	}
	require.True(t, Needed(outcomes))

	diagnoser := New(pipe, loader, logging.NewNop())
	findings, rerun := diagnoser.Diagnose(context.Background(), outcomes)

	require.Len(t, findings, 3)
	require.Len(t, rerun, 3)

	byTarget := make(map[string]types.CascadeFinding, len(findings))
	for _, finding := range findings {
		byTarget[finding.Target] = finding
	}

	assert.True(t, byTarget[t1.Target()].IsRootCause, "broken template is the root cause")
	assert.False(t, byTarget[t2.Target()].IsRootCause, "includer is a dependent")
	assert.False(t, byTarget[t3.Target()].IsRootCause, "includer is a dependent")

	// The sequential re-run is deterministic: no finding carries the
	// cascade signature anymore.
	for _, finding := range findings {
		assert.False(t, template.IsCascadeSignature(causeOf(finding.Err)),
			"fresh per-template caches surface original errors")
	}
}

func TestDiagnoseDropsRecoveredTargets(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".genie.yml"), "")

	good := types.TemplatePath(filepath.Join(root, "pkg", "ok.txt"+types.TemplateSuffix))
	writeFile(t, string(good), "fine")

	pipe, loader := newPipe(t, root)

	// Fabricate an outcome claiming this target failed with a signature
	// error; the dedicated re-run succeeds and drops it from findings.
	outcomes := []types.GenerationOutcome{{
		Template: good,
		Target:   good.Target(),
		Kind:     types.OutcomeFailed,
		Err:      &template.UninitializedError{Name: "#lib/x"},
	}}

	diagnoser := New(pipe, loader, logging.NewNop())
	findings, rerun := diagnoser.Diagnose(context.Background(), outcomes)

	assert.Empty(t, findings)
	require.Len(t, rerun, 1)
	assert.Equal(t, types.OutcomeCreated, rerun[0].Kind)
}
