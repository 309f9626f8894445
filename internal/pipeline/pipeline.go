package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/geniehq/genie/internal/errors"
	"github.com/geniehq/genie/internal/logging"
	"github.com/geniehq/genie/internal/template"
	"github.com/geniehq/genie/internal/types"
	"github.com/geniehq/genie/internal/writefs"
)

// Pipeline produces final bytes for one target and classifies them against
// on-disk state. Pipelines are safe for concurrent use across disjoint
// targets; the only shared mutable state is the formatter's memoized config
// path.
type Pipeline struct {
	loader    *template.Loader
	formatter *Formatter
	logger    logging.Logger
	cwd       string
	dryRun    bool
}

// New creates a pipeline. With dryRun set, classification runs identically
// but nothing touches the filesystem.
func New(loader *template.Loader, formatter *Formatter, cwd string, dryRun bool, logger logging.Logger) *Pipeline {
	return &Pipeline{
		loader:    loader,
		formatter: formatter,
		logger:    logger.WithComponent("pipeline"),
		cwd:       cwd,
		dryRun:    dryRun,
	}
}

// WithLoader returns a pipeline identical to p but using the given loader.
// The cascade diagnoser uses this to re-run targets with a fresh partial
// cache.
func (p *Pipeline) WithLoader(loader *template.Loader) *Pipeline {
	clone := *p
	clone.loader = loader

	return &clone
}

// Generate runs the full pipeline for one template and returns its outcome.
// Failures are per-target; they never abort the batch.
func (p *Pipeline) Generate(ctx context.Context, tp types.TemplatePath) types.GenerationOutcome {
	target := tp.Target()
	outcome := types.GenerationOutcome{Template: tp, Target: target}

	if _, err := os.Stat(filepath.Dir(target)); err != nil {
		// No parent directory, nothing to generate into. Terminal for
		// this target, not an error.
		outcome.Kind = types.OutcomeSkipped
		outcome.SkipReason = "parent directory does not exist"

		return outcome
	}

	final, err := p.render(ctx, tp, target)
	if err != nil {
		outcome.Kind = types.OutcomeFailed
		outcome.Err = err

		return outcome
	}

	outcome.Kind = classify(target, final)

	if p.dryRun || outcome.Kind == types.OutcomeUnchanged {
		return outcome
	}

	if err := writefs.WriteFile(target, final, writefs.GeneratedFileMode); err != nil {
		outcome.Kind = types.OutcomeFailed
		outcome.Err = errors.NewGenerateError(
			errors.ErrCodeWriteFailed,
			"writing generated file",
			err,
		).WithTarget(target)

		return outcome
	}

	return outcome
}

// render produces the final bytes for a target: raw template output,
// manifest-marker enrichment, header, external formatting.
func (p *Pipeline) render(ctx context.Context, tp types.TemplatePath, target string) ([]byte, error) {
	raw, err := p.loader.Load(tp)
	if err != nil {
		return nil, err
	}

	if isManifest(target) {
		raw = enrichMarker(raw, tp.Base())
	}

	content := headerFor(target, tp.Base()) + raw
	content = p.formatter.Format(ctx, p.cwd, target, content)

	return []byte(content), nil
}

// classify compares final bytes against current on-disk content. An absent
// file is an empty baseline, so it classifies as Created.
func classify(target string, final []byte) types.OutcomeKind {
	current, err := os.ReadFile(target)
	if err != nil {
		return types.OutcomeCreated
	}

	if bytes.Equal(current, final) {
		return types.OutcomeUnchanged
	}

	return types.OutcomeUpdated
}

// Validate runs the template's optional semantic hook.
func (p *Pipeline) Validate(tp types.TemplatePath) []types.ValidationIssue {
	return p.loader.Validate(tp)
}
