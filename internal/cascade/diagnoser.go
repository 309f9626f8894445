// Package cascade diagnoses cascading template-initialization failures.
//
// A shared helper that fails during its own initialization stays poisoned
// for the rest of the run: every template that loads it afterwards sees an
// "uninitialized" error instead of the original failure. Under unbounded
// concurrent generation many unrelated templates fail together with that
// symptom, and which template observed the real exception first is a race.
//
// Diagnosis trades concurrency for determinism: once the cascade signature
// appears anywhere in the failure set, every originally-failed template is
// re-generated one at a time, each with a fresh partial cache, so the true
// origin reliably surfaces the original error on its own dedicated attempt.
package cascade

import (
	"context"
	"sort"
	"strings"

	stderrors "errors"

	"github.com/geniehq/genie/internal/errors"
	"github.com/geniehq/genie/internal/logging"
	"github.com/geniehq/genie/internal/pipeline"
	"github.com/geniehq/genie/internal/template"
	"github.com/geniehq/genie/internal/types"
)

// Diagnoser re-runs failed templates sequentially and partitions their
// failures into root causes and dependents.
type Diagnoser struct {
	pipe   *pipeline.Pipeline
	loader *template.Loader
	logger logging.Logger
}

// New creates a diagnoser that re-runs targets through pipe, swapping in
// fresh-partial loaders derived from loader.
func New(pipe *pipeline.Pipeline, loader *template.Loader, logger logging.Logger) *Diagnoser {
	return &Diagnoser{
		pipe:   pipe,
		loader: loader,
		logger: logger.WithComponent("cascade"),
	}
}

// Needed reports whether the failure set contains at least one
// cascade-signature error, the precondition for re-diagnosis.
func Needed(outcomes []types.GenerationOutcome) bool {
	for _, outcome := range outcomes {
		if outcome.Failed() && template.IsCascadeSignature(outcome.Err) {
			return true
		}
	}

	return false
}

// Diagnose re-runs every failed outcome sequentially, one template fully
// resolved before the next starts, and returns a finding per re-failed
// target. Templates that succeed on the dedicated re-run drop out of the
// failure set; the returned outcomes replace the original failed ones.
func (d *Diagnoser) Diagnose(ctx context.Context, outcomes []types.GenerationOutcome) ([]types.CascadeFinding, []types.GenerationOutcome) {
	failed := make([]types.GenerationOutcome, 0, len(outcomes))
	for _, outcome := range outcomes {
		if outcome.Failed() {
			failed = append(failed, outcome)
		}
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i].Target < failed[j].Target })

	var findings []types.CascadeFinding
	var rerun []types.GenerationOutcome

	for _, original := range failed {
		// Fresh partial cache per template: the deterministic
		// cache-bust that lets the origin surface its own exception.
		fresh := d.pipe.WithLoader(d.loader.WithFreshPartials())
		outcome := fresh.Generate(ctx, original.Template)
		rerun = append(rerun, outcome)

		if !outcome.Failed() {
			d.logger.Info(ctx, "target recovered on sequential re-run", "target", outcome.Target)
			continue
		}

		findings = append(findings, types.CascadeFinding{
			Target:      outcome.Target,
			Err:         outcome.Err,
			IsRootCause: attributedTo(outcome.Err, outcome.Target),
		})
	}

	return findings, rerun
}

// attributedTo reports whether a failure belongs to the target that surfaced
// it: the underlying cause is not itself a cascade-signature error, and its
// origin trace references the target's own path. A cascade-signature error
// is by definition never attributed to its observer.
func attributedTo(err error, target string) bool {
	cause := causeOf(err)
	if cause == nil {
		return false
	}

	if template.IsCascadeSignature(cause) {
		return false
	}

	return strings.Contains(cause.Error(), target)
}

// causeOf extracts the underlying cause from a structured error, keeping the
// origin separate from the context that surfaced it.
func causeOf(err error) error {
	var ge *errors.GenieError
	if stderrors.As(err, &ge) && ge.Cause != nil {
		return ge.Cause
	}

	return err
}
