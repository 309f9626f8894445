// Package orchestrator drives a full genie run: discovery, unbounded
// concurrent generation, cascade re-diagnosis, reference validation, and the
// final summary.
//
// Targets are disjoint files, so the fan-out has no concurrency cap and no
// ordering guarantees; outcomes are collected unordered and sorted only for
// the summary. The batch never short-circuits: one bad template must not
// hide the results of the other 99%.
package orchestrator

import (
	"context"
	"sync"

	"github.com/geniehq/genie/internal/cascade"
	"github.com/geniehq/genie/internal/logging"
	"github.com/geniehq/genie/internal/pipeline"
	"github.com/geniehq/genie/internal/refcheck"
	"github.com/geniehq/genie/internal/template"
	"github.com/geniehq/genie/internal/types"
	"github.com/geniehq/genie/internal/walker"
)

// Mode selects what a run does with its classifications.
type Mode int

const (
	// ModeGenerate writes out-of-date targets.
	ModeGenerate Mode = iota
	// ModeCheck writes nothing and treats drift as failure.
	ModeCheck
	// ModeDryRun writes nothing and reports what generate would do.
	ModeDryRun
)

// String returns the mode's command name.
func (m Mode) String() string {
	switch m {
	case ModeCheck:
		return "check"
	case ModeDryRun:
		return "dry-run"
	default:
		return "generate"
	}
}

// Orchestrator wires the components of a run. Construct once, run once.
type Orchestrator struct {
	walk      *walker.Walker
	loader    *template.Loader
	pipe      *pipeline.Pipeline
	validator *refcheck.Validator
	logger    logging.Logger
	mode      Mode
}

// New creates an orchestrator over explicitly constructed components.
func New(walk *walker.Walker, loader *template.Loader, pipe *pipeline.Pipeline, validator *refcheck.Validator, mode Mode, logger logging.Logger) *Orchestrator {
	return &Orchestrator{
		walk:      walk,
		loader:    loader,
		pipe:      pipe,
		validator: validator,
		logger:    logger.WithComponent("orchestrator"),
		mode:      mode,
	}
}

// Run executes the full pass over every template under root and returns the
// summary. The returned error is reserved for failures that prevent the run
// itself (an unreadable root); per-target failures live in the summary.
func (o *Orchestrator) Run(ctx context.Context, root string) (*Summary, error) {
	discovered, err := o.walk.Walk(ctx, root)
	if err != nil {
		return nil, err
	}

	o.logger.Info(ctx, "discovered templates",
		"count", len(discovered.Templates), "mode", o.mode.String())

	outcomes := o.generateAll(ctx, discovered.Templates)

	var findings []types.CascadeFinding
	if cascade.Needed(outcomes) {
		o.logger.Warn(ctx, nil, "cascade signature observed, re-running failed templates sequentially")
		diagnoser := cascade.New(o.pipe, o.loader, o.logger)

		var rerun []types.GenerationOutcome
		findings, rerun = diagnoser.Diagnose(ctx, outcomes)
		outcomes = replaceFailed(outcomes, rerun)
	}

	warnings := o.validator.Validate(ctx, discovered.Templates)
	for _, warning := range warnings {
		o.logger.Warn(ctx, nil, "reference mismatch", "detail", warning.String())
	}

	return newSummary(o.mode, outcomes, findings, warnings), nil
}

// generateAll fans one goroutine out per template, with no upper bound:
// every target is a disjoint file and formatter subprocesses are
// independent. Results arrive unordered.
func (o *Orchestrator) generateAll(ctx context.Context, templates []types.TemplatePath) []types.GenerationOutcome {
	results := make(chan types.GenerationOutcome, len(templates))

	var wg sync.WaitGroup
	for _, tp := range templates {
		wg.Add(1)
		go func(tp types.TemplatePath) {
			defer wg.Done()
			results <- o.pipe.Generate(ctx, tp)
		}(tp)
	}

	wg.Wait()
	close(results)

	outcomes := make([]types.GenerationOutcome, 0, len(templates))
	for outcome := range results {
		outcomes = append(outcomes, outcome)
	}

	return outcomes
}

// replaceFailed swaps originally-failed outcomes for their sequential
// re-run results, keyed by target.
func replaceFailed(outcomes, rerun []types.GenerationOutcome) []types.GenerationOutcome {
	byTarget := make(map[string]types.GenerationOutcome, len(rerun))
	for _, outcome := range rerun {
		byTarget[outcome.Target] = outcome
	}

	replaced := make([]types.GenerationOutcome, 0, len(outcomes))
	for _, outcome := range outcomes {
		if outcome.Failed() {
			if updated, ok := byTarget[outcome.Target]; ok {
				replaced = append(replaced, updated)
				continue
			}
		}
		replaced = append(replaced, outcome)
	}

	return replaced
}

// ValidateTemplates runs every registered template's semantic Validate hook
// plus the reference validator, without generating anything.
func (o *Orchestrator) ValidateTemplates(ctx context.Context, root string) ([]types.ValidationIssue, []refcheck.Warning, error) {
	discovered, err := o.walk.Walk(ctx, root)
	if err != nil {
		return nil, nil, err
	}

	var issues []types.ValidationIssue
	for _, tp := range discovered.Templates {
		issues = append(issues, o.pipe.Validate(tp)...)
	}

	return issues, o.validator.Validate(ctx, discovered.Templates), nil
}
