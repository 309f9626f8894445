package orchestrator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/geniehq/genie/internal/refcheck"
	"github.com/geniehq/genie/internal/types"
)

// Summary is the ordered result of a run. Outcomes are sorted by target path
// so two runs over the same tree produce identical reports regardless of
// goroutine scheduling.
type Summary struct {
	Mode     Mode
	Outcomes []types.GenerationOutcome
	Findings []types.CascadeFinding
	Warnings []refcheck.Warning

	Created   int
	Updated   int
	Unchanged int
	Skipped   int
	Failed    int
}

func newSummary(mode Mode, outcomes []types.GenerationOutcome, findings []types.CascadeFinding, warnings []refcheck.Warning) *Summary {
	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].Target < outcomes[j].Target
	})

	s := &Summary{
		Mode:     mode,
		Outcomes: outcomes,
		Findings: findings,
		Warnings: warnings,
	}
	for _, outcome := range outcomes {
		switch outcome.Kind {
		case types.OutcomeCreated:
			s.Created++
		case types.OutcomeUpdated:
			s.Updated++
		case types.OutcomeUnchanged:
			s.Unchanged++
		case types.OutcomeSkipped:
			s.Skipped++
		case types.OutcomeFailed:
			s.Failed++
		}
	}
	return s
}

// RootCauses counts findings attributed as origins of the cascade.
func (s *Summary) RootCauses() int {
	n := 0
	for _, f := range s.Findings {
		if f.IsRootCause {
			n++
		}
	}
	return n
}

// Dependents counts findings that failed only because a shared partial was
// poisoned by another template's root cause.
func (s *Summary) Dependents() int {
	return len(s.Findings) - s.RootCauses()
}

// Drifted reports whether any target was, or would have been, rewritten.
func (s *Summary) Drifted() bool {
	return s.Created > 0 || s.Updated > 0
}

// Err returns the error the run should exit with, or nil for success. In
// check mode drift is failure; in every mode a failed target is failure.
func (s *Summary) Err() error {
	if s.Failed > 0 {
		if len(s.Findings) > 0 {
			return fmt.Errorf("%d generation failures (%d root causes, %d dependent failures)",
				s.Failed, s.RootCauses(), s.Dependents())
		}
		return fmt.Errorf("%d generation failures", s.Failed)
	}
	if s.Mode == ModeCheck && s.Drifted() {
		return fmt.Errorf("%d files out of date", s.Created+s.Updated)
	}
	return nil
}

// String renders the human-readable report: per-target lines for anything
// actionable, then the count line.
func (s *Summary) String() string {
	var b strings.Builder

	verb := map[types.OutcomeKind]string{
		types.OutcomeCreated: "created",
		types.OutcomeUpdated: "updated",
		types.OutcomeSkipped: "skipped",
		types.OutcomeFailed:  "failed",
	}
	if s.Mode != ModeGenerate {
		verb[types.OutcomeCreated] = "would create"
		verb[types.OutcomeUpdated] = "would update"
	}

	for _, outcome := range s.Outcomes {
		switch outcome.Kind {
		case types.OutcomeUnchanged:
		case types.OutcomeSkipped:
			fmt.Fprintf(&b, "  %s %s (%s)\n", verb[outcome.Kind], outcome.Target, outcome.SkipReason)
		case types.OutcomeFailed:
			fmt.Fprintf(&b, "  %s %s: %v\n", verb[outcome.Kind], outcome.Target, outcome.Err)
		default:
			fmt.Fprintf(&b, "  %s %s\n", verb[outcome.Kind], outcome.Target)
		}
	}

	if len(s.Findings) > 0 {
		fmt.Fprintf(&b, "cascade: %d root causes, %d dependent failures\n",
			s.RootCauses(), s.Dependents())
		for _, f := range s.Findings {
			if f.IsRootCause {
				fmt.Fprintf(&b, "  root cause: %s: %v\n", f.Target, f.Err)
			}
		}
	}

	for _, w := range s.Warnings {
		fmt.Fprintf(&b, "warning: %s\n", w.String())
	}

	fmt.Fprintf(&b, "%d created, %d updated, %d unchanged, %d skipped, %d failed\n",
		s.Created, s.Updated, s.Unchanged, s.Skipped, s.Failed)

	return b.String()
}
