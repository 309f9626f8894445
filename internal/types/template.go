// Package types provides common type definitions used throughout the genie CLI.
// This package contains shared types to avoid circular dependencies between packages.
package types

import (
	"path/filepath"
	"strings"
)

// TemplateSuffix is the filename suffix that marks a file as a genie template.
// The generated target is the template path with this suffix stripped, always
// a sibling in the same directory.
const TemplateSuffix = ".genie.tmpl"

// TemplatePath is an absolute, symlink-resolved path to a template file.
type TemplatePath string

// Target returns the generated file path for this template: the template
// path with the template suffix stripped. The result is independent of the
// working directory the tool was invoked from.
func (p TemplatePath) Target() string {
	return strings.TrimSuffix(string(p), TemplateSuffix)
}

// Base returns the template's basename, used in generated-file headers and
// manifest markers so header content is stable across invocation directories.
func (p TemplatePath) Base() string {
	return filepath.Base(string(p))
}

// IsTemplatePath reports whether path carries the template suffix.
func IsTemplatePath(path string) bool {
	return strings.HasSuffix(path, TemplateSuffix)
}

// OutcomeKind classifies what happened to a single target during a run.
type OutcomeKind string

const (
	// OutcomeCreated means the target did not exist before the write.
	OutcomeCreated OutcomeKind = "created"
	// OutcomeUpdated means the target existed with different content.
	OutcomeUpdated OutcomeKind = "updated"
	// OutcomeUnchanged means the final bytes were identical to disk; the
	// write is skipped but the classification still runs in every mode.
	OutcomeUnchanged OutcomeKind = "unchanged"
	// OutcomeSkipped means generation was not attempted (missing parent
	// directory). Terminal for the target, not an error.
	OutcomeSkipped OutcomeKind = "skipped"
	// OutcomeFailed means generation errored for this target.
	OutcomeFailed OutcomeKind = "failed"
)

// GenerationOutcome is the per-target result of one orchestrator run.
type GenerationOutcome struct {
	// Template is the source template that produced this outcome.
	Template TemplatePath
	// Target is the generated file path.
	Target string
	// Kind classifies the outcome.
	Kind OutcomeKind
	// SkipReason explains a skip (only set when Kind is OutcomeSkipped).
	SkipReason string
	// Err is the generation error (only set when Kind is OutcomeFailed).
	Err error
}

// Failed reports whether this outcome represents a failure.
func (o GenerationOutcome) Failed() bool {
	return o.Kind == OutcomeFailed
}

// CascadeFinding re-attributes a failed outcome after sequential
// re-diagnosis. IsRootCause is true iff the failure's origin trace
// references the failing target's own template.
type CascadeFinding struct {
	Target      string
	Err         error
	IsRootCause bool
}

// ValidationIssue is a semantic problem reported by a template's optional
// Validate hook, unrelated to text generation.
type ValidationIssue struct {
	// Path is the file the issue concerns.
	Path string
	// Message is a human-readable description.
	Message string
}
