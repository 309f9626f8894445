// Package internal contains the core implementation packages for genie.
//
// This package follows Go's internal package convention, making these
// packages unavailable for import by external modules while providing
// all the core functionality for the genie CLI tool.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - walker: template discovery with symlink-safe deduplication
//   - template: template loading, the programmatic registry, and partials
//   - pipeline: rendering, marker headers, formatting, and atomic writes
//   - cascade: root-cause attribution for cascading template failures
//   - catalog: dependency catalog and overrides composition
//   - refcheck: tsconfig reference validation against workspace manifests
//   - orchestrator: concurrent generation runs and summaries
//   - watcher: file system monitoring with debouncing
//   - config: configuration management with validation
//   - errors: tagged error types shared across the tool
//   - logging: structured logging built on log/slog
//
// # Inter-Package Communication
//
// Packages communicate through well-defined types:
//
//   - Walker produces the template set the orchestrator fans out over
//   - Pipeline consumes templates and produces per-target outcomes
//   - Cascade re-runs failed outcomes against fresh caches
//   - Orchestrator aggregates outcomes into the run summary
package internal
