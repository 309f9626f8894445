// Package walker provides symlink-aware template discovery for genie.
//
// The walker traverses a monorepo looking for files with the template suffix,
// skipping a fixed denylist of infrastructure directories. Monorepos in the
// wild mount sibling repositories through symlinked directories, so the walk
// resolves every symlinked directory it meets: links that point back inside
// the root are skipped (the canonical tree is already being walked), links
// pointing outside are walked exactly once. Collected paths are canonicalized
// and deduplicated so two symlinked routes to the same physical file never
// yield two templates.
package walker

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/geniehq/genie/internal/errors"
	"github.com/geniehq/genie/internal/logging"
	"github.com/geniehq/genie/internal/types"
)

// defaultDenylist holds directory basenames that are never traversed:
// version control, build caches, and dependency install directories.
var defaultDenylist = []string{
	".git",
	".hg",
	"node_modules",
	"dist",
	"build",
	".turbo",
	".cache",
}

// Warning records a non-fatal problem met during traversal, such as a broken
// symlink or a stat failure. Warnings never change exit status.
type Warning struct {
	Path string
	Err  error
}

// Result is the outcome of one walk.
type Result struct {
	// Templates is the deduplicated, canonicalized, sorted set of
	// discovered template paths.
	Templates []types.TemplatePath
	// Warnings lists entries that were skipped due to stat or readlink
	// failures.
	Warnings []Warning
}

// Walker discovers template files under a root directory.
type Walker struct {
	denylist map[string]struct{}
	logger   logging.Logger
}

// Option configures a Walker.
type Option func(*Walker)

// WithExclude adds directory basenames to the traversal denylist.
func WithExclude(names ...string) Option {
	return func(w *Walker) {
		for _, name := range names {
			if name != "" {
				w.denylist[name] = struct{}{}
			}
		}
	}
}

// New creates a walker with the built-in infrastructure denylist. The
// external member root (the mount point for sibling repositories) is passed
// as an exclusion by the caller.
func New(logger logging.Logger, opts ...Option) *Walker {
	w := &Walker{
		denylist: make(map[string]struct{}, len(defaultDenylist)),
		logger:   logger.WithComponent("walker"),
	}
	for _, name := range defaultDenylist {
		w.denylist[name] = struct{}{}
	}
	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Walk returns all template paths reachable from root. Only a failure to
// read the root directory itself is fatal; individual stat and readlink
// failures degrade to warnings.
func (w *Walker) Walk(ctx context.Context, root string) (*Result, error) {
	canonicalRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeRootUnreadable, "resolving root directory "+root, err)
	}
	canonicalRoot, err = filepath.Abs(canonicalRoot)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeRootUnreadable, "resolving root directory "+root, err)
	}

	state := &walkState{
		// boundary is a path-prefix check, so it needs the trailing
		// separator: /repo must not match /repo-sibling.
		boundary:     canonicalRoot + string(filepath.Separator),
		seenExternal: make(map[string]struct{}),
	}

	if err := w.walkDir(ctx, canonicalRoot, state, true); err != nil {
		return nil, err
	}

	// Canonicalize once more and dedupe by canonical identity: distinct
	// symlinked routes can still yield the same physical file twice.
	unique := make(map[string]struct{}, len(state.collected))
	var templates []types.TemplatePath
	for _, path := range state.collected {
		canonical, err := filepath.EvalSymlinks(path)
		if err != nil {
			state.warnings = append(state.warnings, Warning{Path: path, Err: err})
			continue
		}
		if _, ok := unique[canonical]; ok {
			continue
		}
		unique[canonical] = struct{}{}
		templates = append(templates, types.TemplatePath(canonical))
	}

	sort.Slice(templates, func(i, j int) bool { return templates[i] < templates[j] })

	for _, warning := range state.warnings {
		w.logger.Warn(ctx, warning.Err, "skipping unreadable entry", "path", warning.Path)
	}

	return &Result{Templates: templates, Warnings: state.warnings}, nil
}

type walkState struct {
	boundary     string
	seenExternal map[string]struct{}
	collected    []string
	warnings     []Warning
}

// walkDir enumerates one directory. isRoot marks the initial call, whose
// read failure is the only fatal condition.
func (w *Walker) walkDir(ctx context.Context, dir string, state *walkState, isRoot bool) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if isRoot {
			return errors.NewIOError(errors.ErrCodeRootUnreadable, "reading root directory "+dir, err)
		}
		state.warnings = append(state.warnings, Warning{Path: dir, Err: err})

		return nil
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if entry.Type()&os.ModeSymlink != 0 {
			if err := w.walkSymlink(ctx, path, state); err != nil {
				return err
			}
			continue
		}

		if entry.IsDir() {
			if _, denied := w.denylist[entry.Name()]; denied {
				continue
			}
			if err := w.walkDir(ctx, path, state, false); err != nil {
				return err
			}
			continue
		}

		if types.IsTemplatePath(entry.Name()) {
			state.collected = append(state.collected, path)
		}
	}

	return nil
}

// walkSymlink resolves a symlinked entry and decides whether its target is
// admitted. Targets inside the root boundary are skipped entirely: the
// canonical tree is walked directly, and following the alias would produce
// duplicate generation and duplicate concurrent writers on the same physical
// file. External targets are walked once, keyed by resolved path.
func (w *Walker) walkSymlink(ctx context.Context, path string, state *walkState) error {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		// Broken symlink. Record and move on.
		state.warnings = append(state.warnings, Warning{Path: path, Err: err})

		return nil
	}

	info, err := os.Stat(resolved)
	if err != nil {
		state.warnings = append(state.warnings, Warning{Path: path, Err: err})

		return nil
	}

	if !info.IsDir() {
		if types.IsTemplatePath(path) {
			state.collected = append(state.collected, path)
		}

		return nil
	}

	if strings.HasPrefix(resolved+string(filepath.Separator), state.boundary) {
		// Alias back into the tree being walked.
		return nil
	}

	if _, ok := state.seenExternal[resolved]; ok {
		// A second symlink to the same external target.
		return nil
	}
	state.seenExternal[resolved] = struct{}{}

	if _, denied := w.denylist[filepath.Base(path)]; denied {
		return nil
	}

	return w.walkDir(ctx, resolved, state, false)
}
