// Package template loads genie templates and produces their raw text output.
//
// Two kinds of template exist. Programmatic templates are Go values
// registered in a Registry and looked up by canonical template path; this is
// the compiled-language substitute for a dynamic module loader, with explicit
// re-registration taking the place of watch-triggered reload. File templates
// are text/template files parsed fresh on every load, so a run always
// observes the current on-disk template even under watch-mode regeneration.
//
// Templates share helpers through partials, referenced with repo-relative
// "#" specifiers. A partial initializes once per loader; a failed
// initializer leaves it poisoned, and later accessors observe an
// "uninitialized" error rather than the original failure. The cascade
// package untangles that.
package template

import (
	"os"
	"path/filepath"
)

// Context is the per-template invocation context passed to Stringify and
// Validate.
type Context struct {
	// Location is the repo-relative directory of the template, derived by
	// walking upward from the template's directory to a repo-root marker,
	// falling back to the working directory.
	Location string
	// CWD is the absolute working directory the tool was invoked from.
	CWD string
}

// repoRootMarkers are filenames whose presence marks a repository root.
var repoRootMarkers = []string{".genie.yml", ".git"}

// ComputeContext derives the invocation context for a template at path.
func ComputeContext(templatePath, cwd string) Context {
	dir := filepath.Dir(templatePath)
	root := findRepoRoot(dir, cwd)

	location, err := filepath.Rel(root, dir)
	if err != nil {
		location = "."
	}

	return Context{Location: location, CWD: cwd}
}

// findRepoRoot walks upward from dir looking for a repo-root marker file,
// falling back to fallback when none is found.
func findRepoRoot(dir, fallback string) string {
	for cur := dir; ; {
		for _, marker := range repoRootMarkers {
			if _, err := os.Lstat(filepath.Join(cur, marker)); err == nil {
				return cur
			}
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return fallback
		}
		cur = parent
	}
}
