package template

import (
	"path/filepath"
	"strings"
	"sync"
)

// ResolveFunc maps an include specifier, as written inside a template, to an
// absolute file path. importer is the absolute path of the template doing the
// including. A resolver must never fail: when it cannot compute a
// resolution it returns handled=false and default resolution proceeds.
type ResolveFunc func(specifier, importer string) (resolved string, handled bool)

var (
	resolverMu        sync.Mutex
	resolverInstalled bool
	installedResolver ResolveFunc
)

// InstallResolver installs the process-wide include resolver. Installation
// is idempotent and side-effect-free to repeat: the first call wins, later
// calls are no-ops. Passing nil installs the default resolver.
func InstallResolver(fn ResolveFunc) {
	resolverMu.Lock()
	defer resolverMu.Unlock()

	if resolverInstalled {
		return
	}
	resolverInstalled = true

	if fn == nil {
		fn = defaultResolver
	}
	installedResolver = fn
}

// resolveSpecifier runs the installed resolver, falling back to the default
// when none is installed yet.
func resolveSpecifier(specifier, importer string) (string, bool) {
	resolverMu.Lock()
	fn := installedResolver
	resolverMu.Unlock()

	if fn == nil {
		fn = defaultResolver
	}

	return fn(specifier, importer)
}

// defaultResolver handles "#"-prefixed repo-relative specifiers. Templates
// live at arbitrary depths, so "#lib/header" resolves against the repo root
// of the importing file, not a single global root. Bare specifiers get the
// partial extension appended.
func defaultResolver(specifier, importer string) (string, bool) {
	if !strings.HasPrefix(specifier, "#") {
		return "", false
	}

	rel := strings.TrimPrefix(specifier, "#")
	if rel == "" {
		return "", false
	}

	importerDir := filepath.Dir(importer)
	root := findRepoRoot(importerDir, importerDir)

	if filepath.Ext(rel) == "" {
		rel += ".tmpl"
	}

	return filepath.Join(root, filepath.FromSlash(rel)), true
}
