package template

import (
	"fmt"
	"os"
	"strings"
	texttemplate "text/template"

	"github.com/geniehq/genie/internal/errors"
	"github.com/geniehq/genie/internal/types"
)

// Loader produces raw template output. Every Load reads and parses the
// template fresh; the only cached state is the per-loader partial cache,
// which exists precisely so a poisoned shared helper behaves the way a
// failed module initializer does.
type Loader struct {
	registry *Registry
	partials *PartialCache
	cwd      string
}

// NewLoader creates a loader rooted at the given working directory and
// installs the process-wide include resolver (idempotently).
func NewLoader(registry *Registry, cwd string) *Loader {
	InstallResolver(nil)

	return &Loader{
		registry: registry,
		partials: NewPartialCache(),
		cwd:      cwd,
	}
}

// WithFreshPartials returns a loader sharing the registry and working
// directory but with an empty partial cache. The cascade diagnoser uses this
// as the per-template cache-bust for its sequential re-run.
func (l *Loader) WithFreshPartials() *Loader {
	return &Loader{
		registry: l.registry,
		partials: NewPartialCache(),
		cwd:      l.cwd,
	}
}

// Load produces the raw output for the template at path. Any load-time
// failure is wrapped into a load error carrying the original cause, which
// cascade diagnosis later inspects.
func (l *Loader) Load(path types.TemplatePath) (out string, err error) {
	ctx := ComputeContext(string(path), l.cwd)

	// A registered template that panics during Stringify is the
	// compiled-language version of a thrown module initializer.
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewLoadError(
				errors.ErrCodeTemplateLoad,
				"template panicked",
				fmt.Errorf("panic in template %s: %v", path, r),
			).WithTemplate(string(path))
		}
	}()

	stringifier, registered, err := l.registry.Lookup(string(path))
	if err != nil {
		return "", err
	}

	if registered {
		out, err = stringifier.Stringify(ctx)
		if err != nil {
			return "", errors.NewLoadError(
				errors.ErrCodeTemplateExec,
				"template stringify failed",
				err,
			).WithTemplate(string(path))
		}

		return out, nil
	}

	return l.loadFile(path, ctx)
}

// loadFile parses and executes an on-disk text/template, fresh per call.
func (l *Loader) loadFile(path types.TemplatePath, ctx Context) (string, error) {
	content, err := os.ReadFile(string(path))
	if err != nil {
		return "", errors.NewLoadError(
			errors.ErrCodeTemplateLoad,
			"reading template",
			err,
		).WithTemplate(string(path))
	}

	// Named by basename so template-internal error positions stay stable
	// across invocation directories; the full path goes into the wrap.
	tmpl, err := texttemplate.New(path.Base()).
		Funcs(l.funcMap(path, ctx)).
		Parse(string(content))
	if err != nil {
		return "", errors.NewLoadError(
			errors.ErrCodeTemplateLoad,
			"parsing template",
			fmt.Errorf("parsing template %s: %w", path, err),
		).WithTemplate(string(path))
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, ctx); err != nil {
		return "", errors.NewLoadError(
			errors.ErrCodeTemplateExec,
			"executing template",
			err,
		).WithTemplate(string(path))
	}

	return sb.String(), nil
}

// funcMap exposes template helpers. include renders a shared partial (or
// another template file) resolved via the process-wide resolver.
func (l *Loader) funcMap(path types.TemplatePath, ctx Context) texttemplate.FuncMap {
	return texttemplate.FuncMap{
		"include": func(specifier string) (string, error) {
			resolved, handled := resolveSpecifier(specifier, string(path))
			if !handled {
				return "", fmt.Errorf("unresolved include %q", specifier)
			}

			partial, err := l.partials.Load(specifier, resolved)
			if err != nil {
				return "", err
			}

			var sb strings.Builder
			if err := partial.Execute(&sb, ctx); err != nil {
				return "", err
			}

			return sb.String(), nil
		},
	}
}

// Validate runs the optional Validate hook of a registered template. File
// templates have no semantic hooks and yield nil.
func (l *Loader) Validate(path types.TemplatePath) []types.ValidationIssue {
	validator, ok := l.registry.LookupValidator(string(path))
	if !ok || validator == nil {
		return nil
	}

	return validator.Validate(ComputeContext(string(path), l.cwd))
}
