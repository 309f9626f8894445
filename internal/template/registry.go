package template

import (
	"fmt"
	"sync"

	"github.com/geniehq/genie/internal/errors"
	"github.com/geniehq/genie/internal/types"
)

// Stringifier is the contract every template must satisfy: given the
// invocation context, produce the raw text of the generated file.
type Stringifier interface {
	Stringify(ctx Context) (string, error)
}

// Validator is an optional hook for semantic checks unrelated to text
// generation.
type Validator interface {
	Validate(ctx Context) []types.ValidationIssue
}

// StringifyFunc adapts a plain function to the Stringifier interface.
type StringifyFunc func(ctx Context) (string, error)

// Stringify implements Stringifier.
func (f StringifyFunc) Stringify(ctx Context) (string, error) {
	return f(ctx)
}

// Registry holds programmatic templates keyed by canonical template path.
// Entries are stored untyped so registration mistakes surface as load errors
// naming the file and the observed type, mirroring a dynamic loader's
// export-shape validation.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]any
}

// NewRegistry creates an empty template registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]any)}
}

var sharedRegistry = NewRegistry()

// SharedRegistry returns the process-wide registry that programmatic
// templates register into, typically from an init function.
func SharedRegistry() *Registry {
	return sharedRegistry
}

// Register associates a template value with a canonical template path.
// Re-registration replaces the previous entry; watch-triggered reloads
// re-register rather than mutate.
func (r *Registry) Register(path string, template any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[path] = template
}

// Deregister removes a registered template.
func (r *Registry) Deregister(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, path)
}

// Lookup returns the Stringifier registered for path. The second return is
// false when nothing is registered. A registered value of the wrong shape is
// a load error naming the file and the actual observed type.
func (r *Registry) Lookup(path string) (Stringifier, bool, error) {
	r.mu.RLock()
	entry, ok := r.entries[path]
	r.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	stringifier, ok := entry.(Stringifier)
	if !ok {
		return nil, true, errors.NewLoadError(
			errors.ErrCodeTemplateShape,
			fmt.Sprintf("registered template has no stringify function (got %T)", entry),
			nil,
		).WithTemplate(path)
	}

	return stringifier, true, nil
}

// LookupValidator returns the Validator registered for path, if any.
func (r *Registry) LookupValidator(path string) (Validator, bool) {
	r.mu.RLock()
	entry, ok := r.entries[path]
	r.mu.RUnlock()

	if !ok {
		return nil, false
	}

	validator, ok := entry.(Validator)

	return validator, ok
}
