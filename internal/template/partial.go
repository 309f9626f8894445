package template

import (
	"fmt"
	"os"
	"regexp"
	"sync"
	texttemplate "text/template"

	goerrors "errors"
)

// UninitializedError is the cascade-signature error: a partial whose
// initializer already failed was accessed again. The accessor never sees the
// original failure, only this marker, because initialization runs once per
// cache.
type UninitializedError struct {
	Name string
}

// Error implements the error interface.
func (e *UninitializedError) Error() string {
	return fmt.Sprintf("cannot access %q before initialization", e.Name)
}

// cascadeSignaturePattern matches the uninitialized-access message in error
// text that has lost its concrete type through stringification.
var cascadeSignaturePattern = regexp.MustCompile(`cannot access .+ before initialization`)

// IsCascadeSignature reports whether err (anywhere in its chain) is an
// uninitialized-partial access. A cascade-signature error is by definition
// never attributed to the template that merely observed it.
func IsCascadeSignature(err error) bool {
	if err == nil {
		return false
	}

	var ue *UninitializedError
	if goerrors.As(err, &ue) {
		return true
	}

	return cascadeSignaturePattern.MatchString(err.Error())
}

// partialState tracks one partial's once-per-cache initialization.
type partialState struct {
	once sync.Once
	tmpl *texttemplate.Template
	err  error
}

// PartialCache holds parsed shared-helper templates. Initialization of each
// partial runs exactly once per cache; the accessor that runs it observes
// the original error on failure, every later accessor gets an
// UninitializedError. A fresh cache per template is the cache-bust the
// cascade diagnoser relies on for deterministic attribution.
type PartialCache struct {
	mu       sync.Mutex
	partials map[string]*partialState
}

// NewPartialCache creates an empty partial cache.
func NewPartialCache() *PartialCache {
	return &PartialCache{partials: make(map[string]*partialState)}
}

// Load parses the partial at path, running its initialization at most once.
// name is the specifier the template used, carried into the poisoned-access
// error so diagnosis can tell helper from consumer.
func (c *PartialCache) Load(name, path string) (*texttemplate.Template, error) {
	c.mu.Lock()
	state, ok := c.partials[path]
	if !ok {
		state = &partialState{}
		c.partials[path] = state
	}
	c.mu.Unlock()

	ran := false
	state.once.Do(func() {
		ran = true
		state.tmpl, state.err = parsePartial(name, path)
	})

	if state.err != nil {
		if ran {
			// The accessor whose load ran the initializer sees the
			// original failure. Which concurrent accessor that is,
			// is a race.
			return nil, state.err
		}

		return nil, &UninitializedError{Name: name}
	}

	return state.tmpl, nil
}

func parsePartial(name, path string) (*texttemplate.Template, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading partial %s from %s: %w", name, path, err)
	}

	tmpl, err := texttemplate.New(name).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("initializing partial %s from %s: %w", name, path, err)
	}

	return tmpl, nil
}
