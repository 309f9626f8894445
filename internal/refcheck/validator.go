// Package refcheck cross-validates generated tsconfig project references
// against their sibling manifest's workspace dependencies.
//
// A package whose manifest depends on a workspace sibling should reference
// that sibling's project in its tsconfig, and should not reference projects
// it does not depend on. The validator only reports; it never fails a run.
package refcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/geniehq/genie/internal/config"
	"github.com/geniehq/genie/internal/logging"
	"github.com/geniehq/genie/internal/types"
)

// Warning reports one tsconfig whose declared references disagree with its
// manifest's workspace-scoped dependency set.
type Warning struct {
	ConfigPath        string
	MissingReferences []string
	ExtraReferences   []string
}

// String renders the warning for logging.
func (w Warning) String() string {
	var parts []string
	if len(w.MissingReferences) > 0 {
		parts = append(parts, fmt.Sprintf("missing references %v", w.MissingReferences))
	}
	if len(w.ExtraReferences) > 0 {
		parts = append(parts, fmt.Sprintf("extra references %v", w.ExtraReferences))
	}

	return fmt.Sprintf("%s: %s", w.ConfigPath, strings.Join(parts, ", "))
}

// workspaceProtocol marks dependencies resolved to monorepo siblings rather
// than an external registry.
const workspaceProtocol = "workspace:"

// Validator checks tsconfig/manifest pairs under a configurable naming
// convention.
type Validator struct {
	scopePrefix    string
	siblingPattern string
	logger         logging.Logger
}

// New creates a validator from the configured convention.
func New(cfg config.ReferencesConfig, logger logging.Logger) *Validator {
	return &Validator{
		scopePrefix:    cfg.ScopePrefix,
		siblingPattern: cfg.SiblingPattern,
		logger:         logger.WithComponent("refcheck"),
	}
}

// manifest is the subset of package.json the validator reads.
type manifest struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// tsconfig is the subset of a tsconfig-like file the validator reads.
// Generated tsconfig files carry comment headers, so they are JSONC.
type tsconfig struct {
	References []struct {
		Path string `json:"path"`
	} `json:"references"`
}

// Validate checks every discovered tsconfig-like target that has a sibling
// manifest target, returning one warning per disagreeing pair. Pairs whose
// generated files are absent or unparseable are skipped, not failed.
func (v *Validator) Validate(ctx context.Context, templates []types.TemplatePath) []Warning {
	manifestDirs := make(map[string]string)
	var configTargets []string

	for _, tp := range templates {
		target := tp.Target()
		base := filepath.Base(target)
		switch {
		case base == "package.json":
			manifestDirs[filepath.Dir(target)] = target
		case strings.HasPrefix(base, "tsconfig") && filepath.Ext(base) == ".json":
			configTargets = append(configTargets, target)
		}
	}
	sort.Strings(configTargets)

	var warnings []Warning
	for _, configTarget := range configTargets {
		manifestTarget, ok := manifestDirs[filepath.Dir(configTarget)]
		if !ok {
			continue
		}

		warning, err := v.check(configTarget, manifestTarget)
		if err != nil {
			v.logger.Warn(ctx, err, "skipping reference check", "config", configTarget)
			continue
		}
		if warning != nil {
			warnings = append(warnings, *warning)
		}
	}

	return warnings
}

// check compares one tsconfig/manifest pair. A nil warning means the sets
// agree.
func (v *Validator) check(configTarget, manifestTarget string) (*Warning, error) {
	manifestData, err := os.ReadFile(manifestTarget)
	if err != nil {
		return nil, err
	}
	var m manifest
	if err := json.Unmarshal(manifestData, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", manifestTarget, err)
	}

	configData, err := os.ReadFile(configTarget)
	if err != nil {
		return nil, err
	}
	var tc tsconfig
	if err := json.Unmarshal(jsonc.ToJSON(configData), &tc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", configTarget, err)
	}

	expected := v.expectedReferences(m)

	actual := make(map[string]struct{}, len(tc.References))
	for _, ref := range tc.References {
		actual[ref.Path] = struct{}{}
	}

	var missing, extra []string
	for path := range expected {
		if _, ok := actual[path]; !ok {
			missing = append(missing, path)
		}
	}
	for path := range actual {
		if _, ok := expected[path]; !ok {
			extra = append(extra, path)
		}
	}

	if len(missing) == 0 && len(extra) == 0 {
		return nil, nil
	}

	sort.Strings(missing)
	sort.Strings(extra)

	return &Warning{
		ConfigPath:        configTarget,
		MissingReferences: missing,
		ExtraReferences:   extra,
	}, nil
}

// expectedReferences maps each workspace-scoped dependency to its expected
// reference path under the sibling-directory convention. Dependencies
// outside the configured scope are excluded rather than guessed at.
func (v *Validator) expectedReferences(m manifest) map[string]struct{} {
	expected := make(map[string]struct{})

	collect := func(deps map[string]string) {
		for name, version := range deps {
			if !strings.HasPrefix(version, workspaceProtocol) {
				continue
			}
			short, ok := strings.CutPrefix(name, v.scopePrefix)
			if !ok {
				continue
			}
			expected[fmt.Sprintf(v.siblingPattern, short)] = struct{}{}
		}
	}

	collect(m.Dependencies)
	collect(m.DevDependencies)

	return expected
}
