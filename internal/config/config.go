// Package config provides configuration management for genie using Viper for
// flexible configuration loading from files, environment variables, and
// command-line flags.
//
// The configuration system supports YAML files (.genie.yml), environment
// variable overrides with GENIE_ prefix, and validation. It manages walker
// exclusions, the external formatter invocation, and the reference-validator
// naming convention.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Walker     WalkerConfig     `yaml:"walker"`
	Formatter  FormatterConfig  `yaml:"formatter"`
	References ReferencesConfig `yaml:"references"`
	Watch      WatchConfig      `yaml:"watch"`
}

// WalkerConfig controls template discovery.
type WalkerConfig struct {
	// Exclude lists directory basenames skipped during traversal, in
	// addition to the built-in infrastructure denylist.
	Exclude []string `yaml:"exclude"`
	// ExternalMemberRoot is the directory used to mount sibling
	// repositories; it is never traversed.
	ExternalMemberRoot string `yaml:"external_member_root"`
}

// FormatterConfig describes the external formatter subprocess. Any failure
// to run it degrades to unformatted output, never a generation error.
type FormatterConfig struct {
	Command string `yaml:"command"`
	// ConfigNames are candidate config filenames searched upward from the
	// working directory; the first hit is memoized process-wide.
	ConfigNames []string `yaml:"config_names"`
	// Extensions lists target extensions piped through the formatter.
	Extensions []string `yaml:"extensions"`
}

// ReferencesConfig holds the dependency-name to reference-path convention
// used by the reference validator. Only dependencies under ScopePrefix are
// mapped; everything else is excluded rather than guessed at.
type ReferencesConfig struct {
	ScopePrefix string `yaml:"scope_prefix"`
	// SiblingPattern is the expected reference path for a dependency short
	// name, with %s substituted (default "../%s").
	SiblingPattern string `yaml:"sibling_pattern"`
}

// WatchConfig controls watch-mode regeneration.
type WatchConfig struct {
	DebounceMillis int `yaml:"debounce_millis"`
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Handle slices set via viper (workaround for viper slice handling)
	if viper.IsSet("walker.exclude") && len(config.Walker.Exclude) == 0 {
		config.Walker.Exclude = viper.GetStringSlice("walker.exclude")
	}
	if viper.IsSet("formatter.extensions") && len(config.Formatter.Extensions) == 0 {
		config.Formatter.Extensions = viper.GetStringSlice("formatter.extensions")
	}
	if viper.IsSet("formatter.config_names") && len(config.Formatter.ConfigNames) == 0 {
		config.Formatter.ConfigNames = viper.GetStringSlice("formatter.config_names")
	}

	// Multi-word keys do not line up with mapstructure's lowercased field
	// names, so read them explicitly.
	if viper.IsSet("walker.external_member_root") {
		config.Walker.ExternalMemberRoot = viper.GetString("walker.external_member_root")
	}
	if viper.IsSet("references.scope_prefix") {
		config.References.ScopePrefix = viper.GetString("references.scope_prefix")
	}
	if viper.IsSet("references.sibling_pattern") {
		config.References.SiblingPattern = viper.GetString("references.sibling_pattern")
	}
	if viper.IsSet("watch.debounce_millis") {
		config.Watch.DebounceMillis = viper.GetInt("watch.debounce_millis")
	}

	if config.Walker.ExternalMemberRoot == "" {
		config.Walker.ExternalMemberRoot = "external"
	}

	if config.Formatter.Command == "" {
		config.Formatter.Command = "prettier"
	}
	if len(config.Formatter.ConfigNames) == 0 {
		config.Formatter.ConfigNames = []string{".prettierrc", ".prettierrc.json", ".prettierrc.yml", "prettier.config.js"}
	}
	if len(config.Formatter.Extensions) == 0 {
		config.Formatter.Extensions = []string{".json", ".yml", ".yaml", ".md", ".js", ".ts", ".cjs", ".mjs"}
	}

	if config.References.ScopePrefix == "" {
		config.References.ScopePrefix = "@repo/"
	}
	if config.References.SiblingPattern == "" {
		config.References.SiblingPattern = "../%s"
	}

	if config.Watch.DebounceMillis <= 0 {
		config.Watch.DebounceMillis = 300
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validateConfig validates configuration values for security and correctness.
func validateConfig(config *Config) error {
	if err := validateWalkerConfig(&config.Walker); err != nil {
		return fmt.Errorf("walker config: %w", err)
	}

	if err := validateFormatterConfig(&config.Formatter); err != nil {
		return fmt.Errorf("formatter config: %w", err)
	}

	if err := validateReferencesConfig(&config.References); err != nil {
		return fmt.Errorf("references config: %w", err)
	}

	return nil
}

// validateWalkerConfig validates walker configuration values.
func validateWalkerConfig(config *WalkerConfig) error {
	for _, name := range config.Exclude {
		if name == "" {
			return fmt.Errorf("empty exclude entry")
		}
		if strings.ContainsRune(name, filepath.Separator) {
			return fmt.Errorf("exclude entries are directory basenames, got path: %s", name)
		}
	}

	if strings.ContainsRune(config.ExternalMemberRoot, filepath.Separator) {
		return fmt.Errorf("external_member_root must be a directory basename: %s", config.ExternalMemberRoot)
	}

	return nil
}

// validateFormatterConfig validates the formatter invocation.
func validateFormatterConfig(config *FormatterConfig) error {
	// The command is executed directly, never through a shell, but reject
	// obviously hostile values early.
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(config.Command, char) {
			return fmt.Errorf("formatter command contains dangerous character: %s", char)
		}
	}

	for _, ext := range config.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("formatter extension must start with '.': %s", ext)
		}
	}

	return nil
}

// validateReferencesConfig validates the reference naming convention.
func validateReferencesConfig(config *ReferencesConfig) error {
	if !strings.HasSuffix(config.ScopePrefix, "/") {
		return fmt.Errorf("scope_prefix must end with '/': %s", config.ScopePrefix)
	}
	if strings.Count(config.SiblingPattern, "%s") != 1 {
		return fmt.Errorf("sibling_pattern must contain exactly one %%s: %s", config.SiblingPattern)
	}

	return nil
}
