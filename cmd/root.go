// Package cmd provides the command-line interface for genie.
//
// Configuration System:
//
//	Configuration is resolved from multiple sources with clear precedence:
//	1. Command-line flags (--config, --log-level, etc.) - highest priority
//	2. GENIE_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (GENIE_FORMATTER_COMMAND, etc.)
//	4. Configuration files (.genie.yml) - lowest priority
//
// Environment Variables:
//
//	GENIE_CONFIG_FILE: Path to custom configuration file
//	GENIE_FORMATTER_COMMAND: Override the formatter command
//	GENIE_WATCH_DEBOUNCE_MILLIS: Override the watch debounce window
//	And more following the GENIE_<SECTION>_<OPTION> pattern
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/geniehq/genie/internal/config"
	"github.com/geniehq/genie/internal/logging"
	"github.com/geniehq/genie/internal/orchestrator"
	"github.com/geniehq/genie/internal/pipeline"
	"github.com/geniehq/genie/internal/refcheck"
	"github.com/geniehq/genie/internal/template"
	"github.com/geniehq/genie/internal/walker"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "genie",
	Short: "Generate derived files from templates across a monorepo",
	Long: `Genie keeps derived files in a monorepo up to date. Each file ending in
.genie.tmpl generates a sibling target with the suffix stripped: apps/web/
tsconfig.json.genie.tmpl produces apps/web/tsconfig.json.

Generated files get a marker header, are formatted with the repo formatter,
and are written read-only so editors discourage hand edits.

Quick Start:
  genie generate                  Regenerate every out-of-date target
  genie check                     Fail if any target is out of date (for CI)
  genie generate --dry-run        Show what generate would do
  genie watch                     Regenerate on template changes
  genie validate                  Run template and reference checks`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command under ctx so watch mode stops on
// interrupt.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Accept snake_case spellings of multi-word flags.
	rootCmd.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .genie.yml, can also use GENIE_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig resolves the configuration file. Priority: --config flag, then
// GENIE_CONFIG_FILE, then .genie.yml in the current directory. A missing
// config file is not an error; defaults apply.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("GENIE_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".genie")
	}

	viper.SetEnvPrefix("GENIE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// runtime bundles the components a command needs for one run.
type runtime struct {
	cfg    *config.Config
	logger logging.Logger
	root   string
}

// newRuntime loads config, builds the logger, and resolves the repo root
// (the working directory).
func newRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(logLevel),
		Format: logFormat,
		Output: os.Stderr,
	})

	root, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}

	return &runtime{cfg: cfg, logger: logger, root: root}, nil
}

// newWalker builds the discovery walker with configured exclusions. The
// external member root mounts sibling repositories and is never traversed.
func (rt *runtime) newWalker() *walker.Walker {
	exclude := append([]string{rt.cfg.Walker.ExternalMemberRoot}, rt.cfg.Walker.Exclude...)
	return walker.New(rt.logger, walker.WithExclude(exclude...))
}

// newOrchestrator wires the full component graph for a run in mode.
func (rt *runtime) newOrchestrator(mode orchestrator.Mode) *orchestrator.Orchestrator {
	walk := rt.newWalker()
	loader := template.NewLoader(template.SharedRegistry(), rt.root)
	formatter := pipeline.NewFormatter(rt.cfg.Formatter, rt.logger)
	dryRun := mode != orchestrator.ModeGenerate
	pipe := pipeline.New(loader, formatter, rt.root, dryRun, rt.logger)
	validator := refcheck.New(rt.cfg.References, rt.logger)
	return orchestrator.New(walk, loader, pipe, validator, mode, rt.logger)
}
