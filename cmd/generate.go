package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/geniehq/genie/internal/orchestrator"
)

var generateDryRun bool

// generateCmd represents the generate command.
var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen", "g"},
	Short:   "Regenerate every out-of-date target",
	Long: `Walk the repository for template files, render each one, and write the
targets whose content changed. Up-to-date targets are left untouched so
their timestamps stay stable.

Examples:
  genie generate               # Regenerate everything under the current directory
  genie generate --dry-run     # Report what would change without writing`,
	RunE: runGenerateCommand,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "Report what would change without writing anything")
}

func runGenerateCommand(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}

	mode := orchestrator.ModeGenerate
	if generateDryRun {
		mode = orchestrator.ModeDryRun
	}

	summary, err := rt.newOrchestrator(mode).Run(cmd.Context(), rt.root)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), summary.String())
	return summary.Err()
}
