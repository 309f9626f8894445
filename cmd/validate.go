package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/geniehq/genie/internal/orchestrator"
)

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run template and reference checks without generating",
	Long: `Run every registered template's semantic validation hook and cross-check
tsconfig project references against package.json workspace dependencies.
Nothing is written.`,
	RunE: runValidateCommand,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidateCommand(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}

	o := rt.newOrchestrator(orchestrator.ModeCheck)
	issues, warnings, err := o.ValidateTemplates(cmd.Context(), rt.root)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, issue := range issues {
		fmt.Fprintf(out, "issue: %s: %s\n", issue.Path, issue.Message)
	}
	for _, warning := range warnings {
		fmt.Fprintf(out, "warning: %s\n", warning.String())
	}

	if len(issues) > 0 {
		return fmt.Errorf("%d validation issues", len(issues))
	}

	fmt.Fprintf(out, "validation passed (%d warnings)\n", len(warnings))
	return nil
}
