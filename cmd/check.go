package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/geniehq/genie/internal/orchestrator"
)

// checkCmd represents the check command.
var checkCmd = &cobra.Command{
	Use:     "check",
	Aliases: []string{"c"},
	Short:   "Fail if any target is out of date",
	Long: `Render every template without writing anything and exit non-zero if any
target would be created or updated, or if any template fails. Intended for
CI, where drift between templates and committed targets should fail the
build.`,
	RunE: runCheckCommand,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheckCommand(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}

	summary, err := rt.newOrchestrator(orchestrator.ModeCheck).Run(cmd.Context(), rt.root)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), summary.String())
	return summary.Err()
}
