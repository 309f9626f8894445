package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/geniehq/genie/internal/catalog"
)

var catalogFiles []string

// catalogCmd represents the catalog command.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Compose dependency catalog files and print the merged view",
	Long: `Merge one or more catalog YAML files and print the resulting dependency
versions and overrides. Conflicting versions for the same dependency across
base files are an error; duplicate identical entries produce warnings.

Examples:
  genie catalog --file catalog.yml
  genie catalog --file base.yml --file team.yml`,
	RunE: runCatalogCommand,
}

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().StringSliceVar(&catalogFiles, "file", nil, "Catalog file to compose (repeatable)")
	_ = catalogCmd.MarkFlagRequired("file")
}

func runCatalogCommand(cmd *cobra.Command, args []string) error {
	merged, overrides, warnings, err := catalog.ComposeFromFiles(catalogFiles, nil, nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, warning := range warnings {
		fmt.Fprintf(out, "warning: %s\n", warning.String())
	}

	fmt.Fprintf(out, "catalog (%d entries):\n", merged.Len())
	for _, name := range merged.Names() {
		version, _ := merged.Version(name)
		fmt.Fprintf(out, "  %s: %s\n", name, version)
	}

	if overrides.Len() > 0 {
		fmt.Fprintf(out, "overrides (%d entries):\n", overrides.Len())
		for _, name := range overrides.Names() {
			pin, _ := overrides.Pin(name)
			fmt.Fprintf(out, "  %s: %s\n", name, pin)
		}
	}

	return nil
}
