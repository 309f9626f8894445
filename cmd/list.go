package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var listFormat string

// listCmd represents the list command.
var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List discovered templates and their targets",
	RunE:    runListCommand,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listFormat, "format", "f", "text", "Output format (text, json)")
}

func runListCommand(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}

	result, err := rt.newWalker().Walk(cmd.Context(), rt.root)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	switch listFormat {
	case "json":
		type entry struct {
			Template string `json:"template"`
			Target   string `json:"target"`
		}
		entries := make([]entry, 0, len(result.Templates))
		for _, tp := range result.Templates {
			entries = append(entries, entry{Template: string(tp), Target: tp.Target()})
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	case "text":
		for _, tp := range result.Templates {
			fmt.Fprintf(out, "%s -> %s\n", tp, tp.Target())
		}
		fmt.Fprintf(out, "%d templates\n", len(result.Templates))
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json)", listFormat)
	}
}
