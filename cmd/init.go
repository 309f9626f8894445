package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var initForce bool

// initCmd represents the init command.
var initCmd = &cobra.Command{
	Use:     "init [dir]",
	Aliases: []string{"i"},
	Short:   "Initialize genie in a repository",
	Long: `Create a starter .genie.yml configuration and a sample template in the
given directory (default: current directory). Existing files are left alone
unless --force is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInitCommand,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
}

const configTemplate = `# genie configuration
walker:
  exclude: []
formatter:
  command: prettier
references:
  scope_prefix: "@repo/"
  sibling_pattern: "../%s"
watch:
  debounce_millis: 300
`

func runInitCommand(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	title := cases.Title(language.English).String(strings.ReplaceAll(filepath.Base(absDir), "-", " "))

	sample := fmt.Sprintf("# %s\n\nThis file is generated. Edit README.md.genie.tmpl instead.\n", title)

	files := map[string]string{
		filepath.Join(dir, ".genie.yml"):           configTemplate,
		filepath.Join(dir, "README.md.genie.tmpl"): sample,
	}

	out := cmd.OutOrStdout()
	for path, content := range files {
		if _, err := os.Stat(path); err == nil && !initForce {
			fmt.Fprintf(out, "skipping %s (exists, use --force to overwrite)\n", path)
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Fprintf(out, "created %s\n", path)
	}

	fmt.Fprintln(out, "run `genie generate` to produce the targets")
	return nil
}
