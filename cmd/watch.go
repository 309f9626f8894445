package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/geniehq/genie/internal/orchestrator"
	"github.com/geniehq/genie/internal/watcher"
)

// watchCmd represents the watch command.
var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Regenerate targets whenever a template changes",
	Long: `Run an initial generate pass, then watch the repository for template
changes and regenerate on each debounced batch. Stops on interrupt.`,
	RunE: runWatchCommand,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatchCommand(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	run := func() {
		summary, err := rt.newOrchestrator(orchestrator.ModeGenerate).Run(ctx, rt.root)
		if err != nil {
			rt.logger.Error(ctx, err, "generation pass failed")
			return
		}
		fmt.Fprint(out, summary.String())
	}

	run()

	debounce := time.Duration(rt.cfg.Watch.DebounceMillis) * time.Millisecond
	fw, err := watcher.NewFileWatcher(debounce, rt.logger)
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Stop()

	fw.AddFilter(watcher.NoIgnoredDirFilter)
	fw.AddFilter(watcher.TemplateFilter)
	fw.AddHandler(func(events []watcher.ChangeEvent) error {
		for _, event := range events {
			rt.logger.Info(ctx, "template changed", "path", event.Path, "op", event.Type.String())
		}
		run()
		return nil
	})

	if err := fw.AddRecursive(rt.root); err != nil {
		return fmt.Errorf("watching %s: %w", rt.root, err)
	}
	fw.Start(ctx)

	fmt.Fprintln(out, "watching for template changes, press Ctrl+C to stop")
	<-ctx.Done()
	return nil
}
