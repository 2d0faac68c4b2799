package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/viewfinder/internal/config"
	"github.com/conneroisu/viewfinder/internal/finder"
	"github.com/conneroisu/viewfinder/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch <template-or-route>...",
	Short: "Re-run find whenever a view or the route table changes",
	Long: `Print the expansion of each argument, then watch the views directory and the
route table and print it again after every change. Changes arriving close
together are batched into one run.

Examples:
  viewfinder watch users/show
  viewfinder watch users_path --no-embed
  viewfinder watch users/show --verbose`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

var (
	watchFlags    *ResolveFlags
	watchFormat   string
	watchVerbose  bool
	watchDebounce time.Duration
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchFlags = AddResolveFlags(watchCmd, true)
	AddFormatFlag(watchCmd, &watchFormat, "", config.OutputFormats)
	watchCmd.Flags().BoolVarP(&watchVerbose, "verbose", "v", false, "Print each changed file")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 300*time.Millisecond, "Wait this long for more changes before re-running")
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	format := watchFormat
	if format == "" {
		format = a.cfg.Output.Format
	}
	opts := watchFlags.Apply(finder.OptionsFromConfig(a.cfg))

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run := func() {
		outputs, err := a.findAll(ctx, opts, args)
		if err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
			return
		}
		if err := writeFindOutput(a.stdout, format, outputs); err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
		}
	}

	fileWatcher, err := watcher.NewFileWatcher(watchDebounce, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fileWatcher.Stop()

	routesFile := a.cfg.RoutesFile()
	fileWatcher.AddFilter(watcher.AnyOf(watcher.ViewFilter(a.cfg.Views.Extensions), watcher.PathFilter(routesFile)))
	fileWatcher.AddFilter(watcher.NoHiddenFilter)
	fileWatcher.AddFilter(watcher.NoGitFilter)

	fileWatcher.AddHandler(func(events []watcher.ChangeEvent) error {
		if watchVerbose {
			fmt.Fprintln(a.stderr, "File changes detected:")
			for _, event := range events {
				fmt.Fprintf(a.stderr, "   %s: %s\n", event.Type, event.Path)
			}
		} else {
			fmt.Fprintf(a.stderr, "%d file(s) changed\n", len(events))
		}

		for _, event := range events {
			if filepath.Clean(event.Path) == filepath.Clean(routesFile) {
				if err := a.reloadRoutes(ctx); err != nil {
					a.logger.Warn(ctx, err, "Keeping previous route table")
				}
				break
			}
		}

		run()
		return nil
	})

	if err := fileWatcher.AddRecursive(a.cfg.ViewsRoot()); err != nil {
		return fmt.Errorf("failed to watch %s: %w", a.cfg.ViewsRoot(), err)
	}
	// The directory is watched so the table can be created after startup
	if err := fileWatcher.AddPath(filepath.Dir(routesFile)); err != nil {
		a.logger.Warn(ctx, err, "Route table directory not watched", "path", filepath.Dir(routesFile))
	}

	run()

	if err := fileWatcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	fmt.Fprintln(a.stderr, "Watching for changes... (Press Ctrl+C to stop)")

	<-ctx.Done()
	fmt.Fprintln(a.stderr, "Stopping file watcher...")
	return nil
}
