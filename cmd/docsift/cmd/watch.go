package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/docsift/docsift/internal/index"
	"github.com/docsift/docsift/internal/populate"
	"github.com/docsift/docsift/internal/record"
	"github.com/docsift/docsift/internal/watcher"
)

// watchOptions holds CLI flags for watch.
type watchOptions struct {
	strategy  string
	basePath  string
	indexPath string
	debounce  time.Duration
}

func newWatchCmd() *cobra.Command {
	var opts watchOptions

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Re-populate the index when documents change",
		Long: `Watch a directory for HTML and Markdown changes and re-extract
records for changed files. Runs until interrupted.

Examples:
  docsift watch docs
  docsift watch site --strategy both --debounce 500ms`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.strategy, "strategy", "s", "", "Merge strategy: merge, split, or both")
	cmd.Flags().StringVarP(&opts.basePath, "base-path", "b", "", "Prefix for record paths")
	cmd.Flags().StringVarP(&opts.indexPath, "index", "i", "", "Index directory (overrides config)")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", watcher.DefaultDebounceWindow, "Event debounce window")

	return cmd
}

func runWatch(cmd *cobra.Command, dir string, opts watchOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.strategy == "" {
		opts.strategy = cfg.Populate.Strategy
	}
	if opts.basePath == "" {
		opts.basePath = cfg.Populate.BasePath
	}
	if opts.indexPath == "" {
		opts.indexPath = cfg.Index.Path
	}

	strategy, err := record.ParseStrategy(opts.strategy)
	if err != nil {
		return err
	}

	idx, err := index.Open(opts.indexPath)
	if err != nil {
		return err
	}
	defer func() { _ = idx.Close() }()

	pop, err := populate.New(idx, populate.Options{
		Strategy: strategy,
		BasePath: opts.basePath,
	})
	if err != nil {
		return err
	}

	w, err := watcher.New(dir, opts.debounce)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	w.Start(ctx)

	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (ctrl-c to stop)\n", dir); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case batch, ok := <-w.Events():
			if !ok {
				return nil
			}
			handleBatch(ctx, pop, batch)
		}
	}
}

// handleBatch repopulates each changed file. A failing file is logged and
// skipped so the watch loop stays alive.
func handleBatch(ctx context.Context, pop *populate.Populator, batch []watcher.FileEvent) {
	for _, ev := range batch {
		if ev.Operation == watcher.OpDelete {
			// Stale records for deleted files stay until the next full
			// populate run.
			slog.Info("file deleted", slog.String("path", ev.Path))
			continue
		}
		n, err := pop.PopulateFile(ctx, ev.Path)
		if err != nil {
			slog.Warn("repopulate failed",
				slog.String("path", ev.Path),
				slog.String("error", err.Error()))
			continue
		}
		slog.Info("repopulated",
			slog.String("path", ev.Path),
			slog.Int("records", n))
	}
}
