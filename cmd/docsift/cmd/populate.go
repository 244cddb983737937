package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docsift/docsift/internal/index"
	"github.com/docsift/docsift/internal/populate"
	"github.com/docsift/docsift/internal/record"
)

// populateOptions holds CLI flags for populate.
type populateOptions struct {
	strategy  string
	basePath  string
	indexPath string
}

func newPopulateCmd() *cobra.Command {
	var opts populateOptions

	cmd := &cobra.Command{
		Use:   "populate [glob]",
		Short: "Extract records from documents into the index",
		Long: `Extract text records from HTML and Markdown files matching the
glob pattern and insert them into the index.

The glob argument overrides populate.glob from the config file.

Examples:
  docsift populate "docs/**/*.md"
  docsift populate "site/*.html" --strategy both
  docsift populate --strategy split --base-path site`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := ""
			if len(args) > 0 {
				pattern = args[0]
			}
			return runPopulate(cmd, pattern, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.strategy, "strategy", "s", "", "Merge strategy: merge, split, or both")
	cmd.Flags().StringVarP(&opts.basePath, "base-path", "b", "", "Prefix for record paths")
	cmd.Flags().StringVarP(&opts.indexPath, "index", "i", "", "Index directory (overrides config)")

	return cmd
}

func runPopulate(cmd *cobra.Command, pattern string, opts populateOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if pattern == "" {
		pattern = cfg.Populate.Glob
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

	n, err := pop.PopulateGlob(cmd.Context(), pattern)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d records from %q into %s\n",
		n, pattern, opts.indexPath)
	return err
}
