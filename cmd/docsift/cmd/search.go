package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docsift/docsift/internal/index"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	limit     int
	format    string // "text", "json"
	indexPath string
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search indexed record content",
		Long: `Search the record index by content match.

Examples:
  docsift search "install instructions"
  docsift search "merge strategy" --limit 5 --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "Maximum number of results")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().StringVarP(&opts.indexPath, "index", "i", "", "Index directory (overrides config)")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, opts searchOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.indexPath == "" {
		opts.indexPath = cfg.Index.Path
	}

	idx, err := index.Open(opts.indexPath)
	if err != nil {
		return err
	}
	defer func() { _ = idx.Close() }()

	results, err := idx.Search(cmd.Context(), query, opts.limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		_, err = fmt.Fprintf(out, "No results for %q\n", query)
		return err
	}
	for i, res := range results {
		if _, err := fmt.Fprintf(out, "%d. [%s] %s (score: %.3f)\n   %s\n",
			i+1, res.Record.Type, res.Record.ID, res.Score, res.Record.Content); err != nil {
			return err
		}
	}
	return nil
}
