package cmd

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/caselens/caselens/internal/output"
	"github.com/caselens/caselens/internal/search"
)

type searchOptions struct {
	topK        int
	format      string
	lexicalOnly bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search stored judgments",
		Long: `Search runs the hybrid retrieval engine over every stored judgment
and prints the top passages, ranked by fused BM25 and semantic
similarity scores.

Examples:
  caselens search "anticipatory bail"
  caselens search "limitation period" --top-k 10 --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			stack, err := openStack(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = stack.Close() }()

			resp, err := stack.engine.Search(cmd.Context(), query, search.Options{
				TopK:        opts.topK,
				LexicalOnly: opts.lexicalOnly,
			})
			if err != nil {
				return err
			}
			return renderSearch(cmd, resp, opts.format)
		},
	}

	cmd.Flags().IntVarP(&opts.topK, "top-k", "n", 0, "Maximum number of results (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().BoolVar(&opts.lexicalOnly, "lexical-only", false, "Rank by keyword overlap only, skipping the semantic index")
	return cmd
}

func renderSearch(cmd *cobra.Command, resp *search.Response, format string) error {
	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	out := output.New(cmd.OutOrStdout())
	if resp.Degraded {
		out.Warning("semantic backend unavailable, results are keyword-only (" + resp.DegradedReason + ")")
	}
	if len(resp.Results) == 0 {
		out.Println("no results")
		return nil
	}
	for i, r := range resp.Results {
		out.Result(i+1, r.Score, r.Section, r.CaseTitle, r.TextPreview)
	}
	return nil
}
