package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/caselens/caselens/internal/output"
)

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Parse judgment text files and rebuild the indexes",
		Long: `Ingest reads one or more plain-text judgment files, extracts the
case metadata, stores the structured judgment, and rebuilds the
lexical and semantic indexes over every stored case.

Re-ingesting a case with the same title replaces the stored copy.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			stack, err := openStack(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = stack.Close() }()

			out := output.New(cmd.OutOrStdout())
			for _, path := range args {
				j, stats, err := stack.pipeline.IngestFile(cmd.Context(), path)
				if err != nil {
					return fmt.Errorf("ingest of %s failed: %w", path, err)
				}
				out.Printf("%s: %s (%d paragraphs, %d chunks indexed)\n",
					path, j.Title, len(j.Paragraphs), stats.Chunks)
			}
			return nil
		},
	}
}
