package cmd

import (
	"github.com/spf13/cobra"

	"github.com/caselens/caselens/internal/output"
)

func newCasesCmd() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "cases",
		Short: "List stored cases",
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

			if query != "" {
				summaries, err := stack.docs.SearchCases(cmd.Context(), query, 20)
				if err != nil {
					return err
				}
				if len(summaries) == 0 {
					out.Println("no matching cases")
					return nil
				}
				for _, s := range summaries {
					out.Printf("%s (%s, %s)\n", s.Title, s.Court, s.Date)
				}
				return nil
			}

			titles, err := stack.docs.ListTitles(cmd.Context())
			if err != nil {
				return err
			}
			if len(titles) == 0 {
				out.Println("no cases stored")
				return nil
			}
			for _, title := range titles {
				out.Println(title)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Full-text filter over case metadata")
	return cmd
}
