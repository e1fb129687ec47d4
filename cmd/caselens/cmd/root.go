// Package cmd provides the CLI commands for caselens.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/caselens/caselens/internal/config"
	"github.com/caselens/caselens/internal/logging"
	"github.com/caselens/caselens/pkg/version"
)

var (
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the caselens CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "caselens",
		Short: "Hybrid retrieval over legal judgments",
		Long: `Caselens ingests legal judgments and answers natural-language
queries by fusing BM25 keyword ranking with semantic vector
similarity over judgment passages.

Run 'caselens ingest judgment.txt' to store a case, then
'caselens search "limitation period"' to query it.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("caselens version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRun = func(*cobra.Command, []string) {
		if loggingCleanup != nil {
			loggingCleanup()
			loggingCleanup = nil
		}
	}

	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newCasesCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func setupLogging(_ *cobra.Command, _ []string) error {
	logCfg := logging.DefaultConfig()
	logCfg.WriteToStderr = false
	if debugMode {
		logCfg.Level = "debug"
	}
	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		// File logging is best effort for the CLI.
		return nil
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	return nil
}

func loadConfig() (*config.Config, error) {
	return config.Load(".")
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
