package main

import (
	"fmt"
	"os"

	"github.com/naughty-agents/protocol-contract/common"
	"github.com/naughty-agents/protocol-contract/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const programName = "naughtyctl"

var (
	globalFlags = struct {
		debug bool
	}{}
	configFile string

	// Recreated on every run.
	metricsRegistry *prometheus.Registry
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Operator tool of the staked action review protocol",
		Version:       common.VersionString(common.Version),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().
		BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().
		StringVarP(&configFile, "config", "c", "", "path to config file")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err := cfg.Logger.BuildLogger(globalFlags.debug)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}

		zap.ReplaceGlobals(logger.With(zap.String("component", programName)))

		metricsRegistry = prometheus.NewRegistry()

		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	}

	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		_ = zap.L().Sync()

		cfg := config.FromContext(cmd.Context())
		if cfg == nil || cfg.Metrics.Textfile == "" {
			return nil
		}

		err := prometheus.WriteToTextfile(cfg.Metrics.Textfile, metricsRegistry)
		if err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
		return nil
	}

	// Subcommands
	rootCmd.AddCommand(deployCommand())
	rootCmd.AddCommand(inviteCommand())
	rootCmd.AddCommand(registerCommand())
	rootCmd.AddCommand(reportCommand())
	rootCmd.AddCommand(memberCommand())
	rootCmd.AddCommand(hashCommand())
	rootCmd.AddCommand(assessCommand())
	rootCmd.AddCommand(flagCommand())
	rootCmd.AddCommand(voteCommand())
	rootCmd.AddCommand(resolveCommand())
	rootCmd.AddCommand(statusCommand())
	rootCmd.AddCommand(taskCommand())
	rootCmd.AddCommand(tasksCommand())
	rootCmd.AddCommand(eventsCommand())
	rootCmd.AddCommand(dumpCommand())
	rootCmd.AddCommand(restoreCommand())

	return rootCmd
}
