// Package cli implements the wellcheckctl operator commands.
package cli

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/JayantA-10/AI-Stress-System/internal/config"
	"github.com/JayantA-10/AI-Stress-System/pkg/logger"
)

// NewRootCommand builds the wellcheckctl command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "wellcheckctl",
		Short:         "Operator tool for the wellcheck risk service",
		Long:          "wellcheckctl scores one-off check-ins, prints the counselor roster from a store and load-tests a running service.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Path to a YAML config file (overrides WELLCHECK_CONFIG)")
	root.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error")

	root.AddCommand(newAssessCommand())
	root.AddCommand(newRosterCommand())
	root.AddCommand(newSimulateCommand())
	return root
}

// loadConfig resolves configuration using --config (highest priority),
// then WELLCHECK_CONFIG, then defaults and env.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return config.LoadFile(p)
	}
	return config.Load()
}

// commandLogger returns a text logger on stderr at the --log-level level.
func commandLogger(cmd *cobra.Command) logger.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	if err := logger.Init(logger.WithOutput(cmd.ErrOrStderr())); err != nil {
		return logger.Nop()
	}
	if err := logger.SetLevelString(level); err != nil {
		_ = logger.SetLevelString("warn")
	}
	return logger.Get()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
