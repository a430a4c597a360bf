// Package cmd wires the autolocal CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/funkpd/autolocal/pkg/di"
)

// NewRootCmd creates and returns the root command with version info and
// subcommands.
func NewRootCmd(version, commit, date string) *cobra.Command {
	runtimeContainer := di.NewRuntime()

	cmd := &cobra.Command{
		Use:   "autolocal",
		Short: "autolocal provisions local WordPress development sites",
		Long: "autolocal provisions local WordPress development sites: nginx vhost, " +
			"hosts entry, MariaDB database, WordPress core, plugins and themes, and " +
			"optional Elementor template seeding.",
		RunE:         handleRootRunE,
		SilenceUsage: true,
	}

	cmd.Version = fmt.Sprintf("%s (Built on %s from Git SHA %s)", version, date, commit)

	cmd.PersistentFlags().String("config", "", "Path to a configuration file")
	cmd.PersistentFlags().Bool("timing", false, "Show total run time on completion")

	cmd.AddCommand(NewCreateCmd(runtimeContainer))
	cmd.AddCommand(NewRemoveCmd(runtimeContainer))

	return cmd
}

// Execute runs the provided root command and handles errors.
func Execute(cmd *cobra.Command) error {
	err := cmd.Execute()
	if err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}

	return nil
}

// handleRootRunE handles the bare root command.
func handleRootRunE(cmd *cobra.Command, _ []string) error {
	// The err can safely be ignored, as it can never fail at runtime.
	_ = cmd.Help()

	return nil
}
