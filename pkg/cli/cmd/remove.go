package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/funkpd/autolocal/pkg/di"
)

// NewRemoveCmd wires the remove command using the shared runtime container.
func NewRemoveCmd(runtimeContainer *di.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <domain>",
		Short: "Remove a provisioned site",
		Long: "Remove every artifact created for the domain: vhost file, hosts " +
			"entry, database and user, and the document root.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runtimeContainer.Invoke(func(injector di.Injector) error {
			return handleRemoveRunE(cmd, injector, args[0])
		})
	}

	return cmd
}

// handleRemoveRunE executes site removal.
func handleRemoveRunE(cmd *cobra.Command, injector di.Injector, domain string) error {
	tmr, err := di.ResolveTimer(injector)
	if err != nil {
		return err
	}

	factory, err := di.ResolveProvisionerFactory(injector)
	if err != nil {
		return err
	}

	cfg, log, err := loadConfigAndLog(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Close() }()

	tmr.Start()

	provisioner := factory.Provisioner(cfg, log, cmd.OutOrStdout())

	err = provisioner.Remove(cmd.Context(), domain)
	if err != nil {
		return fmt.Errorf("remove %s: %w", domain, err)
	}

	maybeReportTiming(cmd, tmr)

	return nil
}
