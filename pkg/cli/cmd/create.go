package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/funkpd/autolocal/pkg/di"
)

// NewCreateCmd wires the create command using the shared runtime container.
func NewCreateCmd(runtimeContainer *di.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <domain>",
		Short: "Provision a local WordPress site",
		Long: "Provision a local WordPress site for the domain: vhost, hosts entry, " +
			"database, core install, preset plugins and themes, and optional template " +
			"seeding. The verification pass decides the run outcome.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
	}

	cmd.Flags().String("preset", "",
		"Preset plugin/theme set (wp-min, wp-mid, wp-max; a -N suffix selects a vault template version)")
	cmd.Flags().Bool("force", false,
		"Re-run provisioning against existing site artifacts instead of refusing")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runtimeContainer.Invoke(func(injector di.Injector) error {
			return handleCreateRunE(cmd, injector, args[0])
		})
	}

	return cmd
}

// handleCreateRunE executes site creation.
func handleCreateRunE(cmd *cobra.Command, injector di.Injector, domain string) error {
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

	preset, _ := cmd.Flags().GetString("preset")
	if preset == "" {
		preset = cfg.DefaultPreset
	}

	force, _ := cmd.Flags().GetBool("force")

	tmr.Start()

	provisioner := factory.Provisioner(cfg, log, cmd.OutOrStdout()).WithForce(force)

	err = provisioner.Create(cmd.Context(), domain, preset)
	if err != nil {
		return fmt.Errorf("create %s: %w", domain, err)
	}

	maybeReportTiming(cmd, tmr)

	return nil
}
