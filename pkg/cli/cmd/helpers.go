package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/funkpd/autolocal/pkg/io/configmanager"
	"github.com/funkpd/autolocal/pkg/utils/notify"
	"github.com/funkpd/autolocal/pkg/utils/runlog"
	"github.com/funkpd/autolocal/pkg/utils/timer"
)

// loadConfigAndLog loads the validated configuration and opens the per-run
// log. The caller owns closing the logger.
func loadConfigAndLog(cmd *cobra.Command) (configmanager.Config, *runlog.Logger, error) {
	manager := configmanager.NewConfigManager()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		manager.SetConfigFile(path)
	}

	err := manager.BindFlags(cmd.Flags())
	if err != nil {
		return configmanager.Config{}, nil, err
	}

	cfg, err := manager.LoadConfig()
	if err != nil {
		return configmanager.Config{}, nil, err
	}

	log, err := runlog.Open(cfg.LogDir)
	if err != nil {
		return configmanager.Config{}, nil, fmt.Errorf("open run log: %w", err)
	}

	notify.Infof(cmd.OutOrStdout(), "run %s, log %s/autolocal-%s.log", log.RunID(), cfg.LogDir, log.RunID())

	return cfg, log, nil
}

// maybeReportTiming prints the total run time when --timing is set.
func maybeReportTiming(cmd *cobra.Command, tmr timer.Timer) {
	enabled, _ := cmd.Flags().GetBool("timing")
	if !enabled {
		return
	}

	total, _ := tmr.GetTiming()
	notify.Infof(cmd.OutOrStdout(), "completed in %s", total.Round(time.Millisecond))
}
