package site

import (
	"io"

	"github.com/funkpd/autolocal/pkg/client/mariadb"
	"github.com/funkpd/autolocal/pkg/client/wpcli"
	"github.com/funkpd/autolocal/pkg/io/configmanager"
	"github.com/funkpd/autolocal/pkg/platform/hostsfile"
	"github.com/funkpd/autolocal/pkg/platform/vhost"
	"github.com/funkpd/autolocal/pkg/svc/installer"
	"github.com/funkpd/autolocal/pkg/svc/seeder"
	"github.com/funkpd/autolocal/pkg/svc/verifier"
	"github.com/funkpd/autolocal/pkg/utils/runlog"
	"github.com/funkpd/autolocal/pkg/utils/runner"
)

// Factory builds provisioners. Commands depend on the interface so tests can
// substitute a canned provisioner.
type Factory interface {
	Provisioner(cfg configmanager.Config, log *runlog.Logger, out io.Writer) *Provisioner
}

// DefaultFactory wires the real collaborators: wp-cli and mariadb clients over
// os/exec, filesystem vhost and hosts writers, installer, seeder, verifier.
type DefaultFactory struct{}

// Provisioner builds a fully wired provisioner for one run.
func (DefaultFactory) Provisioner(cfg configmanager.Config, log *runlog.Logger, out io.Writer) *Provisioner {
	cmdRunner := runner.NewExecCommandRunner()

	wp := wpcli.NewClient(cfg.WPPath, cfg.SiteRoot, cmdRunner, log)
	db := mariadb.NewClient(cfg.Database.Password, cmdRunner, log)
	vhostWriter := vhost.NewWriter(cfg.VhostDir, cfg.SiteRoot, cfg.VhostTemplate, log)
	hostsWriter := hostsfile.NewWriter(cfg.HostsFile, log)
	pluginInstaller := installer.New(wp, log, out)

	var vaultFetcher seeder.VaultFetcher
	if cfg.Seed.VaultPath != "" {
		vaultFetcher = seeder.NewWPVault(wp, cfg.Seed.VaultPath)
	}

	importer := seeder.NewWPMediaImporter(wp, cfg.Seed.VaultPath)
	engine := seeder.NewEngine(wp, importer, vaultFetcher, log, out, cfg.Seed.MinBuilderVersion)
	siteVerifier := verifier.New(wp, cfg.SiteRoot, log, out)

	return New(cfg, wp, db, vhostWriter, hostsWriter, pluginInstaller, engine, siteVerifier, log, out)
}
