// Package site orchestrates provisioning and removal of local WordPress
// development sites.
//
// Create runs a fixed sequence of idempotent steps: platform files, hosts
// entry, core install, plugins and themes, optional seeding, verification.
// Failure handling is fixed per step; the verification pass is the final
// authority on the run outcome.
package site

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/funkpd/autolocal/pkg/client/mariadb"
	"github.com/funkpd/autolocal/pkg/client/wpcli"
	"github.com/funkpd/autolocal/pkg/io/configmanager"
	"github.com/funkpd/autolocal/pkg/svc/installer"
	"github.com/funkpd/autolocal/pkg/svc/seeder"
	"github.com/funkpd/autolocal/pkg/svc/verifier"
	"github.com/funkpd/autolocal/pkg/utils/notify"
	"github.com/funkpd/autolocal/pkg/utils/runlog"
)

// Provisioning errors.
var (
	// ErrAlreadyProvisioned marks a fresh create against existing artifacts.
	ErrAlreadyProvisioned = errors.New("site artifacts already exist")
	// ErrCoreInstall marks a failed core provisioning step.
	ErrCoreInstall = errors.New("core install failed")
	// ErrVerificationFailed marks a run the verification pass rejected.
	ErrVerificationFailed = errors.New("verification failed")
)

// WPRunner is the wp-cli surface the orchestrator uses directly.
type WPRunner interface {
	Run(ctx context.Context, domain string, args ...string) (wpcli.Result, error)
	SitePath(domain string) string
}

// VhostWriter renders and removes per-domain web server configuration.
type VhostWriter interface {
	Exists(domain string) bool
	Apply(domain string) error
	Remove(domain string) error
}

// HostsWriter manages the domain's local name-resolution entry.
type HostsWriter interface {
	Apply(domain string) error
	Remove(domain string) error
}

// Database manages the per-site database and user.
type Database interface {
	EnsureDatabaseAndUser(ctx context.Context, domain string) bool
	Drop(ctx context.Context, domain string) bool
	DatabaseExists(ctx context.Context, domain string) bool
	UserExists(ctx context.Context, domain string) bool
}

// PluginInstaller applies a preset and the starter content.
type PluginInstaller interface {
	Apply(ctx context.Context, domain string, preset configmanager.Preset, seedingEnabled bool) error
	StarterContent(ctx context.Context, domain string, pages []configmanager.PageSpec)
}

// PageSeeder seeds builder templates onto the site.
type PageSeeder interface {
	SeedAll(ctx context.Context, domain string, templates []seeder.Template) error
}

// SiteVerifier runs the verification pass.
type SiteVerifier interface {
	Verify(ctx context.Context, domain string, pages []verifier.PageSpec, seedingEnabled bool) verifier.Report
}

// Provisioner creates and removes sites.
type Provisioner struct {
	cfg       configmanager.Config
	wp        WPRunner
	db        Database
	vhost     VhostWriter
	hosts     HostsWriter
	installer PluginInstaller
	seeder    PageSeeder
	verifier  SiteVerifier
	log       *runlog.Logger
	out       io.Writer
	force     bool
}

// New creates a provisioner.
func New(
	cfg configmanager.Config,
	wp WPRunner,
	db Database,
	vhostWriter VhostWriter,
	hostsWriter HostsWriter,
	pluginInstaller PluginInstaller,
	pageSeeder PageSeeder,
	siteVerifier SiteVerifier,
	log *runlog.Logger,
	out io.Writer,
) *Provisioner {
	return &Provisioner{
		cfg:       cfg,
		wp:        wp,
		db:        db,
		vhost:     vhostWriter,
		hosts:     hostsWriter,
		installer: pluginInstaller,
		seeder:    pageSeeder,
		verifier:  siteVerifier,
		log:       log,
		out:       out,
	}
}

// WithForce allows re-running Create against existing artifacts; every step
// is idempotent, so a forced re-run converges instead of duplicating.
func (p *Provisioner) WithForce(force bool) *Provisioner {
	p.force = force

	return p
}

// Create provisions the domain end to end using the named preset.
func (p *Provisioner) Create(ctx context.Context, domain, presetName string) error {
	preset, err := p.resolvePreset(presetName)
	if err != nil {
		return err
	}

	err = p.preflight(ctx, domain)
	if err != nil {
		return err
	}

	err = p.platformFiles(domain)
	if err != nil {
		return err
	}

	err = p.hostsEntry(domain)
	if err != nil {
		return err
	}

	err = p.coreInstall(ctx, domain)
	if err != nil {
		return err
	}

	err = p.installer.Apply(ctx, domain, preset, p.cfg.Seed.Enabled)
	if err != nil {
		return err
	}

	p.installer.StarterContent(ctx, domain, p.pages())

	if p.cfg.Seed.Enabled {
		err = p.seeder.SeedAll(ctx, domain, p.templates(presetName))
		if err != nil {
			// Verification below decides the run outcome.
			p.log.Errorf("seeding %s: %v", domain, err)
			notify.Failf(p.out, p.log.RunID(), "seeding")
		}
	}

	report := p.verifier.Verify(ctx, domain, p.verifierPages(), p.cfg.Seed.Enabled)
	if !report.Passed {
		return fmt.Errorf("%w for %s", ErrVerificationFailed, domain)
	}

	p.log.Activity("created %s (preset %s)", domain, presetName)
	notify.Passf(p.out, p.log.RunID(), "site %s provisioned", domain)

	return nil
}

// Remove tears down every artifact Create produced. All steps run even when
// earlier ones fail; failures are joined into the returned error.
func (p *Provisioner) Remove(ctx context.Context, domain string) error {
	var errs []error

	err := p.vhost.Remove(domain)
	if err != nil {
		errs = append(errs, err)
	}

	err = p.hosts.Remove(domain)
	if err != nil {
		errs = append(errs, err)
	}

	if !p.db.Drop(ctx, domain) {
		errs = append(errs, fmt.Errorf("drop database for %s", domain))
	}

	docroot := p.wp.SitePath(domain)

	err = os.RemoveAll(docroot)
	if err != nil {
		errs = append(errs, fmt.Errorf("remove document root %s: %w", docroot, err))
	}

	if len(errs) > 0 {
		notify.Failf(p.out, p.log.RunID(), "site %s removed with errors", domain)

		return errors.Join(errs...)
	}

	p.log.Activity("removed %s", domain)
	notify.Passf(p.out, p.log.RunID(), "site %s removed", domain)

	return nil
}

// preflight refuses a fresh create when artifacts already exist. All findings
// are collected so the user sees the full picture at once. Forced runs skip
// the refusal and converge through the idempotent steps.
func (p *Provisioner) preflight(ctx context.Context, domain string) error {
	if p.force {
		return nil
	}

	var found []string

	configPath := filepath.Join(p.wp.SitePath(domain), "wp-config.php")
	if _, err := os.Stat(configPath); err == nil {
		found = append(found, "wp-config.php")
	}

	if p.db.DatabaseExists(ctx, domain) {
		found = append(found, "database "+mariadb.Ident(domain))
	}

	if p.db.UserExists(ctx, domain) {
		found = append(found, "database user "+mariadb.Ident(domain))
	}

	if p.vhost.Exists(domain) {
		found = append(found, "vhost file")
	}

	if len(found) == 0 {
		return nil
	}

	for _, item := range found {
		notify.Failf(p.out, p.log.RunID(), "preflight: %s exists", item)
	}

	return fmt.Errorf("%w for %s: %s", ErrAlreadyProvisioned, domain, strings.Join(found, ", "))
}

func (p *Provisioner) platformFiles(domain string) error {
	err := p.vhost.Apply(domain)
	if err != nil {
		notify.Failf(p.out, p.log.RunID(), "vhost %s", domain)

		return err
	}

	docroot := p.wp.SitePath(domain)

	err = os.MkdirAll(docroot, 0o755)
	if err != nil {
		notify.Failf(p.out, p.log.RunID(), "document root %s", docroot)

		return fmt.Errorf("create document root %s: %w", docroot, err)
	}

	notify.Passf(p.out, p.log.RunID(), "platform files")

	return nil
}

func (p *Provisioner) hostsEntry(domain string) error {
	err := p.hosts.Apply(domain)
	if err != nil {
		notify.Failf(p.out, p.log.RunID(), "hosts entry %s", domain)

		return err
	}

	notify.Passf(p.out, p.log.RunID(), "hosts entry")

	return nil
}

// coreInstall probes for an existing install and provisions database, core
// files, configuration and the admin account when absent. Any failure here is
// fatal: a partially installed core leaves the site in an unknown state.
func (p *Provisioner) coreInstall(ctx context.Context, domain string) error {
	probe, err := p.wp.Run(ctx, domain, "core", "is-installed")
	if err != nil {
		return err
	}

	if probe.Succeeded {
		p.log.Infof("core already installed on %s", domain)
		notify.Passf(p.out, p.log.RunID(), "core install (present)")

		return nil
	}

	if !p.db.EnsureDatabaseAndUser(ctx, domain) {
		notify.Failf(p.out, p.log.RunID(), "database")

		return fmt.Errorf("%w: database for %s", ErrCoreInstall, domain)
	}

	ident := mariadb.Ident(domain)

	steps := [][]string{
		{"core", "download"},
		{
			"config", "create",
			"--dbname=" + ident,
			"--dbuser=" + ident,
			"--dbpass=" + p.cfg.Database.Password,
			"--dbhost=localhost",
		},
		{
			"core", "install",
			"--url=http://" + domain,
			"--title=" + domain,
			"--admin_user=" + p.cfg.Admin.User,
			"--admin_password=" + p.cfg.Admin.Password,
			"--admin_email=" + p.cfg.Admin.Email,
			"--skip-email",
		},
	}

	for _, args := range steps {
		res, err := p.wp.Run(ctx, domain, args...)
		if err != nil {
			return err
		}

		if !res.Succeeded {
			notify.Failf(p.out, p.log.RunID(), "core install (%s %s)", args[0], args[1])

			return fmt.Errorf("%w: %s %s on %s", ErrCoreInstall, args[0], args[1], domain)
		}
	}

	notify.Passf(p.out, p.log.RunID(), "core install")

	return nil
}

// resolvePreset looks the preset up among the built-ins and applies list
// source overrides from the presets directory when present.
func (p *Provisioner) resolvePreset(presetName string) (configmanager.Preset, error) {
	key, _ := seeder.ParsePreset(presetName)

	preset, ok := configmanager.BuiltinPresets()[key]
	if !ok {
		return configmanager.Preset{}, fmt.Errorf("%w: %s", configmanager.ErrUnknownPreset, presetName)
	}

	if p.cfg.PresetsDir == "" {
		return preset, nil
	}

	return installer.LoadPresetOverrides(p.cfg.PresetsDir, preset)
}

func (p *Provisioner) pages() []configmanager.PageSpec {
	if len(p.cfg.Seed.Pages) > 0 {
		return p.cfg.Seed.Pages
	}

	return configmanager.DefaultPageSpecs()
}

func (p *Provisioner) verifierPages() []verifier.PageSpec {
	pages := p.pages()

	specs := make([]verifier.PageSpec, 0, len(pages))
	for _, page := range pages {
		specs = append(specs, verifier.PageSpec{Slug: page.Slug, Title: page.Title})
	}

	return specs
}

// templates builds one seeding template per expected page. A configured vault
// resolves preset pages remotely; otherwise every page shares the local
// template file.
func (p *Provisioner) templates(presetName string) []seeder.Template {
	key, version := seeder.ParsePreset(presetName)

	templates := make([]seeder.Template, 0, len(p.pages()))

	for _, page := range p.pages() {
		tpl := seeder.Template{Slug: page.Slug, Title: page.Title}

		if p.cfg.Seed.VaultPath != "" {
			tpl.VaultKey = key
			tpl.VaultVersion = version
		} else {
			tpl.LocalPath = p.cfg.Seed.TemplatePath
		}

		templates = append(templates, tpl)
	}

	return templates
}
