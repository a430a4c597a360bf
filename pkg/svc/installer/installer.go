// Package installer configures a freshly installed site: plugins, themes,
// default-content cleanup, starter pages and menu.
//
// Individual items failing is expected (network flakes, renamed slugs) and is
// reported then skipped. The one exception is the builder plugin when seeding
// is enabled: without it every subsequent seeding step would fail anyway.
package installer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/funkpd/autolocal/pkg/client/wpcli"
	"github.com/funkpd/autolocal/pkg/io/configmanager"
	"github.com/funkpd/autolocal/pkg/utils/notify"
	"github.com/funkpd/autolocal/pkg/utils/runlog"
)

// BuilderPlugin is the plugin slug seeding depends on.
const BuilderPlugin = "elementor"

// ErrBuilderInstall marks a failed builder plugin install while seeding is
// enabled.
var ErrBuilderInstall = errors.New("builder plugin could not be installed")

// defaultPlugins ship with WordPress core and are removed on every install.
var defaultPlugins = []string{"hello", "akismet"}

// Installer applies a preset's plugin and theme set to a site.
type Installer struct {
	wp  *wpcli.Client
	log *runlog.Logger
	out io.Writer
}

// New creates an installer.
func New(wp *wpcli.Client, log *runlog.Logger, out io.Writer) *Installer {
	return &Installer{wp: wp, log: log, out: out}
}

// Apply installs and activates the preset's plugins and themes, removes the
// stock plugins, and enables plugin auto-updates. Item failures are reported
// and skipped; only the builder plugin failing while seeding is enabled stops
// the run.
func (i *Installer) Apply(ctx context.Context, domain string, preset configmanager.Preset, seedingEnabled bool) error {
	active := make(map[string]bool, len(preset.ActivePlugins))
	for _, slug := range preset.ActivePlugins {
		active[slug] = true
	}

	for _, slug := range preset.Plugins {
		err := i.installPlugin(ctx, domain, slug, active[slug])
		if err == nil {
			notify.Passf(i.out, i.log.RunID(), "plugin %s", slug)

			continue
		}

		notify.Failf(i.out, i.log.RunID(), "plugin %s", slug)
		i.log.Errorf("install plugin %s on %s: %v", slug, domain, err)

		if slug == BuilderPlugin && seedingEnabled {
			return fmt.Errorf("%w: %v", ErrBuilderInstall, err)
		}
	}

	for _, slug := range preset.Themes {
		err := i.installTheme(ctx, domain, slug, slug == preset.ActiveTheme)
		if err == nil {
			notify.Passf(i.out, i.log.RunID(), "theme %s", slug)

			continue
		}

		notify.Failf(i.out, i.log.RunID(), "theme %s", slug)
		i.log.Errorf("install theme %s on %s: %v", slug, domain, err)
	}

	i.cleanupDefaults(ctx, domain)
	i.enableAutoUpdates(ctx, domain)

	return nil
}

func (i *Installer) installPlugin(ctx context.Context, domain, slug string, activate bool) error {
	args := []string{"plugin", "install", slug}
	if activate {
		args = append(args, "--activate")
	}

	res, err := i.wp.Run(ctx, domain, args...)
	if err != nil {
		return err
	}

	if !res.Succeeded {
		return fmt.Errorf("wp plugin install %s: %s", slug, strings.TrimSpace(res.Stderr))
	}

	return nil
}

func (i *Installer) installTheme(ctx context.Context, domain, slug string, activate bool) error {
	args := []string{"theme", "install", slug}
	if activate {
		args = append(args, "--activate")
	}

	res, err := i.wp.Run(ctx, domain, args...)
	if err != nil {
		return err
	}

	if !res.Succeeded {
		return fmt.Errorf("wp theme install %s: %s", slug, strings.TrimSpace(res.Stderr))
	}

	return nil
}

// cleanupDefaults deletes the plugins WordPress ships with. Already-absent
// plugins make the command fail, which is fine.
func (i *Installer) cleanupDefaults(ctx context.Context, domain string) {
	args := append([]string{"plugin", "delete"}, defaultPlugins...)

	res, err := i.wp.Run(ctx, domain, args...)
	if err != nil || !res.Succeeded {
		i.log.Debugf("default plugin cleanup on %s skipped", domain)
	}
}

func (i *Installer) enableAutoUpdates(ctx context.Context, domain string) {
	res, err := i.wp.Run(ctx, domain, "plugin", "auto-updates", "enable", "--all")
	if err != nil || !res.Succeeded {
		i.log.Warnf("enable plugin auto-updates on %s failed", domain)
	}
}

// StarterContent ensures the expected pages exist and are collected in a Main
// menu, with the home page set as static front page. Every step is idempotent
// and individually non-fatal.
func (i *Installer) StarterContent(ctx context.Context, domain string, pages []configmanager.PageSpec) {
	var homeID string

	for _, page := range pages {
		id, err := i.ensurePage(ctx, domain, page)
		if err != nil {
			i.log.Warnf("starter page %s on %s: %v", page.Slug, domain, err)

			continue
		}

		if page.Slug == "home" {
			homeID = id
		}

		i.addToMenu(ctx, domain, id)
	}

	if homeID != "" {
		i.setFrontPage(ctx, domain, homeID)
	}
}

// ensurePage returns the page id for a slug, creating a published page when
// missing.
func (i *Installer) ensurePage(ctx context.Context, domain string, page configmanager.PageSpec) (string, error) {
	res, err := i.wp.RunJSON(ctx, domain,
		"post", "list", "--post_type=page", "--name="+page.Slug, "--fields=ID")
	if err != nil {
		return "", err
	}

	if row, ok := res.FirstRow(); res.Succeeded && ok {
		switch id := row["ID"].(type) {
		case float64:
			return fmt.Sprintf("%.0f", id), nil
		case string:
			return id, nil
		}
	}

	created, err := i.wp.RunPorcelain(ctx, domain,
		"post", "create",
		"--post_type=page",
		"--post_status=publish",
		"--post_title="+page.Title,
		"--post_name="+page.Slug,
		"--porcelain")
	if err != nil {
		return "", err
	}

	if !created.Succeeded {
		return "", fmt.Errorf("create page %s: %s", page.Slug, strings.TrimSpace(created.Stderr))
	}

	return created.Value, nil
}

func (i *Installer) addToMenu(ctx context.Context, domain, pageID string) {
	// Creating an existing menu fails; either way the menu is there.
	_, _ = i.wp.Run(ctx, domain, "menu", "create", "Main")

	res, err := i.wp.Run(ctx, domain, "menu", "item", "add-post", "Main", pageID)
	if err != nil || !res.Succeeded {
		i.log.Debugf("menu item for page %s on %s skipped", pageID, domain)
	}
}

func (i *Installer) setFrontPage(ctx context.Context, domain, pageID string) {
	steps := [][]string{
		{"option", "update", "show_on_front", "page"},
		{"option", "update", "page_on_front", pageID},
	}

	for _, args := range steps {
		res, err := i.wp.Run(ctx, domain, args...)
		if err != nil || !res.Succeeded {
			i.log.Warnf("front page option %s on %s failed", args[2], domain)

			return
		}
	}
}

// LoadPresetOverrides reads plugins.tsv and themes.tsv from dir and overlays
// them onto the preset. Each line is `slug<TAB>active`; the second column
// marks the item for activation. A missing file leaves that half of the
// preset unchanged.
func LoadPresetOverrides(dir string, preset configmanager.Preset) (configmanager.Preset, error) {
	plugins, activePlugins, err := readListSource(filepath.Join(dir, "plugins.tsv"))
	if err != nil {
		return preset, err
	}

	if plugins != nil {
		preset.Plugins = plugins
		preset.ActivePlugins = activePlugins
	}

	themes, activeThemes, err := readListSource(filepath.Join(dir, "themes.tsv"))
	if err != nil {
		return preset, err
	}

	if themes != nil {
		preset.Themes = themes
		if len(activeThemes) > 0 {
			preset.ActiveTheme = activeThemes[0]
		}
	}

	return preset, nil
}

// readListSource parses a TSV list source. Returns (nil, nil, nil) when the
// file does not exist.
func readListSource(path string) (items, active []string, err error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, nil
		}

		return nil, nil, fmt.Errorf("read list source %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		slug := strings.TrimSpace(fields[0])
		if slug == "" {
			continue
		}

		items = append(items, slug)

		if len(fields) > 1 && strings.TrimSpace(fields[1]) == "active" {
			active = append(active, slug)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read list source %s: %w", path, err)
	}

	return items, active, nil
}
