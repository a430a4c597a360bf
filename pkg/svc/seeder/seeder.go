// Package seeder populates freshly provisioned sites with builder page
// content: template blobs are loaded from a local file or the vault, their
// media re-imported onto the new site, and their references rewritten before
// the blob is attached to the target page.
package seeder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/funkpd/autolocal/pkg/client/wpcli"
	"github.com/funkpd/autolocal/pkg/utils/notify"
	"github.com/funkpd/autolocal/pkg/utils/runlog"
)

// Seeding errors.
var (
	// ErrBuilderMissing marks a site where the builder plugin is not active.
	ErrBuilderMissing = errors.New("builder plugin is not active")
	// ErrBuilderTooOld marks a builder version below the supported floor.
	ErrBuilderTooOld = errors.New("builder version below supported minimum")
	// ErrPageUnresolved marks a page that could be neither found nor created.
	ErrPageUnresolved = errors.New("target page could not be resolved")
)

// Engine seeds builder content onto provisioned sites.
type Engine struct {
	wp                *wpcli.Client
	importer          MediaImporter
	vault             VaultFetcher
	log               *runlog.Logger
	out               io.Writer
	minBuilderVersion string
}

// NewEngine creates a seeding engine. vault may be nil when only local
// template files are used.
func NewEngine(
	wp *wpcli.Client,
	importer MediaImporter,
	vault VaultFetcher,
	log *runlog.Logger,
	out io.Writer,
	minBuilderVersion string,
) *Engine {
	return &Engine{
		wp:                wp,
		importer:          importer,
		vault:             vault,
		log:               log,
		out:               out,
		minBuilderVersion: minBuilderVersion,
	}
}

// SeedAll seeds every template onto the domain, regenerates builder CSS once
// at the end, and records the outcome in the activity journal. Individual
// template failures are reported and skipped; the CSS flush failing is an
// error because without it every seeded page renders unstyled.
func (e *Engine) SeedAll(ctx context.Context, domain string, templates []Template) error {
	version, err := e.builderVersion(ctx, domain)
	if err != nil {
		return err
	}

	seeded := 0

	for _, tpl := range templates {
		pageID, err := e.seedOne(ctx, domain, tpl, version)
		if err != nil {
			e.log.Errorf("seed %s/%s: %v", domain, tpl.Slug, err)
			notify.Failf(e.out, e.log.RunID(), "seed page %s", tpl.Slug)

			continue
		}

		seeded++

		notify.Passf(e.out, e.log.RunID(), "seed page %s (id %d)", tpl.Slug, pageID)
	}

	res, err := e.wp.Run(ctx, domain, "elementor", "flush_css")
	if err != nil {
		return err
	}

	if !res.Succeeded {
		return fmt.Errorf("flush builder css for %s: %s", domain, strings.TrimSpace(res.Stderr))
	}

	e.log.Activity("seeded %d/%d pages on %s", seeded, len(templates), domain)

	return nil
}

// Seed seeds a single template onto the domain and returns the page id it
// landed on.
func (e *Engine) Seed(ctx context.Context, domain string, tpl Template) (int64, error) {
	version, err := e.builderVersion(ctx, domain)
	if err != nil {
		return 0, err
	}

	return e.seedOne(ctx, domain, tpl, version)
}

func (e *Engine) seedOne(ctx context.Context, domain string, tpl Template, builderVersion string) (int64, error) {
	blob, err := tpl.load(ctx, e.vault)
	if err != nil {
		return 0, err
	}

	if !hasRecognizableContent(blob) {
		return 0, fmt.Errorf("%w: %s", ErrNoContent, tpl.Slug)
	}

	blob = NormalizeBlob(blob)

	refs, sourceHost := FindUploadRefs(blob)
	mapping := e.importRefs(ctx, domain, refs)

	blob = RewriteHost(blob, sourceHost, domain)

	// The blob now carries the new host, so the mapping keys must too. The
	// original URLs stay in as a fallback for partially rewritten blobs.
	for refURL, id := range mapping {
		rewritten := RewriteHost(refURL, sourceHost, domain)
		if _, exists := mapping[rewritten]; !exists {
			mapping[rewritten] = id
		}
	}

	blob, hits := RewriteIDs(blob, mapping)
	e.log.Debugf("seed %s/%s: %d media refs, %d imported, %d ids rewritten",
		domain, tpl.Slug, len(refs), len(mapping), hits)

	pageID, err := e.resolvePage(ctx, domain, tpl)
	if err != nil {
		return 0, err
	}

	err = e.attachBuilderData(ctx, domain, pageID, builderVersion, blob)
	if err != nil {
		return 0, err
	}

	return pageID, nil
}

// importRefs re-imports every discovered asset and returns original URL to new
// attachment id. Failed imports are logged and left out; their references keep
// their old ids.
func (e *Engine) importRefs(ctx context.Context, domain string, refs []MediaRef) map[string]string {
	mapping := make(map[string]string, len(refs))

	for _, ref := range refs {
		newID, err := e.importer.ImportAsset(ctx, domain, ref.URL)
		if err != nil {
			e.log.Warnf("import media %s: %v", ref.URL, err)

			continue
		}

		mapping[ref.URL] = newID
	}

	return mapping
}

// resolvePage finds the target page by slug, creating it as a published page
// when missing. Re-running against an existing page reuses it.
func (e *Engine) resolvePage(ctx context.Context, domain string, tpl Template) (int64, error) {
	res, err := e.wp.RunJSON(ctx, domain,
		"post", "list", "--post_type=page", "--name="+tpl.Slug, "--fields=ID")
	if err != nil {
		return 0, err
	}

	if row, ok := res.FirstRow(); res.Succeeded && ok {
		if id, ok := numericField(row, "ID"); ok {
			return id, nil
		}
	}

	created, err := e.wp.RunPorcelain(ctx, domain,
		"post", "create",
		"--post_type=page",
		"--post_status=publish",
		"--post_title="+tpl.Title,
		"--post_name="+tpl.Slug,
		"--porcelain")
	if err != nil {
		return 0, err
	}

	if !created.Succeeded {
		return 0, fmt.Errorf("%w: %s", ErrPageUnresolved, tpl.Slug)
	}

	id, ok := numericField(map[string]any{"ID": created.Value}, "ID")
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrPageUnresolved, tpl.Slug)
	}

	return id, nil
}

// attachBuilderData writes the builder meta onto the page. The data blob goes
// through STDIN so arbitrarily large templates never hit argv limits.
func (e *Engine) attachBuilderData(ctx context.Context, domain string, pageID int64, builderVersion, blob string) error {
	page := fmt.Sprintf("%d", pageID)

	meta := [][]string{
		{"post", "meta", "update", page, "_elementor_edit_mode", "builder"},
		{"post", "meta", "update", page, "_elementor_version", builderVersion},
	}

	for _, args := range meta {
		res, err := e.wp.Run(ctx, domain, args...)
		if err != nil {
			return err
		}

		if !res.Succeeded {
			return fmt.Errorf("set %s on page %s: %s", args[4], page, strings.TrimSpace(res.Stderr))
		}
	}

	res, err := e.wp.RunWithStdin(ctx, domain, strings.NewReader(blob),
		"post", "meta", "update", page, "_elementor_data")
	if err != nil {
		return err
	}

	if !res.Succeeded {
		return fmt.Errorf("set _elementor_data on page %s: %s", page, strings.TrimSpace(res.Stderr))
	}

	return nil
}

// builderVersion reads the active builder plugin version and enforces the
// supported floor. Blobs captured from newer builders do not render on older
// ones, so seeding refuses to proceed below the floor.
func (e *Engine) builderVersion(ctx context.Context, domain string) (string, error) {
	res, err := e.wp.RunCapture(ctx, domain, "plugin", "get", "elementor", "--field=version")
	if err != nil {
		return "", err
	}

	if !res.Succeeded || res.Value == "" {
		return "", fmt.Errorf("%w on %s", ErrBuilderMissing, domain)
	}

	if e.minBuilderVersion == "" {
		return res.Value, nil
	}

	installed, err := semver.NewVersion(res.Value)
	if err != nil {
		return "", fmt.Errorf("parse builder version %q: %w", res.Value, err)
	}

	floor, err := semver.NewVersion(e.minBuilderVersion)
	if err != nil {
		return "", fmt.Errorf("parse minimum builder version %q: %w", e.minBuilderVersion, err)
	}

	if installed.LessThan(floor) {
		return "", fmt.Errorf("%w: have %s, need %s", ErrBuilderTooOld, installed, floor)
	}

	return res.Value, nil
}
