package seeder

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/funkpd/autolocal/pkg/client/wpcli"
)

// MediaImporter re-imports one asset onto a site and returns its new
// attachment id.
type MediaImporter interface {
	ImportAsset(ctx context.Context, domain, assetURL string) (string, error)
}

// ErrImportFailed marks a media import that produced no attachment id.
var ErrImportFailed = errors.New("media import failed")

var digitsPattern = regexp.MustCompile(`\d+`)

// WPMediaImporter imports media through wp-cli. URLs under the vault's
// wp-content tree are imported from the vault's local filesystem copy;
// anything else is handed to wp-cli as-is.
type WPMediaImporter struct {
	wp        *wpcli.Client
	vaultPath string
}

// NewWPMediaImporter creates a media importer. vaultPath may be empty when no
// vault is configured.
func NewWPMediaImporter(wp *wpcli.Client, vaultPath string) *WPMediaImporter {
	return &WPMediaImporter{wp: wp, vaultPath: vaultPath}
}

// ImportAsset imports the referenced asset into the domain's media library
// and returns the new attachment id.
func (m *WPMediaImporter) ImportAsset(ctx context.Context, domain, assetURL string) (string, error) {
	source := m.resolveSource(assetURL)
	if source == "" {
		return "", fmt.Errorf("%w: unresolvable source for %s", ErrImportFailed, assetURL)
	}

	res, err := m.wp.RunPorcelain(ctx, domain, "media", "import", source, "--porcelain")
	if err != nil {
		return "", err
	}

	if !res.Succeeded {
		return "", fmt.Errorf("%w: %s", ErrImportFailed, assetURL)
	}

	// Some wp-cli versions wrap the id in extra text; the trailing number is
	// the attachment id.
	ids := digitsPattern.FindAllString(res.Value, -1)
	if len(ids) == 0 {
		return "", fmt.Errorf("%w: no attachment id for %s", ErrImportFailed, assetURL)
	}

	return ids[len(ids)-1], nil
}

// resolveSource maps an asset URL to what wp-cli should import. Vault-hosted
// uploads are read straight from the vault document root, skipping HTTP.
func (m *WPMediaImporter) resolveSource(assetURL string) string {
	if assetURL == "" {
		return ""
	}

	idx := strings.Index(assetURL, "/wp-content/")
	if m.vaultPath != "" && idx >= 0 {
		rel := strings.TrimPrefix(assetURL[idx:], "/")

		return filepath.Join(m.vaultPath, rel)
	}

	return assetURL
}
