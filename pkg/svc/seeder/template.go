package seeder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Template identifies one unit of seed content for one page: either a local
// template file or a vault preset page.
type Template struct {
	// Slug and Title identify the target page on the new site.
	Slug  string
	Title string
	// LocalPath points at a template JSON file. Used when VaultKey is empty.
	LocalPath string
	// VaultKey and VaultVersion select a captured preset page in the vault,
	// resolved as "<key>-<slug>-<version>".
	VaultKey     string
	VaultVersion string
}

// ErrNoContent marks a template blob with no recognizable content.
var ErrNoContent = errors.New("template blob has no recognizable content")

// ParsePreset splits a preset value into key and version. Only a numeric
// suffix counts as a version; anything else is part of the key. A missing
// version defaults to "1".
func ParsePreset(preset string) (key, version string) {
	idx := strings.LastIndex(preset, "-")
	if idx < 0 {
		return preset, "1"
	}

	suffix := preset[idx+1:]
	if !isDigits(suffix) {
		return preset, "1"
	}

	return preset[:idx], suffix
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

// VaultSlug returns the vault page slug this template resolves to.
func (t Template) VaultSlug() string {
	return fmt.Sprintf("%s-%s-%s", t.VaultKey, t.Slug, t.VaultVersion)
}

// FromVault reports whether the template is vault-backed.
func (t Template) FromVault() bool {
	return t.VaultKey != ""
}

// load fetches the raw blob from the template's source.
func (t Template) load(ctx context.Context, vault VaultFetcher) (string, error) {
	if t.FromVault() {
		if vault == nil {
			return "", fmt.Errorf("template %s: no vault configured", t.VaultSlug())
		}

		blob, err := vault.FetchPreset(ctx, t.VaultSlug())
		if err != nil {
			return "", fmt.Errorf("fetch vault preset %s: %w", t.VaultSlug(), err)
		}

		return blob, nil
	}

	content, err := os.ReadFile(t.LocalPath)
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", t.LocalPath, err)
	}

	return string(content), nil
}

// hasRecognizableContent reports whether a blob contains anything a builder
// could render: a non-empty JSON-like structure.
func hasRecognizableContent(blob string) bool {
	trimmed := strings.TrimSpace(blob)
	if trimmed == "" {
		return false
	}

	return strings.ContainsAny(trimmed, "[{")
}
