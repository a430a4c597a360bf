package seeder

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/funkpd/autolocal/pkg/client/wpcli"
)

// VaultFetcher retrieves captured preset blobs by vault page slug.
type VaultFetcher interface {
	FetchPreset(ctx context.Context, slug string) (string, error)
}

// Vault lookup errors.
var (
	// ErrVaultPageNotFound marks a preset slug with no vault page.
	ErrVaultPageNotFound = errors.New("vault page not found")
	// ErrVaultMetaEmpty marks a vault page without builder data.
	ErrVaultMetaEmpty = errors.New("vault page has no builder data")
)

// WPVault reads preset pages from the vault site through wp-cli.
type WPVault struct {
	wp   *wpcli.Client
	path string
}

// NewWPVault creates a vault client targeting the vault document root.
func NewWPVault(wp *wpcli.Client, path string) *WPVault {
	return &WPVault{wp: wp, path: path}
}

// Path returns the vault document root.
func (v *WPVault) Path() string {
	return v.path
}

// FetchPreset resolves a vault page by slug and returns its raw
// _elementor_data blob.
func (v *WPVault) FetchPreset(ctx context.Context, slug string) (string, error) {
	pageID, err := v.pageID(ctx, slug)
	if err != nil {
		return "", err
	}

	res, err := v.wp.RunCaptureAtPath(ctx, v.path,
		"post", "meta", "get", strconv.FormatInt(pageID, 10), "_elementor_data")
	if err != nil {
		return "", err
	}

	if !res.Succeeded || res.Value == "" {
		return "", fmt.Errorf("%w: %s", ErrVaultMetaEmpty, slug)
	}

	return res.Value, nil
}

func (v *WPVault) pageID(ctx context.Context, slug string) (int64, error) {
	res, err := v.wp.RunJSONAtPath(ctx, v.path,
		"post", "list", "--post_type=page", "--name="+slug, "--fields=ID")
	if err != nil {
		return 0, err
	}

	row, ok := res.FirstRow()
	if !res.Succeeded || !ok {
		return 0, fmt.Errorf("%w: %s", ErrVaultPageNotFound, slug)
	}

	id, ok := numericField(row, "ID")
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrVaultPageNotFound, slug)
	}

	return id, nil
}

// numericField reads an integer field from a decoded JSON row, tolerating
// both number and string encodings.
func numericField(row map[string]any, key string) (int64, bool) {
	switch value := row[key].(type) {
	case float64:
		return int64(value), true
	case string:
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, false
		}

		return id, true
	default:
		return 0, false
	}
}
