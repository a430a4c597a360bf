package configmanager_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funkpd/autolocal/pkg/io/configmanager"
)

func TestLoadConfigDefaults(t *testing.T) {
	manager := configmanager.NewConfigManager()
	// Point at an empty directory so a developer's autolocal.yaml cannot leak in.
	manager.Viper.AddConfigPath(t.TempDir())

	cfg, err := manager.LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "/srv/http", cfg.SiteRoot)
	require.Equal(t, "/etc/nginx/vhosts", cfg.VhostDir)
	require.Equal(t, "/etc/hosts", cfg.HostsFile)
	require.Equal(t, "/usr/bin/wp", cfg.WPPath)
	require.Equal(t, "wp-mid", cfg.DefaultPreset)
	require.True(t, cfg.Seed.Enabled)
	require.Equal(t, configmanager.DefaultPageSpecs(), cfg.Seed.Pages)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "autolocal.yaml")

	content := `siteRoot: /tmp/sites
defaultPreset: wp-max
seed:
  enabled: true
  templatePath: /tmp/tpl.json
  pages:
    - slug: home
      title: Home
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	manager := configmanager.NewConfigManager()
	manager.SetConfigFile(path)

	cfg, err := manager.LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "/tmp/sites", cfg.SiteRoot)
	require.Equal(t, "wp-max", cfg.DefaultPreset)
	require.Equal(t, "/tmp/tpl.json", cfg.Seed.TemplatePath)
	require.Len(t, cfg.Seed.Pages, 1)
	require.Equal(t, "Home", cfg.Seed.Pages[0].Title)
}

func TestLoadConfigCachesResult(t *testing.T) {
	manager := configmanager.NewConfigManager()
	manager.Viper.AddConfigPath(t.TempDir())

	first, err := manager.LoadConfig()
	require.NoError(t, err)

	second, err := manager.LoadConfig()
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestValidateRejectsUnknownPreset(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.DefaultPreset = "wp-imaginary"

	err := configmanager.Validate(cfg)
	require.ErrorIs(t, err, configmanager.ErrUnknownPreset)
}

func TestValidateRejectsSeedingWithoutSource(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Seed.Enabled = true
	cfg.Seed.TemplatePath = ""
	cfg.Seed.VaultPath = ""

	err := configmanager.Validate(cfg)
	require.ErrorIs(t, err, configmanager.ErrSeedWithoutSource)
}

func TestValidateRejectsMissingPaths(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*configmanager.Config)
		wantErr error
	}{
		{
			name:    "site root",
			mutate:  func(c *configmanager.Config) { c.SiteRoot = "" },
			wantErr: configmanager.ErrMissingSiteRoot,
		},
		{
			name:    "vhost dir",
			mutate:  func(c *configmanager.Config) { c.VhostDir = "" },
			wantErr: configmanager.ErrMissingVhostDir,
		},
		{
			name:    "hosts file",
			mutate:  func(c *configmanager.Config) { c.HostsFile = "" },
			wantErr: configmanager.ErrMissingHostsFile,
		},
		{
			name:    "wp path",
			mutate:  func(c *configmanager.Config) { c.WPPath = "" },
			wantErr: configmanager.ErrMissingWPPath,
		},
	}

	for _, testCase := range cases {
		testCase := testCase

		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			testCase.mutate(&cfg)

			err := configmanager.Validate(cfg)
			require.ErrorIs(t, err, testCase.wantErr)
		})
	}
}

func TestLoadConfigExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("AUTOLOCAL_TEST_SITES", "/tmp/sites")

	dir := t.TempDir()
	path := filepath.Join(dir, "autolocal.yaml")

	content := `siteRoot: ${AUTOLOCAL_TEST_SITES}
vhostDir: ${AUTOLOCAL_TEST_VHOSTS:-/etc/nginx/vhosts}
seed:
  enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	manager := configmanager.NewConfigManager()
	manager.SetConfigFile(path)

	cfg, err := manager.LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "/tmp/sites", cfg.SiteRoot)
	require.Equal(t, "/etc/nginx/vhosts", cfg.VhostDir)
}

func TestValidateAcceptsVersionedPreset(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.DefaultPreset = "wp-mid-2"

	require.NoError(t, configmanager.Validate(cfg))
}

func TestBuiltinPresetsCoverKnownNames(t *testing.T) {
	t.Parallel()

	presets := configmanager.BuiltinPresets()

	for _, name := range []string{"wp-min", "wp-mid", "wp-max"} {
		preset, ok := presets[name]
		require.True(t, ok, "missing preset %s", name)
		require.NotEmpty(t, preset.ActiveTheme)
	}

	require.Contains(t, presets["wp-mid"].ActivePlugins, "elementor")
}

func validConfig() configmanager.Config {
	return configmanager.Config{
		SiteRoot:      "/srv/http",
		VhostDir:      "/etc/nginx/vhosts",
		HostsFile:     "/etc/hosts",
		WPPath:        "/usr/bin/wp",
		DefaultPreset: "wp-mid",
		Seed: configmanager.SeedConfig{
			Enabled:      true,
			TemplatePath: "/tmp/tpl.json",
			Pages:        configmanager.DefaultPageSpecs(),
		},
	}
}
