package configmanager

// Config enumerates every recognized option with its default. It is decoded
// once at startup, validated, and passed by value into the provisioner.
type Config struct {
	// SiteRoot is the directory containing one document root per domain.
	SiteRoot string `mapstructure:"siteRoot"`
	// VhostDir is where rendered nginx vhost files are written.
	VhostDir string `mapstructure:"vhostDir"`
	// VhostTemplate is an optional path to a vhost template file with a
	// single {domain} substitution point. Empty selects the built-in template.
	VhostTemplate string `mapstructure:"vhostTemplate"`
	// HostsFile is the local name-resolution file patched per domain.
	HostsFile string `mapstructure:"hostsFile"`
	// WPPath is the wp-cli binary.
	WPPath string `mapstructure:"wpPath"`
	// LogDir holds the per-run log files and the activity journal.
	LogDir string `mapstructure:"logDir"`
	// DefaultPreset names the preset used when the create command gets none.
	DefaultPreset string `mapstructure:"defaultPreset"`
	// PresetsDir optionally holds plugins.tsv / themes.tsv list sources that
	// override the selected preset's plugin and theme sets.
	PresetsDir string `mapstructure:"presetsDir"`

	Admin    AdminConfig    `mapstructure:"admin"`
	Database DatabaseConfig `mapstructure:"database"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

// AdminConfig carries the WordPress admin account created by core install.
type AdminConfig struct {
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Email    string `mapstructure:"email"`
}

// DatabaseConfig carries MariaDB credentials for site databases.
type DatabaseConfig struct {
	// Password is assigned to each per-site database user.
	Password string `mapstructure:"password"`
}

// SeedConfig controls Elementor template seeding.
type SeedConfig struct {
	// Enabled turns the seeding step on.
	Enabled bool `mapstructure:"enabled"`
	// TemplatePath is a local template JSON file, used when no vault preset
	// is given.
	TemplatePath string `mapstructure:"templatePath"`
	// VaultPath is the document root of the vault site holding captured
	// preset pages and their media.
	VaultPath string `mapstructure:"vaultPath"`
	// MinBuilderVersion is the lowest Elementor version accepted for seeding,
	// as a semver constraint operand. Empty disables the gate.
	MinBuilderVersion string `mapstructure:"minBuilderVersion"`
	// Pages are the slug/title pairs seeded and later verified.
	Pages []PageSpec `mapstructure:"pages"`
}

// PageSpec identifies one expected page.
type PageSpec struct {
	Slug  string `mapstructure:"slug"`
	Title string `mapstructure:"title"`
}

// Preset is a named plugin/theme set.
type Preset struct {
	Plugins       []string
	ActivePlugins []string
	Themes        []string
	ActiveTheme   string
}

// DefaultPageSpecs returns the fixed set of expected pages.
func DefaultPageSpecs() []PageSpec {
	return []PageSpec{
		{Slug: "home", Title: "Home"},
		{Slug: "services", Title: "Services"},
		{Slug: "contact", Title: "Contact"},
	}
}

// BuiltinPresets returns the built-in plugin/theme sets, keyed by preset name.
func BuiltinPresets() map[string]Preset {
	return map[string]Preset{
		"wp-min": {
			Plugins:       []string{},
			ActivePlugins: []string{},
			Themes:        []string{"hello-elementor"},
			ActiveTheme:   "hello-elementor",
		},
		"wp-mid": {
			Plugins:       []string{"elementor", "litespeed-cache"},
			ActivePlugins: []string{"elementor"},
			Themes:        []string{"hello-elementor"},
			ActiveTheme:   "hello-elementor",
		},
		"wp-max": {
			Plugins:       []string{"elementor", "litespeed-cache", "wp-mail-smtp"},
			ActivePlugins: []string{"elementor", "wp-mail-smtp"},
			Themes:        []string{"astra", "hello-elementor"},
			ActiveTheme:   "astra",
		},
	}
}
