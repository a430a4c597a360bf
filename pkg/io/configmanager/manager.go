// Package configmanager loads and validates the autolocal configuration.
//
// Configuration priority: defaults < config file < environment variables <
// flags. The result is a fully populated Config value; nothing else in the
// program reads viper directly.
package configmanager

import (
	"errors"
	"fmt"
	"strings"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/funkpd/autolocal/pkg/utils/envvar"
)

const (
	envPrefix      = "AUTOLOCAL"
	configFileName = "autolocal"
)

// Validation errors.
var (
	// ErrMissingSiteRoot indicates no site root directory is configured.
	ErrMissingSiteRoot = errors.New("siteRoot must not be empty")
	// ErrMissingVhostDir indicates no vhost directory is configured.
	ErrMissingVhostDir = errors.New("vhostDir must not be empty")
	// ErrMissingHostsFile indicates no hosts file is configured.
	ErrMissingHostsFile = errors.New("hostsFile must not be empty")
	// ErrMissingWPPath indicates no wp-cli binary is configured.
	ErrMissingWPPath = errors.New("wpPath must not be empty")
	// ErrUnknownPreset indicates the default preset has no definition.
	ErrUnknownPreset = errors.New("defaultPreset does not name a known preset")
	// ErrSeedWithoutSource indicates seeding is enabled with neither a local
	// template nor a vault path.
	ErrSeedWithoutSource = errors.New("seeding enabled but neither seed.templatePath nor seed.vaultPath is set")
)

// ConfigManager loads the autolocal configuration through viper.
type ConfigManager struct {
	Viper  *viper.Viper
	Config Config

	loaded bool
}

// NewConfigManager creates a manager with defaults and environment handling
// registered.
func NewConfigManager() *ConfigManager {
	viperInstance := viper.New()

	viperInstance.SetConfigName(configFileName)
	viperInstance.SetConfigType("yaml")
	viperInstance.AddConfigPath(".")
	viperInstance.AddConfigPath("$HOME/.config/autolocal")
	viperInstance.AddConfigPath("/etc/autolocal")

	viperInstance.SetEnvPrefix(envPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperInstance.AutomaticEnv()

	setDefaults(viperInstance)

	return &ConfigManager{Viper: viperInstance}
}

// BindFlags binds a command's flags so they take precedence over file and
// environment values. Flag names must match config keys.
func (m *ConfigManager) BindFlags(flags *pflag.FlagSet) error {
	err := m.Viper.BindPFlags(flags)
	if err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}

	return nil
}

// SetConfigFile forces a specific config file instead of the search paths.
func (m *ConfigManager) SetConfigFile(path string) {
	m.Viper.SetConfigFile(path)
}

// LoadConfig reads, decodes and validates the configuration. Subsequent calls
// return the cached value.
func (m *ConfigManager) LoadConfig() (Config, error) {
	if m.loaded {
		return m.Config, nil
	}

	err := m.Viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		// No config file is fine; defaults, env and flags still apply.
	}

	var cfg Config

	err = m.Viper.Unmarshal(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	expandEnvPlaceholders(&cfg)

	if len(cfg.Seed.Pages) == 0 {
		cfg.Seed.Pages = DefaultPageSpecs()
	}

	err = Validate(cfg)
	if err != nil {
		return Config{}, err
	}

	m.Config = cfg
	m.loaded = true

	return cfg, nil
}

// Validate checks the configuration once at startup.
func Validate(cfg Config) error {
	if cfg.SiteRoot == "" {
		return ErrMissingSiteRoot
	}

	if cfg.VhostDir == "" {
		return ErrMissingVhostDir
	}

	if cfg.HostsFile == "" {
		return ErrMissingHostsFile
	}

	if cfg.WPPath == "" {
		return ErrMissingWPPath
	}

	_, ok := BuiltinPresets()[presetKey(cfg.DefaultPreset)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPreset, cfg.DefaultPreset)
	}

	if cfg.Seed.Enabled && cfg.Seed.TemplatePath == "" && cfg.Seed.VaultPath == "" {
		return ErrSeedWithoutSource
	}

	return nil
}

// expandEnvPlaceholders expands ${VAR} placeholders in every path and
// credential field, so config files can stay free of user-specific values.
func expandEnvPlaceholders(cfg *Config) {
	fields := []*string{
		&cfg.SiteRoot,
		&cfg.VhostDir,
		&cfg.VhostTemplate,
		&cfg.HostsFile,
		&cfg.WPPath,
		&cfg.LogDir,
		&cfg.PresetsDir,
		&cfg.Admin.User,
		&cfg.Admin.Password,
		&cfg.Admin.Email,
		&cfg.Database.Password,
		&cfg.Seed.TemplatePath,
		&cfg.Seed.VaultPath,
	}

	for _, field := range fields {
		*field = envvar.Expand(*field)
	}
}

// presetKey strips a trailing numeric version suffix so "wp-mid-2" validates
// against the "wp-mid" preset.
func presetKey(name string) string {
	idx := strings.LastIndex(name, "-")
	if idx < 0 {
		return name
	}

	suffix := name[idx+1:]
	if suffix == "" {
		return name
	}

	for _, r := range suffix {
		if r < '0' || r > '9' {
			return name
		}
	}

	return name[:idx]
}

func setDefaults(viperInstance *viper.Viper) {
	viperInstance.SetDefault("siteRoot", "/srv/http")
	viperInstance.SetDefault("vhostDir", "/etc/nginx/vhosts")
	viperInstance.SetDefault("hostsFile", "/etc/hosts")
	viperInstance.SetDefault("wpPath", "/usr/bin/wp")
	viperInstance.SetDefault("logDir", "log")
	viperInstance.SetDefault("defaultPreset", "wp-mid")
	viperInstance.SetDefault("admin.user", "admin")
	viperInstance.SetDefault("admin.password", "password")
	viperInstance.SetDefault("admin.email", "admin@localhost.local")
	viperInstance.SetDefault("database.password", "")
	viperInstance.SetDefault("seed.enabled", true)
	viperInstance.SetDefault("seed.templatePath", "")
	viperInstance.SetDefault("seed.vaultPath", "")
	viperInstance.SetDefault("seed.minBuilderVersion", "")
}
