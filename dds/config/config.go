package config

import (
	"fmt"
	"path/filepath"
	"strings"

	internal "github.com/ZanzyTHEbar/dashboard-directory-size/dds"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	General  GeneralConfig `mapstructure:"general"`
	Site     SiteConfig    `mapstructure:"site"`
	Cache    CacheConfig   `mapstructure:"cache"`
	Watcher  WatcherConfig `mapstructure:"watcher"`
	LogLevel string        `mapstructure:"log-level"`
}

// GeneralConfig mirrors the widget's general settings section.
type GeneralConfig struct {
	CommonDirectories    []string `mapstructure:"common-directories"`
	CustomDirectories    string   `mapstructure:"custom-directories"`
	ShowDatabaseSize     bool     `mapstructure:"show-database-size"`
	ShowSum              bool     `mapstructure:"show-sum"`
	TransientTimeMinutes int      `mapstructure:"transient-time-minutes"`
	DecimalPlaces        int      `mapstructure:"decimal-places"`
	TrimmedPathLength    int      `mapstructure:"trimmed-path-length"`
	ExcludePatterns      []string `mapstructure:"exclude-patterns"`
	Workers              int      `mapstructure:"workers"`
}

// SiteConfig describes the hosting install the common directories resolve against.
type SiteConfig struct {
	InstallRoot  string         `mapstructure:"install-root"`
	UploadsDir   string         `mapstructure:"uploads-dir"`
	ThemesDir    string         `mapstructure:"themes-dir"`
	PluginsDir   string         `mapstructure:"plugins-dir"`
	MuPluginsDir string         `mapstructure:"mu-plugins-dir"`
	Database     DatabaseConfig `mapstructure:"database"`
}

// DatabaseConfig stores database connection details.
type DatabaseConfig struct {
	DSN  string `mapstructure:"dsn"`
	Name string `mapstructure:"name"`
}

// CacheConfig selects the size cache backend.
type CacheConfig struct {
	Backend string `mapstructure:"backend"`
	DSN     string `mapstructure:"dsn"`
}

// WatcherConfig controls the optional filesystem event source.
type WatcherConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	DebounceMS    int  `mapstructure:"debounce-ms"`
	MaxDebounceMS int  `mapstructure:"max-debounce-ms"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("..")
		v.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		v.AddConfigPath(internal.DefaultConfigPath)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	SetDefaults(v)

	v.SetEnvPrefix(internal.DefaultEnvPrefix)
	v.AutomaticEnv()
	// general.show-sum becomes DDS_GENERAL_SHOW_SUM
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	cfg.applySiteDefaults()

	return &cfg, nil
}

// SetDefaults registers the default for every recognized key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("general.common-directories", []string{"uploads", "themes", "plugins"})
	v.SetDefault("general.custom-directories", "")
	v.SetDefault("general.show-database-size", false)
	v.SetDefault("general.show-sum", true)
	v.SetDefault("general.transient-time-minutes", internal.DefaultTTLMinutes)
	v.SetDefault("general.decimal-places", 0)
	v.SetDefault("general.trimmed-path-length", internal.DefaultTrimPathLength)
	v.SetDefault("general.exclude-patterns", []string{})
	v.SetDefault("general.workers", 4)

	v.SetDefault("site.install-root", "")
	v.SetDefault("site.uploads-dir", "")
	v.SetDefault("site.themes-dir", "")
	v.SetDefault("site.plugins-dir", "")
	v.SetDefault("site.mu-plugins-dir", "")
	v.SetDefault("site.database.dsn", "")
	v.SetDefault("site.database.name", "")

	v.SetDefault("cache.backend", internal.DefaultCacheBackend)
	v.SetDefault("cache.dsn", internal.DefaultCacheDSN)

	v.SetDefault("watcher.enabled", false)
	v.SetDefault("watcher.debounce-ms", 500)
	v.SetDefault("watcher.max-debounce-ms", 5000)

	v.SetDefault("log-level", "info")
}

// applySiteDefaults fills the standard wp-content layout under the install root.
func (c *Config) applySiteDefaults() {
	root := c.Site.InstallRoot
	if root == "" {
		return
	}
	content := filepath.Join(root, "wp-content")
	if c.Site.UploadsDir == "" {
		c.Site.UploadsDir = filepath.Join(content, "uploads")
	}
	if c.Site.ThemesDir == "" {
		c.Site.ThemesDir = filepath.Join(content, "themes")
	}
	if c.Site.PluginsDir == "" {
		c.Site.PluginsDir = filepath.Join(content, "plugins")
	}
	if c.Site.MuPluginsDir == "" {
		c.Site.MuPluginsDir = filepath.Join(content, "mu-plugins")
	}
}
