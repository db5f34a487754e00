// Package config provides configuration management for plugup using Viper.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/thoreinstein/plugup/internal/paths"
)

// AppName is the application name used for config file naming.
const AppName = "plugup"

// DefaultRegistryURL is the package registry queried for dist-tags when
// neither the config file nor flags name another endpoint.
const DefaultRegistryURL = "https://registry.npmjs.org"

// DefaultTimeout bounds a single dist-tags fetch.
const DefaultTimeout = 10 * time.Second

// DefaultBackupRetention is how many backups of each config file are kept
// when the config file does not say otherwise.
const DefaultBackupRetention = 10

// Config represents the top-level configuration structure.
type Config struct {
	Version     int      `mapstructure:"version" yaml:"version"`
	Package     string   `mapstructure:"package" yaml:"package"`
	Channel     string   `mapstructure:"channel" yaml:"channel"`
	ProjectRoot string   `mapstructure:"project_root" yaml:"project_root"`
	Registry    Registry `mapstructure:"registry" yaml:"registry"`
	Backups     Backups  `mapstructure:"backups" yaml:"backups"`
}

// Registry configures the dist-tags endpoint.
type Registry struct {
	URL     string        `mapstructure:"url" yaml:"url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Backups configures pre-write snapshots of host config files.
type Backups struct {
	Enabled   bool `mapstructure:"enabled" yaml:"enabled"`
	Retention int  `mapstructure:"retention" yaml:"retention"`
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	// Config file settings
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".") // Current directory
	viper.AddConfigPath(filepath.Join(paths.ConfigHome(), AppName))

	// Environment variable support; PLUGUP_REGISTRY_URL maps to registry.url
	viper.SetEnvPrefix("PLUGUP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Defaults. Empty-string defaults register the key so environment-only
	// values survive Unmarshal.
	viper.SetDefault("version", 1)
	viper.SetDefault("package", "")
	viper.SetDefault("channel", "")
	viper.SetDefault("project_root", "")
	viper.SetDefault("registry.url", DefaultRegistryURL)
	viper.SetDefault("registry.timeout", DefaultTimeout)
	viper.SetDefault("backups.enabled", true)
	viper.SetDefault("backups.retention", DefaultBackupRetention)
}

// FileUsed returns the path of the config file that was actually read, or ""
// when plugup is running on defaults.
func FileUsed() string {
	return viper.ConfigFileUsed()
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations.
// Returns the loaded configuration or default values if no file is found (when path is empty).
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		// If config file not found...
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// If user specified a path, this is an error
			if path != "" {
				return nil, fmt.Errorf("config file not found at %s: %w", path, err)
			}
			// Otherwise (implicit load), it's fine to use defaults
		} else {
			// Real read error (parsing, permissions, etc)
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, fmt.Errorf("validating config: %w", errs[0])
	}

	return &cfg, nil
}
