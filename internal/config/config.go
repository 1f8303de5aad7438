// Package config loads dokumd settings from defaults, an optional YAML file,
// DOKUMD_ environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/rgonek/dokuwiki-md-converter/converter"
)

// Config holds the application configuration.
type Config struct {
	ImageRoot      string    `mapstructure:"image_root"`
	ImageDir       string    `mapstructure:"image_dir"`
	APIHost        string    `mapstructure:"api_host"`
	TabWidth       int       `mapstructure:"tab_width"`
	ResolutionMode string    `mapstructure:"resolution_mode"`
	Workers        int       `mapstructure:"workers"`
	Manifest       string    `mapstructure:"manifest"`
	Force          bool      `mapstructure:"force"`
	Log            LogConfig `mapstructure:"log"`
}

// LogConfig selects the logger level and output format.
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	AddSource bool   `mapstructure:"add_source"`
}

// New returns a viper instance with defaults, search paths and environment
// binding configured.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("image_root", "")
	v.SetDefault("image_dir", "images")
	v.SetDefault("api_host", "api.silverstripe.org")
	v.SetDefault("tab_width", 4)
	v.SetDefault("resolution_mode", string(converter.ResolutionBestEffort))
	v.SetDefault("workers", 4)
	v.SetDefault("manifest", "")
	v.SetDefault("force", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.add_source", false)

	v.SetConfigName("dokumd")
	v.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "dokumd"))
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("DOKUMD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the config file and unmarshals the merged settings. An explicit
// configFile must exist; otherwise a missing dokumd.yaml is not an error.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// ConverterConfig maps the settings onto the conversion engine config.
func (c Config) ConverterConfig() converter.Config {
	return converter.Config{
		TabWidth:       c.TabWidth,
		APIHost:        c.APIHost,
		ImageRoot:      c.ImageRoot,
		ImageDir:       c.ImageDir,
		ResolutionMode: converter.ResolutionMode(c.ResolutionMode),
	}
}
