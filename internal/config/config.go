// Package config loads the application settings file.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the application configuration. The provider registry's
// override file is referenced here but loaded by the provider package.
type Config struct {
	DefaultProvider string `mapstructure:"default_provider"`
	Language        string `mapstructure:"language"`
	ProvidersFile   string `mapstructure:"providers_file"`
	SessionDB       string `mapstructure:"session_db"`
}

// Load loads the configuration from a file and environment variables.
// A missing file is not an error; defaults and SCENARIST_* environment
// variables still apply.
func Load(path string) (*Config, error) {
	vip := viper.New()
	if path != "" {
		vip.SetConfigFile(path)
	} else {
		vip.SetConfigName("scenarist")
		vip.AddConfigPath(".")
	}

	vip.SetConfigType("yaml")
	vip.SetEnvPrefix("scenarist")
	vip.AutomaticEnv()
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	vip.SetDefault("default_provider", "gemini-flash")
	vip.SetDefault("language", "English")
	vip.SetDefault("session_db", "scenarist.db")

	if err := vip.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
