package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds tool configuration. Everything here has a working default;
// the CLI parameters (center, radius, zoom) are flags, not config.
type Config struct {
	Tiles   TilesConfig   `mapstructure:"tiles"`
	Extract ExtractConfig `mapstructure:"extract"`
	Log     LogConfig     `mapstructure:"log"`
}

// TilesConfig configures the tile endpoint.
type TilesConfig struct {
	// URL is the endpoint base; tiles are requested as URL/{z}/{x}/{y}.pbf.
	URL            string `mapstructure:"url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
	// CacheDir enables the on-disk tile cache when non-empty.
	CacheDir string `mapstructure:"cache_dir"`
}

// ExtractConfig configures the extraction loop.
type ExtractConfig struct {
	// Workers is the number of concurrent tile fetches. 1 keeps the
	// strictly sequential loop.
	Workers int `mapstructure:"workers"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from an optional file and ROADCLIP_* environment
// variables, e.g. ROADCLIP_TILES_URL overrides tiles.url.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("tiles.url", "https://tiles.openfreemap.org/planet/latest")
	v.SetDefault("tiles.timeout_seconds", 30)
	v.SetDefault("tiles.user_agent", "route-snapper/1.0")
	v.SetDefault("tiles.cache_dir", "")
	v.SetDefault("extract.workers", 1)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		_ = v.ReadInConfig() // OK if missing
	}

	v.SetEnvPrefix("ROADCLIP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Tiles.URL == "" {
		errs = append(errs, "tiles.url is required")
	}
	if c.Tiles.TimeoutSeconds <= 0 {
		errs = append(errs, "tiles.timeout_seconds must be positive")
	}
	if c.Extract.Workers < 1 {
		errs = append(errs, "extract.workers must be at least 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
