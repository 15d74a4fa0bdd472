// Package config loads service configuration from a YAML file and
// SCRAPERLAB_-prefixed environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/scraperlab/scraperlab/models"
)

// Config holds all configuration for the service.
type Config struct {
	Server    ServerConfig          `mapstructure:"server"`
	Providers ProvidersConfig       `mapstructure:"providers"`
	Cache     CacheConfig           `mapstructure:"cache"`
	Log       LogConfig             `mapstructure:"log"`
	Webhook   WebhookConfig         `mapstructure:"webhook"`
	Metrics   MetricsConfig         `mapstructure:"metrics"`
	Domains   []models.DomainConfig `mapstructure:"domains"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// ProvidersConfig holds fetch-provider credentials and selection.
type ProvidersConfig struct {
	// Default names the provider used for sites with no stored
	// provider_id: "scraperapi", "oxylabs", or "direct".
	Default string        `mapstructure:"default"`
	Timeout time.Duration `mapstructure:"timeout"`

	ScraperAPI ScraperAPIConfig `mapstructure:"scraperapi"`
	Oxylabs    OxylabsConfig    `mapstructure:"oxylabs"`
}

// ScraperAPIConfig holds ScraperAPI credentials.
type ScraperAPIConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// OxylabsConfig holds Oxylabs realtime-API credentials.
type OxylabsConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// CacheConfig holds outcome-cache settings.
type CacheConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	MaxEntries int           `mapstructure:"max_entries"`
	TTL        time.Duration `mapstructure:"ttl"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text or json
}

// WebhookConfig holds the optional run-record webhook sink.
type WebhookConfig struct {
	URL    string `mapstructure:"url"`
	Secret string `mapstructure:"secret"`
}

// MetricsConfig toggles the Prometheus registry and /metrics endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load reads configuration from config.yaml (searched in ., ./config,
// /etc/scraperlab) plus the environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/scraperlab/")

	v.SetEnvPrefix("SCRAPERLAB")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; environment variables and defaults apply.
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")

	v.SetDefault("providers.default", "direct")
	v.SetDefault("providers.timeout", "70s")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_entries", 2048)
	v.SetDefault("cache.ttl", "15m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("metrics.enabled", true)
}

func validate(config *Config) error {
	switch config.Providers.Default {
	case "direct":
	case "scraperapi":
		if config.Providers.ScraperAPI.APIKey == "" {
			return fmt.Errorf("scraperapi is the default provider but no api key is set (SCRAPERLAB_PROVIDERS_SCRAPERAPI_API_KEY)")
		}
	case "oxylabs":
		if config.Providers.Oxylabs.Username == "" || config.Providers.Oxylabs.Password == "" {
			return fmt.Errorf("oxylabs is the default provider but credentials are missing")
		}
	default:
		return fmt.Errorf("unknown default provider %q", config.Providers.Default)
	}

	switch config.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be 'text' or 'json', got %q", config.Log.Format)
	}

	for i := range config.Domains {
		if config.Domains[i].SiteID == "" {
			return fmt.Errorf("domains[%d] has no site_id", i)
		}
	}
	return nil
}
