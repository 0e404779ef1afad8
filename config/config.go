package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Input     InputConfig
	Output    OutputConfig
	Log       LogConfig
	Server    ServerConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Remote    RemoteConfig
}

// InputConfig names the product and listing sources (paths or http(s) URLs)
type InputConfig struct {
	Products string `mapstructure:"products"`
	Listings string `mapstructure:"listings"`
}

// OutputConfig controls how results are written
type OutputConfig struct {
	Results    string `mapstructure:"results"`
	Listings   string `mapstructure:"listings"` // "objects" or "titles"
	SampleSize int    `mapstructure:"sample_size"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// CacheConfig holds resolution cache configuration
type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RemoteConfig holds configuration for http(s) sources
type RemoteConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	Retries       int           `mapstructure:"retries"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
}

// flagKeys maps command line flag names to configuration keys.
var flagKeys = map[string]string{
	"products":        "input.products",
	"listings":        "input.listings",
	"results":         "output.results",
	"listings-format": "output.listings",
	"sample-size":     "output.sample_size",
	"log-level":       "log.level",
	"port":            "server.port",
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	return LoadWithFlags("", nil)
}

// LoadWithFlags loads configuration with the usual precedence:
// flags over environment over config file over defaults.
// configFile, when set, replaces the config file search.
// Flags that were not set on the command line do not override anything.
func LoadWithFlags(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("matcher")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/listingmatch/")
	}

	// Environment variable settings
	v.SetEnvPrefix("LISTINGMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
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

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Input/output defaults
	v.SetDefault("input.products", "products.txt")
	v.SetDefault("input.listings", "listings.txt")
	v.SetDefault("output.results", "results.txt")
	v.SetDefault("output.listings", "objects")
	v.SetDefault("output.sample_size", 5)

	// Logging defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)

	// Cache defaults
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// Remote source defaults
	v.SetDefault("remote.timeout", "30s")
	v.SetDefault("remote.retries", 3)
	v.SetDefault("remote.rate_per_second", 5.0)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Input.Products == "" {
		return fmt.Errorf("products source is required (set LISTINGMATCH_INPUT_PRODUCTS)")
	}
	if config.Input.Listings == "" {
		return fmt.Errorf("listings source is required (set LISTINGMATCH_INPUT_LISTINGS)")
	}
	if config.Output.Results == "" {
		return fmt.Errorf("results path is required (set LISTINGMATCH_OUTPUT_RESULTS)")
	}

	if config.Output.Listings != "objects" && config.Output.Listings != "titles" {
		return fmt.Errorf("output listings must be 'objects' or 'titles', got: %s", config.Output.Listings)
	}

	if config.Output.SampleSize < 0 {
		return fmt.Errorf("output sample size must not be negative, got: %d", config.Output.SampleSize)
	}

	if config.RateLimit.PerIP <= 0 {
		return fmt.Errorf("per-IP rate limit must be positive, got: %d", config.RateLimit.PerIP)
	}

	if config.Remote.Retries <= 0 {
		return fmt.Errorf("remote retries must be positive, got: %d", config.Remote.Retries)
	}

	return nil
}
