package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration keys
const (
	KeyBaseURL   = "openlibrary.base_url"
	KeyUserAgent = "openlibrary.user_agent"
	KeyTimeout   = "openlibrary.timeout"
	KeyRateLimit = "openlibrary.rate_limit"

	KeyCacheDBFile = "cache.dbfile"
	KeyCacheOff    = "cache.disabled"
	KeyAuthorTTL   = "cache.author_ttl"
	KeyWorkTTL     = "cache.work_ttl"
	KeySearchTTL   = "cache.search_ttl"

	KeySearchLimit = "search.limit"
)

// Config holds everything the resolver needs to talk to the catalog.
// It is built once from viper and passed to constructors explicitly.
type Config struct {
	OpenLibrary OpenLibrary
	Cache       Cache
	Search      Search
}

// OpenLibrary configures the upstream transport.
type OpenLibrary struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// RateLimit is requests per second; zero disables throttling.
	RateLimit int
}

// Cache configures the persistent response cache.
type Cache struct {
	DBFile    string
	Disabled  bool
	AuthorTTL time.Duration
	WorkTTL   time.Duration
	SearchTTL time.Duration
}

// Search configures the search endpoint.
type Search struct {
	Limit int
}

// SetDefaults registers default values for every known key.
func SetDefaults() {
	viper.SetDefault(KeyBaseURL, "https://openlibrary.org")
	viper.SetDefault(KeyUserAgent, "libris/1.0 (+https://github.com/lepinkainen/libris)")
	viper.SetDefault(KeyTimeout, "15s")
	viper.SetDefault(KeyRateLimit, 3)

	viper.SetDefault(KeyCacheDBFile, "./cache.db")
	viper.SetDefault(KeyCacheOff, false)
	viper.SetDefault(KeyAuthorTTL, "720h") // 30 days
	viper.SetDefault(KeyWorkTTL, "2160h")  // 90 days
	viper.SetDefault(KeySearchTTL, "168h") // 7 days

	viper.SetDefault(KeySearchLimit, 20)
}

// InitConfig loads .env, environment variables (LIBRIS_ prefix) and an optional
// YAML config file. A missing config file is not an error.
func InitConfig(configFile string) error {
	// .env is optional
	_ = godotenv.Load()

	SetDefaults()

	viper.SetEnvPrefix("libris")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			slog.Debug("Config file not found, using defaults")
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	slog.Debug("Config file loaded", "file", viper.ConfigFileUsed())
	return nil
}

// Load builds a Config from the current viper state.
func Load() (Config, error) {
	cfg := Config{
		OpenLibrary: OpenLibrary{
			BaseURL:   strings.TrimSuffix(viper.GetString(KeyBaseURL), "/"),
			UserAgent: viper.GetString(KeyUserAgent),
			Timeout:   viper.GetDuration(KeyTimeout),
			RateLimit: viper.GetInt(KeyRateLimit),
		},
		Cache: Cache{
			DBFile:    viper.GetString(KeyCacheDBFile),
			Disabled:  viper.GetBool(KeyCacheOff),
			AuthorTTL: viper.GetDuration(KeyAuthorTTL),
			WorkTTL:   viper.GetDuration(KeyWorkTTL),
			SearchTTL: viper.GetDuration(KeySearchTTL),
		},
		Search: Search{
			Limit: viper.GetInt(KeySearchLimit),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	var errs []error
	if c.OpenLibrary.BaseURL == "" {
		errs = append(errs, fmt.Errorf("%s must be set", KeyBaseURL))
	}
	if c.OpenLibrary.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", KeyRateLimit))
	}
	if c.Search.Limit <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", KeySearchLimit))
	}
	for key, ttl := range map[string]time.Duration{
		KeyAuthorTTL: c.Cache.AuthorTTL,
		KeyWorkTTL:   c.Cache.WorkTTL,
		KeySearchTTL: c.Cache.SearchTTL,
	} {
		if ttl <= 0 {
			errs = append(errs, fmt.Errorf("%s must be a positive duration", key))
		}
	}
	return errors.Join(errs...)
}
