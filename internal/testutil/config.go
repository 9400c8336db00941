package testutil

import (
	"testing"

	"github.com/lepinkainen/libris/internal/config"
	"github.com/spf13/viper"
)

// ResetConfig resets viper, registers the libris defaults and resets viper
// again when the test completes.
func ResetConfig(t *testing.T) {
	t.Helper()

	viper.Reset()
	config.SetDefaults()

	t.Cleanup(viper.Reset)
}

// SetViperValue sets a viper configuration value and restores the previous
// value when the test completes.
func SetViperValue(t *testing.T, key string, value any) {
	t.Helper()

	oldValue := viper.Get(key)
	hadValue := viper.IsSet(key)

	viper.Set(key, value)

	t.Cleanup(func() {
		// viper has no Unset; an unset key stays overridden until the next Reset
		if hadValue {
			viper.Set(key, oldValue)
		}
	})
}

// SetupTestCache points cache.dbfile at a database inside env and returns its path.
func SetupTestCache(t *testing.T, env *TestEnv) string {
	t.Helper()

	env.MkdirAll("cache")
	dbPath := env.Path("cache", "test-cache.db")
	SetViperValue(t, config.KeyCacheDBFile, dbPath)

	return dbPath
}

// LoadTestConfig returns a Config pointed at baseURL with throttling off
// and the cache stored inside env.
func LoadTestConfig(t *testing.T, env *TestEnv, baseURL string) config.Config {
	t.Helper()

	ResetConfig(t)
	SetupTestCache(t, env)
	SetViperValue(t, config.KeyBaseURL, baseURL)
	SetViperValue(t, config.KeyRateLimit, 0)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load test config: %v", err)
	}
	return cfg
}
