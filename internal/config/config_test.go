package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	require.Equal(t, "BTC", cfg.Quotes.Currency)
	require.Equal(t, 50, cfg.Quotes.MinAmount)
	require.Equal(t, 20000, cfg.Quotes.MaxAmount)
	require.Equal(t, "100", cfg.Quotes.InitialAmount)
	require.Equal(t, 800*time.Millisecond, cfg.Debounce())
	require.Equal(t, "https://bitpay.com/buy/quote", cfg.HTTP.BaseURL)
	require.Equal(t, 10*time.Second, cfg.RequestTimeout())
	require.Equal(t, 30*time.Second, cfg.Limits.CacheTTL())
	require.Zero(t, cfg.Limits.MinInterval())
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, `{
		"quotes": {"min_amount": 20, "max_amount": 500, "debounce_ms": 300},
		"limits": {"max_requests_per_minute": 30, "burst": 3},
		"log_level": "debug"
	}`)
	t.Setenv("BTCQUOTES_MAX_AMOUNT", "900")
	t.Setenv("BTCQUOTES_BASE_URL", "http://localhost:9000/quote")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 20, cfg.Quotes.MinAmount)
	require.Equal(t, 900, cfg.Quotes.MaxAmount)
	require.Equal(t, 300*time.Millisecond, cfg.Debounce())
	require.Equal(t, 30, cfg.Limits.MaxRequestsPerMinute)
	require.Equal(t, 3, cfg.Limits.Burst)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "http://localhost:9000/quote", cfg.HTTP.BaseURL)
	// untouched keys keep their defaults
	require.Equal(t, "BTC", cfg.Quotes.Currency)
}

func TestLoad_BadJSON(t *testing.T) {
	path := writeFile(t, `{"quotes": `)
	_, err := Load(path)
	require.ErrorContains(t, err, "parse config")
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeFile(t, `{"quotes": {"min_amount": 500, "max_amount": 100}}`)
	_, err := Load(path)
	require.ErrorContains(t, err, "max_amount 100 is below min_amount 500")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		return Config{
			Quotes: Quotes{Currency: "BTC", MinAmount: 50, MaxAmount: 20000, DebounceMS: 800},
			HTTP:   HTTP{BaseURL: "https://bitpay.com/buy/quote", RequestTimeoutSec: 10},
			Limits: Limits{Burst: 1},
		}
	}
	require.NoError(t, valid().Validate())

	cases := map[string]func(*Config){
		"empty currency":    func(c *Config) { c.Quotes.Currency = " " },
		"zero min":          func(c *Config) { c.Quotes.MinAmount = 0 },
		"negative debounce": func(c *Config) { c.Quotes.DebounceMS = -1 },
		"zero debounce":     func(c *Config) { c.Quotes.DebounceMS = 0 },
		"relative url":      func(c *Config) { c.HTTP.BaseURL = "/buy/quote" },
		"ftp url":           func(c *Config) { c.HTTP.BaseURL = "ftp://example.com" },
		"zero timeout":      func(c *Config) { c.HTTP.RequestTimeoutSec = 0 },
		"negative burst":    func(c *Config) { c.Limits.Burst = -2 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c := valid()
			mutate(&c)
			require.ErrorContains(t, c.Validate(), "invalid config")
		})
	}
}

func TestValidate_ZeroDebounceMessage(t *testing.T) {
	t.Parallel()

	c := Config{
		Quotes: Quotes{Currency: "BTC", MinAmount: 50, MaxAmount: 20000},
		HTTP:   HTTP{BaseURL: "https://bitpay.com/buy/quote", RequestTimeoutSec: 10},
	}
	require.ErrorContains(t, c.Validate(), "quotes.debounce_ms must be positive, got 0")
}
