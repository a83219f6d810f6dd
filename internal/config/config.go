package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Quotes struct {
	Currency      string `json:"currency" env:"BTCQUOTES_CURRENCY" env-default:"BTC"`
	MinAmount     int    `json:"min_amount" env:"BTCQUOTES_MIN_AMOUNT" env-default:"50"`
	MaxAmount     int    `json:"max_amount" env:"BTCQUOTES_MAX_AMOUNT" env-default:"20000"`
	InitialAmount string `json:"initial_amount" env:"BTCQUOTES_INITIAL_AMOUNT" env-default:"100"`
	DebounceMS    int    `json:"debounce_ms" env:"BTCQUOTES_DEBOUNCE_MS" env-default:"800"`
}

type HTTP struct {
	BaseURL           string `json:"base_url" env:"BTCQUOTES_BASE_URL" env-default:"https://bitpay.com/buy/quote"`
	UserAgent         string `json:"user_agent" env:"BTCQUOTES_USER_AGENT" env-default:"btcquotes/1.0"`
	RequestTimeoutSec int    `json:"request_timeout_sec" env:"BTCQUOTES_REQUEST_TIMEOUT_SEC" env-default:"10"`
}

// Limits apply to every provider fetcher. Zero disables a limit.
type Limits struct {
	MaxRequestsPerMinute int `json:"max_requests_per_minute" env:"BTCQUOTES_MAX_RPM"`
	Burst                int `json:"burst" env:"BTCQUOTES_BURST" env-default:"1"`
	MinRequestIntervalMS int `json:"min_request_interval_ms" env:"BTCQUOTES_MIN_INTERVAL_MS"`
	CacheTTLSeconds      int `json:"cache_ttl_sec" env:"BTCQUOTES_CACHE_TTL_SEC" env-default:"30"`
	CacheMaxItems        int `json:"cache_max_items" env:"BTCQUOTES_CACHE_MAX_ITEMS" env-default:"1000"`
}

type Config struct {
	Quotes      Quotes `json:"quotes"`
	HTTP        HTTP   `json:"http"`
	Limits      Limits `json:"limits"`
	LogLevel    string `json:"log_level" env:"BTCQUOTES_LOG_LEVEL" env-default:"info"`
	MetricsAddr string `json:"metrics_addr" env:"BTCQUOTES_METRICS_ADDR"`
}

// Load reads JSON config from path. If path is empty, ./config.json is used
// when present. Missing files leave the defaults in place; environment
// variables override file values.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return cfg, fmt.Errorf("read config: %w", err)
			}
			path = ""
		}
	}

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values the pipeline cannot run with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Quotes.Currency) == "" {
		errs = append(errs, errors.New("quotes.currency is empty"))
	}
	if c.Quotes.MinAmount <= 0 {
		errs = append(errs, fmt.Errorf("quotes.min_amount must be positive, got %d", c.Quotes.MinAmount))
	}
	if c.Quotes.MaxAmount < c.Quotes.MinAmount {
		errs = append(errs, fmt.Errorf("quotes.max_amount %d is below min_amount %d", c.Quotes.MaxAmount, c.Quotes.MinAmount))
	}
	if c.Quotes.DebounceMS <= 0 {
		errs = append(errs, fmt.Errorf("quotes.debounce_ms must be positive, got %d", c.Quotes.DebounceMS))
	}
	if u, err := url.Parse(c.HTTP.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("http.base_url %q is not an http(s) URL", c.HTTP.BaseURL))
	}
	if c.HTTP.RequestTimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("http.request_timeout_sec must be positive, got %d", c.HTTP.RequestTimeoutSec))
	}
	if c.Limits.MaxRequestsPerMinute < 0 || c.Limits.Burst < 0 || c.Limits.MinRequestIntervalMS < 0 ||
		c.Limits.CacheTTLSeconds < 0 || c.Limits.CacheMaxItems < 0 {
		errs = append(errs, errors.New("limits must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (c Config) Debounce() time.Duration {
	return time.Duration(c.Quotes.DebounceMS) * time.Millisecond
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.HTTP.RequestTimeoutSec) * time.Second
}

func (l Limits) CacheTTL() time.Duration {
	return time.Duration(l.CacheTTLSeconds) * time.Second
}

func (l Limits) MinInterval() time.Duration {
	return time.Duration(l.MinRequestIntervalMS) * time.Millisecond
}
