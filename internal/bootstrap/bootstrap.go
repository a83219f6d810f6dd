package bootstrap

import (
	"btcquotes/internal/config"
	"btcquotes/internal/provider"
	"btcquotes/internal/provider/banxa"
	"btcquotes/internal/provider/cache"
	"btcquotes/internal/provider/moonpay"
	"btcquotes/internal/provider/ramp"
	"btcquotes/internal/provider/ratelimit"
	"btcquotes/internal/provider/sardine"
	"btcquotes/internal/provider/simplex"
)

// Fetchers builds one fetcher per provider, in provider.All order, each
// wrapped with the configured limits.
func Fetchers(cfg config.Config, httpClient provider.HTTPClient) []provider.Fetcher {
	opts := []provider.Option{
		provider.WithBaseURL(cfg.HTTP.BaseURL),
		provider.WithHTTPClient(httpClient),
	}
	raw := []provider.Fetcher{
		banxa.New(opts...),
		moonpay.New(opts...),
		ramp.New(opts...),
		sardine.New(opts...),
		simplex.New(opts...),
	}
	out := make([]provider.Fetcher, 0, len(raw))
	for _, f := range raw {
		out = append(out, Wrap(f, cfg.Limits))
	}
	return out
}

// Wrap applies rate limiting and then caching to f. A token bucket takes
// precedence over a minimum interval.
func Wrap(f provider.Fetcher, l config.Limits) provider.Fetcher {
	if l.MaxRequestsPerMinute > 0 {
		f = &ratelimit.TokenBucketFetcher{F: f, Limiter: ratelimit.PerMinute(l.MaxRequestsPerMinute, l.Burst)}
	} else if l.MinRequestIntervalMS > 0 {
		f = &ratelimit.MinInterval{F: f, Interval: l.MinInterval()}
	}
	if l.CacheTTLSeconds > 0 {
		f = &cache.Fetcher{F: f, TTL: l.CacheTTL(), MaxItems: l.CacheMaxItems}
	}
	return f
}
