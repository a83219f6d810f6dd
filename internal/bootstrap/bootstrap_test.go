package bootstrap_test

import (
	"net/http"
	"testing"
	"time"

	"btcquotes/internal/bootstrap"
	"btcquotes/internal/config"
	"btcquotes/internal/httpx"
	"btcquotes/internal/provider"
	"btcquotes/internal/provider/cache"
	"btcquotes/internal/provider/providertest"
	"btcquotes/internal/provider/ratelimit"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) config.Config {
	return config.Config{
		Quotes: config.Quotes{Currency: "BTC", MinAmount: 50, MaxAmount: 20000},
		HTTP:   config.HTTP{BaseURL: baseURL, RequestTimeoutSec: 5},
	}
}

func TestFetchers_OrderAndAmounts(t *testing.T) {
	t.Parallel()

	// Arrange
	srv := providertest.NewQuoteServer(t, providertest.DefaultRoutes())
	fetchers := bootstrap.Fetchers(testConfig(srv.URL), httpx.New(5*time.Second))

	want := map[provider.ID]string{
		provider.Banxa:   "0.0021",
		provider.Moonpay: "0.0019",
		provider.Ramp:    "0.0023",
		provider.Sardine: "0.0022",
		provider.Simplex: "0.002",
	}

	// Act + Assert
	require.Len(t, fetchers, len(provider.All))
	for i, f := range fetchers {
		require.Equal(t, provider.All[i], f.ID())
		got, err := f.Fetch(t.Context(), 100, "BTC")
		require.NoError(t, err, f.ID())
		require.Equal(t, want[f.ID()], got, f.ID())
	}

	reqs := srv.Requests()
	require.Len(t, reqs, 5)
	for _, u := range reqs {
		require.Equal(t, "100", u.Query().Get("amount"))
		require.Equal(t, provider.FiatCurrency, u.Query().Get("fiat"))
	}
}

func TestFetchers_ProviderError(t *testing.T) {
	t.Parallel()

	routes := providertest.DefaultRoutes()
	routes["/moonpay"] = providertest.Route{Status: http.StatusInternalServerError}
	srv := providertest.NewQuoteServer(t, routes)
	fetchers := bootstrap.Fetchers(testConfig(srv.URL), httpx.New(5*time.Second))

	_, err := fetchers[1].Fetch(t.Context(), 100, "BTC")
	require.EqualError(t, err, "Error fetching Moonpay data. Status: 500")
}

func TestWrap(t *testing.T) {
	t.Parallel()

	base := providertest.Stubs("1")[0]

	require.Same(t, provider.Fetcher(base), bootstrap.Wrap(base, config.Limits{}))

	f := bootstrap.Wrap(base, config.Limits{MaxRequestsPerMinute: 60, Burst: 2, MinRequestIntervalMS: 100, CacheTTLSeconds: 5})
	c, ok := f.(*cache.Fetcher)
	require.True(t, ok)
	tb, ok := c.F.(*ratelimit.TokenBucketFetcher)
	require.True(t, ok)
	require.Equal(t, 2, tb.Limiter.Burst())

	f = bootstrap.Wrap(base, config.Limits{MinRequestIntervalMS: 100})
	_, ok = f.(*ratelimit.MinInterval)
	require.True(t, ok)
	require.Equal(t, provider.Banxa, f.ID())
}
