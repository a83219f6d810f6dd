package sardine

import (
	"net/url"

	"btcquotes/internal/provider"
)

// Chain is the settlement chain Sardine expects alongside the ticker.
const Chain = "bitcoin"

var endpoint = provider.Endpoint{
	Path: "/sardine",
	Query: func(amount int, currency string) url.Values {
		q := provider.StandardQuery(amount, currency)
		q.Set("chain", Chain)
		return q
	},
}

// Extractor reads the top-level quantity.
var Extractor = provider.FieldExtractor("quantity")

// New creates the Sardine fetcher.
func New(options ...provider.Option) *provider.HTTPFetcher {
	return provider.NewHTTPFetcher(provider.Sardine, endpoint, Extractor, options...)
}
