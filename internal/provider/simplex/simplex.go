package simplex

import "btcquotes/internal/provider"

var endpoint = provider.Endpoint{Path: "/simplex"}

// Extractor reads digital_money.amount.
var Extractor = provider.FieldExtractor("digital_money", "amount")

// New creates the Simplex fetcher.
func New(options ...provider.Option) *provider.HTTPFetcher {
	return provider.NewHTTPFetcher(provider.Simplex, endpoint, Extractor, options...)
}
