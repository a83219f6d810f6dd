package moonpay

import "btcquotes/internal/provider"

var endpoint = provider.Endpoint{Path: "/moonpay"}

// Extractor reads the top-level quoteCurrencyAmount.
var Extractor = provider.FieldExtractor("quoteCurrencyAmount")

// New creates the Moonpay fetcher.
func New(options ...provider.Option) *provider.HTTPFetcher {
	return provider.NewHTTPFetcher(provider.Moonpay, endpoint, Extractor, options...)
}
