// Package banxa fetches buy quotes from Banxa.
package banxa

import (
	"errors"

	"btcquotes/internal/provider"
)

var endpoint = provider.Endpoint{Path: "/banxa"}

// New creates the Banxa fetcher.
func New(options ...provider.Option) *provider.HTTPFetcher {
	return provider.NewHTTPFetcher(provider.Banxa, endpoint, provider.ExtractorFunc(ExtractAmount), options...)
}

// ExtractAmount reads data.prices[0].coin_amount.
//
//	{"data": {"prices": [{"coin_amount": "0.00213", "fiat_amount": "100"}]}}
func ExtractAmount(body []byte) (string, error) {
	js, err := provider.ParseBody(body)
	if err != nil {
		return "", err
	}
	prices, err := provider.Lookup(js, "data", "prices")
	if err != nil {
		return "", err
	}
	list, err := prices.Array()
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "", errors.New("no prices")
	}
	amount, err := provider.Lookup(prices.GetIndex(0), "coin_amount")
	if err != nil {
		return "", err
	}
	return provider.AmountString(amount)
}
