// Package ramp fetches buy quotes from Ramp. Ramp reports amounts in the
// smallest unit of the asset, so values are shifted to whole coins.
package ramp

import (
	"fmt"
	"net/url"

	"btcquotes/internal/provider"
	"github.com/shopspring/decimal"
)

// SatoshiExponent is log10 of the number of satoshi in one BTC.
const SatoshiExponent = 8

var endpoint = provider.Endpoint{
	Path: "/ramp",
	Query: func(amount int, currency string) url.Values {
		q := provider.StandardQuery(amount, currency)
		// Ramp addresses assets as CHAIN_TICKER.
		q.Set("crypto", currency+"_"+currency)
		return q
	},
}

// New creates the Ramp fetcher.
func New(options ...provider.Option) *provider.HTTPFetcher {
	return provider.NewHTTPFetcher(provider.Ramp, endpoint, provider.ExtractorFunc(ExtractAmount), options...)
}

// ExtractAmount reads CARD_PAYMENT.cryptoAmount and converts it to BTC.
func ExtractAmount(body []byte) (string, error) {
	js, err := provider.ParseBody(body)
	if err != nil {
		return "", err
	}
	v, err := provider.Lookup(js, "CARD_PAYMENT", "cryptoAmount")
	if err != nil {
		return "", err
	}
	raw, err := provider.AmountString(v)
	if err != nil {
		return "", err
	}
	return SatoshiToBTC(raw)
}

// SatoshiToBTC converts an integer satoshi string into a BTC decimal string.
func SatoshiToBTC(sats string) (string, error) {
	d, err := decimal.NewFromString(sats)
	if err != nil {
		return "", fmt.Errorf("parsing satoshi amount %q: %w", sats, err)
	}
	if !d.IsInteger() || d.IsNegative() {
		return "", fmt.Errorf("satoshi amount %q is not a non-negative integer", sats)
	}
	return d.Shift(-SatoshiExponent).String(), nil
}
