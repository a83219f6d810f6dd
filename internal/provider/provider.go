package provider

import (
	"context"
	"errors"
	"fmt"
)

// ID names one of the fixed purchase providers.
type ID string

const (
	Banxa   ID = "Banxa"
	Moonpay ID = "Moonpay"
	Ramp    ID = "Ramp"
	Sardine ID = "Sardine"
	Simplex ID = "Simplex"
)

// All lists every provider in display order. Ties in best-price selection
// are broken by this order.
var All = []ID{Banxa, Moonpay, Ramp, Sardine, Simplex}

// FiatCurrency is the only fiat currency quotes are requested in.
const FiatCurrency = "USD"

// Known reports whether id belongs to the fixed provider set.
func Known(id ID) bool {
	for _, p := range All {
		if p == id {
			return true
		}
	}
	return false
}

// Fetcher returns how much crypto a provider delivers for a fiat amount.
//
//go:generate mockgen -package=providertest -destination=providertest/mock_fetcher.go -source=provider.go Fetcher
type Fetcher interface {
	ID() ID
	Fetch(ctx context.Context, amount int, currency string) (string, error)
}

// ProviderHTTPError is returned when a provider answers with a non-2xx status.
type ProviderHTTPError struct {
	Provider   ID
	StatusCode int
}

func (e *ProviderHTTPError) Error() string {
	return fmt.Sprintf("Error fetching %s data. Status: %d", e.Provider, e.StatusCode)
}

// UnexpectedFormatError is returned when the response body lacks the
// provider's amount field or carries it in an unexpected shape.
type UnexpectedFormatError struct {
	Provider ID
	Err      error
}

func (e *UnexpectedFormatError) Error() string {
	return fmt.Sprintf("Unexpected data format received from %s", e.Provider)
}

func (e *UnexpectedFormatError) Unwrap() error { return e.Err }

// IsCanceled reports whether err is the result of a cancelled request
// rather than a provider failure.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
