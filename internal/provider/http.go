package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultBaseURL is the quote proxy all five providers are reached through.
const DefaultBaseURL = "https://bitpay.com/buy/quote"

// maxBodyBytes caps how much of a quote response is read.
const maxBodyBytes = 1 << 20

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=provider_test -destination=mock_http_client_test.go -source=http.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Endpoint describes where a provider's quote lives relative to the base URL.
type Endpoint struct {
	// Path is appended to the base URL, e.g. "/banxa".
	Path string
	// Query builds the provider-specific query for amount and currency.
	Query func(amount int, currency string) url.Values
}

// StandardQuery is the fiat/amount/crypto query most providers accept.
func StandardQuery(amount int, currency string) url.Values {
	q := url.Values{}
	q.Set("fiat", FiatCurrency)
	q.Set("amount", strconv.Itoa(amount))
	q.Set("crypto", currency)
	return q
}

// HTTPFetcher performs the request/response cycle shared by every provider.
// Only the endpoint and the Extractor differ between providers.
type HTTPFetcher struct {
	id       ID
	endpoint Endpoint
	extract  Extractor

	// baseURL is the base URL for the quote API.
	baseURL string
	// httpClient is the HTTP client.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
}

// Option is a configuration option for an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithBaseURL sets the base URL for the quote API.
func WithBaseURL(baseURL string) Option {
	return func(f *HTTPFetcher) {
		f.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(f *HTTPFetcher) {
		f.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) Option {
	return func(f *HTTPFetcher) {
		for key, values := range header {
			for _, value := range values {
				f.header.Add(key, value)
			}
		}
	}
}

// NewHTTPFetcher creates a fetcher for id.
func NewHTTPFetcher(id ID, endpoint Endpoint, extract Extractor, options ...Option) *HTTPFetcher {
	if endpoint.Query == nil {
		endpoint.Query = StandardQuery
	}
	f := &HTTPFetcher{
		id:         id,
		endpoint:   endpoint,
		extract:    extract,
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
	}
	for _, option := range options {
		option(f)
	}
	return f
}

func (f *HTTPFetcher) ID() ID { return f.id }

// URL returns the request URL for amount and currency.
func (f *HTTPFetcher) URL(amount int, currency string) string {
	return fmt.Sprintf("%s%s?%s", f.baseURL, f.endpoint.Path, f.endpoint.Query(amount, currency).Encode())
}

// Fetch requests a quote and extracts the crypto amount from it. When ctx is
// cancelled the returned error satisfies IsCanceled.
func (f *HTTPFetcher) Fetch(ctx context.Context, amount int, currency string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(amount, currency), http.NoBody)
	if err != nil {
		return "", fmt.Errorf("%s: creating request: %w", f.id, err)
	}
	req.Header = f.header.Clone()
	req.Header.Set("Accept", "application/json")

	res, err := f.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%s: %w", f.id, ctx.Err())
		}
		return "", fmt.Errorf("%s: performing request: %w", f.id, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", &ProviderHTTPError{Provider: f.id, StatusCode: res.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%s: %w", f.id, ctx.Err())
		}
		return "", fmt.Errorf("%s: reading response: %w", f.id, err)
	}

	amt, err := f.extract.ExtractAmount(body)
	if err != nil {
		return "", &UnexpectedFormatError{Provider: f.id, Err: err}
	}
	return amt, nil
}
