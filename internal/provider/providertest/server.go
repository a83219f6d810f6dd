package providertest

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// Route is a canned provider response.
type Route struct {
	Status int
	Body   string
}

// DefaultRoutes answers every provider path with a well-formed quote.
// Ramp reports 0.0023 BTC and wins.
func DefaultRoutes() map[string]Route {
	return map[string]Route{
		"/banxa":   {Body: `{"data":{"prices":[{"coin_amount":"0.0021","fiat_amount":"100"}]}}`},
		"/moonpay": {Body: `{"quoteCurrencyAmount":0.0019,"baseCurrencyAmount":100}`},
		"/ramp":    {Body: `{"CARD_PAYMENT":{"cryptoAmount":"230000","fiatValue":100}}`},
		"/sardine": {Body: `{"quantity":0.0022,"currency":"BTC"}`},
		"/simplex": {Body: `{"digital_money":{"currency":"BTC","amount":0.002}}`},
	}
}

// QuoteServer is an httptest server standing in for the quote endpoints.
type QuoteServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []*url.URL
}

// NewQuoteServer starts a server answering routes by request path. Unknown
// paths get 404. The server is closed when the test ends.
func NewQuoteServer(t testing.TB, routes map[string]Route) *QuoteServer {
	t.Helper()
	s := &QuoteServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.URL)
		s.mu.Unlock()

		route, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		status := route.Status
		if status == 0 {
			status = http.StatusOK
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(route.Body))
	}))
	t.Cleanup(s.Close)
	return s
}

// Requests returns the URLs received so far.
func (s *QuoteServer) Requests() []*url.URL {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*url.URL(nil), s.requests...)
}
