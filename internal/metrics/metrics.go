package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeHTTPError   = "http_error"
	OutcomeFormatError = "format_error"
	OutcomeError       = "error"
	OutcomeCanceled    = "canceled"
	OutcomeStale       = "stale"
)

// QuoteMetrics tracks quote fetching across epochs.
type QuoteMetrics struct {
	// Results per provider and outcome
	FetchTotal *prometheus.CounterVec
	// Time spent per provider request
	FetchDuration *prometheus.HistogramVec
	// Epochs started and superseded
	EpochsStarted    prometheus.Counter
	EpochsSuperseded prometheus.Counter
}

// NewQuoteMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewQuoteMetrics(reg prometheus.Registerer) *QuoteMetrics {
	f := promauto.With(reg)
	return &QuoteMetrics{
		FetchTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quote_fetch_total",
				Help: "Quote fetches by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		FetchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quote_fetch_duration_seconds",
				Help:    "Duration of quote fetches by provider",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"provider"},
		),
		EpochsStarted: f.NewCounter(prometheus.CounterOpts{
			Name: "quote_epochs_started_total",
			Help: "Fetch cycles started for validated amounts",
		}),
		EpochsSuperseded: f.NewCounter(prometheus.CounterOpts{
			Name: "quote_epochs_superseded_total",
			Help: "Fetch cycles cancelled by newer input before settling",
		}),
	}
}

// ObserveFetch records one settled fetch. Safe on a nil receiver.
func (m *QuoteMetrics) ObserveFetch(provider, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.FetchTotal.WithLabelValues(provider, outcome).Inc()
	m.FetchDuration.WithLabelValues(provider).Observe(took.Seconds())
}

// EpochStarted counts a new fetch cycle. Safe on a nil receiver.
func (m *QuoteMetrics) EpochStarted() {
	if m == nil {
		return
	}
	m.EpochsStarted.Inc()
}

// EpochSuperseded counts a cycle cancelled before settling. Safe on a nil receiver.
func (m *QuoteMetrics) EpochSuperseded() {
	if m == nil {
		return
	}
	m.EpochsSuperseded.Inc()
}
