package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for link generation and harvest sessions.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	LinksGenerated  *prometheus.CounterVec
	LinkSetSize     prometheus.Histogram
	UnsupportedBank prometheus.Counter
	HarvestObserved *prometheus.CounterVec
	HarvestDuration prometheus.Histogram
	HarvestPartial  prometheus.Counter
}

// New registers all metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LinksGenerated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "deeplinks_link_sets_generated_total",
			Help: "Total number of link sets generated, by bank and platform",
		}, []string{"bank", "platform"}),
		LinkSetSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "deeplinks_link_set_size",
			Help:    "Number of candidate links per generated set",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		}),
		UnsupportedBank: f.NewCounter(prometheus.CounterOpts{
			Name: "deeplinks_unsupported_bank_total",
			Help: "Total number of requests naming an unknown bank code",
		}),
		HarvestObserved: f.NewCounterVec(prometheus.CounterOpts{
			Name: "deeplinks_harvest_observations_total",
			Help: "Distinct URIs observed by harvest sessions, by channel",
		}, []string{"source"}),
		HarvestDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "deeplinks_harvest_duration_seconds",
			Help:    "Wall-clock duration of harvest sessions",
			Buckets: []float64{1, 5, 10, 20, 30, 60, 120},
		}),
		HarvestPartial: f.NewCounter(prometheus.CounterOpts{
			Name: "deeplinks_harvest_partial_total",
			Help: "Harvest sessions cut short by their budget or an interrupt",
		}),
	}
}

// ObserveLinkSet records one generated link set.
func (m *Metrics) ObserveLinkSet(bank, platform string, size int) {
	if m == nil {
		return
	}
	m.LinksGenerated.WithLabelValues(bank, platform).Inc()
	m.LinkSetSize.Observe(float64(size))
}

// IncUnsupportedBank records a request for an unknown bank.
func (m *Metrics) IncUnsupportedBank() {
	if m == nil {
		return
	}
	m.UnsupportedBank.Inc()
}

// IncObservation records a new URI from the given harvest channel.
func (m *Metrics) IncObservation(source string) {
	if m == nil {
		return
	}
	m.HarvestObserved.WithLabelValues(source).Inc()
}

// ObserveHarvest records the duration of a finished session.
// Call with the time the session started.
func (m *Metrics) ObserveHarvest(start time.Time, partial bool) {
	if m == nil {
		return
	}
	m.HarvestDuration.Observe(time.Since(start).Seconds())
	if partial {
		m.HarvestPartial.Inc()
	}
}
