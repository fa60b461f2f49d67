package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the scrape worker.
type Metrics struct {
	PagesFetched    prometheus.Counter
	FetchFailures   *prometheus.CounterVec
	Renders         prometheus.Counter
	RenderCacheHits prometheus.Counter
	EmailsFound     prometheus.Counter
	BatchesTotal    prometheus.Counter
	ErrorsTotal     *prometheus.CounterVec
	SeedDuration    prometheus.Histogram
}

// NewMetrics registers the metric set with reg; tests pass a fresh
// prometheus.NewRegistry to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "scraper_pages_fetched_total",
			Help: "The total number of page fetch attempts",
		}),
		FetchFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_fetch_failures_total",
			Help: "The total number of failed page fetches",
		}, []string{"kind"}),
		Renders: factory.NewCounter(prometheus.CounterOpts{
			Name: "scraper_renders_total",
			Help: "The total number of headless-browser render fallbacks",
		}),
		RenderCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "scraper_render_cache_hits_total",
			Help: "The total number of render results served from cache",
		}),
		EmailsFound: factory.NewCounter(prometheus.CounterOpts{
			Name: "scraper_emails_found_total",
			Help: "The total number of emails in filtered results",
		}),
		BatchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "scraper_batches_completed_total",
			Help: "The total number of completed batches",
		}),
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "The total number of errors encountered",
		}, []string{"type"}), // e.g. 'render_failed', 'seed_panic', 'db_save_failed'
		SeedDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "scraper_seed_duration_seconds",
			Help:    "Time spent processing one seed URL end to end",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
	}
}

func (m *Metrics) IncPagesFetched() { m.PagesFetched.Inc() }

func (m *Metrics) IncFetchFailures(kind string) { m.FetchFailures.WithLabelValues(kind).Inc() }

func (m *Metrics) IncRenders() { m.Renders.Inc() }

func (m *Metrics) IncRenderCacheHits() { m.RenderCacheHits.Inc() }

func (m *Metrics) AddEmailsFound(n int) { m.EmailsFound.Add(float64(n)) }

func (m *Metrics) IncBatchesTotal() { m.BatchesTotal.Inc() }

func (m *Metrics) IncErrorsTotal(errorType string) { m.ErrorsTotal.WithLabelValues(errorType).Inc() }

func (m *Metrics) ObserveSeedDuration(seconds float64) { m.SeedDuration.Observe(seconds) }
