package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "remotejobs"

// Crawl holds the crawler metrics. It implements scrape.Observer.
type Crawl struct {
	PagesTotal    *prometheus.CounterVec
	PageDuration  *prometheus.HistogramVec
	RecordsTotal  *prometheus.CounterVec
	SessionsTotal prometheus.Counter
	SessionJobs   prometheus.Gauge
	Duplicates    prometheus.Counter
}

func NewCrawl(reg prometheus.Registerer) *Crawl {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Crawl{
		PagesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crawler",
			Name:      "pages_total",
			Help:      "Pages fetched per crawler, by outcome.",
		}, []string{"crawler", "status"}),
		PageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "crawler",
			Name:      "page_duration_seconds",
			Help:      "Time to fetch one page from a source.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"crawler"}),
		RecordsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crawler",
			Name:      "records_total",
			Help:      "Raw records seen per crawler, by outcome (accepted, rejected, failed).",
		}, []string{"crawler", "outcome"}),
		SessionsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "manager",
			Name:      "sessions_total",
			Help:      "Crawl sessions completed.",
		}),
		SessionJobs: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "manager",
			Name:      "session_jobs",
			Help:      "Unique jobs produced by the last session.",
		}),
		Duplicates: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "manager",
			Name:      "duplicates_removed_total",
			Help:      "Jobs dropped by deduplication.",
		}),
	}
}

func (c *Crawl) PageFetched(crawler string, took time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.PagesTotal.WithLabelValues(crawler, status).Inc()
	c.PageDuration.WithLabelValues(crawler).Observe(took.Seconds())
}

func (c *Crawl) RecordsScored(crawler string, accepted, rejected, failed int) {
	c.RecordsTotal.WithLabelValues(crawler, "accepted").Add(float64(accepted))
	c.RecordsTotal.WithLabelValues(crawler, "rejected").Add(float64(rejected))
	c.RecordsTotal.WithLabelValues(crawler, "failed").Add(float64(failed))
}

func (c *Crawl) SessionCompleted(jobs, duplicates int) {
	c.SessionsTotal.Inc()
	c.SessionJobs.Set(float64(jobs))
	c.Duplicates.Add(float64(duplicates))
}
