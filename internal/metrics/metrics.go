package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the service's Prometheus instruments on a private
// registry so the endpoint only exposes what the service registers.
type Collector struct {
	reg *prometheus.Registry

	RunsTotal   prometheus.Counter
	RunFailures *prometheus.CounterVec // stage label: fetch|pipeline|store|publish|csv

	TripsComplete   prometheus.Gauge
	TripsDiscarded  prometheus.Gauge
	StationsTracked prometheus.Gauge

	RunDuration   prometheus.Histogram
	FetchDuration prometheus.Histogram

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter

	LastRunTimestamp prometheus.Gauge
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "niatrack_report_runs_total",
			Help: "Total report pipeline runs.",
		}),
		RunFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "niatrack_report_run_failures_total",
			Help: "Report runs that failed, by stage.",
		}, []string{"stage"}),
		TripsComplete: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "niatrack_trips_complete",
			Help: "Complete trips in the latest report.",
		}),
		TripsDiscarded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "niatrack_trips_discarded",
			Help: "Trips dropped by the completeness filter in the latest run.",
		}),
		StationsTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "niatrack_stations_tracked",
			Help: "Distinct relabeled station columns in the latest report.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "niatrack_run_duration_seconds",
			Help:    "Duration of a full fetch-and-compute cycle.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "niatrack_fetch_duration_seconds",
			Help:    "Duration of the telemetry snapshot fetch.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "niatrack_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "niatrack_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "niatrack_last_run_timestamp_seconds",
			Help: "Unix time of the last successful run.",
		}),
	}

	reg.MustRegister(
		c.RunsTotal, c.RunFailures,
		c.TripsComplete, c.TripsDiscarded, c.StationsTracked,
		c.RunDuration, c.FetchDuration,
		c.NATSPublished, c.NATSPublishErrs,
		c.LastRunTimestamp,
	)

	return c
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

func (c *Collector) PublishedInc()  { c.NATSPublished.Inc() }
func (c *Collector) PublishErrInc() { c.NATSPublishErrs.Inc() }

// ObserveRun records a successful cycle.
func (c *Collector) ObserveRun(d time.Duration, complete, discarded, stations int) {
	c.RunsTotal.Inc()
	c.RunDuration.Observe(d.Seconds())
	c.TripsComplete.Set(float64(complete))
	c.TripsDiscarded.Set(float64(discarded))
	c.StationsTracked.Set(float64(stations))
	c.LastRunTimestamp.SetToCurrentTime()
}
