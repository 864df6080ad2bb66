package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Collector owns the service's Prometheus registry and instruments.
type Collector struct {
	reg *prometheus.Registry

	SimulatedBuses prometheus.Gauge
	LiveBuses      prometheus.Gauge

	Ticks            prometheus.Counter
	ArrivalsRecorded prometheus.Counter

	SnapshotsPublished prometheus.Counter
	PublishErrors      prometheus.Counter

	LiveUpdates      prometheus.Counter
	LiveUpdateErrors prometheus.Counter

	TickDuration prometheus.Histogram

	TickInterval prometheus.Gauge // seconds
}

func NewCollector(tickInterval time.Duration) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		SimulatedBuses: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_simulated_buses",
			Help: "Buses governed by the schedule simulation on the last tick.",
		}),
		LiveBuses: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_live_buses",
			Help: "Buses under live GPS control on the last tick.",
		}),
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_ticks_total",
			Help: "Total simulation ticks executed.",
		}),
		ArrivalsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_arrivals_recorded_total",
			Help: "Total stop arrivals written to history.",
		}),
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_snapshots_published_total",
			Help: "Total bus snapshots published.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_publish_errors_total",
			Help: "Total snapshot publish errors.",
		}),
		LiveUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_live_updates_total",
			Help: "Total live GPS updates applied.",
		}),
		LiveUpdateErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_live_update_errors_total",
			Help: "Total live GPS updates rejected or failed.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tracker_tick_duration_seconds",
			Help:    "Duration of full simulation passes.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		TickInterval: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_tick_interval_seconds",
			Help: "Configured simulation tick interval in seconds.",
		}),
	}

	reg.MustRegister(
		c.SimulatedBuses, c.LiveBuses,
		c.Ticks, c.ArrivalsRecorded,
		c.SnapshotsPublished, c.PublishErrors,
		c.LiveUpdates, c.LiveUpdateErrors,
		c.TickDuration, c.TickInterval,
	)

	c.TickInterval.Set(tickInterval.Seconds())
	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve exposes /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Metrics server error")
		}
	}()
	log.WithField("addr", addr).Info("Metrics listening")
	return srv
}
