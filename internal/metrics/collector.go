package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"isitdown/internal/domain"
)

// Collector exposes check-cycle metrics through the default prometheus
// registry, served by the API's /metrics endpoint.
type Collector struct {
	probesTotal   *prometheus.CounterVec
	probeDuration prometheus.Histogram
	assetUp       *prometheus.GaugeVec
	cyclesTotal   prometheus.Counter
	cyclesSkipped prometheus.Counter
	cycleDuration prometheus.Histogram
	cycleAssets   prometheus.Gauge
	purgedLogs    prometheus.Counter
	commitErrors  prometheus.Counter
	notifications *prometheus.CounterVec
}

var _ domain.MetricsCollector = (*Collector)(nil)

func NewCollector() *Collector {
	return &Collector{
		probesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "isitdown_probes_total",
				Help: "Total number of probes performed",
			},
			[]string{"asset", "outcome"},
		),
		probeDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "isitdown_probe_duration_seconds",
				Help:    "Duration of individual probes",
				Buckets: prometheus.DefBuckets,
			},
		),
		assetUp: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "isitdown_asset_up",
				Help: "Latest asset status (1 up, 0 down)",
			},
			[]string{"asset"},
		),
		cyclesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "isitdown_cycles_total",
				Help: "Total number of completed check cycles",
			},
		),
		cyclesSkipped: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "isitdown_cycles_skipped_total",
				Help: "Ticks skipped because a cycle was still running",
			},
		),
		cycleDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "isitdown_cycle_duration_seconds",
				Help:    "Duration of full check cycles",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		cycleAssets: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "isitdown_cycle_assets",
				Help: "Assets processed in the last cycle",
			},
		),
		purgedLogs: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "isitdown_purged_logs_total",
				Help: "Status logs removed by retention cleanup",
			},
		),
		commitErrors: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "isitdown_commit_errors_total",
				Help: "Cycle commits that failed",
			},
		),
		notifications: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "isitdown_notifications_total",
				Help: "Down alerts fired",
			},
			[]string{"asset"},
		),
	}
}

func (c *Collector) RecordProbe(assetName string, up bool, seconds float64) {
	outcome := "down"
	gauge := 0.0
	if up {
		outcome = "up"
		gauge = 1.0
	}
	c.probesTotal.WithLabelValues(assetName, outcome).Inc()
	c.probeDuration.Observe(seconds)
	c.assetUp.WithLabelValues(assetName).Set(gauge)
}

func (c *Collector) RecordCycle(d time.Duration, assets int) {
	c.cyclesTotal.Inc()
	c.cycleDuration.Observe(d.Seconds())
	c.cycleAssets.Set(float64(assets))
}

func (c *Collector) RecordSkippedCycle() { c.cyclesSkipped.Inc() }
func (c *Collector) RecordCommitError()  { c.commitErrors.Inc() }

func (c *Collector) RecordPurgedLogs(n int64) {
	if n > 0 {
		c.purgedLogs.Add(float64(n))
	}
}

func (c *Collector) RecordNotification(assetName string) {
	c.notifications.WithLabelValues(assetName).Inc()
}
