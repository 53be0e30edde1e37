// Package metrics exposes per-run gauges in the node-exporter textfile format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ogulcanaydogan/airwatch/pkg/tracker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var outcomes = []tracker.Outcome{tracker.OutcomeNoData, tracker.OutcomeQuiet, tracker.OutcomeAlerted}

// Recorder holds the gauges for a single run on a private registry.
type Recorder struct {
	registry    *prometheus.Registry
	airborne    prometheus.Gauge
	altitude    prometheus.Gauge
	groundSpeed prometheus.Gauge
	lastRun     prometheus.Gauge
	lastSuccess prometheus.Gauge
	outcome     *prometheus.GaugeVec
	alertsSent  prometheus.Counter
	now         func() time.Time
}

func NewRecorder(icao string) *Recorder {
	reg := prometheus.NewRegistry()
	labels := prometheus.Labels{"icao": icao}
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		airborne: f.NewGauge(prometheus.GaugeOpts{
			Name: "airwatch_airborne", Help: "1 if the aircraft was airborne at the last poll", ConstLabels: labels,
		}),
		altitude: f.NewGauge(prometheus.GaugeOpts{
			Name: "airwatch_altitude_feet", Help: "Last reported altitude", ConstLabels: labels,
		}),
		groundSpeed: f.NewGauge(prometheus.GaugeOpts{
			Name: "airwatch_ground_speed_knots", Help: "Last reported ground speed", ConstLabels: labels,
		}),
		lastRun: f.NewGauge(prometheus.GaugeOpts{
			Name: "airwatch_last_run_timestamp_seconds", Help: "Unix time of the last run", ConstLabels: labels,
		}),
		lastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Name: "airwatch_last_run_success", Help: "1 if the last run completed without error", ConstLabels: labels,
		}),
		outcome: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "airwatch_run_outcome", Help: "1 for the outcome of the last run", ConstLabels: labels,
		}, []string{"outcome"}),
		alertsSent: f.NewCounter(prometheus.CounterOpts{
			Name: "airwatch_alerts_sent_total", Help: "Alerts delivered by the last run", ConstLabels: labels,
		}),
		now: time.Now,
	}
}

// WithClock overrides the clock used for the run timestamp.
func (r *Recorder) WithClock(now func() time.Time) *Recorder {
	r.now = now
	return r
}

// Observe records the result of a run. A non-nil err marks the run failed
// and leaves telemetry gauges at zero.
func (r *Recorder) Observe(res *tracker.Result, err error) {
	r.lastRun.Set(float64(r.now().Unix()))
	for _, o := range outcomes {
		r.outcome.WithLabelValues(string(o)).Set(0)
	}

	if err != nil {
		r.lastSuccess.Set(0)
		return
	}
	r.lastSuccess.Set(1)
	if res == nil {
		return
	}

	r.outcome.WithLabelValues(string(res.Outcome)).Set(1)
	if res.Snapshot == nil {
		return
	}
	r.altitude.Set(res.Snapshot.Altitude)
	r.groundSpeed.Set(res.Snapshot.GroundSpeed)
	if res.Decision.Airborne {
		r.airborne.Set(1)
	}
	if res.Outcome == tracker.OutcomeAlerted {
		r.alertsSent.Inc()
	}
}

// Registry returns the registry backing the recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes all gauges to path for the node-exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
