package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/updatecheck/pkg/session"
)

// jobName labels pushed metrics.
const jobName = "updatecheck"

// Errors for metrics export.
var (
	// errRegisterFailed indicates a collector could not be registered.
	errRegisterFailed = errors.New("failed to register metric")
	// errWriteTextfileFailed indicates the textfile could not be written.
	errWriteTextfileFailed = errors.New("failed to write metrics textfile")
	// errPushFailed indicates the Pushgateway rejected the metrics.
	errPushFailed = errors.New("failed to push metrics")
)

// Metric holds data points from a check run.
type Metric struct {
	Checked  int           // Number of images compared.
	Skipped  int           // Number of images removed by the filter chain.
	Errored  int           // Number of images that could not be resolved.
	Outdated int           // Number of images with a newer remote version.
	Duration time.Duration // Wall time of the run.
	Finished time.Time     // End of the run.
}

// Metrics holds the Prometheus collectors for a run.
type Metrics struct {
	gatherer prometheus.Gatherer
	checked  prometheus.Gauge
	skipped  prometheus.Gauge
	errored  prometheus.Gauge
	outdated prometheus.Gauge
	duration prometheus.Gauge
	lastRun  prometheus.Gauge
}

// NewWithRegistry creates collectors registered with a dedicated registry.
//
// Parameters:
//   - registry: Registry the collectors are registered with and gathered from.
//
// Returns:
//   - *Metrics: Metrics handler.
//   - error: Non-nil if registration fails, such as duplicate registration.
func NewWithRegistry(registry *prometheus.Registry) (*Metrics, error) {
	metrics := &Metrics{
		gatherer: registry,
		checked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "updatecheck_images_checked",
			Help: "Number of images compared with their registry during the last run",
		}),
		skipped: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "updatecheck_images_skipped",
			Help: "Number of images skipped by ignore rules or deduplication during the last run",
		}),
		errored: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "updatecheck_images_errored",
			Help: "Number of images whose created dates could not be resolved during the last run",
		}),
		outdated: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "updatecheck_images_outdated",
			Help: "Number of images with a newer version in their registry during the last run",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "updatecheck_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "updatecheck_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}

	collectors := []prometheus.Collector{
		metrics.checked,
		metrics.skipped,
		metrics.errored,
		metrics.outdated,
		metrics.duration,
		metrics.lastRun,
	}
	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return nil, fmt.Errorf("%w: %w", errRegisterFailed, err)
		}
	}

	return metrics, nil
}

// NewMetric creates a Metric from a run report.
//
// Parameters:
//   - report: Frozen run result.
//
// Returns:
//   - *Metric: New metric instance.
func NewMetric(report *session.Report) *Metric {
	return &Metric{
		Checked:  report.Checked,
		Skipped:  report.Skipped,
		Errored:  report.Errored,
		Outdated: len(report.Outdated),
		Duration: report.Duration(),
		Finished: report.Finished,
	}
}

// Register sets the gauges from a run.
//
// Parameters:
//   - metric: Metric to record.
func (m *Metrics) Register(metric *Metric) {
	m.checked.Set(float64(metric.Checked))
	m.skipped.Set(float64(metric.Skipped))
	m.errored.Set(float64(metric.Errored))
	m.outdated.Set(float64(metric.Outdated))
	m.duration.Set(metric.Duration.Seconds())
	m.lastRun.Set(float64(metric.Finished.Unix()))

	logrus.WithFields(logrus.Fields{
		"checked":  metric.Checked,
		"skipped":  metric.Skipped,
		"errored":  metric.Errored,
		"outdated": metric.Outdated,
	}).Debug("Recorded run metrics")
}

// WriteTextfile writes the metrics in the text exposition format.
//
// The file is replaced atomically so a concurrent collector never reads a partial file.
//
// Parameters:
//   - path: Destination, conventionally ending in ".prom".
//
// Returns:
//   - error: Non-nil if the file cannot be written.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.gatherer); err != nil {
		return fmt.Errorf("%w: %w", errWriteTextfileFailed, err)
	}

	logrus.WithField("path", path).Debug("Wrote metrics textfile")

	return nil
}

// Push sends the metrics to a Pushgateway, replacing the previous push for instance.
//
// Parameters:
//   - ctx: Context bounding the request.
//   - url: Pushgateway base URL.
//   - instance: Grouping label, usually the hostname.
//
// Returns:
//   - error: Non-nil if the push fails.
func (m *Metrics) Push(ctx context.Context, url, instance string) error {
	pusher := push.New(url, jobName).Gatherer(m.gatherer)
	if instance != "" {
		pusher = pusher.Grouping("instance", instance)
	}

	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", errPushFailed, err)
	}

	logrus.WithFields(logrus.Fields{
		"url":      url,
		"instance": instance,
	}).Debug("Pushed metrics")

	return nil
}
