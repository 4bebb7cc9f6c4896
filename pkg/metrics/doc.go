// Package metrics exports the outcome of a check run as Prometheus metrics.
//
// A run is a short-lived process, so metrics are not scraped from a listener.
// They are written to a node_exporter textfile collector file, pushed to a
// Pushgateway, or both.
//
// Key components:
//   - Metric: Counts from one run.
//   - Metrics: Gauges bound to a Prometheus registry.
//
// Usage example:
//
//	m, _ := metrics.NewWithRegistry(prometheus.NewRegistry())
//	m.Register(metrics.NewMetric(report))
//	if err := m.WriteTextfile("/var/lib/node_exporter/updatecheck.prom"); err != nil {
//	    logrus.WithError(err).Warn("Failed to write metrics")
//	}
package metrics
