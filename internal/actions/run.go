package actions

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/updatecheck/pkg/metrics"
	"github.com/nicholas-fedor/updatecheck/pkg/notifications"
	"github.com/nicholas-fedor/updatecheck/pkg/session"
)

// RunCheckWithNotifications performs a check run, prints its summary and notifies about outdated images.
//
// The notification is sent at most once, only when at least one image is outdated,
// and never for an interrupted run.
//
// Parameters:
//   - ctx: Run context.
//   - params: Check configuration.
//   - dispatcher: Notification dispatcher.
//   - dryRun: Whether the dispatcher prints instead of sending.
//
// Returns:
//   - *metrics.Metric: Summary of the run, nil if the run could not start.
//   - error: Interruption, output failure or joined *types.NotifyError values.
func RunCheckWithNotifications(
	ctx context.Context,
	params CheckParams,
	dispatcher *notifications.Dispatcher,
	dryRun bool,
) (*metrics.Metric, error) {
	report, checkErr := Check(ctx, params)
	if report == nil {
		return nil, checkErr
	}

	metric := metrics.NewMetric(report)

	if err := params.Printer.Summary(report); err != nil {
		logrus.WithError(err).Warn("Failed to print run summary")
	}

	logrus.WithFields(logrus.Fields{
		"images":   report.Total(),
		"checked":  metric.Checked,
		"skipped":  metric.Skipped,
		"errored":  metric.Errored,
		"outdated": metric.Outdated,
	}).Info("Check run completed")

	logFailures(report)

	if checkErr != nil {
		return metric, checkErr
	}

	if !report.HasUpdates() {
		return metric, nil
	}

	if !dryRun {
		params.Printer.Sending()
	}

	if err := dispatcher.Notify(ctx, report.Outdated); err != nil {
		return metric, err
	}

	if !dryRun {
		params.Printer.Sent()
	}

	return metric, nil
}

// logFailures names the images a run could not check in a single warning.
func logFailures(report *session.Report) {
	failed := report.Failed()
	if len(failed) == 0 {
		return
	}

	names := make([]string, 0, len(failed))
	for _, status := range failed {
		names = append(names, status.Name)
	}

	logrus.WithField("images", strings.Join(names, ", ")).
		Warnf("%d images could not be checked", len(failed))
}
