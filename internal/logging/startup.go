// Package logging provides functions for logging startup information in updatecheck.
// It handles the initialization messages, notifier setup logging, and run mode display.
package logging

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/updatecheck/internal/util"
	"github.com/nicholas-fedor/updatecheck/pkg/types"
)

// RunInfo describes how the check run will proceed.
type RunInfo struct {
	Inventory string        // Inventory strategy name.
	Workers   int           // Concurrent image checks.
	Timeout   time.Duration // Per-call timeout.
	DryRun    bool          // Notifications are printed, not sent.
}

// WriteStartupMessage logs startup information.
//
// It reports the version, the backends in use, notification setup and run mode,
// providing users with an overview of the application's initial state.
//
// Parameters:
//   - version: The version string to include in startup messages.
//   - runtime: Runtime backend used for the inventory and local timestamps.
//   - registry: Registry backend used for remote timestamps.
//   - notifiers: Configured notification services.
//   - info: Run mode details.
func WriteStartupMessage(
	version string,
	runtime types.RuntimeClient,
	registry types.RegistryClient,
	notifiers []types.Notifier,
	info RunInfo,
) {
	startupLog := logrus.NewEntry(logrus.StandardLogger())

	fields := logrus.Fields{}
	if runtime != nil {
		fields["runtime"] = runtime.Name()
	}

	if registry != nil {
		fields["registry"] = registry.Name()
	}

	startupLog.WithFields(fields).Info("updatecheck ", version)

	notifierNames := make([]string, 0, len(notifiers))
	for _, notifier := range notifiers {
		notifierNames = append(notifierNames, notifier.Name())
	}

	LogNotifierInfo(startupLog, notifierNames)

	LogRunInfo(startupLog, info)

	// Warn about trace-level logging if enabled, as it may expose sensitive data.
	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		startupLog.Warn(
			"Trace level enabled: log will include sensitive information as credentials and tokens",
		)
	}
}

// LogNotifierInfo logs details about the notification setup.
//
// It reports the list of configured notifier names (e.g., "gotify, slack") or indicates no notifications
// are set up, providing visibility into how updates will be communicated.
//
// Parameters:
//   - log: The logrus.Entry used to write the notification information.
//   - notifierNames: A slice of strings representing the names of configured notifiers.
func LogNotifierInfo(log *logrus.Entry, notifierNames []string) {
	if len(notifierNames) > 0 {
		log.Info("Using notifications: " + strings.Join(notifierNames, ", "))
	} else {
		log.Info("Using no notifications")
	}
}

// LogRunInfo logs how images will be collected and checked.
//
// Parameters:
//   - log: The logrus.Entry used to write the run information.
//   - info: Run mode details.
func LogRunInfo(log *logrus.Entry, info RunInfo) {
	switch {
	case info.Workers > 1:
		log.Infof("Checking %s with %d workers", info.Inventory, info.Workers)
	default:
		log.Infof("Checking %s one at a time", info.Inventory)
	}

	if info.Timeout > 0 {
		log.Debug("Each runtime or registry call times out after " + util.FormatDuration(info.Timeout))
	}

	if info.DryRun {
		log.Info("Dry run: notifications will be printed instead of sent")
	}
}
