// Package actions provides the core logic of an update check run.
// It walks the inventory through the filter chain, compares local and remote
// creation dates, and hands the result to the printer and the notifier.
//
// Key components:
//   - Check: Produces a session.Report for an inventory.
//   - RunCheckWithNotifications: Runs Check, prints the summary and notifies when images are outdated.
//
// Usage example:
//
//	metric, err := actions.RunCheckWithNotifications(ctx, params, dispatcher)
//	if err != nil {
//	    logrus.WithError(err).Error("Check run failed")
//	}
//
// The package integrates with the inventory, filters, session and notifications packages,
// using logrus for logging operations and errors.
package actions
