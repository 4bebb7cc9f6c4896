// Package notifications delivers the list of outdated images to operators.
//
// Key components:
//   - GotifyNotifier: Posts to a Gotify server's message endpoint.
//   - ShoutrrrNotifier: Fans out to any service URL supported by shoutrrr.
//   - Dispatcher: Composes the title and body once and sends them to every notifier.
//
// Usage example:
//
//	gotify, _ := notifications.NewGotifyNotifier(notifications.GotifyConfig{Server: server, Token: token})
//	dispatcher := notifications.NewDispatcher(notifications.DispatcherOptions{Notifiers: []types.Notifier{gotify}})
//	if err := dispatcher.Notify(ctx, report.Outdated); err != nil {
//	    logrus.WithError(err).Error("Failed to send notification")
//	}
package notifications
