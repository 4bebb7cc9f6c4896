package notifications

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/updatecheck/pkg/types"
)

// messageHeader opens every notification body.
const messageHeader = "Images requiring an update:"

// dryRunService names the dry-run printer in delivery errors.
const dryRunService = "dry-run"

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	Notifiers []types.Notifier // Services to deliver to.
	Hostname  string           // Hostname in the title; empty uses os.Hostname.
	TitleTag  string           // Optional title prefix, rendered as "[tag] ".
	DryRun    bool             // Print instead of sending.
	Out       io.Writer        // Dry-run destination; nil uses os.Stdout.
}

// Dispatcher composes the notification for a run and delivers it.
type Dispatcher struct {
	notifiers []types.Notifier
	title     string
	dryRun    bool
	out       io.Writer
}

// NewDispatcher creates a dispatcher.
//
// Parameters:
//   - opts: Dispatcher options.
//
// Returns:
//   - *Dispatcher: Initialized dispatcher.
func NewDispatcher(opts DispatcherOptions) *Dispatcher {
	hostname := opts.Hostname
	if hostname == "" {
		hostname = localHostname()
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	return &Dispatcher{
		notifiers: opts.Notifiers,
		title:     BuildTitle(hostname, opts.TitleTag),
		dryRun:    opts.DryRun,
		out:       out,
	}
}

// localHostname returns the hostname, or "unknown" if it cannot be determined.
func localHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		logrus.WithError(err).Warn("Unable to determine hostname for notification title")

		return "unknown"
	}

	return hostname
}

// BuildTitle returns the notification title for a host.
//
// Parameters:
//   - hostname: Host the run checked.
//   - tag: Optional prefix.
//
// Returns:
//   - string: e.g. "[prod] Image updates available for web-01".
func BuildTitle(hostname, tag string) string {
	title := "Image updates available for " + hostname
	if tag != "" {
		title = fmt.Sprintf("[%s] %s", tag, title)
	}

	return title
}

// BuildMessage returns the notification body listing outdated images.
//
// Parameters:
//   - outdated: Image names, in inventory order.
//
// Returns:
//   - string: Header line followed by one image per line.
func BuildMessage(outdated []string) string {
	return messageHeader + "\n" + strings.Join(outdated, "\n")
}

// Notify sends one notification listing outdated images to every notifier.
//
// Nothing is sent when outdated is empty. Every notifier is attempted even if
// an earlier one fails.
//
// Parameters:
//   - ctx: Context bounding the delivery.
//   - outdated: Image names, in inventory order.
//
// Returns:
//   - error: Joined *types.NotifyError values, or nil.
func (d *Dispatcher) Notify(ctx context.Context, outdated []string) error {
	if len(outdated) == 0 {
		logrus.Debug("No outdated images, skipping notification")

		return nil
	}

	message := BuildMessage(outdated)

	if d.dryRun {
		_, err := fmt.Fprintf(d.out, "%s\n%s\n", d.title, message)
		if err != nil {
			return &types.NotifyError{Service: dryRunService, Err: fmt.Errorf("failed to print notification: %w", err)}
		}

		return nil
	}

	var failures []error

	for _, notifier := range d.notifiers {
		clog := logrus.WithField("service", notifier.Name())

		if err := notifier.Send(ctx, d.title, message); err != nil {
			clog.WithError(err).Error("Failed to send notification")

			failures = append(failures, &types.NotifyError{Service: notifier.Name(), Err: err})

			continue
		}

		clog.WithField("images", len(outdated)).Info("Sent notification")
	}

	return errors.Join(failures...)
}
