package notifications

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/nicholas-fedor/shoutrrr"
	"github.com/sirupsen/logrus"

	shoutrrrTypes "github.com/nicholas-fedor/shoutrrr/pkg/types"
)

// shoutrrrType is the identifier for shoutrrr notifications.
const shoutrrrType = "shoutrrr"

// router defines the interface for sending Shoutrrr notifications.
// It abstracts the underlying service implementation.
type router interface {
	Send(message string, params *shoutrrrTypes.Params) []error
}

// ShoutrrrNotifier sends messages to every configured shoutrrr service URL.
type ShoutrrrNotifier struct {
	urls   []string
	router router
}

// GetScheme extracts the scheme part of a Shoutrrr URL.
// It returns "invalid" if no scheme is found.
func GetScheme(url string) string {
	schemeEnd := strings.Index(url, ":")
	if schemeEnd <= 0 {
		return "invalid"
	}

	return url[:schemeEnd]
}

// NewShoutrrrNotifier creates a notifier for service URLs such as "ntfy://..." or "slack://...".
//
// Parameters:
//   - urls: Service URLs.
//
// Returns:
//   - *ShoutrrrNotifier: Initialized notifier.
//   - error: Non-nil if any URL is invalid.
func NewShoutrrrNotifier(urls []string) (*ShoutrrrNotifier, error) {
	logger := log.New(logrus.StandardLogger().WriterLevel(logrus.TraceLevel), "Shoutrrr: ", 0)

	sender, err := shoutrrr.NewSender(logger, urls...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errShoutrrrInitFailed, err)
	}

	schemes := make([]string, 0, len(urls))
	for _, u := range urls {
		schemes = append(schemes, GetScheme(u))
	}

	logrus.WithField("services", schemes).Debug("Initialized shoutrrr notifier")

	return &ShoutrrrNotifier{urls: urls, router: sender}, nil
}

// Name identifies the service.
func (n *ShoutrrrNotifier) Name() string {
	return shoutrrrType
}

// Send delivers the message to every service, reporting each failure.
//
// Parameters:
//   - ctx: Checked before sending; shoutrrr services apply their own timeouts.
//   - title: Message title.
//   - message: Message body.
//
// Returns:
//   - error: Joined failures, one per rejecting service, or nil.
func (n *ShoutrrrNotifier) Send(ctx context.Context, title, message string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", errShoutrrrSendFailed, err)
	}

	params := &shoutrrrTypes.Params{}
	params.SetTitle(title)

	var failures []error

	for i, err := range n.router.Send(message, params) {
		if err == nil {
			continue
		}

		scheme := "invalid"
		if i < len(n.urls) {
			scheme = GetScheme(n.urls[i])
		}

		logrus.WithFields(logrus.Fields{
			"service": scheme,
			"index":   i,
		}).WithError(err).Debug("Shoutrrr service rejected message")

		failures = append(failures, fmt.Errorf("%w: %s: %w", errShoutrrrSendFailed, scheme, err))
	}

	return errors.Join(failures...)
}
