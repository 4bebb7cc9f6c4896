package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/docker/go-connections/tlsconfig"
	"github.com/sirupsen/logrus"
)

// gotifyType is the identifier for Gotify notifications.
const gotifyType = "gotify"

// maxErrorBody bounds how much of an error response is kept for diagnostics.
const maxErrorBody = 512

// GotifyConfig configures a GotifyNotifier.
type GotifyConfig struct {
	Server             string // Base URL, e.g. "https://gotify.example.com".
	Token              string // Application token.
	InsecureSkipVerify bool   // Skip TLS certificate verification.
	CAFile             string // Additional CA bundle for the server certificate.
}

// gotifyMessage is the body of a Gotify message request.
type gotifyMessage struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// GotifyNotifier posts messages to a Gotify server.
type GotifyNotifier struct {
	endpoint string
	token    string
	client   *http.Client
}

// NewGotifyNotifier creates a Gotify notifier.
//
// Parameters:
//   - config: Server, token and TLS settings.
//
// Returns:
//   - *GotifyNotifier: Initialized notifier.
//   - error: Non-nil if the server URL, token or TLS settings are invalid.
func NewGotifyNotifier(config GotifyConfig) (*GotifyNotifier, error) {
	server, err := url.Parse(config.Server)
	if err != nil || (server.Scheme != "http" && server.Scheme != "https") || server.Host == "" {
		return nil, fmt.Errorf("%w: %q", errInvalidGotifyURL, config.Server)
	}

	if config.Token == "" {
		return nil, errEmptyGotifyToken
	}

	clog := logrus.WithFields(logrus.Fields{
		"url":         server.Redacted(),
		"skip_verify": config.InsecureSkipVerify,
		"ca_file":     config.CAFile,
	})

	if server.Scheme == "http" {
		clog.Warn("Using an HTTP URL for Gotify is insecure")
	}

	tlsConfig, err := tlsconfig.Client(tlsconfig.Options{
		CAFile:             config.CAFile,
		InsecureSkipVerify: config.InsecureSkipVerify,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errTLSConfigFailed, err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig

	clog.Debug("Initialized Gotify notifier")

	return &GotifyNotifier{
		endpoint: strings.TrimRight(server.String(), "/") + "/message",
		token:    config.Token,
		client:   &http.Client{Transport: transport},
	}, nil
}

// Name identifies the service.
func (n *GotifyNotifier) Name() string {
	return gotifyType
}

// Send posts one message.
//
// Only HTTP 200 counts as delivered. There is no retry.
//
// Parameters:
//   - ctx: Context bounding the request.
//   - title: Message title.
//   - message: Message body.
//
// Returns:
//   - error: Wraps errRequestFailed for transport failures or errUnexpectedStatus with the status code.
func (n *GotifyNotifier) Send(ctx context.Context, title, message string) error {
	payload, err := json.Marshal(gotifyMessage{Title: title, Message: message})
	if err != nil {
		return fmt.Errorf("%w: %w", errRequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %w", errRequestFailed, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.token)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", errRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		logrus.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   strings.TrimSpace(string(body)),
		}).Debug("Gotify rejected message")

		return fmt.Errorf("%w(%d)", errUnexpectedStatus, resp.StatusCode)
	}

	_, _ = io.Copy(io.Discard, resp.Body)

	logrus.WithField("title", title).Debug("Gotify accepted message")

	return nil
}
