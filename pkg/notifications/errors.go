package notifications

import "errors"

// Errors for notification delivery.
var (
	// errInvalidGotifyURL indicates the Gotify server is not an absolute http(s) URL.
	errInvalidGotifyURL = errors.New("gotify server must be an http or https URL")
	// errEmptyGotifyToken indicates no application token was configured.
	errEmptyGotifyToken = errors.New("gotify token is empty")
	// errTLSConfigFailed indicates the TLS client settings could not be loaded.
	errTLSConfigFailed = errors.New("failed to configure TLS")
	// errRequestFailed indicates the notification endpoint could not be reached.
	errRequestFailed = errors.New("request failed")
	// errUnexpectedStatus indicates the endpoint answered with a non-success status.
	errUnexpectedStatus = errors.New("message send failed")
	// errShoutrrrInitFailed indicates a shoutrrr URL could not be parsed.
	errShoutrrrInitFailed = errors.New("failed to initialize shoutrrr notifications")
	// errShoutrrrSendFailed indicates at least one shoutrrr service rejected the message.
	errShoutrrrSendFailed = errors.New("failed to send shoutrrr notification")
)
