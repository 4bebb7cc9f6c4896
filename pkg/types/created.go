package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// errUnparsableCreated indicates a created date did not match any supported layout.
var errUnparsableCreated = errors.New("unrecognised created date")

// errEmptyCreated indicates an empty or zero created date.
var errEmptyCreated = errors.New("empty created date")

// createdLayouts lists the date formats printed by the supported backends.
//
//   - RFC 3339: Docker Engine API and "docker image inspect".
//   - Go time.Time.String(): "podman image inspect" and "skopeo inspect" templates.
var createdLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999 -0700 -0700",
	"2006-01-02 15:04:05 -0700 MST",
}

// ParseCreated parses a created date reported by a runtime or registry.
//
// Parameters:
//   - raw: Date string as printed by the backend.
//
// Returns:
//   - time.Time: Parsed time.
//   - error: Non-nil if raw is empty, zero or not in a supported layout.
func ParseCreated(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)

	// Go's String() appends the monotonic clock reading, which is not a date.
	if idx := strings.Index(value, " m="); idx >= 0 {
		value = value[:idx]
	}

	if value == "" || value == "<nil>" {
		return time.Time{}, errEmptyCreated
	}

	for _, layout := range createdLayouts {
		parsed, err := time.Parse(layout, value)
		if err != nil {
			continue
		}

		if err := CheckCreated(parsed); err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", err, raw)
		}

		return parsed, nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", errUnparsableCreated, raw)
}

// CheckCreated rejects creation times that carry no information.
//
// Parameters:
//   - created: Time decoded from an image config.
//
// Returns:
//   - error: Non-nil if created is zero or not after the Unix epoch.
func CheckCreated(created time.Time) error {
	if created.IsZero() || created.Unix() <= 0 {
		return errEmptyCreated
	}

	return nil
}

// IsOutdated reports whether the remote image is strictly newer than the local one.
//
// Timestamps are compared in whole seconds; equal timestamps are not an update.
func IsOutdated(local, remote time.Time) bool {
	return remote.Unix() > local.Unix()
}
