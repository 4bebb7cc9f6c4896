package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// SplitLines splits command output into trimmed, non-empty lines.
//
// Parameters:
//   - output: Raw command output.
//
// Returns:
//   - []string: Lines in original order.
func SplitLines(output string) []string {
	lines := []string{}

	for line := range strings.SplitSeq(output, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	return lines
}

// FormatDuration renders a duration as whole hours, minutes and seconds for
// log output, e.g. "1 minute, 5 seconds". Zero units are omitted; a duration
// under one second renders as "0 seconds".
func FormatDuration(duration time.Duration) string {
	total := int64(duration / time.Second)
	hours, minutes, seconds := total/3600, total/60%60, total%60

	parts := FilterEmpty([]string{
		pluralize(hours, "hour"),
		pluralize(minutes, "minute"),
		pluralize(seconds, "second"),
	})
	if len(parts) == 0 {
		return "0 seconds"
	}

	return strings.Join(parts, ", ")
}

// pluralize returns "" for zero, otherwise the count followed by the unit.
func pluralize(count int64, unit string) string {
	switch count {
	case 0:
		return ""
	case 1:
		return "1 " + unit
	default:
		return fmt.Sprintf("%d %ss", count, unit)
	}
}

// FilterEmpty removes empty strings from a slice, returning only non-empty elements.
func FilterEmpty(parts []string) []string {
	var filtered []string

	for _, part := range parts {
		if part != "" {
			filtered = append(filtered, part)
		}
	}

	return filtered
}

// IsFilePath determines if a string likely represents a file path.
// It checks for file existence, avoiding false positives from URLs or invalid Windows paths.
func IsFilePath(fs afero.Fs, path string) bool {
	firstColon := strings.IndexRune(path, ':')
	if firstColon != 1 && firstColon != -1 {
		// If ':' exists but isn't the second character, it's likely not a file path (e.g., URLs).
		return false
	}

	exists, err := afero.Exists(fs, path)

	return err == nil && exists
}
