package session

import (
	"time"

	"github.com/nicholas-fedor/updatecheck/pkg/types"
)

// State enum values.
const (
	UnknownState  State = iota // Uninitialized state.
	SkippedState               // Removed by the filter chain.
	FreshState                 // Remote is not newer than local.
	OutdatedState              // Remote is strictly newer than local.
	FailedState                // Timestamps could not be resolved.
)

// State indicates the outcome for one image.
type State int

// String returns the human-readable state name.
//
// Returns:
//   - string: State as a string (e.g., "Outdated").
func (s State) String() string {
	switch s {
	case UnknownState:
		return "Unknown"
	case SkippedState:
		return "Skipped"
	case FreshState:
		return "Fresh"
	case OutdatedState:
		return "Outdated"
	case FailedState:
		return "Failed"
	default:
		return "Unknown"
	}
}

// MarshalText renders the state name in JSON output.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ImageStatus holds the outcome for one inventory entry.
//
//nolint:errname // ImageStatus is not an error type, it contains an error field.
type ImageStatus struct {
	Index       int               `json:"-"`
	Name        string            `json:"name"`
	ImageID     types.ImageID     `json:"imageId,omitempty"`
	ContainerID types.ContainerID `json:"containerId,omitempty"`
	State       State             `json:"state"`
	Reason      string            `json:"reason,omitempty"`
	Local       *time.Time        `json:"localCreated,omitempty"`
	Remote      *time.Time        `json:"remoteCreated,omitempty"`
	Err         error             `json:"-"`
	ErrMessage  string            `json:"error,omitempty"`
}

// Error returns the failure message, if any.
//
// Returns:
//   - string: Error message or empty if none.
func (s *ImageStatus) Error() string {
	if s.Err == nil {
		return ""
	}

	return s.Err.Error()
}
