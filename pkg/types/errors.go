package types

import (
	"context"
	"errors"
	"fmt"
)

// Exit statuses for a check run.
const (
	ExitOK            = 0   // Run completed; notification sent or not needed.
	ExitSetupFailure  = 1   // Configuration or external tooling unusable.
	ExitNotifyFailure = 2   // Detection completed but the notification was not delivered.
	ExitCanceled      = 130 // Run interrupted by a signal.
)

// SetupError is a fatal pre-flight failure: missing tooling or invalid configuration.
type SetupError struct {
	Err error
}

func (e *SetupError) Error() string { return e.Err.Error() }
func (e *SetupError) Unwrap() error { return e.Err }

// InventoryError reports an inventory listing that failed; the run continues with no images.
type InventoryError struct {
	Source string
	Err    error
}

func (e *InventoryError) Error() string {
	return fmt.Sprintf("listing %s failed: %v", e.Source, e.Err)
}

func (e *InventoryError) Unwrap() error { return e.Err }

// PerImageError reports an image whose timestamps could not be resolved.
type PerImageError struct {
	Image string
	Stage string // "local" or "remote".
	Err   error
}

func (e *PerImageError) Error() string {
	return fmt.Sprintf("%s created date of %s: %v", e.Stage, e.Image, e.Err)
}

func (e *PerImageError) Unwrap() error { return e.Err }

// NotifyError reports a notification that could not be delivered.
type NotifyError struct {
	Service string
	Err     error
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("%s notification failed: %v", e.Service, e.Err)
}

func (e *NotifyError) Unwrap() error { return e.Err }

// ExitCode maps a run error to the process exit status.
//
// Cancellation wins over every other failure so an interrupted run is never
// reported as a notification problem.
func ExitCode(err error) int {
	var (
		setupErr  *SetupError
		notifyErr *NotifyError
	)

	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitCanceled
	case errors.As(err, &setupErr):
		return ExitSetupFailure
	case errors.As(err, &notifyErr):
		return ExitNotifyFailure
	default:
		return ExitSetupFailure
	}
}
