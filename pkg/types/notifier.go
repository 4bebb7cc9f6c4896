package types

import "context"

// Notifier delivers a titled message to an operator.
type Notifier interface {
	Name() string                                         // Service name.
	Send(ctx context.Context, title, message string) error // Deliver once, no retry.
}
