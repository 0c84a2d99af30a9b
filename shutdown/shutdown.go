// Package shutdown ties process lifetime to termination signals.
package shutdown

import (
	"context"
	"os/signal"
)

// Context is cancelled on the first termination signal. Calling stop
// restores default signal handling.
func Context(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}
