package joysticks

import "errors"

var (
	// ErrNotRunning is returned by fetch operations while the pool is
	// stopped. Call Reset to start monitoring.
	ErrNotRunning = errors.New("device monitoring is not running, call Reset first")

	// ErrTimedOut is returned by Fetch when the deadline elapses without
	// any observed input change.
	ErrTimedOut = errors.New("fetch timed out waiting for an input change")
)

const (
	errDuplicateCode = "device '%s': duplicate %s code %d"
)
