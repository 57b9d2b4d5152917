//go:build !unix

package checkpoint

import "errors"

// ErrLocked is returned when another process holds the run lock.
var ErrLocked = errors.New("run directory is locked by another process")

// RunLock is a no-op on platforms without flock.
type RunLock struct{}

// AcquireLock always succeeds on this platform.
func AcquireLock(dir string) (*RunLock, error) {
	return &RunLock{}, nil
}

// Release is a no-op.
func (l *RunLock) Release() error {
	return nil
}
