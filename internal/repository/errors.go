package repository

import (
	"errors"
	"fmt"
	"net"
)

// Common repository errors
var (
	// ErrTaskNotFound is returned when a mutation targets a task that does not exist
	ErrTaskNotFound = errors.New("task not found")

	// ErrBackendUnavailable is returned when the backend cannot be reached or configured
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrWrite is returned when the backend rejects a write
	ErrWrite = errors.New("write failed")

	// ErrRead is returned when the backend fails to return stored tasks
	ErrRead = errors.New("read failed")
)

var errTaskExists = errors.New("task already exists")

// backendErr wraps err with kind. Network failures are reported as
// ErrBackendUnavailable regardless of kind.
func backendErr(kind, err error, format string, args ...any) error {
	var netErr net.Error
	if errors.As(err, &netErr) {
		kind = ErrBackendUnavailable
	}
	return fmt.Errorf("%w: %s: %v", kind, fmt.Sprintf(format, args...), err)
}
