// Package ogerr defines the sentinel error kinds shared across the pipeline
// and their corresponding process exit codes.
package ogerr

import "errors"

var (
	ErrBadConfig            = errors.New("bad config")
	ErrBadParams            = errors.New("bad params")
	ErrMissingCrsData       = errors.New("missing crs data")
	ErrMissingLayer         = errors.New("missing layer")
	ErrInvalidQuadkey       = errors.New("invalid quadkey")
	ErrExtentTooSmall       = errors.New("extent too small")
	ErrIoFailure            = errors.New("io failure")
	ErrLockContention       = errors.New("lock contention")
	ErrOutOfMemory          = errors.New("out of memory")
	ErrMissingElevationData = errors.New("missing elevation layer settings")
	ErrLoadElevation        = errors.New("failed to load elevation")
)

// ExitCode maps a sentinel error (possibly wrapped) to the process exit code
// documented in the external interfaces spec. Unrecognized errors return 1.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrMissingCrsData):
		return 2
	case errors.Is(err, ErrBadConfig):
		return 3
	case errors.Is(err, ErrBadParams):
		return 4
	case errors.Is(err, ErrMissingLayer):
		return 5
	case errors.Is(err, ErrMissingElevationData):
		return 6
	case errors.Is(err, ErrLoadElevation):
		return 10
	case errors.Is(err, ErrExtentTooSmall):
		return 20
	case errors.Is(err, ErrOutOfMemory):
		return 101
	default:
		return 1
	}
}
