package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Failure taxonomy for record store operations. Handlers and services branch
// on these with errors.Is; the wrapped cause keeps the driver detail for logs.
var (
	// ErrNotFound: no record with the given image name exists.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidInput: the record or arguments were rejected before any
	// store I/O (confidence outside [0,1], unknown class, empty key).
	ErrInvalidInput = errors.New("invalid record input")

	// ErrSchemaConflict: the record table is missing or misconfigured.
	// Not retryable; the store must be provisioned first.
	ErrSchemaConflict = errors.New("record table missing or misconfigured")

	// ErrUnavailable: the backing store is unreachable, locked, or timed
	// out. Safe to retry.
	ErrUnavailable = errors.New("record store unavailable")
)

// classifyStoreError maps a driver-level failure onto the taxonomy above.
func classifyStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrUnavailable
	case strings.Contains(err.Error(), "no such table"):
		return ErrSchemaConflict
	case strings.Contains(err.Error(), "database is locked"),
		strings.Contains(err.Error(), "database table is locked"):
		return ErrUnavailable
	default:
		return ErrUnavailable
	}
}
