package domain

import (
	"errors"
	"fmt"
)

var (
	ErrItemNotFound = errors.New("catalog item not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrTemporary    = errors.New("temporary failure")

	// ErrStoreUnavailable marks a store or service connectivity failure.
	// Callers must render it differently from a legitimately empty result.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrPlanInvalid marks a structured filter that failed validation. The
	// orchestrator absorbs it by degrading to unfiltered semantic search.
	ErrPlanInvalid = errors.New("invalid query plan")

	// ErrDimensionMismatch marks an embedding whose length differs from the
	// index dimension. Configuration error: fatal, never absorbed.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
