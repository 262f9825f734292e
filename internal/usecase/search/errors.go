package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/marketsearch/internal/domain"
)

// backendError classifies a collaborator failure: deadline expiry becomes
// ErrTimeout, everything else ErrBackendUnavailable.
func backendError(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrBackendUnavailable, err)
}

// interrupted reports whether the request context is done, so a failure
// must not be treated as a degradable backend error.
func interrupted(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}
