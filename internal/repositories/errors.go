package repositories

import (
	"context"
	"errors"
	"fmt"
	"net"

	"careerkit/pkg/utils"
)

// classify separates infrastructure outages from everything else so callers
// can fail with a retryable 503 instead of a generic 500. Anything that looks
// like the store being unreachable (dial/timeout/cancellation) maps to
// ErrStoreUnavailable; the rest is a plain database error.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", utils.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
}
