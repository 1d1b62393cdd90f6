package resilience

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/kauebrandao/textsummarizer/pkg/errors"
)

// Call runs fn under a deadline of timeout (none when timeout <= 0) and
// returns its result. A missed deadline yields an AppError carrying
// ErrTimeout and a 504 status that still matches context.DeadlineExceeded.
// fn keeps running in the background after a missed deadline, so it must
// honour ctx.
func Call[T any](ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		val T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := fn(ctx)
		done <- outcome{v, err}
	}()

	var zero T
	select {
	case o := <-done:
		return o.val, o.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, &apperrors.AppError{
				Err:        fmt.Errorf("%w: %w", apperrors.ErrTimeout, context.DeadlineExceeded),
				Message:    fmt.Sprintf("%s exceeded %v", name, timeout),
				StatusCode: http.StatusGatewayTimeout,
			}
		}
		return zero, fmt.Errorf("%s: %w", name, ctx.Err())
	}
}
