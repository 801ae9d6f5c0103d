package dataaccess

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// BuildEffectiveContext derives the context a single data access call runs
// under. It is cancelled as soon as any of the caller's context, the
// request abort signal carried by ctx, or the timeout fires. A timeout of
// zero or less adds no timeout.
//
// When none of the sources can ever fire, ctx is returned unchanged. The
// returned release func stops every source and must be called once the
// call has completed.
func BuildEffectiveContext(ctx context.Context, timeoutSeconds int) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}

	abort := RequestAbort(ctx)
	hasAbort := abort != nil && abort.Done() != nil
	hasTimeout := timeoutSeconds > 0

	if ctx.Done() == nil && !hasAbort && !hasTimeout {
		return ctx, func() {}
	}

	effective, cancel := context.WithCancelCause(ctx)

	stopAbort := func() bool { return false }
	if hasAbort {
		if abort.Err() != nil {
			cancel(ErrRequestAborted)
		} else {
			stopAbort = context.AfterFunc(abort, func() { cancel(ErrRequestAborted) })
		}
	}

	cancelTimeout := context.CancelFunc(func() {})
	if hasTimeout {
		effective, cancelTimeout = context.WithTimeoutCause(effective, time.Duration(timeoutSeconds)*time.Second, ErrCommandTimeout)
	}

	release := func() {
		stopAbort()
		cancelTimeout()
		cancel(nil)
	}
	return effective, release
}

// Cancelled wraps err with ErrCancelled and the cancellation cause when the
// effective context has fired. Otherwise err is returned as is.
func Cancelled(effective context.Context, err error) error {
	if err == nil || effective.Err() == nil || errors.Is(err, ErrCancelled) {
		return err
	}
	cause := context.Cause(effective)
	if cause == nil || errors.Is(err, cause) {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return fmt.Errorf("%w (%w): %w", ErrCancelled, cause, err)
}
