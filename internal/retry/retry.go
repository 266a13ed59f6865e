// Package retry provides fixed-interval polling with fatal error marking.
//
// Provisioning a gateway involves waiting on conditions that resolve on
// their own (a droplet booting, cloud-init running to completion). Forever
// polls such a condition until it holds, treating ordinary errors as "not
// yet" and errors wrapped with Fatal as a reason to stop immediately.
package retry

import (
	"context"
	"errors"
	"time"
)

// Forever runs operation at a fixed interval until it succeeds or fails
// fatally. The interval elapses before the first attempt. Errors not marked
// with Fatal mean the awaited condition is not met yet and the loop
// continues. Context cancellation stops the loop with ctx.Err(), so callers
// bound the wait with a deadline or leave it unbounded.
func Forever(ctx context.Context, interval time.Duration, operation func() error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}

		err := operation()
		if err == nil {
			return nil
		}

		var fatal *FatalError
		if errors.As(err, &fatal) {
			return fatal.Err
		}
	}
}

// FatalError wraps an error to mark it as fatal (non-retryable).
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatal marks an error as fatal (non-retryable). Forever stops and returns
// the wrapped error unchanged when the operation reports one.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// IsFatal checks if an error is fatal (non-retryable).
func IsFatal(err error) bool {
	var fatalErr *FatalError
	return errors.As(err, &fatalErr)
}
