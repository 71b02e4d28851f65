// Package oracle adapts the external reasoning services behind one request/response interface.
package oracle

import (
	"context"
	"errors"
	"time"

	scanerrors "github.com/scan-io-git/scanio-ai/pkg/shared/errors"
)

// Oracle turns a prompt into raw response text.
//
// Implementations must honour ctx cancellation and report failures either as an error matching
// scanerrors.ErrTimedOut or as a *scanerrors.TransportError.
type Oracle interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// Func adapts an ordinary function to the Oracle interface.
type Func func(ctx context.Context, prompt string) (string, error)

// Invoke calls f.
func (f Func) Invoke(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Call invokes o with a deadline of budget, or with no deadline of its own when budget is zero.
// Any failure caused by the deadline or by the parent context ending is reported as timed out.
func Call(ctx context.Context, o Oracle, prompt string, budget time.Duration) (string, error) {
	callCtx := ctx
	if budget > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	text, err := o.Invoke(callCtx, prompt)
	if err == nil {
		return text, nil
	}
	if errors.Is(err, scanerrors.ErrTimedOut) {
		return "", err
	}
	if callCtx.Err() != nil {
		return "", scanerrors.NewTimedOutError("oracle call", budget)
	}

	var transportErr *scanerrors.TransportError
	if errors.As(err, &transportErr) {
		return "", err
	}
	return "", scanerrors.NewTransportError("oracle call", "", err)
}

// timeoutOr maps a failure to TimedOut when ctx has ended, and to a TransportError otherwise.
func timeoutOr(ctx context.Context, op, message string, err error) error {
	if ctx.Err() != nil {
		return scanerrors.NewTimedOutError(op, 0)
	}
	return scanerrors.NewTransportError(op, message, err)
}
