package transaction

import (
	"context"
	"errors"

	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
)

// NumberingAttempts bounds how often a write that generates its own document
// number is retried after losing the number to a concurrent write
const NumberingAttempts = 3

// RetryOnConflict runs fn in a fresh transaction up to attempts times while it
// fails with ALREADY_EXISTS. Any other outcome is returned immediately.
func RetryOnConflict(ctx context.Context, scope Scope, attempts int, fn func(repos Repositories) error) error {
	var err error
	for i := 0; i < max(attempts, 1); i++ {
		if err = scope.Execute(ctx, fn); !errors.Is(err, shared.ErrAlreadyExists) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}
