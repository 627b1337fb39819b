package service

import (
	"context"
	"errors"

	"github.com/noah-isme/gema-progression/internal/observability"
	"github.com/noah-isme/gema-progression/internal/repository"
)

const maxWriteAttempts = 3

// runGuarded runs fn in a transaction, retrying the whole transaction when a
// version-guarded write lost a race.
func runGuarded(ctx context.Context, store repository.Store, op string, fn func(tx repository.Store) error) error {
	var err error
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		err = store.Transaction(ctx, fn)
		if !errors.Is(err, repository.ErrStaleWrite) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt < maxWriteAttempts {
			observability.ConcurrentRetries().WithLabelValues(op).Inc()
		}
	}

	return &DomainError{Op: op, Kind: ErrConcurrentModification, Message: "progression changed concurrently, try again", Err: err}
}
