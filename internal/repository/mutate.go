package repository

import (
	"context"
	"fmt"

	"github.com/lalith-99/controlpanel/internal/models"
)

// Locker serializes writers of one show. Lock returns an unlock func that
// must be called once the unit of work finishes.
type Locker interface {
	Lock(ctx context.Context, showToken string) (unlock func(), err error)
}

// NopLocker never blocks. Correctness then rests on the store's version
// check alone.
type NopLocker struct{}

func (NopLocker) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}

// Mutate runs one load -> mutate -> save unit against a show.
//
// fn mutates the show in memory. If fn returns an error nothing is saved
// and the error is returned unwrapped, so callers can match business
// errors directly. Mutate never retries: a concurrent writer surfaces as
// ErrVersionConflict (or ErrLocked from the Locker).
func Mutate(ctx context.Context, shows ShowRepository, locker Locker, showToken string, fn func(*models.Show) error) (*models.Show, error) {
	if locker == nil {
		locker = NopLocker{}
	}

	unlock, err := locker.Lock(ctx, showToken)
	if err != nil {
		return nil, fmt.Errorf("lock show: %w", err)
	}
	defer unlock()

	show, err := shows.GetByToken(ctx, showToken)
	if err != nil {
		return nil, err
	}

	if err := fn(show); err != nil {
		return nil, err
	}

	if err := shows.Save(ctx, show); err != nil {
		return nil, fmt.Errorf("save show: %w", err)
	}
	return show, nil
}
