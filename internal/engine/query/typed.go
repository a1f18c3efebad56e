package query

import (
	"context"
	"fmt"
	"time"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
	"go.trai.ch/zerr"
)

// FetcherOf loads a value of type T.
type FetcherOf[T any] func(ctx context.Context) (T, error)

// Erase converts f into an untyped fetcher.
func (f FetcherOf[T]) Erase() domain.Fetcher {
	if f == nil {
		return nil
	}
	return func(ctx context.Context) (any, error) {
		v, err := f(ctx)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

// Result is the typed view of a snapshot handed to consumers.
type Result[T any] struct {
	Key       string
	Data      T
	HasData   bool
	Loading   bool
	IsStale   bool
	Err       error
	State     domain.QueryState
	UpdatedAt time.Time
}

// ResultOf converts snap into a Result. Data that is not a T is reported as
// domain.ErrTypeMismatch.
func ResultOf[T any](snap domain.Snapshot) Result[T] {
	r := Result[T]{
		Key:       snap.Key,
		Loading:   snap.Loading(),
		IsStale:   snap.IsStale(),
		Err:       snap.Err,
		State:     snap.State,
		UpdatedAt: snap.UpdatedAt,
	}
	if snap.Data == nil {
		return r
	}

	v, ok := snap.Data.(T)
	if !ok {
		err := zerr.Wrap(domain.ErrTypeMismatch, "cannot read cached value")
		err = zerr.With(err, "key", snap.Key)
		err = zerr.With(err, "type", fmt.Sprintf("%T", snap.Data))
		r.Err = err
		return r
	}
	r.Data = v
	r.HasData = true
	return r
}

// Get runs a typed query.
func Get[T any](ctx context.Context, e *Executor, key string, fetch FetcherOf[T], opts domain.QueryOptions) Result[T] {
	return ResultOf[T](e.Query(ctx, key, fetch.Erase(), opts))
}

// Prefetch warms a typed query.
func Prefetch[T any](ctx context.Context, e *Executor, key string, fetch FetcherOf[T], opts domain.QueryOptions) error {
	return e.Prefetch(ctx, key, fetch.Erase(), opts)
}
