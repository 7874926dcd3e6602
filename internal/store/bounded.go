package store

import (
	"context"
	"time"
)

// Bounded wraps a Tabular so every store call runs under a deadline. The
// underlying backends are synchronous I/O with no timeout of their own; this
// keeps a wedged backend from hanging a request forever.
func Bounded(inner Tabular, timeout time.Duration) Tabular {
	if timeout <= 0 {
		return inner
	}
	return &bounded{inner: inner, timeout: timeout}
}

type bounded struct {
	inner   Tabular
	timeout time.Duration
}

func (b *bounded) List(ctx context.Context, collection string) ([]Row, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.inner.List(ctx, collection)
}

func (b *bounded) Get(ctx context.Context, collection, id string) (Row, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.inner.Get(ctx, collection, id)
}

func (b *bounded) Append(ctx context.Context, collection string, row Row) (Row, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.inner.Append(ctx, collection, row)
}

func (b *bounded) Update(ctx context.Context, collection string, row Row) (Row, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.inner.Update(ctx, collection, row)
}

func (b *bounded) Delete(ctx context.Context, collection, id string) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.inner.Delete(ctx, collection, id)
}
