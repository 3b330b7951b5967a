package sessioncache

import "context"

// Future is the pending result of an async cache call.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) resolve(v T, err error) {
	f.val, f.err = v, err
	close(f.done)
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Wait blocks until the call completes or ctx is done. Giving up on the wait
// does not abort the call.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result blocks until the call completes.
func (f *Future[T]) Result() (T, error) {
	<-f.done
	return f.val, f.err
}

// dispatch runs fn on a worker goroutine bounded by c.async. If ctx is done
// before fn starts, fn never runs and the future carries ctx.Err(). A started
// fn sees a context without cancellation.
func dispatch[T any](c *cache, ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := newFuture[T]()
	var zero T
	if err := ctx.Err(); err != nil {
		f.resolve(zero, err)
		return f
	}
	go func() {
		if err := c.async.Acquire(ctx, 1); err != nil {
			f.resolve(zero, err)
			return
		}
		defer c.async.Release(1)
		if err := ctx.Err(); err != nil {
			f.resolve(zero, err)
			return
		}
		v, err := fn(context.WithoutCancel(ctx))
		f.resolve(v, err)
	}()
	return f
}

func (c *cache) GetAsync(ctx context.Context, key string) *Future[Lookup] {
	return dispatch(c, ctx, func(ctx context.Context) (Lookup, error) {
		v, ok, err := c.Get(ctx, key)
		return Lookup{Value: v, Found: ok}, err
	})
}

func (c *cache) SetAsync(ctx context.Context, key string, value []byte, opts *EntryOptions) *Future[struct{}] {
	return dispatch(c, ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.Set(ctx, key, value, opts)
	})
}

func (c *cache) RefreshAsync(ctx context.Context, key string) *Future[struct{}] {
	return dispatch(c, ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.Refresh(ctx, key)
	})
}

func (c *cache) RemoveAsync(ctx context.Context, key string) *Future[struct{}] {
	return dispatch(c, ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.Remove(ctx, key)
	})
}
