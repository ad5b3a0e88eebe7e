package flavors

import (
	"context"

	"github.com/reactivestate/atoms"
)

// Task is the asynchronous flavor: Produce runs run synchronously to seed
// an initial value, while Refresh re-invokes run with the cancellation
// context atoms.Refresh is called with, so long-running work can observe
// cooperative cancellation per spec.md §5.
type Task[T any] struct {
	atoms.BaseProducer[T]
	run func(ctx context.Context, rctx *atoms.ResolveCtx) (T, error)
}

// NewTask wraps run as a Task producer. The initial Produce call runs with
// context.Background(), matching the synchronous (non-suspending) contract
// of every kernel operation other than Refresh (§5's "suspension points").
func NewTask[T any](run func(ctx context.Context, rctx *atoms.ResolveCtx) (T, error)) *Task[T] {
	return &Task[T]{run: run}
}

func (p *Task[T]) Produce(rctx *atoms.ResolveCtx) (T, error) {
	return p.run(context.Background(), rctx)
}

func (p *Task[T]) Refresh(ctx context.Context, rctx *atoms.ResolveCtx) (T, error) {
	return p.run(ctx, rctx)
}
