package capture

import (
	"context"

	"github.com/pkg/errors"
)

// ErrSemaphoreClosed is returned by Wait once the poster has closed the
// semaphore and no post is pending.
var ErrSemaphoreClosed = errors.New("capture: semaphore closed")

// Semaphore is a binary semaphore whose Wait can be interrupted by a context.
// The period generator posts Start and waits on Stop; the stage does the
// reverse.
type Semaphore chan struct{}

func NewSemaphore() Semaphore {
	return make(Semaphore, 1)
}

// Post releases one waiter, blocking while a previous post is still pending.
func (s Semaphore) Post(ctx context.Context) error {
	select {
	case s <- struct{}{}:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

// TryPost posts unless a post is already pending. Never blocks.
func (s Semaphore) TryPost() {
	select {
	case s <- struct{}{}:
	default:
	}
}

func (s Semaphore) Wait(ctx context.Context) error {
	select {
	case _, ok := <-s:
		if !ok {
			return ErrSemaphoreClosed
		}
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

// Close tells the waiter no more posts will come. Only the posting side may
// close, and it must not post afterwards.
func (s Semaphore) Close() {
	close(s)
}
