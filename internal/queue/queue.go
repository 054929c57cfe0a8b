package queue

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Sizer is implemented by queue messages. Size is checked against the queue's
// maximum message size on every send.
type Sizer interface {
	Size() int
}

// Attr holds the fixed attributes of a queue.
type Attr struct {
	// Maximum number of queued messages. Send blocks when the queue is full.
	Depth int

	// Maximum message size in bytes. Larger messages are rejected; smaller
	// ones are accepted as is.
	MaxMsgSize int
}

func (a Attr) validate() error {
	if a.Depth <= 0 || a.MaxMsgSize <= 0 {
		return errors.Wrapf(ErrInvalidAttr, "depth=%d msgsize=%d", a.Depth, a.MaxMsgSize)
	}
	return nil
}

/*
Queue is a bounded FIFO connecting exactly one producer to exactly one
consumer. Each side obtains its handle once, through Sender() and Receiver();
the handles are the only way to move messages, so the single-writer and
single-reader discipline holds by construction.

Send blocks while the queue is full (backpressure). Receive blocks while it is
empty. Closing the Sender is the poison message: the Receiver drains whatever
is left and then gets ErrClosed. Both sides also return as soon as their
context is done, so no stage can be left blocked on a queue after an abort.
*/
type Queue[T Sizer] struct {
	name string
	attr Attr
	ns   *Namespace

	ch chan T

	senderTaken   int32
	receiverTaken int32

	closeOnce sync.Once
	closed    int32
	unlinked  int32
}

func newQueue[T Sizer](ns *Namespace, name string, attr Attr) *Queue[T] {
	return &Queue[T]{
		name: name,
		attr: attr,
		ns:   ns,
		ch:   make(chan T, attr.Depth),
	}
}

func (q *Queue[T]) Name() string { return q.name }

func (q *Queue[T]) Attr() Attr { return q.attr }

// Len returns the number of messages currently queued.
func (q *Queue[T]) Len() int { return len(q.ch) }

// Unlinked reports whether the queue has been removed from its namespace.
func (q *Queue[T]) Unlinked() bool {
	return atomic.LoadInt32(&q.unlinked) != 0
}

func (q *Queue[T]) unlink() {
	atomic.StoreInt32(&q.unlinked, 1)
}

// Sender returns the queue's write handle. It can be obtained only once.
func (q *Queue[T]) Sender() (*Sender[T], error) {
	if !atomic.CompareAndSwapInt32(&q.senderTaken, 0, 1) {
		return nil, errors.Wrapf(ErrHandleTaken, "%s sender", q.name)
	}
	return &Sender[T]{q: q}, nil
}

// Receiver returns the queue's read handle. It can be obtained only once.
func (q *Queue[T]) Receiver() (*Receiver[T], error) {
	if !atomic.CompareAndSwapInt32(&q.receiverTaken, 0, 1) {
		return nil, errors.Wrapf(ErrHandleTaken, "%s receiver", q.name)
	}
	return &Receiver[T]{q: q}, nil
}

// noCopy makes `go vet` flag handles copied by value.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Sender is the write end of a Queue. Not safe for concurrent use.
type Sender[T Sizer] struct {
	_ noCopy
	q *Queue[T]
}

func (s *Sender[T]) Queue() *Queue[T] { return s.q }

// Send enqueues msg, blocking while the queue is full.
func (s *Sender[T]) Send(ctx context.Context, msg T) error {
	if n := msg.Size(); n > s.q.attr.MaxMsgSize {
		return errors.Wrapf(ErrMessageSize, "%s: %d > %d", s.q.name, n, s.q.attr.MaxMsgSize)
	}
	if atomic.LoadInt32(&s.q.closed) != 0 {
		return ErrClosed
	}
	// Don't start a send that the abort already made pointless.
	if err := ctx.Err(); err != nil {
		return context.Cause(ctx)
	}

	select {
	case s.q.ch <- msg:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

// Close marks the end of the stream. Messages already queued are still
// delivered. Close is idempotent.
func (s *Sender[T]) Close() {
	s.q.closeOnce.Do(func() {
		atomic.StoreInt32(&s.q.closed, 1)
		close(s.q.ch)
	})
}

// Receiver is the read end of a Queue. Not safe for concurrent use.
type Receiver[T Sizer] struct {
	_ noCopy
	q *Queue[T]
}

func (r *Receiver[T]) Queue() *Queue[T] { return r.q }

// Receive dequeues the oldest message, blocking while the queue is empty.
// Returns ErrClosed once the sender has closed and the queue is drained.
func (r *Receiver[T]) Receive(ctx context.Context) (T, error) {
	select {
	case msg, ok := <-r.q.ch:
		if !ok {
			var zero T
			return zero, ErrClosed
		}
		return msg, nil
	case <-ctx.Done():
		var zero T
		return zero, context.Cause(ctx)
	}
}

// C exposes the receive side for use in select statements. The channel is
// closed when the sender closes the queue.
func (r *Receiver[T]) C() <-chan T {
	return r.q.ch
}
