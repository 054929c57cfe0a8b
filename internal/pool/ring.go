package pool

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"
)

// ErrClosed is returned by Acquire after Close.
var ErrClosed = errors.New("pool: closed")

/*
Ring is a fixed arena of reusable slots handed out in rotation. It replaces
the usual "buffers[count % depth]" ping-pong array: the producer acquires the
next slot, fills it, and passes it downstream; the consumer calls Release when
it is done reading. A slot is never handed out again before it has been
released, so a slow consumer stalls the producer instead of having its data
overwritten.

Exactly one goroutine may call Acquire and exactly one goroutine may release
slots. Slots are released in the order they were acquired, which keeps the
rotation order equal to the acquisition sequence.

	ring := pool.NewRing(4, func() []byte { return make([]byte, 1<<20) })
	slot, err := ring.Acquire(ctx)
	fill(slot.Value)
	out <- slot          // consumer calls slot.Release()
*/
type Ring[T any] struct {
	slots []Slot[T]

	// Indices of slots ready for reuse. Capacity equals the ring depth, so
	// Release never blocks.
	free chan int

	done   chan struct{}
	closed int32

	acquired uint64
}

// Slot is one element of a Ring.
type Slot[T any] struct {
	Value T

	ring  *Ring[T]
	index int
	seq   uint64
	held  int32
}

// NewRing allocates depth slots, initializing each with alloc.
func NewRing[T any](depth int, alloc func() T) *Ring[T] {
	if depth <= 0 {
		panic("pool.Ring: depth must be positive")
	}
	r := &Ring[T]{
		slots: make([]Slot[T], depth),
		free:  make(chan int, depth),
		done:  make(chan struct{}),
	}
	for i := range r.slots {
		r.slots[i] = Slot[T]{ring: r, index: i}
		if alloc != nil {
			r.slots[i].Value = alloc()
		}
		r.free <- i
	}
	return r
}

// Depth returns the number of slots.
func (r *Ring[T]) Depth() int {
	return len(r.slots)
}

// Available returns the number of slots that can be acquired without blocking.
func (r *Ring[T]) Available() int {
	return len(r.free)
}

// Acquire blocks until a slot is free, the context is done, or the ring is
// closed.
func (r *Ring[T]) Acquire(ctx context.Context) (*Slot[T], error) {
	select {
	case <-r.done:
		return nil, ErrClosed
	default:
	}

	select {
	case i := <-r.free:
		s := &r.slots[i]
		s.seq = r.acquired
		r.acquired++
		atomic.StoreInt32(&s.held, 1)
		return s, nil
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	case <-r.done:
		return nil, ErrClosed
	}
}

// Close wakes any blocked Acquire. Outstanding slots may still be released.
func (r *Ring[T]) Close() {
	if atomic.CompareAndSwapInt32(&r.closed, 0, 1) {
		close(r.done)
	}
}

// Index is the slot's position in the arena.
func (s *Slot[T]) Index() int {
	return s.index
}

// Seq is the acquisition sequence number of the slot's current tenancy.
func (s *Slot[T]) Seq() uint64 {
	return s.seq
}

// Release returns the slot to its ring. Releasing twice panics, since it
// would let the producer overwrite data a consumer may still be reading.
func (s *Slot[T]) Release() {
	if s == nil {
		return
	}
	if !atomic.CompareAndSwapInt32(&s.held, 1, 0) {
		panic("pool.Slot: released twice")
	}
	s.ring.free <- s.index
}
