//////////////////////////////////////////////////////////////////////////////
//
// Nanosecond interval timers for stage latency
//
// Copyright 2019 Lanikai Labs LLC. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package profiler

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const nanosPerSecond = 1000000000

// DefaultPoolSize is enough for one timer per pipeline stage plus the
// controller, with room to spare.
const DefaultPoolSize = 8

// ErrExhausted is returned by Acquire once every handle has been handed out.
// Handles are never returned to the pool, so callers acquire one per stage at
// startup and keep it for the life of the process.
var ErrExhausted = errors.New("profiler: timer pool exhausted")

// Handle identifies one timer in a Pool.
type Handle uint8

type timer struct {
	start unix.Timespec
	stop  unix.Timespec
}

// Pool is a fixed set of interval timers. Acquire is safe for concurrent use.
// Start/Stop/Elapsed are not synchronized: each handle must be owned by a
// single goroutine.
type Pool struct {
	timers []timer

	mu   sync.Mutex
	next int
}

func NewPool(size int) *Pool {
	if size <= 0 || size > 256 {
		panic("profiler: pool size must be in 1..256")
	}
	return &Pool{timers: make([]timer, size)}
}

// Acquire hands out the next unused timer.
func (p *Pool) Acquire() (Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.next >= len(p.timers) {
		return 0, ErrExhausted
	}
	h := Handle(p.next)
	p.next++
	return h, nil
}

// MustAcquire is like Acquire but panics if the pool is exhausted.
func (p *Pool) MustAcquire() Handle {
	h, err := p.Acquire()
	if err != nil {
		panic(err)
	}
	return h
}

func (p *Pool) Start(h Handle) error {
	return unix.ClockGettime(unix.CLOCK_MONOTONIC, &p.timers[h].start)
}

func (p *Pool) Stop(h Handle) error {
	return unix.ClockGettime(unix.CLOCK_MONOTONIC, &p.timers[h].stop)
}

// Reset zeroes both samples.
func (p *Pool) Reset(h Handle) {
	p.timers[h] = timer{}
}

// Elapsed returns stop - start. The nanosecond part is always in [0, 1e9).
func (p *Pool) Elapsed(h Handle) (sec, nsec int64) {
	t := &p.timers[h]
	return diff(t.start, t.stop)
}

// Duration is Elapsed as a time.Duration.
func (p *Pool) Duration(h Handle) time.Duration {
	sec, nsec := p.Elapsed(h)
	return time.Duration(sec)*time.Second + time.Duration(nsec)
}

func diff(start, stop unix.Timespec) (sec, nsec int64) {
	sec = int64(stop.Sec) - int64(start.Sec)
	nsec = int64(stop.Nsec) - int64(start.Nsec)
	if nsec < 0 {
		// Borrow a second.
		sec--
		nsec += nanosPerSecond
	}
	return
}
