package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestDiffBorrowsSecond(t *testing.T) {
	cases := []struct {
		start, stop unix.Timespec
		sec, nsec   int64
	}{
		{unix.Timespec{Sec: 1, Nsec: 100}, unix.Timespec{Sec: 1, Nsec: 300}, 0, 200},
		{unix.Timespec{Sec: 1, Nsec: 900000000}, unix.Timespec{Sec: 2, Nsec: 100000000}, 0, 200000000},
		{unix.Timespec{Sec: 5, Nsec: 999999999}, unix.Timespec{Sec: 8, Nsec: 0}, 2, 1},
		{unix.Timespec{Sec: 3, Nsec: 0}, unix.Timespec{Sec: 3, Nsec: 0}, 0, 0},
	}
	for _, c := range cases {
		sec, nsec := diff(c.start, c.stop)
		assert.Equal(t, c.sec, sec)
		assert.Equal(t, c.nsec, nsec)
		assert.True(t, nsec >= 0 && nsec < nanosPerSecond)
	}
}

func TestAcquireExhausts(t *testing.T) {
	p := NewPool(2)

	a, err := p.Acquire()
	require.NoError(t, err)
	b, err := p.Acquire()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	_, err = p.Acquire()
	assert.Equal(t, ErrExhausted, err)
}

func TestMeasuresSleep(t *testing.T) {
	p := NewPool(1)
	h := p.MustAcquire()

	require.NoError(t, p.Start(h))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, p.Stop(h))

	d := p.Duration(h)
	assert.True(t, d >= 5*time.Millisecond, "elapsed %v", d)
	assert.True(t, d < time.Second, "elapsed %v", d)

	p.Reset(h)
	sec, nsec := p.Elapsed(h)
	assert.Zero(t, sec)
	assert.Zero(t, nsec)
}
