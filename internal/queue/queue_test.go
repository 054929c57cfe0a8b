package queue

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type msg struct {
	n    int
	size int
}

func (m msg) Size() int { return m.size }

func newTestQueue(t *testing.T, depth int) (*Sender[msg], *Receiver[msg]) {
	t.Helper()
	q, err := Create[msg](NewNamespace(), "/test", Attr{Depth: depth, MaxMsgSize: 16})
	require.NoError(t, err)
	tx, err := q.Sender()
	require.NoError(t, err)
	rx, err := q.Receiver()
	require.NoError(t, err)
	return tx, rx
}

func TestBackpressure(t *testing.T) {
	ctx := context.Background()
	tx, rx := newTestQueue(t, 2)

	require.NoError(t, tx.Send(ctx, msg{n: 1}))
	require.NoError(t, tx.Send(ctx, msg{n: 2}))
	assert.Equal(t, 2, tx.Queue().Len())

	sent := make(chan error)
	go func() { sent <- tx.Send(ctx, msg{n: 3}) }()

	select {
	case <-sent:
		t.Fatal("send into a full queue did not block")
	case <-time.After(20 * time.Millisecond):
	}

	m, err := rx.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, m.n)

	select {
	case err := <-sent:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("send did not unblock after a receive")
	}

	for _, want := range []int{2, 3} {
		m, err := rx.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, m.n)
	}
}

func TestOrderingUnderConcurrency(t *testing.T) {
	const count = 10000
	ctx := context.Background()
	tx, rx := newTestQueue(t, 4)

	go func() {
		for i := 0; i < count; i++ {
			if err := tx.Send(ctx, msg{n: i}); err != nil {
				panic(err)
			}
		}
		tx.Close()
	}()

	next := 0
	for {
		m, err := rx.Receive(ctx)
		if err == ErrClosed {
			break
		}
		require.NoError(t, err)
		require.Equal(t, next, m.n)
		next++
	}
	assert.Equal(t, count, next)
}

func TestCloseDrainsThenReportsClosed(t *testing.T) {
	ctx := context.Background()
	tx, rx := newTestQueue(t, 4)

	require.NoError(t, tx.Send(ctx, msg{n: 7}))
	tx.Close()
	tx.Close()

	assert.Equal(t, ErrClosed, tx.Send(ctx, msg{n: 8}))

	m, err := rx.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, m.n)

	_, err = rx.Receive(ctx)
	assert.Equal(t, ErrClosed, err)
}

func TestCancelUnblocks(t *testing.T) {
	tx, rx := newTestQueue(t, 1)
	abort := errors.New("abort")

	ctx, cancel := context.WithCancelCause(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel(abort)
	}()

	_, err := rx.Receive(ctx)
	assert.Equal(t, abort, err)

	require.NoError(t, tx.Send(context.Background(), msg{}))
	assert.Equal(t, abort, tx.Send(ctx, msg{}))
}

func TestMessageSizeLimit(t *testing.T) {
	ctx := context.Background()
	tx, rx := newTestQueue(t, 2)

	err := tx.Send(ctx, msg{size: 17})
	assert.Equal(t, ErrMessageSize, errors.Cause(err))
	assert.Equal(t, 0, rx.Queue().Len())

	assert.NoError(t, tx.Send(ctx, msg{size: 16}))
	assert.NoError(t, tx.Send(ctx, msg{size: 1}))
}

func TestHandlesAreSingleUse(t *testing.T) {
	q, err := Create[msg](NewNamespace(), "/once", Attr{Depth: 1, MaxMsgSize: 1})
	require.NoError(t, err)

	_, err = q.Sender()
	require.NoError(t, err)
	_, err = q.Sender()
	assert.Equal(t, ErrHandleTaken, errors.Cause(err))

	_, err = q.Receiver()
	require.NoError(t, err)
	_, err = q.Receiver()
	assert.Equal(t, ErrHandleTaken, errors.Cause(err))
}

func TestNamespace(t *testing.T) {
	ns := NewNamespace()
	attr := Attr{Depth: 1, MaxMsgSize: 1}

	for _, bad := range []string{"", "/", "frame_queue", "/a/b"} {
		_, err := Create[msg](ns, bad, attr)
		assert.Equal(t, ErrInvalidName, errors.Cause(err), bad)
	}
	_, err := Create[msg](ns, "/q", Attr{})
	assert.Equal(t, ErrInvalidAttr, errors.Cause(err))

	stale, err := Create[msg](ns, "/q", attr)
	require.NoError(t, err)
	fresh, err := Create[msg](ns, "/q", attr)
	require.NoError(t, err)
	assert.True(t, stale.Unlinked())
	assert.False(t, fresh.Unlinked())

	opened, err := Open[msg](ns, "/q")
	require.NoError(t, err)
	assert.Same(t, fresh, opened)

	type other struct{ msg }
	_, err = Open[other](ns, "/q")
	assert.Equal(t, ErrTypeMismatch, errors.Cause(err))

	assert.Equal(t, []string{"/q"}, ns.Names())
	require.NoError(t, ns.Unlink("/q"))
	assert.Equal(t, ErrNotFound, errors.Cause(ns.Unlink("/q")))
	_, err = Open[msg](ns, "/q")
	assert.Equal(t, ErrNotFound, errors.Cause(err))
}
