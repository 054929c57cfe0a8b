package capture

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanikai/framecast/internal/media"
	"github.com/lanikai/framecast/internal/profiler"
	"github.com/lanikai/framecast/internal/queue"
)

const testWidth, testHeight = 8, 4

func newTestStage(t *testing.T, src media.FrameSource, cfg Config, depth int) (*Stage, *queue.Receiver[FrameRecord]) {
	t.Helper()
	q, err := queue.Create[FrameRecord](queue.NewNamespace(), "/frame_queue",
		queue.Attr{Depth: depth, MaxMsgSize: testWidth * testHeight * media.BytesPerPixel})
	require.NoError(t, err)
	tx, err := q.Sender()
	require.NoError(t, err)
	rx, err := q.Receiver()
	require.NoError(t, err)

	cfg.Width, cfg.Height = testWidth, testHeight
	st, err := NewStage(cfg, src, tx, profiler.NewPool(1))
	require.NoError(t, err)
	return st, rx
}

func cycle(t *testing.T, ctx context.Context, st *Stage) {
	t.Helper()
	require.NoError(t, st.Start.Post(ctx))
	require.NoError(t, st.Stop.Wait(ctx))
}

func TestStageCapturesInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := media.NewPatternSource()
	st, rx := newTestStage(t, src, Config{WarmupFrames: 3, PoolDepth: 4}, 4)
	assert.Equal(t, Init, st.State())

	errc := make(chan error, 1)
	go func() { errc <- st.Run(ctx) }()

	want := media.NewImage(testWidth, testHeight)
	for i := 1; i <= 6; i++ {
		cycle(t, ctx, st)
		rec, err := rx.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(i), rec.Seq)
		assert.False(t, rec.Timestamp.IsZero())

		// Warmup frames were pulled from the source first.
		media.FillPattern(want, 3+i-1)
		assert.Equal(t, want.Pix, rec.Image().Pix)
		rec.Release()
	}
	assert.Equal(t, Running, st.State())
	assert.Equal(t, 9, src.Count())

	cancel()
	assert.NoError(t, <-errc)
	assert.Equal(t, Terminated, st.State())

	_, err := rx.Receive(context.Background())
	assert.Equal(t, queue.ErrClosed, err)
}

func TestStageBlocksOnUnreleasedSlots(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, rx := newTestStage(t, media.NewPatternSource(), Config{PoolDepth: 2}, 2)
	go st.Run(ctx)

	cycle(t, ctx, st)
	cycle(t, ctx, st)

	// Both slots are held by unreleased records, so the third cycle stalls.
	require.NoError(t, st.Start.Post(ctx))
	waitCtx, waitCancel := context.WithTimeout(ctx, 30*time.Millisecond)
	assert.Error(t, st.Stop.Wait(waitCtx))
	waitCancel()

	first, err := rx.Receive(ctx)
	require.NoError(t, err)
	first.Release()
	require.NoError(t, st.Stop.Wait(ctx))
	assert.Equal(t, uint64(3), st.Captured())
}

func TestStageSourceFailure(t *testing.T) {
	ctx := context.Background()

	n := 1
	st, rx := newTestStage(t, &media.PatternSource{FailAfter: &n}, Config{PoolDepth: 2}, 2)
	errc := make(chan error, 1)
	go func() { errc <- st.Run(ctx) }()

	cycle(t, ctx, st)
	rec, err := rx.Receive(ctx)
	require.NoError(t, err)
	rec.Release()

	// The failed cycle still posts Stop so the generator is not stranded.
	require.NoError(t, st.Start.Post(ctx))
	require.NoError(t, st.Stop.Wait(ctx))

	err = <-errc
	assert.Equal(t, media.ErrNoFrame, errors.Cause(err))

	_, err = rx.Receive(ctx)
	assert.Equal(t, queue.ErrClosed, err)
}

func TestStageRejectsShallowPool(t *testing.T) {
	q, err := queue.Create[FrameRecord](queue.NewNamespace(), "/frame_queue", queue.Attr{Depth: 4, MaxMsgSize: 1})
	require.NoError(t, err)
	tx, err := q.Sender()
	require.NoError(t, err)

	_, err = NewStage(Config{Width: 1, Height: 1, PoolDepth: 2}, media.NewPatternSource(), tx, profiler.NewPool(1))
	assert.Error(t, err)
}

func TestStageNeedsProfilerHandle(t *testing.T) {
	q, err := queue.Create[FrameRecord](queue.NewNamespace(), "/frame_queue", queue.Attr{Depth: 1, MaxMsgSize: 3})
	require.NoError(t, err)
	tx, err := q.Sender()
	require.NoError(t, err)

	prof := profiler.NewPool(1)
	prof.MustAcquire()
	_, err = NewStage(Config{Width: 1, Height: 1}, media.NewPatternSource(), tx, prof)
	assert.Equal(t, profiler.ErrExhausted, errors.Cause(err))
}

func TestSemaphore(t *testing.T) {
	s := NewSemaphore()
	s.TryPost()
	s.TryPost()
	assert.NoError(t, s.Wait(context.Background()))

	ctx, cancel := context.WithCancelCause(context.Background())
	cause := errors.New("abort")
	cancel(cause)
	assert.Equal(t, cause, s.Wait(ctx))

	s.TryPost()
	assert.Equal(t, cause, s.Post(ctx))

	assert.NoError(t, s.Wait(context.Background()))
	s.Close()
	assert.Equal(t, ErrSemaphoreClosed, s.Wait(context.Background()))
}

func TestStageEndsWhenStartCloses(t *testing.T) {
	ctx := context.Background()
	st, rx := newTestStage(t, media.NewPatternSource(), Config{PoolDepth: 2}, 2)
	errc := make(chan error, 1)
	go func() { errc <- st.Run(ctx) }()

	cycle(t, ctx, st)
	st.Start.Close()
	assert.NoError(t, <-errc)

	rec, err := rx.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), rec.Seq)
	rec.Release()
	_, err = rx.Receive(ctx)
	assert.Equal(t, queue.ErrClosed, err)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "warmup", Warmup.String())
	assert.Equal(t, "State(9)", State(9).String())
}
