package capture

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/lanikai/framecast/internal/media"
	"github.com/lanikai/framecast/internal/metrics"
	"github.com/lanikai/framecast/internal/pool"
	"github.com/lanikai/framecast/internal/profiler"
	"github.com/lanikai/framecast/internal/queue"
)

const (
	DefaultWarmupFrames = 40
	DefaultPoolDepth    = 4
)

type Config struct {
	Width, Height int

	// Frames read and thrown away before the first release, while the camera
	// settles exposure and white balance.
	WarmupFrames int

	// Number of image buffers. Must be at least the frame channel depth.
	PoolDepth int
}

/*
Stage pulls one frame from a FrameSource each time the period generator posts
Start, queues it for encoding, and posts Stop. It owns the image pool; the
encoder releases each slot once it has read the image.

	st, err := capture.NewStage(cfg, src, tx, prof)
	go func() { errc <- st.Run(ctx) }()
	for {
		st.Start.Post(ctx)
		time.Sleep(period - slack)
		st.Stop.Wait(ctx)
	}

Run returns nil when ctx is cancelled, or the error that should abort the
pipeline. Either way the frame channel is closed on return.
*/
type Stage struct {
	Start Semaphore
	Stop  Semaphore

	cfg   Config
	src   media.FrameSource
	out   *queue.Sender[FrameRecord]
	ring  *pool.Ring[*media.Image]
	prof  *profiler.Pool
	timer profiler.Handle

	state int32
	seq   uint64
}

func NewStage(cfg Config, src media.FrameSource, out *queue.Sender[FrameRecord], prof *profiler.Pool) (*Stage, error) {
	if cfg.PoolDepth <= 0 {
		cfg.PoolDepth = DefaultPoolDepth
	}
	if cfg.WarmupFrames < 0 {
		return nil, errors.Errorf("capture: negative warmup count %d", cfg.WarmupFrames)
	}
	if depth := out.Queue().Attr().Depth; depth > cfg.PoolDepth {
		return nil, errors.Errorf("capture: channel depth %d exceeds pool depth %d", depth, cfg.PoolDepth)
	}
	if err := src.Configure(cfg.Width, cfg.Height); err != nil {
		return nil, errors.Wrapf(err, "configure source for %dx%d", cfg.Width, cfg.Height)
	}
	timer, err := prof.Acquire()
	if err != nil {
		return nil, errors.Wrap(err, "capture timer")
	}

	return &Stage{
		Start: NewSemaphore(),
		Stop:  NewSemaphore(),
		cfg:   cfg,
		src:   src,
		out:   out,
		ring: pool.NewRing(cfg.PoolDepth, func() *media.Image {
			return media.NewImage(cfg.Width, cfg.Height)
		}),
		prof:  prof,
		timer: timer,
	}, nil
}

func (st *Stage) State() State {
	return State(atomic.LoadInt32(&st.state))
}

func (st *Stage) setState(s State) {
	old := State(atomic.SwapInt32(&st.state, int32(s)))
	log.Low("%v -> %v", old, s)
}

// Captured returns the number of frames queued so far.
func (st *Stage) Captured() uint64 {
	return atomic.LoadUint64(&st.seq)
}

func (st *Stage) Run(ctx context.Context) (err error) {
	defer func() {
		st.setState(Draining)
		st.out.Close()
		st.ring.Close()
		// The period generator may be waiting for this cycle to finish.
		st.Stop.TryPost()
		st.setState(Terminated)
		if err != nil {
			log.Error("Capture stage failed after %d frames: %v", st.Captured(), err)
		}
	}()

	if err := st.warmup(ctx); err != nil {
		return err
	}

	st.setState(Running)
	for {
		// A closed Start semaphore ends the stream cleanly.
		if err := st.Start.Wait(ctx); err != nil {
			return nil
		}
		if err := st.captureOne(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := st.Stop.Post(ctx); err != nil {
			return nil
		}
	}
}

func (st *Stage) warmup(ctx context.Context) error {
	if st.cfg.WarmupFrames == 0 {
		return nil
	}
	st.setState(Warmup)

	slot, err := st.ring.Acquire(ctx)
	if err != nil {
		return nil
	}
	defer slot.Release()

	for i := 0; i < st.cfg.WarmupFrames; i++ {
		if ctx.Err() != nil {
			return nil
		}
		if err := st.src.AcquireFrame(slot.Value); err != nil {
			return errors.Wrapf(err, "warmup frame %d", i+1)
		}
	}
	log.Medium("Discarded %d warmup frames", st.cfg.WarmupFrames)
	return nil
}

func (st *Stage) captureOne(ctx context.Context) error {
	// A failed clock read only costs the latency sample.
	timed := st.prof.Start(st.timer) == nil

	slot, err := st.ring.Acquire(ctx)
	if err != nil {
		return err
	}
	if err := st.src.AcquireFrame(slot.Value); err != nil {
		slot.Release()
		return errors.Wrap(err, "acquire frame")
	}

	rec := FrameRecord{
		Seq:       atomic.AddUint64(&st.seq, 1),
		Slot:      slot,
		Timestamp: time.Now(),
	}
	if err := st.out.Send(ctx, rec); err != nil {
		slot.Release()
		return errors.Wrapf(err, "queue frame %d", rec.Seq)
	}
	metrics.FramesCaptured.Inc()
	metrics.SetQueueDepth(st.out.Queue().Name(), st.out.Queue().Len())

	var d time.Duration
	if timed && st.prof.Stop(st.timer) == nil {
		d = st.prof.Duration(st.timer)
		metrics.ObserveLatency("capture", d)
	}
	log.Low("Frame %d captured in %v", rec.Seq, d)
	return nil
}
