//////////////////////////////////////////////////////////////////////////////
//
// Pipeline wires the capture, encode and server stages together
//
// Copyright 2019 Lanikai Labs LLC. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package framecast

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/lanikai/framecast/internal/capture"
	"github.com/lanikai/framecast/internal/config"
	"github.com/lanikai/framecast/internal/encode"
	"github.com/lanikai/framecast/internal/logging"
	"github.com/lanikai/framecast/internal/media"
	"github.com/lanikai/framecast/internal/metrics"
	"github.com/lanikai/framecast/internal/monitor"
	"github.com/lanikai/framecast/internal/profiler"
	"github.com/lanikai/framecast/internal/queue"
	"github.com/lanikai/framecast/internal/rt"
	"github.com/lanikai/framecast/internal/transport"
)

var log = logging.DefaultLogger.WithTag("framecast")

// Room for the PPM header and comments, or JPEG overhead on noisy frames.
const payloadSlack = 64 * 1024

/*
Pipeline runs the capture -> encode -> server chain:

	frame source -> capture -> /frame_queue -> encode -> /server_queue -> server -> TCP client
	                                             |
	                                             +-> capture_NNNN.<ext> on disk

A period generator releases the capture stage at a fixed rate. Every stage
shares one cancellable context; the first stage to fail cancels it with its
error as the cause, and every other stage unwinds. When the configured number
of frames has been captured, the stages drain their queues and exit in order.

	p, err := framecast.New(cfg, nil)
	if err != nil { ... }        // setup failure
	if err := p.Start(ctx); err != nil { ... }
	err = p.Wait()               // nil after a clean finish or Stop
*/
type Pipeline struct {
	cfg *config.Config
	src media.FrameSource
	ns  *queue.Namespace

	capture *capture.Stage
	encode  *encode.Stage
	server  *transport.Server
	monitor *monitor.Monitor

	ctx    context.Context
	cancel context.CancelCauseFunc
	wg     sync.WaitGroup

	waitOnce sync.Once
	waitErr  error
}

// New performs every setup step that can fail: it opens the frame source
// (unless src is given), creates both queues, the output directory and the
// listening socket. Nothing runs until Start.
//
// The pipeline owns src from here on, and closes it on failure or in Wait.
func New(cfg *config.Config, src media.FrameSource) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	if err := logging.Configure(cfg.LogLevel); err != nil {
		return nil, errors.Wrap(err, "loglevel")
	}

	p := &Pipeline{cfg: cfg, ns: queue.DefaultNamespace, src: src}
	if err := p.setup(); err != nil {
		p.release()
		return nil, err
	}

	log.High("Pipeline ready: %dx%d every %v from %s, %s into %s, serving on %v",
		cfg.Capture.Width, cfg.Capture.Height, cfg.Capture.Period, cfg.Source,
		cfg.Encode.Format, p.encode.Dir(), p.server.Addr())
	return p, nil
}

func (p *Pipeline) setup() (err error) {
	cfg := p.cfg
	if p.src == nil {
		if p.src, err = media.OpenSource(cfg.Source); err != nil {
			return errors.Wrapf(err, "open source %q", cfg.Source)
		}
	}

	c, e, q := cfg.Capture, cfg.Encode, cfg.Queue
	frameSize := c.Width * c.Height * media.BytesPerPixel

	frames, err := queue.Create[capture.FrameRecord](p.ns, q.FrameName, queue.Attr{Depth: q.FrameDepth, MaxMsgSize: frameSize})
	if err != nil {
		return err
	}
	payloads, err := queue.Create[encode.Payload](p.ns, q.ServerName, queue.Attr{Depth: q.ServerDepth, MaxMsgSize: frameSize + payloadSlack})
	if err != nil {
		return err
	}
	frameTx, _ := frames.Sender()
	frameRx, _ := frames.Receiver()
	payloadTx, _ := payloads.Sender()
	payloadRx, _ := payloads.Receiver()

	host, err := rt.UnameComment()
	if err != nil {
		return errors.Wrap(err, "uname")
	}
	prof := profiler.NewPool(profiler.DefaultPoolSize)

	p.capture, err = capture.NewStage(capture.Config{
		Width:        c.Width,
		Height:       c.Height,
		WarmupFrames: c.WarmupFrames,
		PoolDepth:    c.PoolDepth,
	}, p.src, frameTx, prof)
	if err != nil {
		return err
	}

	p.encode, err = encode.NewStage(encode.Config{
		Format:           e.Format,
		Dir:              e.Dir,
		MaxFrames:        e.MaxFrames,
		PayloadPoolDepth: e.PayloadPoolDepth,
		Gamma:            e.Gamma,
		JPEGQuality:      e.JPEGQuality,
	}, host, frameRx, payloadTx, prof)
	if err != nil {
		return err
	}

	p.server, err = transport.Listen(transport.ServerConfig{
		Addr:            cfg.Server.Addr,
		WriteTimeout:    cfg.Server.WriteTimeout,
		DiscardWhenIdle: cfg.Server.DiscardWhenIdle,
	}, payloadRx)
	if err != nil {
		return err
	}

	if cfg.Monitor.Addr != "" {
		p.monitor = monitor.New(cfg.Monitor.Addr, p.health)
		if err := p.monitor.Listen(); err != nil {
			return errors.Wrap(err, "monitor")
		}
		if e.Format == "jpeg" {
			p.encode.OnEncoded = p.monitor.Publish
		}
	}
	return nil
}

// ServerAddr is the address the transport server listens on.
func (p *Pipeline) ServerAddr() string {
	return p.server.Addr().String()
}

// MonitorAddr is the monitor's bound address, or nil when it is disabled.
func (p *Pipeline) MonitorAddr() net.Addr {
	if p.monitor == nil {
		return nil
	}
	return p.monitor.Addr()
}

// OutputDir is where encoded files are written.
func (p *Pipeline) OutputDir() string {
	return p.encode.Dir()
}

// Start launches every stage and the period generator. With Realtime set, a
// failure to switch any thread to SCHED_FIFO stops the pipeline and is
// returned here.
func (p *Pipeline) Start(ctx context.Context) error {
	if p.ctx != nil {
		return errAlreadyStarted
	}
	p.ctx, p.cancel = context.WithCancelCause(ctx)

	ready := make(chan error, 4)
	p.spawn("server", rt.Server, ready, p.server.Run)
	p.spawn("encode", rt.Encode, ready, p.encode.Run)
	p.spawn("capture", rt.Capture, ready, p.capture.Run)
	p.spawn("controller", rt.Controller, ready, p.generate)

	var setupErr error
	for i := 0; i < 4; i++ {
		if err := <-ready; err != nil && setupErr == nil {
			setupErr = err
		}
	}
	if setupErr != nil {
		p.cancel(setupErr)
		p.Wait()
		return setupErr
	}

	if p.monitor != nil {
		go func() {
			if err := p.monitor.ListenAndServe(); err != nil {
				log.Error("Monitor: %v", err)
			}
		}()
	}
	return nil
}

// spawn runs fn on its own goroutine, pinned to a real-time thread when
// configured. The pin result is reported on ready before fn starts.
func (p *Pipeline) spawn(name string, priority int, ready chan<- error, fn func(context.Context) error) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		if p.cfg.Realtime {
			release, err := rt.Pin(priority)
			defer release()
			if err != nil {
				ready <- errors.Wrapf(err, "%s thread", name)
				return
			}
		}
		ready <- nil

		if err := fn(p.ctx); err != nil {
			p.cancel(errors.Wrapf(err, "%s stage", name))
			return
		}
		log.Medium("%s stage finished", name)
	}()
}

// generate is the period generator: release one capture per period until the
// frame budget is spent, then close the start semaphore so the stages drain.
func (p *Pipeline) generate(ctx context.Context) error {
	st := p.capture
	defer st.Start.Close()

	c := p.cfg.Capture
	sleep := c.Period - c.Slack
	timer := time.NewTimer(sleep)
	defer timer.Stop()

	last := time.Now()
	for n := 1; c.NumFrames == 0 || n <= c.NumFrames; n++ {
		if err := st.Start.Post(ctx); err != nil {
			return nil
		}

		timer.Reset(sleep)
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil
		}

		if err := st.Stop.Wait(ctx); err != nil {
			return nil
		}
		now := time.Now()
		metrics.CycleTime.Observe(now.Sub(last).Seconds())
		log.Low("Cycle %d took %v", n, now.Sub(last))
		last = now
	}
	log.Medium("Released %d frames, draining", c.NumFrames)
	return nil
}

// Stop aborts the pipeline. Wait then returns nil.
func (p *Pipeline) Stop() {
	if p.cancel != nil {
		p.cancel(ErrStopped)
	}
}

// Wait blocks until every stage has exited, releases the pipeline's resources
// and returns the error that aborted it, or nil after a clean finish or Stop.
func (p *Pipeline) Wait() error {
	if p.ctx == nil {
		return errNotStarted
	}
	p.waitOnce.Do(func() {
		p.wg.Wait()
		p.cancel(nil)

		if cause := context.Cause(p.ctx); cause != ErrStopped && !p.parentDone() {
			p.waitErr = cause
		}
		if p.waitErr != nil {
			log.Error("Pipeline aborted: %v", p.waitErr)
		} else {
			log.High("Pipeline finished, %d frames captured", p.capture.Captured())
		}
		p.release()
	})
	return p.waitErr
}

// parentDone reports whether the context given to Start ended, which is a
// normal way to shut down (e.g. SIGINT).
func (p *Pipeline) parentDone() bool {
	cause := context.Cause(p.ctx)
	return cause == context.Canceled || cause == context.DeadlineExceeded
}

// health backs the monitor's /healthz: unhealthy once a stage has failed.
func (p *Pipeline) health() error {
	if p.ctx == nil || p.ctx.Err() == nil {
		return nil
	}
	if cause := context.Cause(p.ctx); cause != ErrStopped && !p.parentDone() {
		return cause
	}
	return errors.New("pipeline stopped")
}

func (p *Pipeline) release() {
	if p.monitor != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		p.monitor.Shutdown(ctx)
		cancel()
	}
	if p.server != nil {
		p.server.Close()
	}
	for _, name := range []string{p.cfg.Queue.FrameName, p.cfg.Queue.ServerName} {
		if err := p.ns.Unlink(name); err != nil && errors.Cause(err) != queue.ErrNotFound {
			log.Error("Unlink %s: %v", name, err)
		}
	}
	if p.src != nil {
		if err := p.src.Close(); err != nil {
			log.Error("Close source: %v", err)
		}
	}
}
