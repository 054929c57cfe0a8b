package encode

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/lanikai/framecast/internal/capture"
	"github.com/lanikai/framecast/internal/logging"
	"github.com/lanikai/framecast/internal/metrics"
	"github.com/lanikai/framecast/internal/pool"
	"github.com/lanikai/framecast/internal/profiler"
	"github.com/lanikai/framecast/internal/queue"
)

var log = logging.DefaultLogger.WithTag("encode")

const (
	DefaultMaxFrames        = 100
	DefaultPayloadPoolDepth = 4

	filePerm = 0777
	dirPerm  = 0777
)

type Config struct {
	// "jpeg" or "ppm".
	Format string

	// Output directory. Defaults to "capture_<format>".
	Dir string

	// Files kept besides the newest one.
	MaxFrames int

	// Encoded buffers in flight between this stage and the server.
	PayloadPoolDepth int

	// PPM only.
	Gamma bool

	// JPEG only. Zero selects media.DefaultJPEGQuality.
	JPEGQuality int
}

func (cfg *Config) setDefaults() {
	if cfg.Dir == "" {
		cfg.Dir = "capture_" + cfg.Format
	}
	if cfg.PayloadPoolDepth <= 0 {
		cfg.PayloadPoolDepth = DefaultPayloadPoolDepth
	}
}

/*
Stage turns frame records into image files. For each record it encodes the
frame into the next payload buffer, writes <dir>/capture_NNNN.<ext>, trims the
directory to the retention window, and forwards the payload to the server.

Run returns nil when the frame channel is closed or ctx is cancelled, and the
error that should abort the pipeline otherwise. The payload channel is closed
on return.
*/
type Stage struct {
	// Called with every encoded file, before it is forwarded. The bytes are
	// only valid for the duration of the call.
	OnEncoded func(name string, data []byte)

	cfg       Config
	enc       Encoder
	in        *queue.Receiver[capture.FrameRecord]
	out       *queue.Sender[Payload]
	ring      *pool.Ring[[]byte]
	retention *Retention
	prof      *profiler.Pool
	timer     profiler.Handle
}

// NewStage creates the output directory and the payload pool. host is the
// uname comment embedded in every file.
func NewStage(cfg Config, host string, in *queue.Receiver[capture.FrameRecord], out *queue.Sender[Payload], prof *profiler.Pool) (*Stage, error) {
	cfg.setDefaults()
	if cfg.MaxFrames < 0 {
		return nil, errors.Errorf("encode: negative retention count %d", cfg.MaxFrames)
	}
	if depth := out.Queue().Attr().Depth; depth > cfg.PayloadPoolDepth {
		return nil, errors.Errorf("encode: channel depth %d exceeds payload pool depth %d", depth, cfg.PayloadPoolDepth)
	}
	enc, err := NewEncoder(cfg.Format, host, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "format %q", cfg.Format)
	}
	if err := os.MkdirAll(cfg.Dir, dirPerm); err != nil {
		return nil, errors.Wrap(err, "create output directory")
	}
	retention := NewRetention(cfg.MaxFrames)
	if _, err := retention.Clear(cfg.Dir, enc.Ext()); err != nil {
		return nil, err
	}
	timer, err := prof.Acquire()
	if err != nil {
		return nil, errors.Wrap(err, "encode timer")
	}
	log.Low("Using uname string: %s", host)

	maxMsg := out.Queue().Attr().MaxMsgSize
	return &Stage{
		cfg:       cfg,
		enc:       enc,
		in:        in,
		out:       out,
		ring:      pool.NewRing(cfg.PayloadPoolDepth, func() []byte { return make([]byte, 0, maxMsg) }),
		retention: retention,
		prof:      prof,
		timer:     timer,
	}, nil
}

// FileName returns the base name of frame seq.
func (st *Stage) FileName(seq uint64) string {
	return fmt.Sprintf("capture_%04d.%s", seq, st.enc.Ext())
}

func (st *Stage) Dir() string {
	return st.cfg.Dir
}

func (st *Stage) Run(ctx context.Context) (err error) {
	defer func() {
		st.out.Close()
		st.ring.Close()
		if err != nil {
			log.Error("Encode stage failed: %v", err)
		}
	}()

	for {
		rec, err := st.in.Receive(ctx)
		if err == queue.ErrClosed || ctx.Err() != nil {
			log.Medium("Encode stage exiting")
			return nil
		}
		if err != nil {
			return err
		}
		metrics.SetQueueDepth(st.in.Queue().Name(), st.in.Queue().Len())

		if err := st.handle(ctx, rec); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

func (st *Stage) handle(ctx context.Context, rec capture.FrameRecord) error {
	// A failed clock read only costs the latency sample.
	timed := st.prof.Start(st.timer) == nil

	slot, err := st.ring.Acquire(ctx)
	if err != nil {
		rec.Release()
		return err
	}

	name := st.FileName(rec.Seq)
	data, err := st.enc.Encode(slot.Value[:0], rec.Image(), rec.Timestamp)
	rec.Release()
	slot.Value = data
	if err != nil {
		slot.Release()
		return errors.Wrapf(err, "encode frame %d", rec.Seq)
	}

	path := filepath.Join(st.cfg.Dir, name)
	if err := os.WriteFile(path, data, filePerm); err != nil {
		slot.Release()
		return errors.Wrap(err, "write frame")
	}
	st.retention.Written(rec.Seq, path)

	format := st.enc.Format()
	metrics.FramesEncoded.WithLabelValues(format).Inc()
	metrics.EncodedSize.WithLabelValues(format).Observe(float64(len(data)))
	if st.OnEncoded != nil {
		st.OnEncoded(name, data)
	}

	if err := st.out.Send(ctx, Payload{Name: name, Slot: slot}); err != nil {
		slot.Release()
		return errors.Wrapf(err, "forward %s", name)
	}

	var d time.Duration
	if timed && st.prof.Stop(st.timer) == nil {
		d = st.prof.Duration(st.timer)
		metrics.ObserveLatency("encode", d)
	}
	log.Low("Wrote %s (%d bytes) in %v", path, len(data), d)
	return nil
}
