// Package capture implements the periodic frame-acquisition stage.
package capture

import (
	"time"

	"github.com/lanikai/framecast/internal/logging"
	"github.com/lanikai/framecast/internal/media"
	"github.com/lanikai/framecast/internal/pool"
)

var log = logging.DefaultLogger.WithTag("capture")

// FrameRecord hands one captured frame to the encoder. The image lives in the
// capture stage's slot pool; the consumer must call Release when done reading.
type FrameRecord struct {
	// 1-based capture sequence number.
	Seq uint64

	Slot *pool.Slot[*media.Image]

	// Wall-clock time just after the frame was acquired.
	Timestamp time.Time
}

func (r FrameRecord) Image() *media.Image {
	return r.Slot.Value
}

// Size is the pixel payload carried by the record.
func (r FrameRecord) Size() int {
	return r.Slot.Value.Size()
}

func (r FrameRecord) Release() {
	r.Slot.Release()
}
