package encode

import (
	"bytes"
	"time"

	"github.com/pkg/errors"

	"github.com/lanikai/framecast/internal/media"
	"github.com/lanikai/framecast/internal/packet"
)

var (
	markerSOI = []byte{0xff, 0xd8}
	markerCOM = []byte{0xff, 0xfe}
)

/*
JPEG wraps codec output with a COM segment carrying the timestamp and host
comments, right after the start-of-image marker:

	FF D8                 start of image
	FF FE                 comment
	LL LL                 big-endian length: len(timestamp) + len(host) + 2
	# Timestamp: ...\n
	# uname: ...\n
	...                   codec output following its own FF D8
*/
type JPEG struct {
	Codec media.Codec
	Host  string
}

func (*JPEG) Format() string { return "jpeg" }
func (*JPEG) Ext() string    { return "jpeg" }

func (e *JPEG) Encode(buf []byte, img *media.Image, ts time.Time) ([]byte, error) {
	data, err := e.Codec.Encode(img)
	if err != nil {
		return buf, errors.Wrap(err, "jpeg codec")
	}
	start := bytes.Index(data, markerSOI)
	if start < 0 {
		return buf, errNoSOI
	}

	stamp := TimestampComment(ts)
	comLen := len(stamp) + len(e.Host) + 2
	if comLen > 0xffff {
		return buf, errCommentSize
	}

	w := packet.NewWriterSize(len(markerSOI) + len(markerCOM) + 2)
	if err := w.WriteSlice(markerSOI); err != nil {
		return buf, errors.Wrap(err, "jpeg header")
	}
	if err := w.WriteSlice(markerCOM); err != nil {
		return buf, errors.Wrap(err, "jpeg header")
	}
	w.WriteUint16(uint16(comLen))

	buf = append(buf, w.Bytes()...)
	buf = append(buf, stamp...)
	buf = append(buf, e.Host...)
	buf = append(buf, data[start+2:]...)
	return buf, nil
}
