package encode

import (
	"strconv"
	"time"

	"github.com/lanikai/framecast/internal/media"
)

// PPM writes binary NetPBM (P6) with the comments between the size line and
// the maximum value:
//
//	P6\n<W> <H>\n# Timestamp: ...\n# uname: ...\n255\n<R,G,B ...>
type PPM struct {
	Host string

	// Apply the NetPBM transfer function to every sample.
	Gamma bool
}

func (*PPM) Format() string { return "ppm" }
func (*PPM) Ext() string    { return "ppm" }

func (e *PPM) Encode(buf []byte, img *media.Image, ts time.Time) ([]byte, error) {
	buf = append(buf, "P6\n"...)
	buf = strconv.AppendInt(buf, int64(img.Width), 10)
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, int64(img.Height), 10)
	buf = append(buf, '\n')
	buf = append(buf, TimestampComment(ts)...)
	buf = append(buf, e.Host...)
	buf = append(buf, "255\n"...)

	n := len(buf)
	buf = grow(buf, img.Size())
	out := buf[n:]
	pix := img.Pix[:img.Size()]
	if e.Gamma {
		for i := 0; i < len(pix); i += 3 {
			out[i], out[i+1], out[i+2] = gammaLUT[pix[i+2]], gammaLUT[pix[i+1]], gammaLUT[pix[i]]
		}
	} else {
		for i := 0; i < len(pix); i += 3 {
			out[i], out[i+1], out[i+2] = pix[i+2], pix[i+1], pix[i]
		}
	}
	return buf, nil
}

// grow extends buf by n bytes, reallocating only when capacity runs out.
func grow(buf []byte, n int) []byte {
	if cap(buf)-len(buf) >= n {
		return buf[:len(buf)+n]
	}
	out := make([]byte, len(buf)+n, 2*len(buf)+n)
	copy(out, buf)
	return out
}
