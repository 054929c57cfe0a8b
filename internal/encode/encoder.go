package encode

import (
	"time"

	"github.com/lanikai/framecast/internal/media"
)

// An Encoder serializes one frame, with its timestamp and host comments, into
// a self-contained image file.
type Encoder interface {
	// Format names the encoding, e.g. "jpeg".
	Format() string

	// Ext is the file extension, without the dot.
	Ext() string

	// Encode appends the file contents to buf and returns the extended slice.
	Encode(buf []byte, img *media.Image, ts time.Time) ([]byte, error)
}

// NewEncoder returns the encoder for format ("jpeg" or "ppm"). host is the
// uname comment line.
func NewEncoder(format, host string, cfg Config) (Encoder, error) {
	switch format {
	case "jpeg", "jpg":
		return &JPEG{Codec: media.JPEGCodec{Quality: cfg.JPEGQuality}, Host: host}, nil
	case "ppm":
		return &PPM{Host: host, Gamma: cfg.Gamma}, nil
	default:
		return nil, errUnknownFormat
	}
}
