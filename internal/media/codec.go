package media

import (
	"bytes"
	"image/jpeg"
)

// A Codec compresses a raw frame into a standalone image file.
type Codec interface {
	Encode(img *Image) ([]byte, error)
}

// JPEGCodec produces baseline JPEG. The output begins with its own SOI marker.
type JPEGCodec struct {
	// 1..100. Zero selects DefaultJPEGQuality.
	Quality int
}

const DefaultJPEGQuality = 50

func (c JPEGCodec) Encode(img *Image) ([]byte, error) {
	q := c.Quality
	if q == 0 {
		q = DefaultJPEGQuality
	}
	var buf bytes.Buffer
	buf.Grow(img.Size() / 8)
	if err := jpeg.Encode(&buf, img.RGBA(), &jpeg.Options{Quality: q}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
