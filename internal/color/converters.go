// Copyright 2019 Lanikai Labs. All rights reserved.

package color

import (
	"image"
)

type YUYV struct {
	Packed []uint8
	Rect   image.Rectangle
	Stride int
}

// NewYUYV allocates and returns a YUYV image
func NewYUYV(r image.Rectangle) *YUYV {
	return &YUYV{
		Packed: make([]byte, 2*r.Dx()*r.Dy()),
		Rect:   r,
		Stride: 2 * r.Dx(),
	}
}

// WrapYUYV views a driver buffer as a YUYV image without copying.
func WrapYUYV(packed []byte, width, height int) *YUYV {
	return &YUYV{
		Packed: packed,
		Rect:   image.Rect(0, 0, width, height),
		Stride: 2 * width,
	}
}

// YUYVToBGR converts YUYV (i.e. YUY2) packed 4:2:2 to packed 8-bit B,G,R.
// dst must hold 3 bytes per pixel. Uses BT.601 limited-range coefficients in
// 16.16 fixed point.
func YUYVToBGR(dst []byte, src *YUYV) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	for row := 0; row < h; row++ {
		in := src.Packed[row*src.Stride : row*src.Stride+2*w]
		out := dst[row*3*w : (row+1)*3*w]
		for i, o := 0, 0; i+3 < len(in); i, o = i+4, o+6 {
			u := int(in[i+1]) - 128
			v := int(in[i+3]) - 128

			rd := 104597 * v
			gd := -25675*u - 53279*v
			bd := 132201 * u

			for k, y := range [2]byte{in[i], in[i+2]} {
				c := 76310 * (int(y) - 16)
				out[o+3*k] = clamp8((c + bd) >> 16)
				out[o+3*k+1] = clamp8((c + gd) >> 16)
				out[o+3*k+2] = clamp8((c + rd) >> 16)
			}
		}
	}
}

func clamp8(x int) uint8 {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return uint8(x)
}
