package color

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestYUYVToBGR(t *testing.T) {
	dst := make([]byte, 6)

	// Video black and white, no chroma.
	YUYVToBGR(dst, WrapYUYV([]byte{16, 128, 235, 128}, 2, 1))
	assert.Equal(t, []byte{0, 0, 0, 255, 255, 255}, dst)

	// Saturated red.
	YUYVToBGR(dst, WrapYUYV([]byte{81, 90, 81, 240}, 2, 1))
	assert.True(t, dst[2] > 250 && dst[1] < 5 && dst[0] < 5, "got %v", dst[:3])
}

func TestYUYVToBGRUsesStride(t *testing.T) {
	src := NewYUYV(image.Rect(0, 0, 2, 2))
	copy(src.Packed, []byte{16, 128, 16, 128, 235, 128, 235, 128})
	dst := make([]byte, 12)
	YUYVToBGR(dst, src)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0}, dst[:6])
	assert.Equal(t, []byte{255, 255, 255, 255, 255, 255}, dst[6:])
}

func BenchmarkYUYVToBGRAt720P(b *testing.B) {
	src := NewYUYV(image.Rect(0, 0, 1280, 720))
	dst := make([]byte, 3*1280*720)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		YUYVToBGR(dst, src)
	}
}
