package encode

import "math"

// Transfer function from the NetPBM format description, precomputed for every
// 8-bit intensity. Evaluated in float32 with a float64 pow, so the table
// matches a C implementation using float literals and pow() bit for bit.
var gammaLUT = func() (lut [256]uint8) {
	for v := range lut {
		lut[v] = gamma(uint8(v))
	}
	return
}()

func gamma(v uint8) uint8 {
	c := float32(v) / 255
	if c < 0.0013 {
		return uint8(float32(12.92*c) * 255)
	}
	// The explicit conversion rounds the product, so no platform fuses it
	// into a multiply-add.
	p := float64(float64(float32(1.055))*math.Pow(float64(c), float64(float32(0.4545)))) - float64(float32(0.055))
	return uint8(float32(p) * 255)
}
