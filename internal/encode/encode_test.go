package encode

import (
	"bytes"
	"encoding/binary"
	"image/jpeg"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanikai/framecast/internal/media"
)

const testHost = "# uname: Linux cam 6.1.0 #1 SMP armv7l\n"

var testTime = time.Unix(1554413215, 250000000)

func TestTimestampComment(t *testing.T) {
	assert.Equal(t, "# Timestamp: 1554413215.250000\n", TimestampComment(testTime))

	ts, ok, err := FindTimestamp([]byte("P6\n1 1\n# Timestamp: 1554413215.250000\n255\n"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1554413215.25, ts)

	_, ok, err = FindTimestamp([]byte("P6\n1 1\n255\n"))
	assert.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = FindTimestamp([]byte("# Timestamp: soon\n"))
	assert.True(t, ok)
	assert.Error(t, err)
}

func TestGamma(t *testing.T) {
	cases := []struct{ in, out uint8 }{
		{0, 0},
		{1, 7},
		{128, 182},
		{254, 254},
		{255, 254},
	}
	for _, c := range cases {
		assert.Equal(t, c.out, gammaLUT[c.in], "gamma(%d)", c.in)
	}
	for v := 1; v < 256; v++ {
		assert.True(t, gammaLUT[v] >= gammaLUT[v-1], "not monotonic at %d", v)
		if v < 255 {
			assert.True(t, gammaLUT[v] >= uint8(v), "gamma darkens %d", v)
		}
	}
}

func testImage() *media.Image {
	img := media.NewImage(2, 1)
	img.SetBGR(0, 0, 1, 2, 3)
	img.SetBGR(1, 0, 0, 128, 255)
	return img
}

func TestPPMEncode(t *testing.T) {
	enc := &PPM{Host: testHost}
	data, err := enc.Encode(nil, testImage(), testTime)
	require.NoError(t, err)

	header := "P6\n2 1\n# Timestamp: 1554413215.250000\n" + testHost + "255\n"
	assert.Equal(t, header, string(data[:len(header)]))
	assert.Equal(t, []byte{3, 2, 1, 255, 128, 0}, data[len(header):])

	img, comments, err := media.DecodePPM(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, testImage(), img)
	assert.Equal(t, []string{" Timestamp: 1554413215.250000", testHost[1 : len(testHost)-1]}, comments)
}

func TestPPMEncodeGamma(t *testing.T) {
	enc := &PPM{Host: testHost, Gamma: true}
	prefix := []byte("keep")
	data, err := enc.Encode(prefix, testImage(), testTime)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data[:4]))

	pix := data[len(data)-6:]
	assert.Equal(t, []byte{gammaLUT[3], gammaLUT[2], gammaLUT[1], 254, 182, 0}, pix)
}

func TestJPEGLayout(t *testing.T) {
	img := media.NewImage(16, 8)
	media.FillPattern(img, 3)

	enc := &JPEG{Codec: media.JPEGCodec{}, Host: testHost}
	data, err := enc.Encode(nil, img, testTime)
	require.NoError(t, err)

	stamp := TimestampComment(testTime)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff, 0xfe}, data[:4])
	assert.Equal(t, uint16(len(stamp)+len(testHost)+2), binary.BigEndian.Uint16(data[4:6]))
	assert.Equal(t, stamp+testHost, string(data[6:6+len(stamp)+len(testHost)]))

	raw, err := media.JPEGCodec{}.Encode(img)
	require.NoError(t, err)
	assert.Equal(t, raw[2:], data[6+len(stamp)+len(testHost):])

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 16, decoded.Bounds().Dx())

	ts, ok, err := FindTimestamp(data)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1554413215.25, ts)
}

type brokenCodec struct{ out []byte }

func (c brokenCodec) Encode(*media.Image) ([]byte, error) {
	if c.out == nil {
		return nil, errors.New("codec failure")
	}
	return c.out, nil
}

func TestJPEGErrors(t *testing.T) {
	img := media.NewImage(1, 1)

	_, err := (&JPEG{Codec: brokenCodec{out: []byte{1, 2, 3}}}).Encode(nil, img, testTime)
	assert.Equal(t, errNoSOI, err)

	_, err = (&JPEG{Codec: brokenCodec{}}).Encode(nil, img, testTime)
	assert.Error(t, err)

	huge := string(make([]byte, 0x10000))
	_, err = (&JPEG{Codec: brokenCodec{out: []byte{0xff, 0xd8}}, Host: huge}).Encode(nil, img, testTime)
	assert.Equal(t, errCommentSize, err)
}

func TestNewEncoder(t *testing.T) {
	enc, err := NewEncoder("jpeg", testHost, Config{})
	require.NoError(t, err)
	assert.Equal(t, "jpeg", enc.Ext())

	enc, err = NewEncoder("ppm", testHost, Config{Gamma: true})
	require.NoError(t, err)
	assert.True(t, enc.(*PPM).Gamma)

	_, err = NewEncoder("gif", testHost, Config{})
	assert.Equal(t, errUnknownFormat, err)
}
