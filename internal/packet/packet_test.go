package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterNetworkOrder(t *testing.T) {
	w := NewWriterSize(10)
	w.WriteUint32(4)
	require.NoError(t, w.WriteString("a.jp"))
	w.WriteUint16(0x0102)

	assert.Equal(t, []byte{0, 0, 0, 4, 'a', '.', 'j', 'p', 1, 2}, w.Bytes())
	assert.Equal(t, 0, w.Remaining())
}

func TestWriterCapacity(t *testing.T) {
	w := NewWriterSize(4)
	w.WriteUint16(7)
	assert.Error(t, w.WriteSlice([]byte{1, 2, 3}))
	assert.Error(t, w.WriteString("abc"))
	assert.Len(t, w.Bytes(), 2)
	assert.NoError(t, w.WriteSlice([]byte{1, 2}))
	assert.Equal(t, []byte{0, 7, 1, 2}, w.Bytes())
}

func TestReader(t *testing.T) {
	r := NewReader([]byte{0, 0, 1, 0, 'h', 'i', 9})
	assert.Equal(t, uint32(256), r.ReadUint32())
	assert.Equal(t, "hi", r.ReadString(2))
	assert.Equal(t, []byte{9}, r.ReadSlice(1))
	assert.Panics(t, func() { r.ReadUint32() })
}
