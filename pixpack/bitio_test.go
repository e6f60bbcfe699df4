package pixpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytesToBits_MSBFirst(t *testing.T) {
	assert.Equal(t, Bits{1, 0, 1, 0, 0, 1, 0, 1}, BytesToBits([]byte{0xA5}))
	assert.Equal(t, Bits{0, 0, 0, 0, 0, 0, 0, 1, 1, 0, 0, 0, 0, 0, 0, 0}, BytesToBits([]byte{0x01, 0x80}))
	assert.Empty(t, BytesToBits(nil))
}

func TestBitsToBytes_PadsFinalByte(t *testing.T) {
	assert.Equal(t, []byte{0xE0}, BitsToBytes(Bits{1, 1, 1}))
	assert.Equal(t, []byte{0xFF, 0x80}, BitsToBytes(Bits{1, 1, 1, 1, 1, 1, 1, 1, 1}))
	out := BitsToBytes(nil)
	require.NotNil(t, out)
	assert.Len(t, out, 0)
}

func TestBitCodec_Roundtrip(t *testing.T) {
	for _, n := range []int{0, 1, 7, 8, 255, 4096} {
		blob := noiseBlob(n, int64(n))
		bits := BytesToBits(blob)
		require.Len(t, bits, 8*n)
		assert.Equal(t, blob, BitsToBytes(bits), "length %d", n)
	}
}

func TestBitReader_Short(t *testing.T) {
	r := newBitReader(Bits{1, 0, 1})
	_, ok := r.readBits(4)
	assert.False(t, ok)
	v, ok := r.readBits(3)
	require.True(t, ok)
	assert.Equal(t, uint64(5), v)
	assert.Equal(t, 0, r.remaining())
}
