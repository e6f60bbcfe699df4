package pixpack

import (
	"errors"
	"fmt"
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stegoImages(chunks []Chunk) []Image {
	out := make([]Image, len(chunks))
	for i, c := range chunks {
		out[i] = Image{Name: fmt.Sprintf("embedded_%d.png", c.Header.Index), Pixels: c.Canvas}
	}
	return out
}

func TestRoundtrip(t *testing.T) {
	images := []Image{
		img("c.png", 31, 17, 1),
		img("a.png", 12, 9, 2),
		img("b.png", 64, 40, 3),
		img("d.png", 50, 50, 4),
	}
	for _, workers := range []int{1, 4} {
		for _, n := range []int{0, 1, 3, 77, 500} {
			blob := noiseBlob(n, int64(n))
			chunks, err := Encode(blob, images, Options{Workers: workers})
			require.NoError(t, err, "n=%d", n)
			stego := stegoImages(chunks)
			// reverse input order; chunk index, not position, decides placement
			for i, j := 0, len(stego)-1; i < j; i, j = i+1, j-1 {
				stego[i], stego[j] = stego[j], stego[i]
			}
			got, err := Decode(stego, Options{Workers: workers})
			require.NoError(t, err, "n=%d", n)
			assert.Equal(t, blob, got, "n=%d workers=%d", n, workers)
		}
	}
}

func TestEncode_DeadBeefScenario(t *testing.T) {
	images := []Image{img("1.png", 12, 9, 2), img("0.png", 12, 9, 1)}
	chunks, err := Encode([]byte{0xDE, 0xAD, 0xBE}, images, Options{})
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, FrameHeader{Index: 0, Total: 2, PayloadBits: 12}, chunks[0].Header)
	assert.Equal(t, "0.png", chunks[0].Source)
	assert.Equal(t, FrameHeader{Index: 1, Total: 2, PayloadBits: 12}, chunks[1].Header)
	assert.Equal(t, "1.png", chunks[1].Source)

	h, err := Inspect(chunks[1].Canvas)
	require.NoError(t, err)
	assert.Equal(t, chunks[1].Header, h)

	got, err := Decode(stegoImages(chunks), Options{})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE}, got)
}

func TestEncode_UnusedImagesDropped(t *testing.T) {
	images := []Image{img("a.png", 40, 40, 1), img("b.png", 40, 40, 2)}
	chunks, err := Encode([]byte("hi"), images, Options{})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, uint32(1), chunks[0].Header.Total)
}

func TestEncode_Errors(t *testing.T) {
	_, err := Encode([]byte("x"), nil, Options{})
	assert.ErrorIs(t, err, ErrNoImages)

	_, err = Encode(make([]byte, 10000), []Image{img("a.png", 100, 100, 1)}, Options{})
	var ce *CapacityError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 70096, ce.Shortfall)
}

func TestDecode_MissingChunk(t *testing.T) {
	var images []Image
	for i := 0; i < 5; i++ {
		images = append(images, img(fmt.Sprintf("%d.png", i), 12, 12, int64(i)))
	}
	// 5 images of 48 bits each, 30 bytes = 240 bits fills all five
	chunks, err := Encode(noiseBlob(30, 9), images, Options{})
	require.NoError(t, err)
	require.Len(t, chunks, 5)

	stego := stegoImages(chunks)
	stego = append(stego[:2], stego[3:]...)
	_, err = Decode(stego, Options{})
	var ic *IncompleteChunkSetError
	require.True(t, errors.As(err, &ic))
	assert.Equal(t, 5, ic.Total)
	assert.Equal(t, []int{2}, ic.Missing)
	assert.ErrorIs(t, err, ErrIncompleteChunkSet)
}

func TestDecode_Duplicates(t *testing.T) {
	images := []Image{img("a.png", 12, 12, 1), img("b.png", 12, 12, 2)}
	chunks, err := Encode(noiseBlob(12, 5), images, Options{})
	require.NoError(t, err)
	stego := stegoImages(chunks)
	dup := append(stego, Image{Name: "copy.png", Pixels: chunks[0].Canvas})

	_, err = Decode(dup, Options{})
	var de *DuplicateChunkError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 0, de.Index)
	assert.True(t, de.Identical)

	got, err := Decode(dup, Options{Duplicates: DuplicateIgnoreIdentical})
	require.NoError(t, err)
	assert.Equal(t, noiseBlob(12, 5), got)

	// same index, different payload
	other, err := Encode(noiseBlob(12, 6), images, Options{})
	require.NoError(t, err)
	conflict := append(stegoImages(chunks), Image{Name: "other.png", Pixels: other[0].Canvas})
	_, err = Decode(conflict, Options{Duplicates: DuplicateIgnoreIdentical})
	require.True(t, errors.As(err, &de))
	assert.False(t, de.Identical)
}

func TestDecode_MalformedCarriers(t *testing.T) {
	_, err := Decode([]Image{img("tiny.png", 5, 19, 1)}, Options{})
	var mh *MalformedHeaderError
	require.True(t, errors.As(err, &mh))
	assert.Equal(t, "tiny.png", mh.Image)

	// a header claiming more payload than the image has pixels
	c := noiseCanvas(12, 12, 1)
	require.NoError(t, EmbedInto(c, FrameHeader{Index: 0, Total: 1, PayloadBits: 49}.Bits()))
	_, err = Decode([]Image{{Name: "liar.png", Pixels: c}}, Options{})
	assert.ErrorIs(t, err, ErrMalformedHeader)

	// totals that disagree between carriers
	a := noiseCanvas(12, 12, 2)
	b := noiseCanvas(12, 12, 3)
	require.NoError(t, EmbedInto(a, FrameHeader{Index: 0, Total: 2}.Bits()))
	require.NoError(t, EmbedInto(b, FrameHeader{Index: 1, Total: 3}.Bits()))
	_, err = Decode([]Image{{Name: "a", Pixels: a}, {Name: "b", Pixels: b}}, Options{})
	require.True(t, errors.As(err, &mh))
	assert.Equal(t, "b", mh.Image)
}

func TestDecode_NoImages(t *testing.T) {
	_, err := Decode(nil, Options{})
	assert.ErrorIs(t, err, ErrNoImages)
}

func TestDecode_SingleBitTamper(t *testing.T) {
	blob := noiseBlob(16, 11)
	chunks, err := Encode(blob, []Image{img("a.png", 20, 20, 1)}, Options{})
	require.NoError(t, err)
	canvas := chunks[0].Canvas

	const k = 37 // payload bit
	i := HeaderBits + k
	px := canvas.Pixel(i%20, i/20)
	px[Channel] ^= 1
	canvas.SetPixel(i%20, i/20, px)

	h, err := Inspect(canvas)
	require.NoError(t, err)
	assert.Equal(t, chunks[0].Header, h)

	got, err := Decode(stegoImages(chunks), Options{})
	require.NoError(t, err)
	require.Len(t, got, len(blob))
	diff := 0
	for j := range blob {
		diff += bits.OnesCount8(blob[j] ^ got[j])
	}
	assert.Equal(t, 1, diff)
	assert.Equal(t, byte(1)<<(7-k%8), blob[k/8]^got[k/8])
}
