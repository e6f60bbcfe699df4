package api

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxelsplace/pixpack/archive"
	"github.com/voxelsplace/pixpack/pixpack"
	"github.com/voxelsplace/pixpack/raster"
)

func carrierPNGs(t *testing.T, w, h, n int) map[string][]byte {
	t.Helper()
	r := rand.New(rand.NewSource(7))
	out := make(map[string][]byte, n)
	for i := 0; i < n; i++ {
		c := pixpack.NewCanvas(w, h)
		r.Read(c.Pix)
		b, err := raster.EncodeBytes(c, raster.FormatPNG)
		require.NoError(t, err)
		out[fmt.Sprintf("img_%02d.png", i)] = b
	}
	return out
}

func TestPackUnpackFiles(t *testing.T) {
	files := map[string][]byte{
		"readme.txt":   []byte("hello"),
		"docs/a.md":    []byte("# a"),
		"empty/zero.b": {},
	}
	for _, f := range []archive.Format{archive.FormatZip, archive.FormatTar, archive.FormatTarZstd, archive.FormatTarLZ4} {
		t.Run(f.String(), func(t *testing.T) {
			blob, err := PackFiles(files, f)
			require.NoError(t, err)
			again, err := PackFiles(files, f)
			require.NoError(t, err)
			assert.Equal(t, blob, again)

			got, err := UnpackFiles(blob)
			require.NoError(t, err)
			require.Len(t, got, len(files))
			for name, data := range files {
				assert.Equal(t, string(data), string(got[name]), name)
			}
		})
	}
}

func TestEncodeDecodeImages(t *testing.T) {
	payload, err := PackFiles(map[string][]byte{"secret.txt": []byte("the cake is a lie")}, archive.FormatZip)
	require.NoError(t, err)
	carriers := carrierPNGs(t, 24, 24, 6)

	stego, err := EncodeImages(payload, carriers, raster.FormatPNG)
	require.NoError(t, err)
	require.NotEmpty(t, stego)
	assert.Less(t, len(stego), len(carriers))

	blob, err := DecodeImages(stego)
	require.NoError(t, err)
	assert.Equal(t, payload, blob)

	files, err := UnpackFiles(blob)
	require.NoError(t, err)
	assert.Equal(t, "the cake is a lie", string(files["secret.txt"]))
}

func TestEncodeImages_Errors(t *testing.T) {
	_, err := EncodeImages([]byte("x"), nil, raster.FormatPNG)
	assert.ErrorIs(t, err, pixpack.ErrNoImages)

	_, err = EncodeImages(make([]byte, 1000), carrierPNGs(t, 12, 12, 2), raster.FormatPNG)
	assert.ErrorIs(t, err, pixpack.ErrCapacity)

	_, err = EncodeImages([]byte("x"), map[string][]byte{"bad.png": []byte("not an image")}, raster.FormatPNG)
	assert.Error(t, err)
}

func TestCapacityReport(t *testing.T) {
	carriers := carrierPNGs(t, 20, 20, 3)
	rep, err := CapacityReport(50, carriers)
	require.NoError(t, err)
	assert.Equal(t, 3*(400-pixpack.HeaderBits), rep.TotalCapacity)
	assert.True(t, rep.Fits())
	assert.Equal(t, 2, rep.Chunks)
	assert.Equal(t, "img_00.png", rep.Images[0].Name)
	assert.Equal(t, -1, rep.Images[2].Chunk)

	rep, err = CapacityReport(200, carriers)
	require.NoError(t, err)
	assert.False(t, rep.Fits())
	assert.Equal(t, 1600-912, rep.Shortfall)
}
