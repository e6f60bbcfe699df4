package utils

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/voxelsplace/pixpack/pixpack"
	"github.com/voxelsplace/pixpack/raster"
)

// generateNoiseCanvas fills a width x height canvas with random RGB samples.
func generateNoiseCanvas(width, height int, r *rand.Rand) *pixpack.Canvas {
	c := pixpack.NewCanvas(width, height)
	r.Read(c.Pix)
	return c
}

// RunGenerateCarriers writes amount random-noise carrier images named
// carrier_0..carrier_(amount-1) into outDir. A zero seed picks one from the
// clock.
func RunGenerateCarriers(width, height, amount int, outDir string, f raster.Format, seed int64) ([]string, error) {
	if _, err := pixpack.CapacityOf(width, height); err != nil {
		return nil, err
	}
	if amount < 0 {
		amount = 0
	}
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	baseSeed := uint64(seed)
	if seed == 0 {
		baseSeed = uint64(time.Now().UnixNano())
	}
	paths := make([]string, 0, amount)
	for i := 0; i < amount; i++ {
		// derive a seed per file using a Weyl-like progression (unsigned math)
		const weyl = uint64(0x9e3779b97f4a7c15)
		s := baseSeed ^ (uint64(i)+1)*weyl
		r := rand.New(rand.NewSource(int64(s & 0x7fffffffffffffff)))

		path := filepath.Join(outDir, fmt.Sprintf("carrier_%d%s", i, f.Ext()))
		if err := raster.Save(path, generateNoiseCanvas(width, height, r), f); err != nil {
			return paths, fmt.Errorf("save %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
