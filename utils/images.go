package utils

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/voxelsplace/pixpack/pixpack"
	"github.com/voxelsplace/pixpack/raster"
)

// loadImages decodes every path concurrently. Names are the paths as given.
func loadImages(paths []string, log *slog.Logger) ([]pixpack.Image, error) {
	if len(paths) == 0 {
		return nil, pixpack.ErrNoImages
	}
	type item struct {
		img    pixpack.Image
		format string
		err    error
	}
	items := make([]item, len(paths))

	var wg sync.WaitGroup
	for i := range paths {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, format, err := raster.Load(paths[i])
			if err != nil {
				items[i].err = err
				return
			}
			items[i] = item{img: pixpack.Image{Name: paths[i], Pixels: c}, format: format}
		}(i)
	}
	wg.Wait()

	images := make([]pixpack.Image, len(items))
	for i, it := range items {
		if it.err != nil {
			return nil, it.err
		}
		log.Debug("loaded image", "path", paths[i], "format", it.format,
			"width", it.img.Pixels.Width(), "height", it.img.Pixels.Height())
		if raster.IsLossy(it.format) {
			log.Warn("lossy image format", "path", paths[i], "format", it.format)
		}
		images[i] = it.img
	}
	return images, nil
}

// CheckImages verifies that every path is an existing regular file.
func CheckImages(paths []string) error {
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("image file does not exist: %s", p)
		}
		if !fi.Mode().IsRegular() {
			return fmt.Errorf("image is not a regular file: %s", p)
		}
	}
	return nil
}

// writeAtomic writes every file to a temporary name in dir and renames them
// into place only once all writes succeeded. On failure nothing is left.
func writeAtomic(dir string, names []string, write func(i int, path string) error) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	tmps := make([]string, len(names))
	cleanup := func() {
		for _, t := range tmps {
			if t != "" {
				_ = os.Remove(t)
			}
		}
	}

	var wg sync.WaitGroup
	errCh := make(chan error, len(names))
	for i := range names {
		f, err := os.CreateTemp(dir, ".pixpack-*")
		if err != nil {
			cleanup()
			return nil, err
		}
		tmps[i] = f.Name()
		f.Close()
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := write(i, tmps[i]); err != nil {
				errCh <- fmt.Errorf("write %s: %w", names[i], err)
				return
			}
			// CreateTemp makes 0600 files
			if err := os.Chmod(tmps[i], 0o644); err != nil {
				errCh <- err
			}
		}(i)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			cleanup()
			return nil, err
		}
	}

	out := make([]string, len(names))
	for i, name := range names {
		out[i] = filepath.Join(dir, name)
		if err := os.Rename(tmps[i], out[i]); err != nil {
			cleanup()
			return nil, err
		}
		tmps[i] = ""
	}
	return out, nil
}
