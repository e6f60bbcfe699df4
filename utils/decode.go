package utils

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/voxelsplace/pixpack/archive"
	"github.com/voxelsplace/pixpack/pixpack"
	"github.com/voxelsplace/pixpack/raster"
)

// RunDecode recovers the payload hidden in images and writes it to output.
// When extractDir is set the payload is also unpacked there as an archive.
func RunDecode(images []string, output, extractDir string, cfg Config, log *slog.Logger) ([]byte, error) {
	log = discardLogger(log)
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(output); err == nil {
		log.Warn("output file already exists and will be overwritten", "path", output)
	}
	carriers, err := loadImages(images, log)
	if err != nil {
		return nil, err
	}
	opts.Observe = func(name string, h pixpack.FrameHeader) {
		log.Info("extracted chunk", "chunk", h.Index+1, "total", h.Total, "bits", h.PayloadBits, "path", name)
	}
	blob, err := pixpack.Decode(carriers, opts)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(output, blob, 0o644); err != nil {
		return nil, err
	}
	log.Info("recovered payload", "path", output, "bytes", len(blob),
		"xxh64", fmt.Sprintf("%016x", pixpack.Digest(blob)))

	if extractDir != "" {
		n, err := archive.UnpackToDir(blob, extractDir)
		if err != nil {
			return blob, fmt.Errorf("extract into %s: %w", extractDir, err)
		}
		log.Info("extracted archive", "dir", extractDir, "files", n)
	}
	return blob, nil
}

// RunInspect prints the frame header of every image to out.
func RunInspect(images []string, out io.Writer) error {
	for _, path := range images {
		c, _, err := raster.Load(path)
		if err != nil {
			return err
		}
		h, err := pixpack.Inspect(c)
		if err != nil {
			fmt.Fprintf(out, "%s: no frame (%v)\n", path, err)
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", path, h)
	}
	return nil
}
