package utils

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/voxelsplace/pixpack/archive"
	"github.com/voxelsplace/pixpack/pixpack"
	"github.com/voxelsplace/pixpack/raster"
)

// RunEncode archives dir and hides the archive in the given images, writing
// one stego image per used carrier into cfg.OutputDir. It returns the paths
// written, in chunk order.
func RunEncode(dir string, images []string, cfg Config, log *slog.Logger) ([]string, error) {
	log = discardLogger(log)
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	afmt, err := cfg.ArchiveFormat()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	blob, err := archive.PackDir(dir, afmt)
	if err != nil {
		return nil, fmt.Errorf("archive %s: %w", dir, err)
	}
	log.Info("archived directory", "dir", dir, "format", afmt.String(), "bytes", len(blob),
		"xxh64", fmt.Sprintf("%016x", pixpack.Digest(blob)), "ms", time.Since(start).Milliseconds())
	return EncodeBlob(blob, images, cfg, opts, log)
}

// EncodeBlob hides blob in the given images and writes the stego images.
func EncodeBlob(blob []byte, images []string, cfg Config, opts pixpack.Options, log *slog.Logger) ([]string, error) {
	log = discardLogger(log)
	ifmt, err := cfg.Format()
	if err != nil {
		return nil, err
	}
	carriers, err := loadImages(images, log)
	if err != nil {
		return nil, err
	}
	chunks, err := pixpack.Encode(blob, carriers, opts)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(chunks))
	for i, c := range chunks {
		names[i] = cfg.OutputFile(int(c.Header.Index), ifmt)
	}
	paths, err := writeAtomic(cfg.OutputDir, names, func(i int, path string) error {
		return raster.Save(path, chunks[i].Canvas, ifmt)
	})
	if err != nil {
		return nil, err
	}
	for i, c := range chunks {
		log.Info("embedded chunk", "chunk", c.Header.Index+1, "total", c.Header.Total,
			"bits", c.Header.PayloadBits, "source", c.Source, "output", paths[i])
	}
	if unused := len(carriers) - len(chunks); unused > 0 {
		log.Info("images left unused", "count", unused)
	}
	return paths, nil
}
