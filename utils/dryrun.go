package utils

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/voxelsplace/pixpack/archive"
	"github.com/voxelsplace/pixpack/pixpack"
	"github.com/voxelsplace/pixpack/raster"
)

// RunDryRun archives dir and reports how it would be split across images
// without writing anything.
func RunDryRun(dir string, images []string, cfg Config, out io.Writer) (pixpack.Report, error) {
	afmt, err := cfg.ArchiveFormat()
	if err != nil {
		return pixpack.Report{}, err
	}
	blob, err := archive.PackDir(dir, afmt)
	if err != nil {
		return pixpack.Report{}, fmt.Errorf("archive %s: %w", dir, err)
	}
	rep, err := ProjectImages(len(blob), images, cfg)
	if err != nil {
		return rep, err
	}
	fmt.Fprintf(out, "Directory to embed: %s\n", dir)
	PrintReport(out, rep, afmt.String())
	return rep, nil
}

// ProjectImages reads only the image headers and projects a payload of
// payloadBytes onto them in canonical order.
func ProjectImages(payloadBytes int, images []string, cfg Config) (pixpack.Report, error) {
	opts, err := cfg.Options()
	if err != nil {
		return pixpack.Report{}, err
	}
	named := make([]pixpack.Image, len(images))
	for i, p := range images {
		named[i] = pixpack.Image{Name: p}
	}
	ordered := pixpack.SortImages(named, opts.Order)
	dims := make([]pixpack.Dimensions, len(ordered))
	for i, im := range ordered {
		d, err := raster.Dimensions(im.Name)
		if err != nil {
			return pixpack.Report{}, err
		}
		dims[i] = d
	}
	return pixpack.ProjectCapacity(payloadBytes, dims)
}

// PrintReport writes a human readable capacity report.
func PrintReport(out io.Writer, rep pixpack.Report, archiveName string) {
	fmt.Fprintf(out, "Archive (%s) size: %s (%d bits)\n", archiveName,
		humanize.IBytes(uint64(rep.PayloadBytes)), rep.PayloadBits)
	fmt.Fprintf(out, "Number of images: %d\n", len(rep.Images))
	fmt.Fprintf(out, "Total image capacity: %s bits (%s)\n\n",
		humanize.Comma(int64(rep.TotalCapacity)), humanize.IBytes(uint64(rep.TotalCapacity/8)))

	if !rep.Fits() {
		fmt.Fprintln(out, "Not enough capacity. You need more or larger images.")
		fmt.Fprintf(out, "Short by %s bits (%s)\n",
			humanize.Comma(int64(rep.Shortfall)), humanize.IBytes(uint64((rep.Shortfall+7)/8)))
		return
	}
	fmt.Fprintf(out, "Enough capacity. Estimated chunking (%d chunks):\n", rep.Chunks)
	for _, e := range rep.Images {
		if e.Chunk < 0 {
			fmt.Fprintf(out, "  - %s: unused\n", filepath.Base(e.Name))
			continue
		}
		fmt.Fprintf(out, "  - %s: chunk %d, will store %d of %d bits (%s)\n",
			filepath.Base(e.Name), e.Chunk, e.Allotted, e.Capacity, humanize.IBytes(uint64(e.Allotted/8)))
	}
}
