package api

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/voxelsplace/pixpack/archive"
	"github.com/voxelsplace/pixpack/pixpack"
	"github.com/voxelsplace/pixpack/raster"
)

// PackFiles builds an archive blob from file name -> contents. Entries are
// written in name order so the same input always gives the same blob.
func PackFiles(files map[string][]byte, f archive.Format) ([]byte, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	entries := make([]archive.Entry, len(names))
	for i, name := range names {
		entries[i] = archive.Entry{Name: name, Mode: 0o644, ModTime: time.Unix(0, 0), Data: files[name]}
	}
	return archive.Pack(entries, f)
}

// UnpackFiles returns a map of file name -> contents from an archive blob.
func UnpackFiles(blob []byte) (map[string][]byte, error) {
	entries, _, err := archive.Unpack(blob)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(entries))
	for _, e := range entries {
		out[e.Name] = e.Data
	}
	return out, nil
}

func decodeImages(images map[string][]byte) ([]pixpack.Image, error) {
	if len(images) == 0 {
		return nil, pixpack.ErrNoImages
	}
	out := make([]pixpack.Image, 0, len(images))
	for name, data := range images {
		c, _, err := raster.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		out = append(out, pixpack.Image{Name: name, Pixels: c})
	}
	return out, nil
}

// EncodeImages hides payload in the given carriers (name -> encoded image)
// and returns the stego images keyed by their source name. Carriers the
// payload did not need are left out.
func EncodeImages(payload []byte, images map[string][]byte, f raster.Format) (map[string][]byte, error) {
	carriers, err := decodeImages(images)
	if err != nil {
		return nil, err
	}
	chunks, err := pixpack.Encode(payload, carriers, pixpack.Options{Order: pixpack.ByName})
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(chunks))
	for _, c := range chunks {
		b, err := raster.EncodeBytes(c.Canvas, f)
		if err != nil {
			return nil, err
		}
		out[c.Source] = b
	}
	return out, nil
}

// DecodeImages recovers the payload from a set of stego images.
func DecodeImages(images map[string][]byte) ([]byte, error) {
	carriers, err := decodeImages(images)
	if err != nil {
		return nil, err
	}
	return pixpack.Decode(carriers, pixpack.Options{Order: pixpack.ByName})
}

// CapacityReport projects a payload of payloadLen bytes onto the carriers
// without decoding their pixels.
func CapacityReport(payloadLen int, images map[string][]byte) (pixpack.Report, error) {
	names := make([]string, 0, len(images))
	for name := range images {
		names = append(names, name)
	}
	sort.Strings(names)
	dims := make([]pixpack.Dimensions, len(names))
	for i, name := range names {
		d, err := raster.DecodeDimensions(bytes.NewReader(images[name]))
		if err != nil {
			return pixpack.Report{}, fmt.Errorf("decode %s: %w", name, err)
		}
		d.Name = name
		dims[i] = d
	}
	return pixpack.ProjectCapacity(payloadLen, dims)
}
