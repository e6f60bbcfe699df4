// Package raster converts image files to and from pixpack canvases.
package raster

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/voxelsplace/pixpack/pixpack"
)

var ErrUnsupportedFormat = errors.New("raster: unsupported output format")

// Format is a lossless output format.
type Format uint8

const (
	FormatPNG Format = iota
	FormatBMP
	FormatTIFF
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatBMP:
		return "bmp"
	case FormatTIFF:
		return "tiff"
	default:
		return fmt.Sprintf("unknown(%d)", f)
	}
}

// Ext returns the file extension for f, with the leading dot.
func (f Format) Ext() string {
	if f == FormatTIFF {
		return ".tif"
	}
	return "." + f.String()
}

// ParseFormat parses a format name or file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(s), ".") {
	case "", "png":
		return FormatPNG, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// FormatFromPath picks the output format from a file name's extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// IsLossy reports whether a decoded format name (as returned by Decode)
// may have destroyed least significant bits.
func IsLossy(name string) bool {
	return name == "jpeg" || name == "webp"
}

// Decode reads any registered image format into a canvas. Alpha is dropped.
func Decode(r io.Reader) (*pixpack.Canvas, string, error) {
	img, name, err := image.Decode(r)
	if err != nil {
		return nil, "", err
	}
	return FromImage(img), name, nil
}

// Load decodes the image file at path.
func Load(path string) (*pixpack.Canvas, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	c, name, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return c, name, nil
}

// Dimensions reads only the image header of the file at path.
func Dimensions(path string) (pixpack.Dimensions, error) {
	f, err := os.Open(path)
	if err != nil {
		return pixpack.Dimensions{}, err
	}
	defer f.Close()
	d, err := DecodeDimensions(bufio.NewReader(f))
	if err != nil {
		return d, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	d.Name = path
	return d, nil
}

// DecodeDimensions reads the size of an image without its pixels.
func DecodeDimensions(r io.Reader) (pixpack.Dimensions, error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return pixpack.Dimensions{}, err
	}
	return pixpack.Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

// FromImage copies the RGB samples of img into a new canvas.
func FromImage(img image.Image) *pixpack.Canvas {
	b := img.Bounds()
	c := pixpack.NewCanvas(b.Dx(), b.Dy())
	switch m := img.(type) {
	case *image.NRGBA:
		for y := 0; y < b.Dy(); y++ {
			row := m.Pix[y*m.Stride : y*m.Stride+b.Dx()*4]
			for x := 0; x < b.Dx(); x++ {
				c.SetPixel(x, y, [3]uint8{row[x*4], row[x*4+1], row[x*4+2]})
			}
		}
		return c
	case *image.RGBA:
		if m.Opaque() {
			for y := 0; y < b.Dy(); y++ {
				row := m.Pix[y*m.Stride : y*m.Stride+b.Dx()*4]
				for x := 0; x < b.Dx(); x++ {
					c.SetPixel(x, y, [3]uint8{row[x*4], row[x*4+1], row[x*4+2]})
				}
			}
			return c
		}
	}
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			p := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			c.SetPixel(x, y, [3]uint8{p.R, p.G, p.B})
		}
	}
	return c
}

// ToImage converts a pixel grid into an opaque NRGBA image.
func ToImage(src pixpack.PixelReader) *image.NRGBA {
	w, h := src.Width(), src.Height()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := src.Pixel(x, y)
			i := img.PixOffset(x, y)
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = p[0], p[1], p[2], 0xFF
		}
	}
	return img
}

// Encode writes src to w in a lossless format.
func Encode(w io.Writer, src pixpack.PixelReader, f Format) error {
	img := ToImage(src)
	switch f {
	case FormatPNG:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		return enc.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedFormat, f)
	}
}

// EncodeBytes is Encode into memory.
func EncodeBytes(src pixpack.PixelReader, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, src, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes src to path in format f.
func Save(path string, src pixpack.PixelReader, f Format) error {
	data, err := EncodeBytes(src, f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
