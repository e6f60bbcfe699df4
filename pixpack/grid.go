package pixpack

// PixelReader is the read side of a raster: dimensions and RGB samples.
type PixelReader interface {
	Width() int
	Height() int
	Pixel(x, y int) [3]uint8
}

// Carrier is a writable raster.
type Carrier interface {
	PixelReader
	SetPixel(x, y int, c [3]uint8)
}

// Canvas is an in-memory RGB pixel grid, 3 bytes per pixel, row-major.
type Canvas struct {
	w, h int
	Pix  []uint8
}

func NewCanvas(width, height int) *Canvas {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Canvas{w: width, h: height, Pix: make([]uint8, width*height*3)}
}

// CloneCanvas copies any PixelReader into a new Canvas.
func CloneCanvas(src PixelReader) *Canvas {
	if c, ok := src.(*Canvas); ok {
		out := &Canvas{w: c.w, h: c.h, Pix: make([]uint8, len(c.Pix))}
		copy(out.Pix, c.Pix)
		return out
	}
	out := NewCanvas(src.Width(), src.Height())
	for y := 0; y < out.h; y++ {
		for x := 0; x < out.w; x++ {
			out.SetPixel(x, y, src.Pixel(x, y))
		}
	}
	return out
}

func (c *Canvas) Width() int  { return c.w }
func (c *Canvas) Height() int { return c.h }

func (c *Canvas) Pixel(x, y int) [3]uint8 {
	i := (y*c.w + x) * 3
	return [3]uint8{c.Pix[i], c.Pix[i+1], c.Pix[i+2]}
}

func (c *Canvas) SetPixel(x, y int, p [3]uint8) {
	i := (y*c.w + x) * 3
	c.Pix[i], c.Pix[i+1], c.Pix[i+2] = p[0], p[1], p[2]
}

// Dimensions is an image size without its pixels.
type Dimensions struct {
	Name   string
	Width  int
	Height int
}

func (d Dimensions) Pixels() int { return d.Width * d.Height }
