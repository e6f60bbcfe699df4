package pixpack

import "math/rand"

func noiseCanvas(w, h int, seed int64) *Canvas {
	r := rand.New(rand.NewSource(seed))
	c := NewCanvas(w, h)
	r.Read(c.Pix)
	return c
}

func noiseBlob(n int, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	b := make([]byte, n)
	r.Read(b)
	return b
}

func img(name string, w, h int, seed int64) Image {
	return Image{Name: name, Pixels: noiseCanvas(w, h, seed)}
}

// mapCarrier is a Carrier that is not a *Canvas, to exercise the generic paths.
type mapCarrier struct {
	w, h int
	px   map[[2]int][3]uint8
}

func newMapCarrier(w, h int) *mapCarrier {
	return &mapCarrier{w: w, h: h, px: make(map[[2]int][3]uint8)}
}

func (m *mapCarrier) Width() int                    { return m.w }
func (m *mapCarrier) Height() int                   { return m.h }
func (m *mapCarrier) Pixel(x, y int) [3]uint8       { return m.px[[2]int{x, y}] }
func (m *mapCarrier) SetPixel(x, y int, c [3]uint8) { m.px[[2]int{x, y}] = c }
