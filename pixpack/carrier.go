package pixpack

// Channel is the color sample whose least significant bit carries data (red).
const Channel = 0

// Embed copies src and writes frame into the copy. src is not modified.
func Embed(src PixelReader, frame Bits) (*Canvas, error) {
	if n := src.Width() * src.Height(); len(frame) > n {
		return nil, &CapacityError{Need: len(frame), Capacity: n, Shortfall: len(frame) - n}
	}
	dst := CloneCanvas(src)
	if err := EmbedInto(dst, frame); err != nil {
		return nil, err
	}
	return dst, nil
}

// EmbedInto overwrites the channel LSB of the first len(frame) pixels of
// dst in row-major order. All other bits and pixels are left as they are.
func EmbedInto(dst Carrier, frame Bits) error {
	w, h := dst.Width(), dst.Height()
	if len(frame) > w*h {
		return &CapacityError{Need: len(frame), Capacity: w * h, Shortfall: len(frame) - w*h}
	}
	if c, ok := dst.(*Canvas); ok {
		for i, b := range frame {
			p := i*3 + Channel
			c.Pix[p] = c.Pix[p]&0xFE | b&1
		}
		return nil
	}
	for i, b := range frame {
		x, y := i%w, i/w
		px := dst.Pixel(x, y)
		px[Channel] = px[Channel]&0xFE | b&1
		dst.SetPixel(x, y, px)
	}
	return nil
}

// Extract reads the channel LSB of every pixel of src in row-major order.
func Extract(src PixelReader) Bits {
	w, h := src.Width(), src.Height()
	out := make(Bits, w*h)
	if c, ok := src.(*Canvas); ok {
		for i := range out {
			out[i] = c.Pix[i*3+Channel] & 1
		}
		return out
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out[y*w+x] = src.Pixel(x, y)[Channel] & 1
		}
	}
	return out
}
