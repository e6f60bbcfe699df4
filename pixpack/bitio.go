package pixpack

// Bits is a bit stream, one element per bit, each 0 or 1.
type Bits []uint8

// BytesToBits expands data into 8*len(data) bits, most significant bit first.
func BytesToBits(data []byte) Bits {
	w := newBitWriter(len(data) * 8)
	for _, b := range data {
		w.writeBits(uint64(b), 8)
	}
	return w.bits
}

// BitsToBytes packs bits back into bytes, most significant bit first.
// A trailing partial byte is padded with zero bits on the low end.
func BitsToBytes(bits Bits) []byte {
	out := make([]byte, 0, (len(bits)+7)/8)
	r := newBitReader(bits)
	for r.remaining() >= 8 {
		v, _ := r.readBits(8)
		out = append(out, byte(v))
	}
	if n := r.remaining(); n > 0 {
		v, _ := r.readBits(uint8(n))
		out = append(out, byte(v<<(8-n)))
	}
	return out
}

type bitWriter struct {
	bits Bits
}

func newBitWriter(capacity int) *bitWriter { return &bitWriter{bits: make(Bits, 0, capacity)} }

// writeBits appends the low n bits of v, high bit first.
func (w *bitWriter) writeBits(v uint64, n uint8) {
	for i := int(n) - 1; i >= 0; i-- {
		w.bits = append(w.bits, uint8(v>>uint(i))&1)
	}
}

type bitReader struct {
	bits Bits
	pos  int
}

func newBitReader(b Bits) *bitReader { return &bitReader{bits: b} }

func (r *bitReader) remaining() int { return len(r.bits) - r.pos }

// readBits consumes n bits, high bit first. It returns false when fewer
// than n bits remain, leaving the reader untouched.
func (r *bitReader) readBits(n uint8) (uint64, bool) {
	if r.remaining() < int(n) {
		return 0, false
	}
	var v uint64
	for _, b := range r.bits[r.pos : r.pos+int(n)] {
		v = v<<1 | uint64(b&1)
	}
	r.pos += int(n)
	return v, true
}
