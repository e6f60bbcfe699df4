package pixpack

import (
	"fmt"
	"math"
)

// HeaderBits is the size of the frame header embedded ahead of every chunk:
// chunk index, total chunks and payload bit length, 32 bits each, big-endian.
const HeaderBits = 96

// FrameHeader holds the fixed fields of one chunk's frame.
type FrameHeader struct {
	Index       uint32
	Total       uint32
	PayloadBits uint32
}

// EncodeHeader builds the 96-bit header for a chunk.
func EncodeHeader(index, total, payloadBits int) (Bits, error) {
	fields := []struct {
		name string
		v    int
	}{
		{"chunk_index", index},
		{"total_chunks", total},
		{"payload_bit_length", payloadBits},
	}
	for _, f := range fields {
		if f.v < 0 || uint64(f.v) > math.MaxUint32 {
			return nil, &RangeError{Field: f.name, Value: int64(f.v)}
		}
	}
	h := FrameHeader{Index: uint32(index), Total: uint32(total), PayloadBits: uint32(payloadBits)}
	return h.Bits(), nil
}

// Bits returns the header as its 96-bit wire form.
func (h FrameHeader) Bits() Bits {
	w := newBitWriter(HeaderBits)
	w.writeBits(uint64(h.Index), 32)
	w.writeBits(uint64(h.Total), 32)
	w.writeBits(uint64(h.PayloadBits), 32)
	return w.bits
}

// ParseHeader reads a header from the first 96 bits of bits.
func ParseHeader(bits Bits) (FrameHeader, error) {
	var h FrameHeader
	if len(bits) < HeaderBits {
		return h, &MalformedHeaderError{
			Reason:    fmt.Sprintf("need %d bits, have %d", HeaderBits, len(bits)),
			Available: len(bits),
		}
	}
	r := newBitReader(bits[:HeaderBits])
	idx, _ := r.readBits(32)
	total, _ := r.readBits(32)
	plen, _ := r.readBits(32)
	h.Index, h.Total, h.PayloadBits = uint32(idx), uint32(total), uint32(plen)
	return h, nil
}

// Validate checks the header against a carrier holding available bits.
func (h FrameHeader) Validate(available int) error {
	switch {
	case h.Total == 0:
		return &MalformedHeaderError{Reason: "total_chunks is zero", Available: available}
	case h.Index >= h.Total:
		return &MalformedHeaderError{
			Reason:    fmt.Sprintf("chunk_index %d not below total_chunks %d", h.Index, h.Total),
			Available: available,
		}
	case uint64(HeaderBits)+uint64(h.PayloadBits) > uint64(available):
		return &MalformedHeaderError{
			Reason:    fmt.Sprintf("payload of %d bits overruns carrier of %d bits", h.PayloadBits, available),
			Available: available,
		}
	}
	return nil
}

func (h FrameHeader) String() string {
	return fmt.Sprintf("chunk %d/%d (%d bits)", h.Index+1, h.Total, h.PayloadBits)
}
