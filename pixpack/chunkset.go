package pixpack

import (
	"fmt"

	xxhash "github.com/cespare/xxhash/v2"
)

// DuplicatePolicy decides what happens when two carriers claim one index.
type DuplicatePolicy uint8

const (
	// DuplicateReject fails on any repeated chunk index.
	DuplicateReject DuplicatePolicy = iota
	// DuplicateIgnoreIdentical keeps the first copy when a repeat carries the
	// same payload digest, and fails otherwise.
	DuplicateIgnoreIdentical
)

func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicateReject:
		return "reject"
	case DuplicateIgnoreIdentical:
		return "ignore-identical"
	default:
		return fmt.Sprintf("unknown(%d)", p)
	}
}

// ParseDuplicatePolicy parses the String form of a policy.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch s {
	case "", "reject":
		return DuplicateReject, nil
	case "ignore-identical":
		return DuplicateIgnoreIdentical, nil
	default:
		return 0, fmt.Errorf("unknown duplicate policy: %q", s)
	}
}

type chunk struct {
	bits   Bits
	source string
	digest uint64
}

// ChunkSet collects extracted chunk payloads by index. The first total seen
// is the expected chunk count.
type ChunkSet struct {
	Policy DuplicatePolicy
	total  int
	chunks map[int]chunk
}

func NewChunkSet(policy DuplicatePolicy) *ChunkSet {
	return &ChunkSet{Policy: policy, total: -1, chunks: make(map[int]chunk)}
}

// Total returns the expected chunk count, or -1 before the first Add.
func (s *ChunkSet) Total() int { return s.total }

func (s *ChunkSet) Len() int { return len(s.chunks) }

// Add records the payload bits of chunk idx extracted from source.
func (s *ChunkSet) Add(idx, total int, payload Bits, source string) error {
	if s.total < 0 {
		s.total = total
	}
	if total != s.total {
		return &MalformedHeaderError{
			Image:  source,
			Reason: fmt.Sprintf("total_chunks %d disagrees with %d seen earlier", total, s.total),
		}
	}
	if idx < 0 || idx >= total {
		return &MalformedHeaderError{
			Image:  source,
			Reason: fmt.Sprintf("chunk_index %d not below total_chunks %d", idx, total),
		}
	}
	c := chunk{bits: payload, source: source, digest: xxhash.Sum64(BitsToBytes(payload))}
	if prev, ok := s.chunks[idx]; ok {
		identical := prev.digest == c.digest && len(prev.bits) == len(c.bits)
		if identical && s.Policy == DuplicateIgnoreIdentical {
			return nil
		}
		return &DuplicateChunkError{Index: idx, First: prev.source, Second: source, Identical: identical}
	}
	s.chunks[idx] = c
	return nil
}

// Missing lists the indices in 0..Total-1 not yet added, ascending.
func (s *ChunkSet) Missing() []int {
	var missing []int
	for i := 0; i < s.total; i++ {
		if _, ok := s.chunks[i]; !ok {
			missing = append(missing, i)
		}
	}
	return missing
}

// Complete reports whether the set holds exactly the indices 0..Total-1.
func (s *ChunkSet) Complete() bool {
	return s.total > 0 && len(s.chunks) == s.total
}

// Assemble concatenates the payload bits in ascending index order and
// packs the result into bytes. Chunks split at bit granularity, so packing
// happens only once, after concatenation.
func (s *ChunkSet) Assemble() ([]byte, error) {
	if s.total < 0 {
		return nil, ErrNoImages
	}
	if !s.Complete() {
		return nil, &IncompleteChunkSetError{Total: s.total, Missing: s.Missing()}
	}
	size := 0
	for _, c := range s.chunks {
		size += len(c.bits)
	}
	bits := make(Bits, 0, size)
	for i := 0; i < s.total; i++ {
		bits = append(bits, s.chunks[i].bits...)
	}
	return BitsToBytes(bits), nil
}

// Digest returns the xxhash64 of a payload, as logged by encode and decode.
func Digest(data []byte) uint64 { return xxhash.Sum64(data) }
