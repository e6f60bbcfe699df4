package pixpack

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for errors.Is. Every typed error below unwraps to one of them.
var (
	ErrRange              = errors.New("pixpack: header field out of range")
	ErrCapacity           = errors.New("pixpack: insufficient capacity")
	ErrMalformedHeader    = errors.New("pixpack: malformed frame header")
	ErrIncompleteChunkSet = errors.New("pixpack: incomplete chunk set")
	ErrDuplicateChunk     = errors.New("pixpack: duplicate chunk")
	ErrNoImages           = errors.New("pixpack: no carrier images")
)

// RangeError reports a header field that does not fit in 32 unsigned bits.
type RangeError struct {
	Field string
	Value int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("pixpack: header field %s=%d does not fit in 32 bits", e.Field, e.Value)
}

func (e *RangeError) Unwrap() error { return ErrRange }

// CapacityError reports bits that do not fit. Image is empty when the
// shortfall is over the whole image set rather than a single carrier.
type CapacityError struct {
	Image     string
	Need      int
	Capacity  int
	Shortfall int
}

func (e *CapacityError) Error() string {
	if e.Image == "" {
		return fmt.Sprintf("pixpack: images hold %d bits, payload needs %d (short by %d bits)",
			e.Capacity, e.Need, e.Shortfall)
	}
	return fmt.Sprintf("pixpack: image %q holds %d bits, needs %d (short by %d bits)",
		e.Image, e.Capacity, e.Need, e.Shortfall)
}

func (e *CapacityError) Unwrap() error { return ErrCapacity }

// MalformedHeaderError reports a frame header that cannot be read or is
// inconsistent with its carrier.
type MalformedHeaderError struct {
	Image     string
	Reason    string
	Available int
}

func (e *MalformedHeaderError) Error() string {
	if e.Image == "" {
		return fmt.Sprintf("pixpack: malformed header: %s", e.Reason)
	}
	return fmt.Sprintf("pixpack: malformed header in %q: %s", e.Image, e.Reason)
}

func (e *MalformedHeaderError) Unwrap() error { return ErrMalformedHeader }

// IncompleteChunkSetError lists the chunk indices that were never supplied.
type IncompleteChunkSetError struct {
	Total   int
	Missing []int
}

func (e *IncompleteChunkSetError) Error() string {
	parts := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		parts[i] = fmt.Sprint(m)
	}
	return fmt.Sprintf("pixpack: missing %d of %d chunks: [%s]",
		len(e.Missing), e.Total, strings.Join(parts, " "))
}

func (e *IncompleteChunkSetError) Unwrap() error { return ErrIncompleteChunkSet }

// DuplicateChunkError reports two carriers claiming the same chunk index.
// Identical is set when both copies carry the same payload.
type DuplicateChunkError struct {
	Index     int
	First     string
	Second    string
	Identical bool
}

func (e *DuplicateChunkError) Error() string {
	what := "conflicting"
	if e.Identical {
		what = "identical"
	}
	return fmt.Sprintf("pixpack: chunk %d supplied twice (%s copies in %q and %q)",
		e.Index, what, e.First, e.Second)
}

func (e *DuplicateChunkError) Unwrap() error { return ErrDuplicateChunk }
