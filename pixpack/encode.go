package pixpack

import (
	"errors"
	"runtime"
	"sync"
)

// Options tunes Encode and Decode. The zero value sorts by name, uses
// GOMAXPROCS workers and rejects duplicate chunks.
type Options struct {
	Order      OrderKey
	Workers    int
	Duplicates DuplicatePolicy
	// Observe, when set, is called by Decode for each frame read, in
	// canonical image order.
	Observe func(image string, h FrameHeader)
}

func (o Options) workers(n int) int {
	w := o.Workers
	if w <= 0 {
		w = runtime.GOMAXPROCS(0)
	}
	return min(w, n)
}

// Chunk is one embedded frame and the stego canvas holding it.
type Chunk struct {
	Header FrameHeader
	Source string
	Canvas *Canvas
}

// Encode splits blob across images and embeds one frame per used image.
// Images are put in canonical order first; chunk indices follow that order.
// Images left over after the payload is placed are not returned.
func Encode(blob []byte, images []Image, opts Options) ([]Chunk, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	ordered := SortImages(images, opts.Order)
	bits := BytesToBits(blob)
	plan, err := PlanSplit(ordered, len(bits))
	if err != nil {
		return nil, err
	}
	total := len(plan)
	out := make([]Chunk, total)
	err = forEach(total, opts.workers(total), func(i int) error {
		a := plan[i]
		hdr, err := EncodeHeader(a.Index, total, a.Bits)
		if err != nil {
			return err
		}
		frame := make(Bits, 0, HeaderBits+a.Bits)
		frame = append(frame, hdr...)
		frame = append(frame, bits[a.Offset:a.Offset+a.Bits]...)
		c, err := Embed(a.Image.Pixels, frame)
		if err != nil {
			var ce *CapacityError
			if errors.As(err, &ce) {
				ce.Image = a.Image.Name
			}
			return err
		}
		out[i] = Chunk{
			Header: FrameHeader{Index: uint32(a.Index), Total: uint32(total), PayloadBits: uint32(a.Bits)},
			Source: a.Image.Name,
			Canvas: c,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// forEach runs fn(0..n-1) on up to workers goroutines and waits for all of
// them. The error of the lowest failing index is returned.
func forEach(n, workers int, fn func(i int) error) error {
	if workers <= 1 {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}
	errs := make([]error, n)
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			errs[i] = fn(i)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
