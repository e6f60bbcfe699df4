package pixpack

import (
	"slices"
	"strings"
)

// Image is a named carrier. The name is the canonical ordering key and
// appears in errors.
type Image struct {
	Name   string
	Pixels PixelReader
}

func (im Image) dims() Dimensions {
	return Dimensions{Name: im.Name, Width: im.Pixels.Width(), Height: im.Pixels.Height()}
}

// OrderKey compares two images for canonical ordering.
type OrderKey func(a, b Image) int

// ByName orders images lexicographically by name.
func ByName(a, b Image) int { return strings.Compare(a.Name, b.Name) }

// SortImages returns a stably sorted copy of images. A nil key means ByName.
func SortImages(images []Image, key OrderKey) []Image {
	if key == nil {
		key = ByName
	}
	out := slices.Clone(images)
	slices.SortStableFunc(out, key)
	return out
}

// Allotment is one image's share of the payload: bits [Offset, Offset+Bits).
type Allotment struct {
	Image    Image
	Index    int
	Offset   int
	Bits     int
	Capacity int
}

// CapacityOf returns the payload bits an image of the given size can hold.
func CapacityOf(width, height int) (int, error) {
	px := width * height
	if width < 0 || height < 0 {
		px = 0
	}
	if px < HeaderBits {
		return 0, &CapacityError{Need: HeaderBits, Capacity: px, Shortfall: HeaderBits - px}
	}
	return px - HeaderBits, nil
}

func capacities(dims []Dimensions) ([]int, error) {
	caps := make([]int, len(dims))
	for i, d := range dims {
		c, err := CapacityOf(d.Width, d.Height)
		if err != nil {
			err.(*CapacityError).Image = d.Name
			return nil, err
		}
		caps[i] = c
	}
	return caps, nil
}

// greedy fills caps left to right. It returns one allotment per chunk and
// the bits left over. An empty payload still yields a single empty chunk.
func greedy(caps []int, total int) ([]int, int) {
	var allot []int
	remaining := total
	for _, c := range caps {
		n := min(remaining, c)
		allot = append(allot, n)
		remaining -= n
		if remaining == 0 {
			break
		}
	}
	return allot, remaining
}

// PlanSplit splits totalBits across images in the order given.
func PlanSplit(images []Image, totalBits int) ([]Allotment, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	dims := make([]Dimensions, len(images))
	for i, im := range images {
		dims[i] = im.dims()
	}
	caps, err := capacities(dims)
	if err != nil {
		return nil, err
	}
	allot, short := greedy(caps, totalBits)
	if short > 0 {
		sum := 0
		for _, c := range caps {
			sum += c
		}
		return nil, &CapacityError{Need: totalBits, Capacity: sum, Shortfall: short}
	}
	plan := make([]Allotment, len(allot))
	off := 0
	for i, n := range allot {
		plan[i] = Allotment{Image: images[i], Index: i, Offset: off, Bits: n, Capacity: caps[i]}
		off += n
	}
	return plan, nil
}

// ReportEntry is one image's line in a capacity report. Chunk is -1 when
// the image would not be used.
type ReportEntry struct {
	Dimensions
	Capacity int
	Allotted int
	Chunk    int
}

// Report is a dry-run projection of PlanSplit.
type Report struct {
	PayloadBytes  int
	PayloadBits   int
	TotalCapacity int
	Shortfall     int
	Chunks        int
	Images        []ReportEntry
}

func (r Report) Fits() bool { return r.Shortfall == 0 }

// ProjectCapacity reports how a payload of payloadBytes would be split
// across images of the given sizes, in the order given, without embedding.
func ProjectCapacity(payloadBytes int, dims []Dimensions) (Report, error) {
	rep := Report{PayloadBytes: payloadBytes, PayloadBits: payloadBytes * 8}
	caps, err := capacities(dims)
	if err != nil {
		return rep, err
	}
	allot, short := greedy(caps, rep.PayloadBits)
	rep.Shortfall = short
	if short == 0 {
		rep.Chunks = len(allot)
	}
	rep.Images = make([]ReportEntry, len(dims))
	for i, d := range dims {
		e := ReportEntry{Dimensions: d, Capacity: caps[i], Chunk: -1}
		if i < len(allot) {
			e.Allotted = allot[i]
			if short == 0 {
				e.Chunk = i
			}
		}
		rep.TotalCapacity += caps[i]
		rep.Images[i] = e
	}
	return rep, nil
}
