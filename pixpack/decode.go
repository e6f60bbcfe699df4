package pixpack

import "errors"

type frame struct {
	header  FrameHeader
	payload Bits
}

// readFrame extracts and validates the frame held by one carrier.
func readFrame(src PixelReader) (frame, error) {
	bits := Extract(src)
	hdr, err := ParseHeader(bits)
	if err != nil {
		return frame{}, err
	}
	if err := hdr.Validate(len(bits)); err != nil {
		return frame{}, err
	}
	end := HeaderBits + int(hdr.PayloadBits)
	return frame{header: hdr, payload: bits[HeaderBits:end:end]}, nil
}

func tagImage(err error, name string) error {
	var mh *MalformedHeaderError
	if errors.As(err, &mh) && mh.Image == "" {
		mh.Image = name
	}
	return err
}

// Inspect reads the frame header of a single carrier.
func Inspect(src PixelReader) (FrameHeader, error) {
	f, err := readFrame(src)
	return f.header, err
}

// Decode extracts a frame from every image and reassembles the payload.
// Images may be supplied in any order; chunks are placed by their index.
func Decode(images []Image, opts Options) ([]byte, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	ordered := SortImages(images, opts.Order)
	frames := make([]frame, len(ordered))
	err := forEach(len(ordered), opts.workers(len(ordered)), func(i int) error {
		f, err := readFrame(ordered[i].Pixels)
		if err != nil {
			return tagImage(err, ordered[i].Name)
		}
		frames[i] = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	set := NewChunkSet(opts.Duplicates)
	for i, f := range frames {
		if opts.Observe != nil {
			opts.Observe(ordered[i].Name, f.header)
		}
		if err := set.Add(int(f.header.Index), int(f.header.Total), f.payload, ordered[i].Name); err != nil {
			return nil, err
		}
	}
	return set.Assemble()
}
