// Package archive packs a directory tree into a single byte blob and back.
package archive

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

var (
	ErrUnknownFormat = errors.New("archive: unknown format")
	ErrUnsafePath    = errors.New("archive: entry escapes destination")
)

// Format identifies the container used for the payload blob.
type Format uint8

const (
	// FormatZip is a deflate zip, the same container the python tool wrote.
	FormatZip Format = iota
	FormatTar
	FormatTarZstd
	FormatTarLZ4
)

func (f Format) String() string {
	switch f {
	case FormatZip:
		return "zip"
	case FormatTar:
		return "tar"
	case FormatTarZstd:
		return "tar.zst"
	case FormatTarLZ4:
		return "tar.lz4"
	default:
		return fmt.Sprintf("unknown(%d)", f)
	}
}

// ParseFormat parses the String form of a format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "zip":
		return FormatZip, nil
	case "tar":
		return FormatTar, nil
	case "tar.zst", "zstd":
		return FormatTarZstd, nil
	case "tar.lz4", "lz4":
		return FormatTarLZ4, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Entry is one regular file inside an archive. Name is slash-separated and
// relative to the archive root.
type Entry struct {
	Name    string
	Mode    fs.FileMode
	ModTime time.Time
	Data    []byte
}

// ReadDir collects every regular file under dir in lexical walk order.
func ReadDir(dir string) ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		entries = append(entries, Entry{
			Name:    filepath.ToSlash(rel),
			Mode:    info.Mode().Perm(),
			ModTime: info.ModTime(),
			Data:    data,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	return entries, nil
}

// PackDir archives every regular file under dir.
func PackDir(dir string, f Format) ([]byte, error) {
	entries, err := ReadDir(dir)
	if err != nil {
		return nil, err
	}
	return Pack(entries, f)
}

// Pack builds an archive blob from entries.
func Pack(entries []Entry, f Format) ([]byte, error) {
	switch f {
	case FormatZip:
		return packZip(entries)
	case FormatTar:
		return packTar(entries)
	case FormatTarZstd:
		raw, err := packTar(entries)
		if err != nil {
			return nil, err
		}
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(raw, nil), nil
	case FormatTarLZ4:
		raw, err := packTar(entries)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		zw := lz4.NewWriter(&buf)
		if _, err := zw.Write(raw); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, f)
	}
}

func packZip(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.Name, Method: zip.Deflate, Modified: e.ModTime}
		hdr.SetMode(e.Mode)
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(e.Data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func packTar(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, e := range entries {
		hdr := &tar.Header{
			Typeflag: tar.TypeReg,
			Name:     e.Name,
			Mode:     int64(e.Mode.Perm()),
			Size:     int64(len(e.Data)),
			ModTime:  e.ModTime,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return nil, err
		}
		if _, err := tw.Write(e.Data); err != nil {
			return nil, err
		}
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var (
	magicZip      = []byte("PK\x03\x04")
	magicZipEmpty = []byte("PK\x05\x06")
	magicZstd     = []byte{0x28, 0xB5, 0x2F, 0xFD}
	magicLZ4      = []byte{0x04, 0x22, 0x4D, 0x18}
)

// Detect identifies the format of blob from its leading bytes.
func Detect(blob []byte) (Format, error) {
	switch {
	case bytes.HasPrefix(blob, magicZip), bytes.HasPrefix(blob, magicZipEmpty):
		return FormatZip, nil
	case bytes.HasPrefix(blob, magicZstd):
		return FormatTarZstd, nil
	case bytes.HasPrefix(blob, magicLZ4):
		return FormatTarLZ4, nil
	case len(blob) >= 262 && string(blob[257:262]) == "ustar":
		return FormatTar, nil
	case len(blob) >= 1024 && bytes.Count(blob[:1024], []byte{0}) == 1024:
		// an empty tar is two zero blocks
		return FormatTar, nil
	}
	return 0, ErrUnknownFormat
}

// Unpack reads every regular file from an archive blob of any Format.
func Unpack(blob []byte) ([]Entry, Format, error) {
	f, err := Detect(blob)
	if err != nil {
		return nil, 0, err
	}
	var entries []Entry
	switch f {
	case FormatZip:
		entries, err = unpackZip(blob)
	case FormatTar:
		entries, err = unpackTar(blob)
	case FormatTarZstd:
		dec, derr := zstd.NewReader(nil)
		if derr != nil {
			return nil, f, derr
		}
		defer dec.Close()
		raw, derr := dec.DecodeAll(blob, nil)
		if derr != nil {
			return nil, f, derr
		}
		entries, err = unpackTar(raw)
	case FormatTarLZ4:
		raw, derr := io.ReadAll(lz4.NewReader(bytes.NewReader(blob)))
		if derr != nil {
			return nil, f, derr
		}
		entries, err = unpackTar(raw)
	}
	return entries, f, err
}

func unpackZip(blob []byte) ([]Entry, error) {
	zr, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		return nil, err
	}
	var entries []Entry
	for _, zf := range zr.File {
		if !zf.Mode().IsRegular() {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", zf.Name, err)
		}
		entries = append(entries, Entry{Name: zf.Name, Mode: zf.Mode().Perm(), ModTime: zf.Modified, Data: data})
	}
	return entries, nil
}

func unpackTar(blob []byte) ([]Entry, error) {
	tr := tar.NewReader(bytes.NewReader(blob))
	var entries []Entry
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", hdr.Name, err)
		}
		entries = append(entries, Entry{
			Name:    hdr.Name,
			Mode:    fs.FileMode(hdr.Mode).Perm(),
			ModTime: hdr.ModTime,
			Data:    data,
		})
	}
}

// UnpackToDir writes the files of an archive blob below dir and returns how
// many were written. Entries that would land outside dir are rejected.
func UnpackToDir(blob []byte, dir string) (int, error) {
	entries, _, err := Unpack(blob)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if !filepath.IsLocal(filepath.FromSlash(e.Name)) {
			return 0, fmt.Errorf("%w: %q", ErrUnsafePath, e.Name)
		}
	}
	for i, e := range entries {
		path := filepath.Join(dir, filepath.FromSlash(e.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return i, err
		}
		mode := e.Mode
		if mode == 0 {
			mode = 0o644
		}
		if err := os.WriteFile(path, e.Data, mode); err != nil {
			return i, err
		}
		if !e.ModTime.IsZero() {
			_ = os.Chtimes(path, e.ModTime, e.ModTime)
		}
	}
	return len(entries), nil
}
