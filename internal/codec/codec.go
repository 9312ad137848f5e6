// Package codec transparently decompresses input streams.
//
// The compression format is recognised from the first bytes of the stream so
// that compressed and plain input can be fed to the same stages.
package codec

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Format identifies a compression format.
type Format int

const (
	None Format = iota
	Gzip
	Zstd
	LZ4
	S2
)

func (f Format) String() string {
	switch f {
	case None:
		return "none"
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	case S2:
		return "s2"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

var magics = []struct {
	format Format
	prefix []byte
}{
	{Gzip, []byte{0x1f, 0x8b}},
	{Zstd, []byte{0x28, 0xb5, 0x2f, 0xfd}},
	{LZ4, []byte{0x04, 0x22, 0x4d, 0x18}},
	// Both S2 and Snappy framed streams are read by the s2 decoder.
	{S2, []byte("\xff\x06\x00\x00S2sTwO")},
	{S2, []byte("\xff\x06\x00\x00sNaPpY")},
}

// maxMagicLen is the number of bytes needed to recognise any format.
const maxMagicLen = 10

// Detect returns the format whose magic number prefixes data.
func Detect(data []byte) Format {
	for _, m := range magics {
		if bytes.HasPrefix(data, m.prefix) {
			return m.format
		}
	}
	return None
}

// NewReader returns a reader producing the decompressed content of r, and
// the detected format.  Plain input is returned as is.  Closing the returned
// reader releases the decompressor but does not close r.
func NewReader(r io.Reader) (io.ReadCloser, Format, error) {
	br := bufio.NewReader(r)
	// A short stream cannot be compressed, Peek errors are irrelevant here.
	prefix, _ := br.Peek(maxMagicLen)
	format := Detect(prefix)
	rc, err := Decompress(br, format)
	if err != nil {
		return nil, format, err
	}
	return rc, format, nil
}

// Decompress wraps r in the decompressor for format.
func Decompress(r io.Reader, format Format) (io.ReadCloser, error) {
	switch format {
	case None:
		return io.NopCloser(r), nil
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return zr, nil
	case Zstd:
		zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return zr.IOReadCloser(), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case S2:
		return io.NopCloser(s2.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("unsupported compression format: %s", format)
	}
}
