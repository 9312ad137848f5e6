// Package filereader reads files in fixed-size chunks under a memory budget.
//
// The primary interface is pull-based: Chunks returns an iterator which only
// reads a chunk when the consumer asks for it.  The file is opened when
// iteration starts and is closed however iteration ends.
//
//	r, err := filereader.New("data.bin", filereader.Config{})
//	if err != nil {
//		return err
//	}
//	for chunk, err := range r.Chunks(ctx) {
//		if err != nil {
//			return err
//		}
//		process(chunk)
//	}
//
// For consumers that expect a conventional byte stream, Open returns an
// io.ReadCloser and Reader implements io.WriterTo.
package filereader

import (
	"bufio"
	"context"
	"errors"
	"io"
	"iter"
	"os"

	"github.com/creasty/defaults"

	"github.com/arnodel/boundedstream/streamerr"
)

const stageName = "filereader"

type Config struct {
	// ChunkSize is the size in bytes of each chunk (the last one may be
	// shorter).
	ChunkSize int `yaml:"chunk_size" default:"65536"`
	// MaxMemoryUsage is the number of bytes that may be in flight before
	// reading fails.
	MaxMemoryUsage int `yaml:"max_memory_usage" default:"10485760"`
}

func (c Config) WithDefaults() Config {
	defaults.MustSet(&c)
	return c
}

func (c Config) Validate() error {
	switch {
	case c.ChunkSize <= 0:
		return streamerr.InvalidConfig(stageName, "ChunkSize", c.ChunkSize)
	case c.MaxMemoryUsage <= 0:
		return streamerr.InvalidConfig(stageName, "MaxMemoryUsage", c.MaxMemoryUsage)
	}
	return nil
}

// A Reader streams the content of a named file.  It is not safe for
// concurrent use.
type Reader struct {
	name        string
	cfg         Config
	memoryUsage int
	position    int64
}

var _ io.WriterTo = (*Reader)(nil)

func New(name string, cfg Config) (*Reader, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Reader{name: name, cfg: cfg}, nil
}

// Name returns the name of the file.
func (r *Reader) Name() string {
	return r.name
}

// MemoryUsage returns the number of bytes currently handed to a consumer.
func (r *Reader) MemoryUsage() int {
	return r.memoryUsage
}

// Position returns the offset in the file of the end of the last chunk read.
func (r *Reader) Position() int64 {
	return r.position
}

// Chunks returns a sequence of the chunks of the file, read from the start.
// Each chunk is ChunkSize bytes long except possibly the last one.  The
// yielded slice is only valid until the next iteration step.
//
// An error is yielded at most once, after which the sequence ends.  Errors
// opening or reading the file are yielded as is; if the bytes in flight
// exceed MaxMemoryUsage when a read is about to happen, a
// streamerr.ErrFileMemoryLimit error is yielded.
func (r *Reader) Chunks(ctx context.Context) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		f, err := openFile(r.name)
		if err != nil {
			yield(nil, err)
			return
		}
		defer f.Close()

		r.position = 0
		buf := make([]byte, r.cfg.ChunkSize)
		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if r.memoryUsage > r.cfg.MaxMemoryUsage {
				yield(nil, streamerr.New(stageName, "Chunks", streamerr.ErrFileMemoryLimit,
					"%d bytes in use, limit is %d", r.memoryUsage, r.cfg.MaxMemoryUsage))
				return
			}
			n, err := io.ReadFull(f, buf)
			if n == 0 {
				if err != nil && !errors.Is(err, io.EOF) {
					yield(nil, err)
				}
				return
			}
			if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
				yield(nil, err)
				return
			}
			r.position += int64(n)
			r.memoryUsage += n
			more := yield(buf[:n], nil)
			r.memoryUsage -= n
			if !more {
				return
			}
		}
	}
}

// WriteTo pushes every chunk of the file to w.
func (r *Reader) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for chunk, err := range r.Chunks(context.Background()) {
		if err != nil {
			return total, err
		}
		n, err := w.Write(chunk)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Open opens the named file as a buffered byte stream, using ChunkSize as the
// buffer size.  The caller must close it.
func Open(name string, cfg Config) (io.ReadCloser, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f, err := openFile(name)
	if err != nil {
		return nil, err
	}
	return &bufferedCloser{Reader: bufio.NewReaderSize(f, cfg.ChunkSize), c: f}, nil
}

// Replaced in tests to observe Close calls.
var openFile = func(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

// A bufferedCloser combines a bufio.Reader with the Closer of the stream it
// buffers.
type bufferedCloser struct {
	*bufio.Reader
	c io.Closer
}

func (b *bufferedCloser) Close() error {
	return b.c.Close()
}
