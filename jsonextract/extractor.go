// Package jsonextract extracts complete top-level JSON objects and arrays from
// a stream of text fragments.
//
// Fragments can be cut anywhere, including inside strings and escape
// sequences.  The Extractor buffers input until a complete value is
// available, decodes it, emits it and drops it from its buffer:
//
//	out := stream.NewAccumulatorStream[jsonextract.Value]()
//	x, _ := jsonextract.New(jsonextract.Config{}, out)
//	x.FeedString(`{"a":1}{"b"`)  // emits {"a":1}
//	x.FeedString(`:2}`)          // emits {"b":2}
//
// Any failure (value too large, invalid JSON, too many values) is terminal.
package jsonextract

import (
	"bytes"

	"github.com/creasty/defaults"

	"github.com/arnodel/boundedstream/stream"
	"github.com/arnodel/boundedstream/streamerr"
)

const stageName = "jsonextract"

const jsonSpace = " \t\r\n"

// Buffers with more spare capacity than this are released once empty.
const maxIdleBufferSize = 64 * 1024

type Config struct {
	// MaxObjectSize is the maximum size in bytes of a value, including any
	// whitespace preceding it.
	MaxObjectSize int `yaml:"max_object_size" default:"1048576"`
	// MaxObjects is the number of values after which the Extractor fails.
	MaxObjects int `yaml:"max_objects" default:"10000"`
	// UseNumber decodes numbers as json.Number instead of float64.
	UseNumber bool `yaml:"use_number"`
}

func (c Config) WithDefaults() Config {
	defaults.MustSet(&c)
	return c
}

func (c Config) Validate() error {
	switch {
	case c.MaxObjectSize <= 0:
		return streamerr.InvalidConfig(stageName, "MaxObjectSize", c.MaxObjectSize)
	case c.MaxObjects <= 0:
		return streamerr.InvalidConfig(stageName, "MaxObjects", c.MaxObjects)
	}
	return nil
}

// An Extractor is not safe for concurrent use.
type Extractor struct {
	cfg   Config
	out   stream.WriteStream[Value]
	buf   []byte
	scan  boundaryScanner
	count int
	err   error
}

var _ stream.Feeder = (*Extractor)(nil)

func New(cfg Config, out stream.WriteStream[Value]) (*Extractor, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Extractor{cfg: cfg, out: out}, nil
}

// Feed appends fragment to the buffer and emits every value it completes.
func (x *Extractor) Feed(fragment []byte) error {
	if x.err != nil {
		return x.err
	}
	x.buf = append(x.buf, fragment...)
	head := 0
	for {
		end, err := x.scan.next(x.buf[head:])
		if err != nil {
			return x.fail("Feed", streamerr.ErrInvalidJSON, "%s", err)
		}
		if end < 0 {
			break
		}
		candidate := x.buf[head : head+end+1]
		head += end + 1
		if err := x.extract(candidate); err != nil {
			return err
		}
	}
	x.discard(head)
	if x.scan.idle() {
		// Whitespace between values is not counted against MaxObjectSize.
		n := len(x.buf) - len(bytes.TrimLeft(x.buf, jsonSpace))
		x.discard(n)
		x.scan.shift(n)
	}
	if len(x.buf) > x.cfg.MaxObjectSize {
		return x.fail("Feed", streamerr.ErrObjectTooLarge, "%d bytes buffered without a complete value, limit is %d", len(x.buf), x.cfg.MaxObjectSize)
	}
	return nil
}

// FeedString is Feed for text fragments.
func (x *Extractor) FeedString(fragment string) error {
	return x.Feed([]byte(fragment))
}

// Finish checks that no partial value is left in the buffer.
func (x *Extractor) Finish() error {
	if x.err != nil {
		return x.err
	}
	rest := bytes.TrimLeft(x.buf, jsonSpace)
	if len(rest) > 0 {
		return x.fail("Finish", streamerr.ErrTruncated, "%d bytes left at depth %d", len(rest), x.scan.depth())
	}
	x.buf = nil
	return nil
}

// Count returns the number of values extracted so far.
func (x *Extractor) Count() int {
	return x.count
}

// Buffered returns the number of bytes waiting for a complete value.
func (x *Extractor) Buffered() int {
	return len(x.buf)
}

func (x *Extractor) extract(candidate []byte) error {
	if len(candidate) > x.cfg.MaxObjectSize {
		return x.fail("Feed", streamerr.ErrObjectTooLarge, "value %d is %d bytes, limit is %d", x.count+1, len(candidate), x.cfg.MaxObjectSize)
	}
	v, err := Decode(candidate, x.cfg.UseNumber)
	if err != nil {
		return x.fail("Feed", streamerr.ErrInvalidJSON, "value %d: %s", x.count+1, err)
	}
	x.out.Put(v)
	x.count++
	if x.count >= x.cfg.MaxObjects {
		return x.fail("Feed", streamerr.ErrTooManyObjects, "limit is %d", x.cfg.MaxObjects)
	}
	return nil
}

// discard drops the first n bytes of the buffer.
func (x *Extractor) discard(n int) {
	if n == 0 {
		return
	}
	rest := copy(x.buf, x.buf[n:])
	x.buf = x.buf[:rest]
	if rest == 0 && cap(x.buf) > maxIdleBufferSize {
		x.buf = nil
	}
}

func (x *Extractor) fail(op string, sentinel error, format string, args ...any) error {
	x.err = streamerr.New(stageName, op, sentinel, format, args...)
	return x.err
}
