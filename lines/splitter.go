// Package lines splits a stream of byte fragments into lines.
package lines

import (
	"bytes"

	"github.com/creasty/defaults"

	"github.com/arnodel/boundedstream/stream"
	"github.com/arnodel/boundedstream/streamerr"
)

const stageName = "lines"

// Terminator separates lines.  It is not part of emitted lines.
const Terminator = '\n'

type Config struct {
	// MaxLineLength is the maximum length of a line in bytes, including a
	// partial line still waiting for its terminator.
	MaxLineLength int `yaml:"max_line_length" default:"1048576"`
}

func (c Config) WithDefaults() Config {
	defaults.MustSet(&c)
	return c
}

func (c Config) Validate() error {
	if c.MaxLineLength <= 0 {
		return streamerr.InvalidConfig(stageName, "MaxLineLength", c.MaxLineLength)
	}
	return nil
}

// A Splitter emits every complete line fed to it and keeps at most one
// partial line between calls.  It is not safe for concurrent use.
type Splitter struct {
	maxLen  int
	out     stream.WriteStream[string]
	partial []byte
	count   int
	err     error
}

var _ stream.Feeder = (*Splitter)(nil)

func New(cfg Config, out stream.WriteStream[string]) (*Splitter, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Splitter{maxLen: cfg.MaxLineLength, out: out}, nil
}

// Feed appends fragment to the pending partial line and emits all the lines
// it completes.
func (s *Splitter) Feed(fragment []byte) error {
	if s.err != nil {
		return s.err
	}
	for {
		i := bytes.IndexByte(fragment, Terminator)
		if i < 0 {
			break
		}
		if err := s.check("Feed", len(s.partial)+i, ""); err != nil {
			return err
		}
		var line string
		if len(s.partial) == 0 {
			line = string(fragment[:i])
		} else {
			line = string(append(s.partial, fragment[:i]...))
			s.partial = s.partial[:0]
		}
		s.emit(line)
		fragment = fragment[i+1:]
	}
	if err := s.check("Feed", len(s.partial)+len(fragment), " (unterminated)"); err != nil {
		return err
	}
	s.partial = append(s.partial, fragment...)
	return nil
}

// FeedString is Feed for text fragments.
func (s *Splitter) FeedString(fragment string) error {
	return s.Feed([]byte(fragment))
}

// Finish emits the pending partial line if it is not empty.
func (s *Splitter) Finish() error {
	if s.err != nil {
		return s.err
	}
	if len(s.partial) == 0 {
		return nil
	}
	if err := s.check("Finish", len(s.partial), " at end of stream"); err != nil {
		return err
	}
	line := string(s.partial)
	s.partial = nil
	s.emit(line)
	return nil
}

// Lines returns the number of lines emitted so far.
func (s *Splitter) Lines() int {
	return s.count
}

// Pending returns the length of the partial line held by the splitter.
func (s *Splitter) Pending() int {
	return len(s.partial)
}

func (s *Splitter) emit(line string) {
	s.count++
	s.out.Put(line)
}

func (s *Splitter) check(op string, n int, where string) error {
	if n <= s.maxLen {
		return nil
	}
	s.err = streamerr.New(stageName, op, streamerr.ErrLineTooLong, "line %d is %d bytes%s, limit is %d", s.count+1, n, where, s.maxLen)
	return s.err
}
