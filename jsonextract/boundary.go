package jsonextract

import "fmt"

// A boundaryScanner finds where the next top-level object or array ends in a
// growing buffer.  Its state is kept between calls so each byte is scanned
// once, however the input is fragmented.
type boundaryScanner struct {
	// Offset of the next byte to scan, relative to the head of the buffer.
	pos int

	inString bool
	escaped  bool

	// Closing brackets expected for the currently open brackets, innermost
	// last.  Its length is the nesting depth.
	closers []byte
}

// next scans buf from where the previous call stopped.  It returns the index
// of the bracket closing the first top-level value, or -1 if buf does not
// contain a complete value yet.  After a value is found the scanner is reset
// so that the next call starts at the head of the remaining buffer.
func (s *boundaryScanner) next(buf []byte) (int, error) {
	for ; s.pos < len(buf); s.pos++ {
		b := buf[s.pos]
		if s.escaped {
			s.escaped = false
			continue
		}
		if s.inString {
			switch b {
			case '\\':
				s.escaped = true
			case '"':
				s.inString = false
			}
			continue
		}
		switch b {
		case '"':
			s.inString = true
		case '{':
			s.closers = append(s.closers, '}')
		case '[':
			s.closers = append(s.closers, ']')
		case '}', ']':
			depth := len(s.closers)
			if depth == 0 {
				return -1, fmt.Errorf("unexpected %q at offset %d outside of any object or array", b, s.pos)
			}
			if want := s.closers[depth-1]; want != b {
				return -1, fmt.Errorf("mismatched %q at offset %d, expected %q", b, s.pos, want)
			}
			s.closers = s.closers[:depth-1]
			if depth == 1 {
				end := s.pos
				s.reset()
				return end, nil
			}
		}
	}
	return -1, nil
}

func (s *boundaryScanner) reset() {
	s.pos = 0
	s.inString = false
	s.escaped = false
	s.closers = s.closers[:0]
}

// depth returns the current nesting depth.
func (s *boundaryScanner) depth() int {
	return len(s.closers)
}

// idle reports whether the scanner is outside of any string or bracket.
func (s *boundaryScanner) idle() bool {
	return len(s.closers) == 0 && !s.inString && !s.escaped
}

// shift accounts for n bytes dropped from the head of the buffer.  They must
// have been scanned already.
func (s *boundaryScanner) shift(n int) {
	s.pos -= n
}
