// Package scanner reads bytes from an in-memory JSON candidate while keeping
// track of line and column numbers for error messages.
package scanner

import "unicode/utf8"

type Pos struct {
	Line int
	Col  int
}

type Scanner struct {
	buf []byte

	// Current position in buf
	// 0 <= index <= len(buf)
	index int

	// Records lineno and colno of current position
	currentPos, prevPos Pos

	// Position in buf of the currently recorded token.
	// -1 means not recording a token
	tokenStartIndex int

	// Set when the last Read returned EOF, so that Back() after EOF does not
	// move the position.
	readEOF bool
}

func NewScanner(buf []byte) *Scanner {
	return &Scanner{
		buf:             buf,
		tokenStartIndex: -1,
		prevPos:         Pos{Line: -1},
	}
}

// Read returns the next byte and advances, or returns EOF at the end of the
// input.  Use AtEOF to tell the end of the input from a 0xFF byte.
func (s *Scanner) Read() byte {
	if s.index >= len(s.buf) {
		s.readEOF = true
		return EOF
	}
	b := s.buf[s.index]
	s.readEOF = false
	s.prevPos = s.currentPos
	switch {
	case b == '\n':
		s.currentPos.Line++
		s.currentPos.Col = 0
	case b&0xC0 != 0x80:
		// Not a utf8 continuation byte
		s.currentPos.Col++
	}
	s.index++
	return b
}

// Back undoes the last Read.  It can only be called once in a row.
func (s *Scanner) Back() {
	if s.readEOF {
		s.readEOF = false
		return
	}
	if s.index <= 0 || s.index <= s.tokenStartIndex {
		panic("cannot go back from start")
	}
	if s.prevPos.Line < 0 {
		panic("cannot go back twice")
	}
	s.index--
	s.currentPos = s.prevPos
	s.prevPos.Line = -1
}

func (s *Scanner) Peek() byte {
	if s.index >= len(s.buf) {
		return EOF
	}
	return s.buf[s.index]
}

// ReadRune decodes the UTF-8 sequence at the current position and advances
// past it.  An invalid sequence returns utf8.RuneError with size 1.  Back
// cannot undo ReadRune.
func (s *Scanner) ReadRune() (rune, int) {
	if s.index >= len(s.buf) {
		s.readEOF = true
		return utf8.RuneError, 0
	}
	r, n := utf8.DecodeRune(s.buf[s.index:])
	s.readEOF = false
	s.prevPos = Pos{Line: -1}
	s.currentPos.Col++
	s.index += n
	return r, n
}

// AtEOF reports whether all the input has been read.
func (s *Scanner) AtEOF() bool {
	return s.index >= len(s.buf)
}

// Lookahead returns up to n unread bytes without consuming them.  The
// returned slice aliases the input.
func (s *Scanner) Lookahead(n int) []byte {
	return s.buf[s.index:min(s.index+n, len(s.buf))]
}

func (s *Scanner) CurrentPos() Pos {
	return s.currentPos
}

// SkipSpaceAndPeek skips JSON whitespace and returns the next byte without
// consuming it.
func (s *Scanner) SkipSpaceAndPeek() byte {
	for i, b := range s.buf[s.index:] {
		switch {
		case b == '\n':
			s.currentPos.Line++
			s.currentPos.Col = 0
		case b == ' ' || b == '\t' || b == '\r':
			s.currentPos.Col++
		default:
			s.index += i
			return b
		}
	}
	s.index = len(s.buf)
	return EOF
}

func (s *Scanner) StartToken() Pos {
	if s.tokenStartIndex >= 0 {
		panic("already in record mode")
	}
	s.tokenStartIndex = s.index
	return s.currentPos
}

// EndToken returns the bytes read since StartToken.  The returned slice
// aliases the input.
func (s *Scanner) EndToken() []byte {
	if s.tokenStartIndex < 0 {
		panic("not in record mode")
	}
	tok := s.buf[s.tokenStartIndex:s.index]
	s.tokenStartIndex = -1
	return tok
}

// EOF is returned by Read and Peek past the end of the input.  0xFF never
// appears in valid UTF-8 but may still be present in the input.
const EOF byte = 0xFF
