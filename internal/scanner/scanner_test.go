package scanner

import (
	"testing"
)

func strScanner(s string) *Scanner {
	return NewScanner([]byte(s))
}

func assertRead(t *testing.T, s *Scanner, xb byte) {
	t.Helper()
	b := s.Read()
	if b != xb {
		t.Fatalf("Read: expected b = %q, got %q", xb, b)
	}
}

func assertPeek(t *testing.T, s *Scanner, xb byte) {
	t.Helper()
	b := s.Peek()
	if b != xb {
		t.Fatalf("Peek: expected b = %q, got %q", xb, b)
	}
}

func assertCurrentPos(t *testing.T, s *Scanner, line, col int) {
	t.Helper()
	pos := s.CurrentPos()
	if pos.Line != line || pos.Col != col {
		t.Fatalf("CurrentPos: expected (%d, %d) got (%d, %d)", line, col, pos.Line, pos.Col)
	}
}

func assertStartToken(t *testing.T, s *Scanner, line, col int) {
	t.Helper()
	pos := s.StartToken()
	if pos.Line != line || pos.Col != col {
		t.Fatalf("StartToken: expected (%d, %d) got (%d, %d)", line, col, pos.Line, pos.Col)
	}
}

func assertEndToken(t *testing.T, s *Scanner, tokStr string) {
	t.Helper()
	tok := s.EndToken()
	if string(tok) != tokStr {
		t.Fatalf("EndToken: expected %q got %q", tokStr, tok)
	}
}

func TestSimple(t *testing.T) {
	scanner := strScanner("bonjour")
	assertRead(t, scanner, 'b')
	assertRead(t, scanner, 'o')
	assertCurrentPos(t, scanner, 0, 2)
	assertPeek(t, scanner, 'n')
	assertCurrentPos(t, scanner, 0, 2)
	assertRead(t, scanner, 'n')
	assertCurrentPos(t, scanner, 0, 3)
	scanner.Back()
	assertCurrentPos(t, scanner, 0, 2)
	assertRead(t, scanner, 'n')
	assertCurrentPos(t, scanner, 0, 3)

	assertStartToken(t, scanner, 0, 3)
	assertRead(t, scanner, 'j')
	assertRead(t, scanner, 'o')
	assertRead(t, scanner, 'u')
	assertRead(t, scanner, 'r')
	assertCurrentPos(t, scanner, 0, 7)
	assertRead(t, scanner, EOF)
	scanner.Back()
	assertRead(t, scanner, EOF)
	assertCurrentPos(t, scanner, 0, 7)
	assertEndToken(t, scanner, "jour")
}

func TestLinesAndSpaces(t *testing.T) {
	scanner := strScanner("  \n\t x\r\n  é!")
	if b := scanner.SkipSpaceAndPeek(); b != 'x' {
		t.Fatalf("SkipSpaceAndPeek: expected 'x', got %q", b)
	}
	assertCurrentPos(t, scanner, 1, 2)
	assertRead(t, scanner, 'x')
	if b := scanner.SkipSpaceAndPeek(); b != 0xC3 {
		t.Fatalf("SkipSpaceAndPeek: expected first byte of 'é', got %q", b)
	}
	assertCurrentPos(t, scanner, 2, 2)
	scanner.Read()
	scanner.Read()
	// A multi-byte character counts as one column.
	assertCurrentPos(t, scanner, 2, 3)
	assertRead(t, scanner, '!')
	if b := scanner.SkipSpaceAndPeek(); b != EOF {
		t.Fatalf("SkipSpaceAndPeek: expected EOF, got %q", b)
	}
}

func TestLookahead(t *testing.T) {
	scanner := strScanner(`\u00e9`)
	if got := string(scanner.Lookahead(2)); got != `\u` {
		t.Fatalf("Lookahead: expected %q, got %q", `\u`, got)
	}
	scanner.Read()
	if got := string(scanner.Lookahead(10)); got != "u00e9" {
		t.Fatalf("Lookahead: expected %q, got %q", "u00e9", got)
	}
	assertCurrentPos(t, scanner, 0, 1)
}

func TestAtEOF(t *testing.T) {
	scanner := strScanner("a\xffb")
	assertRead(t, scanner, 'a')
	// A 0xFF byte reads like EOF but is not the end of the input.
	assertRead(t, scanner, EOF)
	if scanner.AtEOF() {
		t.Fatal("AtEOF: expected false before the end")
	}
	scanner.Back()
	assertPeek(t, scanner, 0xFF)
	scanner.Read()
	assertRead(t, scanner, 'b')
	if !scanner.AtEOF() {
		t.Fatal("AtEOF: expected true at the end")
	}
}

func TestReadRune(t *testing.T) {
	scanner := strScanner("é\xfe!")
	if r, n := scanner.ReadRune(); r != 'é' || n != 2 {
		t.Fatalf("ReadRune: expected ('é', 2), got (%q, %d)", r, n)
	}
	assertCurrentPos(t, scanner, 0, 1)
	if r, n := scanner.ReadRune(); r != '\uFFFD' || n != 1 {
		t.Fatalf("ReadRune: expected (U+FFFD, 1), got (%q, %d)", r, n)
	}
	assertCurrentPos(t, scanner, 0, 2)
	assertRead(t, scanner, '!')
	if _, n := scanner.ReadRune(); n != 0 {
		t.Fatalf("ReadRune: expected size 0 at EOF, got %d", n)
	}
}

func TestBackTwicePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	scanner := strScanner("ab")
	scanner.Read()
	scanner.Read()
	scanner.Back()
	scanner.Back()
}
