package jsonextract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/arnodel/boundedstream/internal/scanner"
)

// A Value is a decoded JSON value: nil, bool, float64 (or json.Number),
// string, []any or map[string]any.
type Value = any

// maxNesting bounds the recursion of the decoder.
const maxNesting = 10000

// A decoder turns a single JSON candidate into a Value.
type decoder struct {
	scanr     *scanner.Scanner
	useNumber bool
	depth     int
}

// Decode parses data, which must contain exactly one JSON value surrounded by
// optional whitespace.
func Decode(data []byte, useNumber bool) (Value, error) {
	d := &decoder{scanr: scanner.NewScanner(data), useNumber: useNumber}
	v, err := d.parseValue()
	if err != nil {
		return nil, err
	}
	d.scanr.SkipSpaceAndPeek()
	if !d.scanr.AtEOF() {
		return nil, d.unexpectedByte("unexpected data after value")
	}
	return v, nil
}

func (d *decoder) parseValue() (Value, error) {
	b := d.scanr.SkipSpaceAndPeek()
	switch b {
	case '"':
		return d.parseString()
	case '[':
		return d.parseArray()
	case '{':
		return d.parseObject()
	case 't':
		return true, d.checkBytes(trueBytes)
	case 'f':
		return false, d.checkBytes(falseBytes)
	case 'n':
		return nil, d.checkBytes(nullBytes)
	default:
		if b == '-' || scanner.IsDigit(b) {
			return d.parseNumber()
		}
		return nil, d.unexpectedByte("unexpected")
	}
}

func (d *decoder) enter() error {
	d.depth++
	if d.depth > maxNesting {
		return d.unexpectedByte("exceeded max nesting depth")
	}
	return nil
}

func (d *decoder) parseArray() (Value, error) {
	if err := d.expectByte('['); err != nil {
		return nil, err
	}
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer func() { d.depth-- }()
	arr := []any{}
	if d.scanr.SkipSpaceAndPeek() == ']' {
		d.scanr.Read()
		return arr, nil
	}
	for {
		v, err := d.parseValue()
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
		switch d.scanr.SkipSpaceAndPeek() {
		case ']':
			d.scanr.Read()
			return arr, nil
		case ',':
			d.scanr.Read()
		default:
			return nil, d.unexpectedByte("expected ']' or ',', got")
		}
	}
}

func (d *decoder) parseObject() (Value, error) {
	if err := d.expectByte('{'); err != nil {
		return nil, err
	}
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer func() { d.depth-- }()
	obj := map[string]any{}
	if d.scanr.SkipSpaceAndPeek() == '}' {
		d.scanr.Read()
		return obj, nil
	}
	for {
		if d.scanr.SkipSpaceAndPeek() != '"' {
			return nil, d.unexpectedByte("expected string key, got")
		}
		key, err := d.parseString()
		if err != nil {
			return nil, err
		}
		if d.scanr.SkipSpaceAndPeek() != ':' {
			return nil, d.unexpectedByte("expected ':', got")
		}
		d.scanr.Read()
		v, err := d.parseValue()
		if err != nil {
			return nil, err
		}
		obj[key.(string)] = v
		switch d.scanr.SkipSpaceAndPeek() {
		case '}':
			d.scanr.Read()
			return obj, nil
		case ',':
			d.scanr.Read()
		default:
			return nil, d.unexpectedByte("expected '}' or ',', got")
		}
	}
}

func (d *decoder) parseString() (Value, error) {
	if err := d.expectByte('"'); err != nil {
		return nil, err
	}
	var s []byte
	for {
		if d.scanr.AtEOF() {
			return nil, d.unexpectedByte("unterminated string")
		}
		b := d.scanr.Read()
		switch {
		case b == '"':
			return string(s), nil
		case b == '\\':
			x := d.scanr.Read()
			switch x {
			case '"', '\\', '/':
				s = append(s, x)
			case 'b':
				s = append(s, '\b')
			case 'f':
				s = append(s, '\f')
			case 'n':
				s = append(s, '\n')
			case 'r':
				s = append(s, '\r')
			case 't':
				s = append(s, '\t')
			case 'u':
				r, err := d.readHex4()
				if err != nil {
					return nil, err
				}
				if utf16.IsSurrogate(r) {
					r = d.pairSurrogate(r)
				}
				s = utf8.AppendRune(s, r)
			default:
				d.scanr.Back()
				return nil, d.unexpectedByte("invalid escape character")
			}
		case scanner.IsCtrl(b):
			d.scanr.Back()
			return nil, d.unexpectedByte("invalid control character in string")
		case b < utf8.RuneSelf:
			s = append(s, b)
		default:
			// Invalid UTF-8 decodes to U+FFFD.
			d.scanr.Back()
			r, _ := d.scanr.ReadRune()
			s = utf8.AppendRune(s, r)
		}
	}
}

// pairSurrogate combines r1 with the \u escape that follows it.  The escape
// is consumed only when the two form a valid pair, otherwise r1 decodes to
// U+FFFD and the escape is left for the next iteration.
func (d *decoder) pairSurrogate(r1 rune) rune {
	next := d.scanr.Lookahead(6)
	if len(next) < 6 || next[0] != '\\' || next[1] != 'u' {
		return utf8.RuneError
	}
	var r2 rune
	for _, b := range next[2:] {
		if !scanner.IsHexDigit(b) {
			return utf8.RuneError
		}
		r2 = r2<<4 | hexValue(b)
	}
	r := utf16.DecodeRune(r1, r2)
	if r == utf8.RuneError {
		return r
	}
	for range next {
		d.scanr.Read()
	}
	return r
}

func (d *decoder) readHex4() (rune, error) {
	var r rune
	for i := 0; i < 4; i++ {
		b := d.scanr.Read()
		if !scanner.IsHexDigit(b) {
			d.scanr.Back()
			return 0, d.unexpectedByte("expected hex, got")
		}
		r = r<<4 | hexValue(b)
	}
	return r, nil
}

func hexValue(b byte) rune {
	switch {
	case b >= 'a':
		return rune(b-'a') + 10
	case b >= 'A':
		return rune(b-'A') + 10
	default:
		return rune(b - '0')
	}
}

func (d *decoder) parseNumber() (Value, error) {
	d.scanr.StartToken()
	b := d.scanr.Read()

	// Sign part
	if b == '-' {
		b = d.scanr.Read()
	}

	// Integer part
	switch {
	case b == '0':
		b = d.scanr.Read()
	case b >= '1' && b <= '9':
		b, _ = d.readDigits()
	default:
		d.scanr.Back()
		d.scanr.EndToken()
		return nil, d.unexpectedByte("expected digit, got")
	}

	// Fraction part
	if b == '.' {
		var n int
		b, n = d.readDigits()
		if n == 0 {
			d.scanr.Back()
			d.scanr.EndToken()
			return nil, d.unexpectedByte("expected digit, got")
		}
	}

	// Exponent part
	if b == 'e' || b == 'E' {
		if p := d.scanr.Peek(); p == '-' || p == '+' {
			d.scanr.Read()
		}
		var n int
		_, n = d.readDigits()
		if n == 0 {
			d.scanr.Back()
			d.scanr.EndToken()
			return nil, d.unexpectedByte("expected digit, got")
		}
	}
	d.scanr.Back()
	lit := string(d.scanr.EndToken())
	if d.useNumber {
		return json.Number(lit), nil
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return nil, fmt.Errorf("number %s out of range", lit)
		}
		return nil, err
	}
	return f, nil
}

func (d *decoder) readDigits() (byte, int) {
	var n int
	for {
		b := d.scanr.Read()
		if !scanner.IsDigit(b) {
			return b, n
		}
		n++
	}
}

func (d *decoder) checkBytes(expected []byte) error {
	for _, xb := range expected {
		if err := d.expectByte(xb); err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) expectByte(xb byte) error {
	b := d.scanr.Read()
	if b != xb {
		d.scanr.Back()
		return d.unexpectedByte("expected %q, got", xb)
	}
	return nil
}

func (d *decoder) unexpectedByte(expected string, args ...any) error {
	pos := d.scanr.CurrentPos()
	if d.scanr.AtEOF() {
		return fmt.Errorf("syntax error at L%d,C%d: %s: <EOF>", pos.Line+1, pos.Col+1, fmt.Sprintf(expected, args...))
	}
	b := d.scanr.Read()
	return fmt.Errorf("syntax error at L%d,C%d: %s: %q", pos.Line+1, pos.Col+1, fmt.Sprintf(expected, args...), b)
}

var (
	trueBytes  = []byte("true")
	falseBytes = []byte("false")
	nullBytes  = []byte("null")
)
