package jsonextract

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDecodeValues checks decoded values against the standard library.
func TestDecodeValues(t *testing.T) {
	inputs := []string{
		`true`,
		`false`,
		`null`,
		`0`,
		`-0.5`,
		`12e-3`,
		`1E+2`,
		`""`,
		`"hello world"`,
		`"tab\tnew\nline\r\b\f\/\\\""`,
		`"étÉ"`,
		`"😀"`,
		`"café ☕"`,
		`[]`,
		`{}`,
		` [ 1 , "two" , [ ] , { } ] `,
		`{"a":{"b":{"c":[null,true]}},"d":-1}`,
		`{"dup":1,"dup":2}`,
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			got, err := Decode([]byte(input), false)
			require.NoError(t, err)
			var want any
			require.NoError(t, json.Unmarshal([]byte(input), &want))
			assert.Equal(t, want, got)
		})
	}
}

func TestDecodeSurrogates(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"😀"`, "😀"},
		{`"\ud83d"`, "�"},
		{`"\ud83dx"`, "�x"},
		{`"\ud83dA"`, "�A"},
		{`"\ude00\ud83d"`, "��"},
		{`"\ud83d\ude00"`, "😀"},
		{`"\ud83d\u0041"`, "�A"},
		{`"\udc00\ud83d\ude00"`, "�😀"},
		{`"\ud800\ud83d\ude00"`, "�😀"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Decode([]byte(tt.input), false)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDecodeInvalidUTF8(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"\"a\xffb\"", "a\uFFFDb"},
		{"\"a\xfeb\"", "a\uFFFDb"},
		{"\"\xe9t\xc3\xa9\"", "\uFFFDté"},
		{"\"\xed\xa0\x80\"", "\uFFFD\uFFFD\uFFFD"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got, err := Decode([]byte(tt.input), false)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{`{"a":}`, `syntax error at L1,C6: unexpected: '}'`},
		{`{"a" 1}`, `syntax error at L1,C6: expected ':', got: '1'`},
		{`{a:1}`, `syntax error at L1,C2: expected string key, got: 'a'`},
		{`[1 2]`, `syntax error at L1,C4: expected ']' or ',', got: '2'`},
		{`{"a":1 "b":2}`, `syntax error at L1,C8: expected '}' or ',', got: '"'`},
		{`[tru]`, `syntax error at L1,C5: expected 'e', got: ']'`},
		{`[01]`, `syntax error at L1,C3: expected ']' or ',', got: '1'`},
		{`[1.]`, `syntax error at L1,C4: expected digit, got: ']'`},
		{`[1e]`, `syntax error at L1,C4: expected digit, got: ']'`},
		{`[-]`, `syntax error at L1,C3: expected digit, got: ']'`},
		{`["\x"]`, `syntax error at L1,C4: invalid escape character: 'x'`},
		{`["\u12g4"]`, `syntax error at L1,C7: expected hex, got: 'g'`},
		{"[\"a\nb\"]", `syntax error at L1,C4: invalid control character in string: '\n'`},
		{`["abc`, `syntax error at L1,C6: unterminated string: <EOF>`},
		{"[\"ab\xff", `syntax error at L1,C6: unterminated string: <EOF>`},
		{"[\xff]", `syntax error at L1,C2: unexpected: 'ÿ'`},
		{`{"a":1}}`, `syntax error at L1,C8: unexpected data after value: '}'`},
		{`1e999`, `number 1e999 out of range`},
		{"{\n  \"a\": [\n    1,\n    x\n  ]\n}", `syntax error at L4,C5: unexpected: 'x'`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Decode([]byte(tt.input), false)
			require.EqualError(t, err, tt.message)
		})
	}
}

func TestDecodeMaxNesting(t *testing.T) {
	input := strings.Repeat("[", maxNesting+1) + strings.Repeat("]", maxNesting+1)
	_, err := Decode([]byte(input), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeded max nesting depth")

	input = strings.Repeat("[", maxNesting) + strings.Repeat("]", maxNesting)
	_, err = Decode([]byte(input), false)
	require.NoError(t, err)
}
