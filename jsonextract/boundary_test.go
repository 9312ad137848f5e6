package jsonextract

import "testing"

func TestBoundaryScanner(t *testing.T) {
	tests := []struct {
		input string
		end   int
	}{
		{`{}`, 1},
		{`  [1,[2],{"a":[]}] tail`, 17},
		{`{"}":"{"}`, 8},
		{`{"a\"}":1}`, 9},
		{`{"a\\":1}`, 8},
		{`{"a":"\\\"}"}`, 12},
		{`{"a":[1,2`, -1},
		{`"{}"`, -1},
		{`   `, -1},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var s boundaryScanner
			end, err := s.next([]byte(tt.input))
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if end != tt.end {
				t.Fatalf("expected end %d, got %d", tt.end, end)
			}
		})
	}
}

func TestBoundaryScannerResumes(t *testing.T) {
	const input = `{"a":"\"]}"}`
	var s boundaryScanner
	for i := 1; i < len(input); i++ {
		end, err := s.next([]byte(input[:i]))
		if err != nil {
			t.Fatalf("unexpected error at %d: %s", i, err)
		}
		if end != -1 {
			t.Fatalf("premature end at %d", i)
		}
	}
	end, err := s.next([]byte(input))
	if err != nil || end != len(input)-1 {
		t.Fatalf("expected end %d, got %d (err %v)", len(input)-1, end, err)
	}
	if s.depth() != 0 || s.pos != 0 {
		t.Fatalf("scanner not reset")
	}
}
