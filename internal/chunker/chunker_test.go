package chunker

import (
	"errors"
	"strings"
	"testing"
)

func TestSplitScenario1000Chars(t *testing.T) {
	text := strings.Repeat("abcdefghij", 100)

	chunks, err := Collect(text, Options{Size: 300, Overlap: 50, Source: "sample.txt"})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	wantStarts := []int{0, 250, 500, 750}
	if len(chunks) != len(wantStarts) {
		t.Fatalf("got %d chunks, want %d", len(chunks), len(wantStarts))
	}
	for i, c := range chunks {
		if c.Start != wantStarts[i] {
			t.Errorf("chunk %d: start = %d, want %d", i, c.Start, wantStarts[i])
		}
		if c.Index != i {
			t.Errorf("chunk %d: index = %d", i, c.Index)
		}
		if c.Source != "sample.txt" {
			t.Errorf("chunk %d: source = %q", i, c.Source)
		}
	}
	if got := chunks[3].Len(); got != 250 {
		t.Errorf("last chunk length = %d, want 250", got)
	}
}

func TestSplitWindowInvariants(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 37)
	n := len([]rune(text))

	tests := []struct {
		size, overlap int
	}{
		{1, 0},
		{10, 0},
		{10, 9},
		{100, 25},
		{300, 50},
		{500, 499},
		{n, 0},
		{n + 10, 5},
	}
	for _, tt := range tests {
		chunks, err := Collect(text, Options{Size: tt.size, Overlap: tt.overlap})
		if err != nil {
			t.Fatalf("size=%d overlap=%d: %v", tt.size, tt.overlap, err)
		}
		if len(chunks) == 0 {
			t.Fatalf("size=%d overlap=%d: no chunks", tt.size, tt.overlap)
		}
		if chunks[0].Start != 0 {
			t.Errorf("size=%d overlap=%d: first chunk starts at %d", tt.size, tt.overlap, chunks[0].Start)
		}
		if last := chunks[len(chunks)-1]; last.End != n {
			t.Errorf("size=%d overlap=%d: last chunk ends at %d, want %d", tt.size, tt.overlap, last.End, n)
		}
		for i, c := range chunks {
			if c.Text == "" {
				t.Errorf("size=%d overlap=%d: chunk %d is empty", tt.size, tt.overlap, i)
			}
			if i < len(chunks)-1 && c.Len() != tt.size {
				t.Errorf("size=%d overlap=%d: chunk %d has length %d", tt.size, tt.overlap, i, c.Len())
			}
			if i > 0 && c.Start != chunks[i-1].End-tt.overlap {
				t.Errorf("size=%d overlap=%d: chunk %d starts at %d, previous ends at %d",
					tt.size, tt.overlap, i, c.Start, chunks[i-1].End)
			}
			if string([]rune(text)[c.Start:c.End]) != c.Text {
				t.Errorf("size=%d overlap=%d: chunk %d text does not match its span", tt.size, tt.overlap, i)
			}
		}

		want, _ := Count(n, Options{Size: tt.size, Overlap: tt.overlap})
		if want != len(chunks) {
			t.Errorf("size=%d overlap=%d: Count = %d, Collect produced %d", tt.size, tt.overlap, want, len(chunks))
		}
	}
}

func TestSplitIsRestartable(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet ", 20)
	seq, err := Split(text, Options{Size: 64, Overlap: 16})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	var first, second []Chunk
	for c := range seq {
		first = append(first, c)
	}
	for c := range seq {
		second = append(second, c)
	}

	if len(first) != len(second) {
		t.Fatalf("second pass produced %d chunks, first %d", len(second), len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between passes", i)
		}
	}

	again, _ := Collect(text, Options{Size: 64, Overlap: 16})
	for i := range again {
		if again[i] != first[i] {
			t.Errorf("chunk %d differs between Split calls", i)
		}
	}
}

func TestSplitStopsEarly(t *testing.T) {
	seq, err := Split(strings.Repeat("x", 1000), Options{Size: 10, Overlap: 0})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	n := 0
	for range seq {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("expected to stop after 3 chunks, got %d", n)
	}
}

func TestSplitEmptyText(t *testing.T) {
	chunks, err := Collect("", Options{Size: 100, Overlap: 10})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks for empty text, got %d", len(chunks))
	}
}

func TestSplitMultiByte(t *testing.T) {
	text := "héllo wörld ünïcode ✓✓✓"
	chunks, err := Collect(text, Options{Size: 5, Overlap: 2})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	for i, c := range chunks {
		if i < len(chunks)-1 && len([]rune(c.Text)) != 5 {
			t.Errorf("chunk %d has %d runes, want 5", i, len([]rune(c.Text)))
		}
		if strings.ContainsRune(c.Text, '�') {
			t.Errorf("chunk %d contains a broken rune: %q", i, c.Text)
		}
	}
}

func TestSplitInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"zero size", Options{Size: 0, Overlap: 0}},
		{"negative size", Options{Size: -5, Overlap: 0}},
		{"negative overlap", Options{Size: 10, Overlap: -1}},
		{"overlap equals size", Options{Size: 10, Overlap: 10}},
		{"overlap exceeds size", Options{Size: 10, Overlap: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Split("some text", tt.opts); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Split: expected ErrInvalidConfig, got %v", err)
			}
			if _, err := Count(10, tt.opts); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Count: expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
