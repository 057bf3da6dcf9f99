package utils

import (
	"strings"
	"testing"
)

func TestSplitWords(t *testing.T) {
	words := func(n int) string {
		parts := make([]string, n)
		for i := range parts {
			parts[i] = "word"
		}
		return strings.Join(parts, " ")
	}

	tests := []struct {
		name       string
		text       string
		chunkSize  int
		overlap    int
		wantChunks int
	}{
		{
			name:       "short text stays whole",
			text:       words(10),
			chunkSize:  500,
			overlap:    80,
			wantChunks: 1,
		},
		{
			name:       "empty text yields nothing",
			text:       "   ",
			chunkSize:  500,
			overlap:    80,
			wantChunks: 0,
		},
		{
			name:       "long text splits with overlap",
			text:       words(1000),
			chunkSize:  500,
			overlap:    80,
			wantChunks: 3, // steps of 420: 0..500, 420..920, 840..1000
		},
		{
			name:       "overlap at least chunk size falls back to disjoint steps",
			text:       words(100),
			chunkSize:  50,
			overlap:    50,
			wantChunks: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitWords(tt.text, tt.chunkSize, tt.overlap)
			if len(chunks) != tt.wantChunks {
				t.Fatalf("chunk count = %d, want %d", len(chunks), tt.wantChunks)
			}
		})
	}
}

func TestSplitWordsOverlapContent(t *testing.T) {
	text := "a b c d e f g h i j"
	chunks := SplitWords(text, 4, 2)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if chunks[0] != "a b c d" {
		t.Errorf("first chunk = %q", chunks[0])
	}
	// The second chunk re-reads the last two words of the first.
	if chunks[1] != "c d e f" {
		t.Errorf("second chunk = %q", chunks[1])
	}
}
