package scoring

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float64
	}{
		{
			name: "identical vectors",
			a:    []float32{1, 0, 0},
			b:    []float32{1, 0, 0},
			want: 1.0,
		},
		{
			name: "orthogonal vectors",
			a:    []float32{1, 0},
			b:    []float32{0, 1},
			want: 0.0,
		},
		{
			name: "opposite vectors",
			a:    []float32{1, 0},
			b:    []float32{-1, 0},
			want: -1.0,
		},
		{
			name: "zero magnitude scores zero",
			a:    []float32{0, 0, 0},
			b:    []float32{1, 2, 3},
			want: 0.0,
		},
		{
			name: "length mismatch scores zero",
			a:    []float32{1, 2},
			b:    []float32{1, 2, 3},
			want: 0.0,
		},
		{
			name: "empty vectors score zero",
			a:    nil,
			b:    nil,
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "stopwords and short tokens dropped",
			text: "What are your opening hours?",
			want: []string{"opening", "hours"},
		},
		{
			name: "duplicates removed",
			text: "hours hours HOURS",
			want: []string{"hours"},
		},
		{
			name: "only stopwords",
			text: "the and for with",
			want: []string{},
		},
		{
			name: "numbers and short runs ignored",
			text: "at 9 to 5 ok",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Keywords(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("Keywords = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Keywords[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLexicalScore(t *testing.T) {
	tests := []struct {
		name     string
		keywords []string
		content  string
		want     float64
	}{
		{
			name:     "exact phrase full hit",
			keywords: []string{"opening", "hours"},
			content:  "Our opening hours are 9 to 5",
			want:     1.0,
		},
		{
			name:     "half the keywords match",
			keywords: []string{"opening", "pricing"},
			content:  "Our opening hours are 9 to 5",
			want:     0.5,
		},
		{
			name:     "no keywords means no signal",
			keywords: nil,
			content:  "anything",
			want:     0.0,
		},
		{
			name:     "substring is not a token match",
			keywords: []string{"open"},
			content:  "opening soon",
			want:     0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LexicalScore(tt.keywords, tt.content)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("LexicalScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreBlend(t *testing.T) {
	got := Score(1.0, 1.0)
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Score(1,1) = %v, want 1.0", got)
	}

	// Zero-magnitude semantic leaves only the lexical component.
	got = Score(0.0, 1.0)
	if math.Abs(got-0.15) > 1e-9 {
		t.Errorf("Score(0,1) = %v, want 0.15", got)
	}

	got = Score(1.0, 0.0)
	if math.Abs(got-0.85) > 1e-9 {
		t.Errorf("Score(1,0) = %v, want 0.85", got)
	}
}
