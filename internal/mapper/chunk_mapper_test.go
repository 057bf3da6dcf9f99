package mapper

import (
	"testing"
)

func TestCoerceEmbedding(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []float32
	}{
		{"pgvector text form", "[0.1,0.2,0.3]", []float32{0.1, 0.2, 0.3}},
		{"spaces between values", "[ 0.5, -1.25 ]", []float32{0.5, -1.25}},
		{"json array", "[1, 2, 3]", []float32{1, 2, 3}},
		{"empty string", "", nil},
		{"whitespace only", "   ", nil},
		{"empty brackets", "[]", nil},
		{"garbage", "not a vector", nil},
		{"partial garbage", "[0.1,abc,0.3]", nil},
		{"unterminated", "[0.1,0.2", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoerceEmbedding(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("CoerceEmbedding(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("CoerceEmbedding(%q)[%d] = %v, want %v", tt.raw, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestEncodeEmbeddingRoundTrip(t *testing.T) {
	original := []float32{0.25, -0.5, 1}

	encoded := EncodeEmbedding(original)
	if encoded == "" {
		t.Fatal("encoded form must not be empty")
	}

	decoded := CoerceEmbedding(encoded)
	if len(decoded) != len(original) {
		t.Fatalf("round trip lost values: %v", decoded)
	}
	for i := range decoded {
		if decoded[i] != original[i] {
			t.Errorf("decoded[%d] = %v, want %v", i, decoded[i], original[i])
		}
	}
}

func TestEncodeEmbeddingEmpty(t *testing.T) {
	if got := EncodeEmbedding(nil); got != "" {
		t.Errorf("EncodeEmbedding(nil) = %q, want empty", got)
	}
}
