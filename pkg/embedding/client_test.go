package embedding

import (
	"context"
	"errors"
	"testing"

	"site-assistant-be/internal/apperror"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type stubProvider struct {
	vector []float32
	err    error
	calls  int
}

func (s *stubProvider) Generate(context.Context, string) ([]float32, error) {
	s.calls++
	return s.vector, s.err
}

func TestGenerateRejectsEmptyText(t *testing.T) {
	provider := &stubProvider{vector: []float32{1}}
	client := NewClient(provider, nopLogger{})

	_, err := client.Generate(context.Background(), "   \t\n")
	if !apperror.IsKind(err, apperror.KindEmbedding) {
		t.Fatalf("got %v, want EmbeddingError", err)
	}
	if provider.calls != 0 {
		t.Errorf("provider called %d times for empty input", provider.calls)
	}
}

func TestGenerateReturnsVector(t *testing.T) {
	provider := &stubProvider{vector: []float32{0.1, 0.2}}
	client := NewClient(provider, nopLogger{})

	values, err := client.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(values) != 2 {
		t.Errorf("vector = %v", values)
	}
}

func TestGenerateEmptyVectorIsAnError(t *testing.T) {
	provider := &stubProvider{vector: nil}
	client := NewClient(provider, nopLogger{})

	_, err := client.Generate(context.Background(), "hello")
	if !apperror.IsKind(err, apperror.KindEmbedding) {
		t.Fatalf("got %v, want EmbeddingError for empty provider response", err)
	}
}

func TestGenerateExhaustsRetries(t *testing.T) {
	provider := &stubProvider{err: errors.New("unreachable")}
	client := NewClient(provider, nopLogger{})

	_, err := client.Generate(context.Background(), "hello")
	if !apperror.IsKind(err, apperror.KindEmbedding) {
		t.Fatalf("got %v, want EmbeddingError", err)
	}
	if provider.calls != 3 {
		t.Errorf("provider called %d times, want 3", provider.calls)
	}
}
