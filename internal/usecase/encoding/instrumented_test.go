package encoding

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type mockEncoder struct {
	vector []float32
	err    error
	calls  int
}

func (m *mockEncoder) Encode(_ context.Context, _ []byte) ([]float32, error) {
	m.calls++
	return m.vector, m.err
}

func TestEncode_Delegates(t *testing.T) {
	inner := &mockEncoder{vector: []float32{0.1, 0.2}}
	enc := NewInstrumentedEncoder(inner, "test-model", zap.NewNop())

	vec, err := enc.Encode(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 2 || vec[1] != 0.2 {
		t.Fatalf("unexpected vector: %v", vec)
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 inner call, got %d", inner.calls)
	}
}

func TestEncode_WrapsError(t *testing.T) {
	sentinel := errors.New("encoder down")
	inner := &mockEncoder{err: sentinel}
	enc := NewInstrumentedEncoder(inner, "test-model", zap.NewNop())

	_, err := enc.Encode(context.Background(), []byte("img"))
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped sentinel, got %v", err)
	}
}

func TestHealthCheck_InnerWithoutChecker(t *testing.T) {
	enc := NewInstrumentedEncoder(&mockEncoder{}, "m", zap.NewNop())

	if err := enc.HealthCheck(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
