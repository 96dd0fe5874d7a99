package ai

import (
	"context"
	"errors"
	"testing"

	"resumeats/internal/config"
	"resumeats/internal/observability"
)

type stubOracle struct {
	reply string
	usage *TokenUsage
	err   error
	parts []string
}

func (s *stubOracle) Generate(_ context.Context, parts ...string) (string, *TokenUsage, error) {
	s.parts = parts
	return s.reply, s.usage, s.err
}

func (s *stubOracle) GetModelInfo(context.Context) *ModelInfo { return &ModelInfo{Name: "stub"} }
func (s *stubOracle) Close() error                            { return nil }

func TestMeteredOraclePassesThrough(t *testing.T) {
	inner := &stubOracle{reply: "ok", usage: &TokenUsage{InputTokens: 3, OutputTokens: 2, TotalTokens: 5}}
	oracle := Metered(inner, config.OperationChat, &observability.Metrics{})

	text, usage, err := oracle.Generate(context.Background(), "resume", "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "ok" || usage == nil || usage.TotalTokens != 5 {
		t.Errorf("got %q %+v", text, usage)
	}
	if len(inner.parts) != 2 || inner.parts[1] != "prompt" {
		t.Errorf("parts not forwarded: %v", inner.parts)
	}

	failing := Metered(&stubOracle{err: errors.New("boom")}, config.OperationChat, &observability.Metrics{})
	if _, _, err := failing.Generate(context.Background(), "x"); err == nil {
		t.Error("expected the inner error")
	}
}

func TestMeteredNilArguments(t *testing.T) {
	if Metered(nil, config.OperationChat, &observability.Metrics{}) != nil {
		t.Error("nil oracle should stay nil")
	}
	inner := &stubOracle{}
	if Metered(inner, config.OperationChat, nil) != Oracle(inner) {
		t.Error("nil metrics should return the oracle unchanged")
	}
}

func TestInstrumentKeepsBreakerStats(t *testing.T) {
	s := &Service{Analysis: testProvider(0), Chat: &stubOracle{}}
	s.Instrument(&observability.Metrics{})

	if _, ok := s.Analysis.(*meteredOracle); !ok {
		t.Fatalf("analysis oracle not wrapped: %T", s.Analysis)
	}

	stats := s.CircuitBreakerStats()
	if _, ok := stats[config.OperationAnalysis]; !ok {
		t.Error("breaker stats lost after wrapping")
	}
	if _, ok := stats[config.OperationChat]; ok {
		t.Error("oracle without breakers should not report stats")
	}
}
