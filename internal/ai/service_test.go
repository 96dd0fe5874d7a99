package ai

import (
	"context"
	"testing"

	"resumeats/internal/config"
	appErrors "resumeats/internal/errors"
)

func TestNewServiceRejectsUnknownProvider(t *testing.T) {
	cfg := &config.Config{
		AI: config.AIConfig{Provider: "openai", APIKey: "key"},
	}

	_, err := NewService(context.Background(), cfg, appErrors.NewNopLogger())
	if !appErrors.IsCode(err, appErrors.ErrCodeInvalidConfig) {
		t.Fatalf("expected INVALID_CONFIG, got %v", err)
	}
}

func TestNewServiceRequiresKey(t *testing.T) {
	cfg := &config.Config{AI: config.AIConfig{Provider: "gemini"}}

	_, err := NewService(context.Background(), cfg, appErrors.NewNopLogger())
	if !appErrors.IsCode(err, appErrors.ErrCodeMissingAPIKey) {
		t.Fatalf("expected MISSING_API_KEY, got %v", err)
	}
}

func TestServiceOracleLookup(t *testing.T) {
	analysis, chat := testProvider(0), testProvider(0)
	s := &Service{Analysis: analysis, Chat: chat}

	if s.Oracle(config.OperationAnalysis) != Oracle(analysis) {
		t.Error("analysis lookup returned the wrong oracle")
	}
	if s.Oracle(config.OperationChat) != Oracle(chat) {
		t.Error("chat lookup returned the wrong oracle")
	}
	if s.Oracle("tailor") != nil {
		t.Error("unknown operation should have no oracle")
	}

	stats := s.CircuitBreakerStats()
	if len(stats) != 2 {
		t.Errorf("expected stats for 2 configured oracles, got %d", len(stats))
	}
}
