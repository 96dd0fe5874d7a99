package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"resumeats/internal/config"
	appErrors "resumeats/internal/errors"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

func intPtr(i int) *int             { return &i }
func float32Ptr(f float32) *float32 { return &f }
func boolPtr(b bool) *bool          { return &b }

func testProvider(maxRetries int) *GeminiProvider {
	return &GeminiProvider{
		config: &config.OperationAIConfig{
			Model:            "test-model",
			MaxRetries:       intPtr(maxRetries),
			Temperature:      float32Ptr(0.4),
			UseSystemPrompts: boolPtr(true),
		},
		operation:    config.OperationAnalysis,
		systemPrompt: "persona",
		backoff:      func(int) time.Duration { return 0 },
		logger:       appErrors.NewNopLogger(),
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantType appErrors.ErrorType
	}{
		{"gemini rate limit", genai.APIError{Code: 429, Message: "quota exhausted"}, appErrors.ErrCodeAIRateLimited, appErrors.ErrorTypeAI},
		{"wrapped rate limit", fmt.Errorf("operation failed: %w", genai.APIError{Code: 429}), appErrors.ErrCodeAIRateLimited, appErrors.ErrorTypeAI},
		{"unauthorized", genai.APIError{Code: 401}, appErrors.ErrCodeAIAuthFailed, appErrors.ErrorTypeAI},
		{"forbidden via googleapi", &googleapi.Error{Code: 403}, appErrors.ErrCodeAIAuthFailed, appErrors.ErrorTypeAI},
		{"connection refused", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, appErrors.ErrCodeAINetwork, appErrors.ErrorTypeNetwork},
		{"deadline", fmt.Errorf("generate: %w", context.DeadlineExceeded), appErrors.ErrCodeAINetwork, appErrors.ErrorTypeNetwork},
		{"server error", genai.APIError{Code: 500}, appErrors.ErrCodeAIServiceFailed, appErrors.ErrorTypeAI},
		{"bad request", genai.APIError{Code: 400}, appErrors.ErrCodeAIServiceFailed, appErrors.ErrorTypeAI},
		{"unknown", errors.New("boom"), appErrors.ErrCodeAIServiceFailed, appErrors.ErrorTypeAI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError("analysis", tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", got.Code, tt.wantCode)
			}
			if got.Type != tt.wantType {
				t.Errorf("type = %s, want %s", got.Type, tt.wantType)
			}
			if got.Cause == nil {
				t.Error("classified error should keep the cause")
			}
			if appErrors.UserMessage(got) != appErrors.MessageAIUnavailable {
				t.Errorf("user message = %q", appErrors.UserMessage(got))
			}
		})
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{genai.APIError{Code: 429}, true},
		{genai.APIError{Code: 503}, true},
		{&googleapi.Error{Code: 502}, true},
		{genai.APIError{Code: 400}, false},
		{genai.APIError{Code: 401}, false},
		{&net.OpError{Op: "read", Err: errors.New("reset")}, true},
		{errors.New("plain"), false},
	}

	for _, tt := range tests {
		if got := isRetryableError(tt.err); got != tt.want {
			t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestExecuteWithRetry(t *testing.T) {
	t.Run("retries transient failures", func(t *testing.T) {
		g := testProvider(2)
		calls := 0
		result, err := g.executeWithRetry(context.Background(), "analysis", func() (*genai.GenerateContentResponse, error) {
			calls++
			if calls < 3 {
				return nil, genai.APIError{Code: 503}
			}
			return &genai.GenerateContentResponse{}, nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result == nil || calls != 3 {
			t.Errorf("calls = %d, want 3", calls)
		}
	})

	t.Run("stops on permanent failure", func(t *testing.T) {
		g := testProvider(3)
		calls := 0
		_, err := g.executeWithRetry(context.Background(), "analysis", func() (*genai.GenerateContentResponse, error) {
			calls++
			return nil, genai.APIError{Code: 401}
		})
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
		if classifyError("analysis", err).Code != appErrors.ErrCodeAIAuthFailed {
			t.Errorf("wrapped error lost its status: %v", err)
		}
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		g := testProvider(1)
		calls := 0
		_, err := g.executeWithRetry(context.Background(), "analysis", func() (*genai.GenerateContentResponse, error) {
			calls++
			return nil, genai.APIError{Code: 429}
		})
		if calls != 2 {
			t.Errorf("calls = %d, want 2", calls)
		}
		if classifyError("analysis", err).Code != appErrors.ErrCodeAIRateLimited {
			t.Errorf("expected rate limit classification, got %v", err)
		}
	})

	t.Run("honours cancellation between attempts", func(t *testing.T) {
		g := testProvider(3)
		g.backoff = func(int) time.Duration { return time.Hour }
		ctx, cancel := context.WithCancel(context.Background())
		_, err := g.executeWithRetry(ctx, "analysis", func() (*genai.GenerateContentResponse, error) {
			cancel()
			return nil, genai.APIError{Code: 503}
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestRetryBackoffBounds(t *testing.T) {
	for attempt := 1; attempt <= 8; attempt++ {
		d := retryBackoff(attempt)
		base := time.Duration(1<<(attempt-1)) * time.Second
		if d < min(base, 30*time.Second) || d > 30*time.Second {
			t.Errorf("attempt %d: backoff %v out of range", attempt, d)
		}
	}
}

func TestBuildGenerateConfig(t *testing.T) {
	g := testProvider(0)
	cfg := g.buildGenerateConfig()
	if cfg.SystemInstruction == nil {
		t.Fatal("system instruction should be set")
	}
	if cfg.Temperature == nil || *cfg.Temperature != 0.4 {
		t.Errorf("temperature = %v", cfg.Temperature)
	}

	g.config.UseSystemPrompts = boolPtr(false)
	g.config.Temperature = float32Ptr(0)
	cfg = g.buildGenerateConfig()
	if cfg.SystemInstruction != nil {
		t.Error("system instruction should be omitted when disabled")
	}
	if cfg.Temperature != nil {
		t.Error("zero temperature should keep the model default")
	}
}

func TestExtractTokenUsage(t *testing.T) {
	if extractTokenUsage(nil) != nil {
		t.Error("nil response should yield nil usage")
	}

	usage := extractTokenUsage(&genai.GenerateContentResponse{
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     120,
			CandidatesTokenCount: 30,
			TotalTokenCount:      150,
		},
	})
	if usage == nil || usage.InputTokens != 120 || usage.OutputTokens != 30 || usage.TotalTokens != 150 {
		t.Errorf("unexpected usage %+v", usage)
	}

	var total *TokenUsage
	total = total.Add(usage).Add(usage)
	if total.TotalTokens != 300 {
		t.Errorf("accumulated total = %d, want 300", total.TotalTokens)
	}
	if usage.TotalTokens != 150 {
		t.Error("Add must not modify its argument")
	}
}

func TestNewGeminiProviderRequiresKey(t *testing.T) {
	_, err := NewGeminiProvider(context.Background(), &config.OperationAIConfig{}, "chat", "", appErrors.NewNopLogger())
	if !appErrors.IsCode(err, appErrors.ErrCodeMissingAPIKey) {
		t.Fatalf("expected MISSING_API_KEY, got %v", err)
	}
}
