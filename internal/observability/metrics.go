package observability

import (
	"context"
	"fmt"
	"time"

	"resumeats/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Business metric types accepted by RecordBusinessMetric
const (
	MetricResumeAnalyzed   = "resume_analyzed"
	MetricQuestionsCreated = "questions_generated"
	MetricInsightCreated   = "insight_generated"
	MetricChatReply        = "chat_reply"
	MetricFeedback         = "feedback_received"
)

// Metrics holds all custom instruments. The zero value records nothing.
type Metrics struct {
	settings config.CustomMetricsConfig
	meter    metric.Meter

	AIProcessingTime metric.Float64Histogram
	AIRequestCount   metric.Int64Counter
	AIErrorCount     metric.Int64Counter
	AITokenUsage     metric.Int64Counter

	ResumesAnalyzed  metric.Int64Counter
	QuestionSets     metric.Int64Counter
	InsightsProduced metric.Int64Counter
	ChatReplies      metric.Int64Counter
	FeedbackReceived metric.Int64Counter

	CertReloadCount metric.Int64Counter
	RateLimitHits   metric.Int64Counter
}

// TokenUsage is the token count reported for one AI operation
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// AIOperationResult holds the result of an AI operation including token usage
type AIOperationResult struct {
	Error      error
	TokenUsage *TokenUsage
}

func newMetrics(meter metric.Meter, settings config.CustomMetricsConfig) (*Metrics, error) {
	m := &Metrics{settings: settings, meter: meter}
	var err error

	if m.AIProcessingTime, err = meter.Float64Histogram(
		"resumeats_ai_processing_duration_seconds",
		metric.WithDescription("Time spent processing AI requests"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI processing time metric: %w", err)
	}

	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&m.AIRequestCount, "resumeats_ai_requests_total", "Total number of AI requests"},
		{&m.AIErrorCount, "resumeats_ai_errors_total", "Total number of AI request errors"},
		{&m.AITokenUsage, "resumeats_ai_token_usage_total", "Tokens consumed by AI requests by token type"},
		{&m.ResumesAnalyzed, "resumeats_resumes_analyzed_total", "Total number of resume analyses"},
		{&m.QuestionSets, "resumeats_question_sets_generated_total", "Total number of psychometric question sets generated"},
		{&m.InsightsProduced, "resumeats_insights_generated_total", "Total number of personality insights generated"},
		{&m.ChatReplies, "resumeats_chat_replies_total", "Total number of chat replies"},
		{&m.FeedbackReceived, "resumeats_feedback_received_total", "Total number of feedback submissions"},
		{&m.CertReloadCount, "resumeats_cert_reloads_total", "Total number of certificate reloads"},
		{&m.RateLimitHits, "resumeats_rate_limit_hits_total", "Total number of rate limit hits"},
	}

	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.description))
		if err != nil {
			return nil, fmt.Errorf("failed to create %s metric: %w", c.name, err)
		}
		*c.target = counter
	}

	return m, nil
}

// RegisterActiveSessions reports count() as the active session gauge
func (m *Metrics) RegisterActiveSessions(count func() int) error {
	if m.meter == nil || !m.settings.Infrastructure.Enabled || !m.settings.Infrastructure.TrackActiveSessions {
		return nil
	}

	_, err := m.meter.Int64ObservableGauge(
		"resumeats_active_sessions",
		metric.WithDescription("Sessions currently held in memory"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(count()))
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create active sessions metric: %w", err)
	}
	return nil
}

// TrackAIOperationWithTokens instruments an AI operation with tracing, metrics, and token usage
func (m *Metrics) TrackAIOperationWithTokens(ctx context.Context, operation string, fn func(context.Context) *AIOperationResult) error {
	if m.AIProcessingTime == nil {
		if result := fn(ctx); result != nil {
			return result.Error
		}
		return nil
	}

	tracer := otel.Tracer("resumeats.ai")
	ctx, span := tracer.Start(ctx, "ai."+operation)
	defer span.End()

	start := time.Now()
	result := fn(ctx)
	duration := time.Since(start).Seconds()

	var err error
	if result != nil {
		err = result.Error
	}

	if m.settings.AIOperations.Enabled {
		m.recordAIMetrics(ctx, operation, err, duration, result, span)
	}

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("error", true))
	}

	return err
}

func (m *Metrics) recordAIMetrics(ctx context.Context, operation string, err error, duration float64, result *AIOperationResult, span oteltrace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	}

	if m.settings.AIOperations.TrackDuration {
		m.AIProcessingTime.Record(ctx, duration, metric.WithAttributes(attrs...))
	}
	m.AIRequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	if err != nil {
		m.AIErrorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	}

	if result != nil && result.TokenUsage != nil {
		if m.settings.AIOperations.TrackTokenUsage {
			m.recordTokenMetrics(ctx, operation, result.TokenUsage)
		}
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", result.TokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", result.TokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", result.TokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(attrs...)
}

func (m *Metrics) recordTokenMetrics(ctx context.Context, operation string, usage *TokenUsage) {
	for _, tt := range []struct {
		tokenType string
		value     int64
	}{
		{"input", usage.InputTokens},
		{"output", usage.OutputTokens},
		{"total", usage.TotalTokens},
	} {
		m.AITokenUsage.Add(ctx, tt.value, metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("token_type", tt.tokenType),
		))
	}
}

// RecordBusinessMetric counts one occurrence of metricType
func (m *Metrics) RecordBusinessMetric(ctx context.Context, metricType string, success bool, attributes ...attribute.KeyValue) {
	if !m.settings.BusinessMetrics.Enabled {
		return
	}

	attrs := append([]attribute.KeyValue{attribute.Bool("success", success)}, attributes...)

	var counter metric.Int64Counter
	switch metricType {
	case MetricResumeAnalyzed:
		counter = m.ResumesAnalyzed
	case MetricQuestionsCreated:
		counter = m.QuestionSets
	case MetricInsightCreated:
		counter = m.InsightsProduced
	case MetricChatReply:
		counter = m.ChatReplies
	case MetricFeedback:
		counter = m.FeedbackReceived
	}
	if counter != nil {
		counter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordRateLimitHit counts a rejected request
func (m *Metrics) RecordRateLimitHit(ctx context.Context, endpoint string) {
	if m.RateLimitHits == nil || !m.settings.Infrastructure.Enabled || !m.settings.Infrastructure.TrackRateLimits {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("endpoint", endpoint)))
}

// RecordCertReload counts a certificate reload attempt
func (m *Metrics) RecordCertReload(ctx context.Context, success bool) {
	if m.CertReloadCount == nil {
		return
	}
	m.CertReloadCount.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}
