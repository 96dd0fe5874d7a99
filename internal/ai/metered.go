package ai

import (
	"context"

	"resumeats/internal/config"
	"resumeats/internal/observability"
)

// meteredOracle records every Generate call as an AI operation
type meteredOracle struct {
	Oracle
	operation string
	metrics   *observability.Metrics
}

// Metered wraps oracle so each call feeds the AI request, error, duration
// and token metrics of operation.
func Metered(oracle Oracle, operation string, metrics *observability.Metrics) Oracle {
	if oracle == nil || metrics == nil {
		return oracle
	}
	return &meteredOracle{Oracle: oracle, operation: operation, metrics: metrics}
}

func (m *meteredOracle) Generate(ctx context.Context, parts ...string) (string, *TokenUsage, error) {
	var (
		text  string
		usage *TokenUsage
	)
	err := m.metrics.TrackAIOperationWithTokens(ctx, m.operation, func(ctx context.Context) *observability.AIOperationResult {
		var genErr error
		text, usage, genErr = m.Oracle.Generate(ctx, parts...)
		return &observability.AIOperationResult{
			Error:      genErr,
			TokenUsage: (*observability.TokenUsage)(usage),
		}
	})
	if err != nil {
		return "", nil, err
	}
	return text, usage, nil
}

// GetCircuitBreakerStats forwards to the wrapped oracle when it has breakers
func (m *meteredOracle) GetCircuitBreakerStats() map[string]any {
	if b, ok := m.Oracle.(breakerReporter); ok {
		return b.GetCircuitBreakerStats()
	}
	return nil
}

// Instrument wraps every oracle of the service with metrics
func (s *Service) Instrument(metrics *observability.Metrics) {
	s.Analysis = Metered(s.Analysis, config.OperationAnalysis, metrics)
	s.Questions = Metered(s.Questions, config.OperationQuestions, metrics)
	s.Insight = Metered(s.Insight, config.OperationInsight, metrics)
	s.Chat = Metered(s.Chat, config.OperationChat, metrics)
}
