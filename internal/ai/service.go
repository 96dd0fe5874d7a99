package ai

import (
	"context"
	"fmt"

	"resumeats/internal/config"
	"resumeats/internal/errors"
)

// Service holds one oracle per operation together with the prompt builder
type Service struct {
	Analysis  Oracle
	Questions Oracle
	Insight   Oracle
	Chat      Oracle
	Prompts   *PromptBuilder
	logger    *errors.Logger
}

// NewService creates the oracles of every operation from cfg
func NewService(ctx context.Context, cfg *config.Config, logger *errors.Logger) (*Service, error) {
	prompts := NewPromptBuilder(cfg)
	s := &Service{Prompts: prompts, logger: logger}

	targets := map[string]*Oracle{
		config.OperationAnalysis:  &s.Analysis,
		config.OperationQuestions: &s.Questions,
		config.OperationInsight:   &s.Insight,
		config.OperationChat:      &s.Chat,
	}

	for _, op := range config.Operations {
		opCfg := cfg.GetOperationConfig(op)
		oracle, err := newOracle(ctx, &opCfg, op, prompts.System(op), logger)
		if err != nil {
			return nil, err
		}
		if p, ok := oracle.(*GeminiProvider); ok {
			p.SetModelCheckTimeout(cfg.Observability.HealthCheck.AIModelCheckTimeout)
		}
		*targets[op] = oracle
	}

	return s, nil
}

func newOracle(ctx context.Context, cfg *config.OperationAIConfig, operation, systemPrompt string, logger *errors.Logger) (Oracle, error) {
	logger.Debug("Initializing AI oracle",
		"provider", cfg.Provider,
		"operation", operation,
		"model", cfg.Model,
		"temperature", *cfg.Temperature,
		"timeout", *cfg.Timeout,
		"max_retries", *cfg.MaxRetries,
		"use_system_prompts", *cfg.UseSystemPrompts)

	switch cfg.Provider {
	case "gemini", "":
		provider, err := NewGeminiProvider(ctx, cfg, operation, systemPrompt, logger)
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}
}

// Oracle returns the oracle serving op, or nil
func (s *Service) Oracle(op string) Oracle {
	switch op {
	case config.OperationAnalysis:
		return s.Analysis
	case config.OperationQuestions:
		return s.Questions
	case config.OperationInsight:
		return s.Insight
	case config.OperationChat:
		return s.Chat
	default:
		return nil
	}
}

// GetModelInfo reports model availability per operation for health checks
func (s *Service) GetModelInfo(ctx context.Context) map[string]*ModelInfo {
	info := make(map[string]*ModelInfo, len(config.Operations))
	for _, op := range config.Operations {
		if oracle := s.Oracle(op); oracle != nil {
			info[op] = oracle.GetModelInfo(ctx)
		}
	}
	return info
}

// breakerReporter is implemented by oracles guarded by circuit breakers
type breakerReporter interface {
	GetCircuitBreakerStats() map[string]any
}

// CircuitBreakerStats returns breaker statistics per operation
func (s *Service) CircuitBreakerStats() map[string]any {
	stats := make(map[string]any, len(config.Operations))
	for _, op := range config.Operations {
		if b, ok := s.Oracle(op).(breakerReporter); ok {
			if st := b.GetCircuitBreakerStats(); st != nil {
				stats[op] = st
			}
		}
	}
	return stats
}

func (s *Service) Close() error {
	for _, op := range config.Operations {
		if oracle := s.Oracle(op); oracle != nil {
			if err := oracle.Close(); err != nil {
				return err
			}
		}
	}
	return nil
}
