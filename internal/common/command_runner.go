package common

import (
	"context"
	"io"

	"resumeats/internal/ai"
	"resumeats/internal/errors"
)

// OperationFunc runs one assistant step and reports the tokens it used
type OperationFunc[Output any] func(context.Context) (Output, *ai.TokenUsage, error)

// RunAICommand runs operation, logs its token usage and writes the formatted
// result per cmdConfig.
func RunAICommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	out io.Writer,
	operation OperationFunc[Output],
) error {
	result, tokenUsage, err := operation(ctx)
	if err != nil {
		return err
	}

	ReportTokenUsage(logger, tokenUsage)

	return NewOutputHandler(logger, out).HandleOutput(result, cmdConfig)
}

// ReportTokenUsage logs usage when the provider returned it
func ReportTokenUsage(logger *errors.Logger, usage *ai.TokenUsage) {
	if usage == nil || logger == nil {
		return
	}
	logger.Info("AI token usage",
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens,
		"total_tokens", usage.TotalTokens)
}
