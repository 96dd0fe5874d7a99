package config

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxRetries == nil {
		opCfg.MaxRetries = &c.AI.MaxRetries
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
	if opCfg.UseSystemPrompts == nil {
		opCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}
}

// GetOperationConfig returns the AI configuration for op with global fallbacks
// applied. Unknown operations get the global configuration.
func (c *Config) GetOperationConfig(op string) OperationAIConfig {
	var opCfg OperationAIConfig
	switch op {
	case OperationAnalysis:
		opCfg = c.AI.Analysis
	case OperationQuestions:
		opCfg = c.AI.Questions
	case OperationInsight:
		opCfg = c.AI.Insight
	case OperationChat:
		opCfg = c.AI.Chat
	}

	c.applyOperationDefaults(&opCfg)
	opCfg.CustomPrompts = mergePromptConfig(opCfg.CustomPrompts, c.AI.CustomPrompts)

	return opCfg
}

// mergePromptConfig fills every empty field of op from global
func mergePromptConfig(op, global PromptConfig) PromptConfig {
	s, gs := &op.SystemPrompts, global.SystemPrompts
	fillEmpty(&s.Analysis, gs.Analysis)
	fillEmpty(&s.AnalysisFile, gs.AnalysisFile)
	fillEmpty(&s.Questions, gs.Questions)
	fillEmpty(&s.QuestionsFile, gs.QuestionsFile)
	fillEmpty(&s.Insight, gs.Insight)
	fillEmpty(&s.InsightFile, gs.InsightFile)
	fillEmpty(&s.Chat, gs.Chat)
	fillEmpty(&s.ChatFile, gs.ChatFile)

	u, gu := &op.UserPrompts, global.UserPrompts
	fillEmpty(&u.QuickScan, gu.QuickScan)
	fillEmpty(&u.QuickScanFile, gu.QuickScanFile)
	fillEmpty(&u.DetailedAnalysis, gu.DetailedAnalysis)
	fillEmpty(&u.DetailedAnalysisFile, gu.DetailedAnalysisFile)
	fillEmpty(&u.ATSOptimization, gu.ATSOptimization)
	fillEmpty(&u.ATSOptimizationFile, gu.ATSOptimizationFile)
	fillEmpty(&u.Questions, gu.Questions)
	fillEmpty(&u.QuestionsFile, gu.QuestionsFile)
	fillEmpty(&u.Insight, gu.Insight)
	fillEmpty(&u.InsightFile, gu.InsightFile)
	fillEmpty(&u.Chat, gu.Chat)
	fillEmpty(&u.ChatFile, gu.ChatFile)

	return op
}

func fillEmpty(dst *string, fallback string) {
	if *dst == "" {
		*dst = fallback
	}
}
