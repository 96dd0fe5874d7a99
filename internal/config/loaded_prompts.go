package config

// LoadedPrompts holds the content of prompts loaded from files
type LoadedPrompts struct {
	SystemPrompts LoadedSystemPrompts
	UserPrompts   LoadedUserPrompts
}

// LoadedSystemPrompts contains loaded system-level instructions
type LoadedSystemPrompts struct {
	Analysis  string
	Questions string
	Insight   string
	Chat      string
}

// LoadedUserPrompts contains loaded user-level prompt templates
type LoadedUserPrompts struct {
	QuickScan        string
	DetailedAnalysis string
	ATSOptimization  string
	Questions        string
	Insight          string
	Chat             string
}

// AllLoadedPrompts holds loaded prompts for the global scope and each operation
type AllLoadedPrompts struct {
	Global    LoadedPrompts
	Analysis  LoadedPrompts
	Questions LoadedPrompts
	Insight   LoadedPrompts
	Chat      LoadedPrompts
}

func (a *AllLoadedPrompts) forOperation(op string) *LoadedPrompts {
	switch op {
	case OperationAnalysis:
		return &a.Analysis
	case OperationQuestions:
		return &a.Questions
	case OperationInsight:
		return &a.Insight
	case OperationChat:
		return &a.Chat
	default:
		return &a.Global
	}
}

// GetLoadedPrompts returns the file-loaded prompts for op. Operation files win
// over global files.
func (c *Config) GetLoadedPrompts(op string) LoadedPrompts {
	result := *c.loadedPrompts.forOperation(op)
	global := c.loadedPrompts.Global

	fillEmpty(&result.SystemPrompts.Analysis, global.SystemPrompts.Analysis)
	fillEmpty(&result.SystemPrompts.Questions, global.SystemPrompts.Questions)
	fillEmpty(&result.SystemPrompts.Insight, global.SystemPrompts.Insight)
	fillEmpty(&result.SystemPrompts.Chat, global.SystemPrompts.Chat)

	fillEmpty(&result.UserPrompts.QuickScan, global.UserPrompts.QuickScan)
	fillEmpty(&result.UserPrompts.DetailedAnalysis, global.UserPrompts.DetailedAnalysis)
	fillEmpty(&result.UserPrompts.ATSOptimization, global.UserPrompts.ATSOptimization)
	fillEmpty(&result.UserPrompts.Questions, global.UserPrompts.Questions)
	fillEmpty(&result.UserPrompts.Insight, global.UserPrompts.Insight)
	fillEmpty(&result.UserPrompts.Chat, global.UserPrompts.Chat)

	return result
}
