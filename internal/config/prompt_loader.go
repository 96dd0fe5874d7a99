package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// promptFile binds a configured file path to where its content is stored
type promptFile struct {
	path   string
	target *string
	kind   string // "system" or "user"
	name   string
}

// promptScope is the global prompt config or one operation's
type promptScope struct {
	label  string
	config *PromptConfig
	loaded *LoadedPrompts
}

func (c *Config) promptScopes() []promptScope {
	return []promptScope{
		{"global", &c.AI.CustomPrompts, &c.loadedPrompts.Global},
		{OperationAnalysis, &c.AI.Analysis.CustomPrompts, &c.loadedPrompts.Analysis},
		{OperationQuestions, &c.AI.Questions.CustomPrompts, &c.loadedPrompts.Questions},
		{OperationInsight, &c.AI.Insight.CustomPrompts, &c.loadedPrompts.Insight},
		{OperationChat, &c.AI.Chat.CustomPrompts, &c.loadedPrompts.Chat},
	}
}

func (s promptScope) files() []promptFile {
	sys, usr := s.config.SystemPrompts, s.config.UserPrompts
	lsys, lusr := &s.loaded.SystemPrompts, &s.loaded.UserPrompts
	return []promptFile{
		{sys.AnalysisFile, &lsys.Analysis, "system", "analysis"},
		{sys.QuestionsFile, &lsys.Questions, "system", "questions"},
		{sys.InsightFile, &lsys.Insight, "system", "insight"},
		{sys.ChatFile, &lsys.Chat, "system", "chat"},
		{usr.QuickScanFile, &lusr.QuickScan, "user", "quickScan"},
		{usr.DetailedAnalysisFile, &lusr.DetailedAnalysis, "user", "detailedAnalysis"},
		{usr.ATSOptimizationFile, &lusr.ATSOptimization, "user", "atsOptimization"},
		{usr.QuestionsFile, &lusr.Questions, "user", "questions"},
		{usr.InsightFile, &lusr.Insight, "user", "insight"},
		{usr.ChatFile, &lusr.Chat, "user", "chat"},
	}
}

// loadPromptsFromFiles loads custom prompts from external files if file paths are specified
func (c *Config) loadPromptsFromFiles() error {
	log.Println("[CONFIG] Starting custom prompt loading from files")

	c.loadedPrompts = AllLoadedPrompts{}
	count := 0

	for _, scope := range c.promptScopes() {
		for _, pf := range scope.files() {
			if pf.path == "" {
				continue
			}
			content, err := loadPromptFromFile(pf.path, pf.kind, pf.name)
			if err != nil {
				return fmt.Errorf("failed to load %s prompts: %w", scope.label, err)
			}
			*pf.target = content
			count++
		}
	}

	if count == 0 {
		log.Println("[CONFIG] No custom prompts loaded - using built-in defaults")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded: %d", count)
	}

	return nil
}

// loadPromptFromFile reads a prompt file and rejects empty content
func loadPromptFromFile(filePath, promptType, name string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, name, filePath, err)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s %s prompt file not found: %s", promptType, name, absPath)
		}
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, name, absPath, err)
	}

	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, name, absPath)
	}

	log.Printf("[CONFIG] Successfully loaded %s %s prompt from file: %s (%d characters)",
		promptType, name, absPath, len(trimmed))

	return trimmed, nil
}

// validatePromptFiles reports every configured prompt file that does not exist
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	for _, scope := range c.promptScopes() {
		for _, pf := range scope.files() {
			if pf.path == "" {
				continue
			}
			absPath, err := filepath.Abs(pf.path)
			if err != nil {
				validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s %s %s prompt: %s", scope.label, pf.kind, pf.name, pf.path))
				continue
			}
			if _, err := os.Stat(absPath); os.IsNotExist(err) {
				validationErrors = append(validationErrors, fmt.Sprintf("%s %s %s prompt file not found: %s", scope.label, pf.kind, pf.name, absPath))
			}
		}
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}
