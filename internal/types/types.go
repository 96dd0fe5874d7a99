package types

import (
	"fmt"
	"strings"
	"time"
)

// AnalysisMode selects which analysis prompt is sent to the model
type AnalysisMode string

const (
	ModeQuickScan       AnalysisMode = "quick"
	ModeDetailed        AnalysisMode = "detailed"
	ModeATSOptimization AnalysisMode = "ats"
)

// AllModes lists the modes in the order they are offered to users
var AllModes = []AnalysisMode{ModeQuickScan, ModeDetailed, ModeATSOptimization}

// DisplayName returns the label shown in the UI
func (m AnalysisMode) DisplayName() string {
	switch m {
	case ModeQuickScan:
		return "Quick Scan"
	case ModeDetailed:
		return "Detailed Analysis"
	case ModeATSOptimization:
		return "ATS Optimization"
	default:
		return string(m)
	}
}

func (m AnalysisMode) String() string {
	return string(m)
}

// ParseAnalysisMode accepts wire names, display names and identifier spellings.
// An empty value selects the quick scan.
func ParseAnalysisMode(s string) (AnalysisMode, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(normalized)

	switch normalized {
	case "", "quick", "quickscan":
		return ModeQuickScan, nil
	case "detailed", "detailedanalysis":
		return ModeDetailed, nil
	case "ats", "atsoptimization", "atsoptimisation":
		return ModeATSOptimization, nil
	default:
		return "", fmt.Errorf("unknown analysis mode %q (expected quick, detailed or ats)", s)
	}
}

// AnalysisResult is returned by an analysis request
type AnalysisResult struct {
	Mode              AnalysisMode `json:"mode"`
	Response          string       `json:"response"`
	ResumeChars       int          `json:"resumeChars"`
	HasJobDescription bool         `json:"hasJobDescription"`
	SourceFileName    string       `json:"sourceFileName,omitempty"`
	SourceContentType string       `json:"sourceContentType,omitempty"`
	AnalyzedAt        time.Time    `json:"analyzedAt"`
}

// QuestionSet holds the psychometric questions for the current analysis
type QuestionSet struct {
	Questions []string `json:"questions"`
	Generated bool     `json:"generated"` // false when the stored set was reused
}

// QA pairs a question with the user's answer
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// InsightResult is the personality insight produced from the answers
type InsightResult struct {
	Insight string `json:"insight"`
	Answers []QA   `json:"answers"`
}

// ChatReply is a single stateless chat answer
type ChatReply struct {
	Question string `json:"question"`
	Reply    string `json:"reply"`
}

// SessionSnapshot is a read-only view of a session for rendering
type SessionSnapshot struct {
	ID             string            `json:"id"`
	AnalysisDone   bool              `json:"analysisDone"`
	InsightDone    bool              `json:"insightDone"`
	Mode           AnalysisMode      `json:"mode,omitempty"`
	Response       string            `json:"response,omitempty"`
	Questions      []string          `json:"questions,omitempty"`
	Answers        map[string]string `json:"answers,omitempty"`
	Insight        string            `json:"insight,omitempty"`
	JobDescription string            `json:"jobDescription,omitempty"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// InterviewReport bundles everything produced by a terminal interview
type InterviewReport struct {
	Analysis AnalysisResult `json:"analysis"`
	Insight  *InsightResult `json:"insight,omitempty"`
	Chat     []ChatReply    `json:"chat,omitempty"`
}
