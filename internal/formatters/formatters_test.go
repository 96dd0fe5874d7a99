package formatters

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"resumeats/internal/types"
)

func sampleAnalysis() types.AnalysisResult {
	return types.AnalysisResult{
		Mode:              types.ModeATSOptimization,
		Response:          "ATS Compatibility Score: 72/100",
		ResumeChars:       1234,
		HasJobDescription: true,
		SourceFileName:    "resume.pdf",
		AnalyzedAt:        time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func sampleInsight() types.InsightResult {
	return types.InsightResult{
		Insight: "Structured and collaborative. Score: 8/10",
		Answers: []types.QA{
			{Question: "How do you handle deadlines?", Answer: "I plan backwards from the date."},
			{Question: "What motivates you?", Answer: ""},
		},
	}
}

func TestFormatAnalysis(t *testing.T) {
	tests := []struct {
		format string
		want   []string
	}{
		{"text", []string{"=== RESUME ANALYSIS ===", "Mode: ATS Optimization", "resume.pdf (1234 characters)", "Job description: provided", "ATS Compatibility Score: 72/100"}},
		{"markdown", []string{"# Resume Analysis", "**Mode:** ATS Optimization", "## Analysis Results", "ATS Compatibility Score: 72/100"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := GlobalRegistry.Format(sampleAnalysis(), tt.format)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestFormatInsight(t *testing.T) {
	tests := []struct {
		format string
		want   []string
	}{
		{"text", []string{"=== PERSONALITY INSIGHTS & SCORE ===", "Score: 8/10", "1. How do you handle deadlines?", "(no answer)"}},
		{"markdown", []string{"# Personality Insights & Score", "## Your Answers", "2. **What motivates you?**", "(no answer)"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := GlobalRegistry.Format(sampleInsight(), tt.format)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestFormatReport(t *testing.T) {
	insight := sampleInsight()
	report := types.InterviewReport{
		Analysis: sampleAnalysis(),
		Insight:  &insight,
		Chat:     []types.ChatReply{{Question: "Which skill is missing?", Reply: "Kubernetes."}},
	}

	text, err := GlobalRegistry.Format(report, "text")
	if err != nil {
		t.Fatalf("Format(text) error = %v", err)
	}
	for _, want := range []string{"=== RESUME ANALYSIS ===", "=== PERSONALITY INSIGHTS & SCORE ===", "Q: Which skill is missing?", "A: Kubernetes."} {
		if !strings.Contains(text, want) {
			t.Errorf("text report missing %q", want)
		}
	}

	md, err := GlobalRegistry.Format(report, "markdown")
	if err != nil {
		t.Fatalf("Format(markdown) error = %v", err)
	}
	for _, want := range []string{"# Resume Interview Report", "### Analysis Results", "## Personality Insights & Score", "## Chat"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown report missing %q", want)
		}
	}

	// Without an insight or chat only the analysis is rendered
	text, err = GlobalRegistry.Format(types.InterviewReport{Analysis: sampleAnalysis()}, "text")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if strings.Contains(text, "PERSONALITY") || strings.Contains(text, "CHAT") {
		t.Errorf("report without insight rendered extra sections:\n%s", text)
	}
}

func TestFormatJSON(t *testing.T) {
	out, err := GlobalRegistry.Format(sampleAnalysis(), "json")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var decoded types.AnalysisResult
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Mode != types.ModeATSOptimization {
		t.Errorf("mode = %q, want %q", decoded.Mode, types.ModeATSOptimization)
	}
}

func TestFormatUnknown(t *testing.T) {
	if _, err := GlobalRegistry.Format(sampleAnalysis(), "yaml"); err == nil {
		t.Error("Format() with unknown format returned no error")
	}
	// Types without a dedicated formatter only have JSON
	if _, err := GlobalRegistry.Format(types.ChatReply{}, "text"); err == nil {
		t.Error("Format() of ChatReply as text returned no error")
	}
}

func TestFormatterTypeMismatch(t *testing.T) {
	if _, err := (&AnalysisTextFormatter{}).Format(sampleInsight()); err == nil {
		t.Error("AnalysisTextFormatter accepted an InsightResult")
	}
}

func TestGetSupportedFormats(t *testing.T) {
	got := GlobalRegistry.GetSupportedFormats()
	want := []string{"json", "markdown", "text"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("GetSupportedFormats() = %v, want %v", got, want)
	}
}
