package formatters

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"resumeats/internal/types"
)

// Formatter renders one result type in one output format
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "AnalysisResult", &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", "AnalysisResult", &AnalysisMarkdownFormatter{})
	registry.RegisterFormatter("text", "InsightResult", &InsightTextFormatter{})
	registry.RegisterFormatter("markdown", "InsightResult", &InsightMarkdownFormatter{})
	registry.RegisterFormatter("text", "InterviewReport", &ReportTextFormatter{})
	registry.RegisterFormatter("markdown", "InterviewReport", &ReportMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.AnalysisResult:
		return "AnalysisResult"
	case types.InsightResult:
		return "InsightResult"
	case types.InterviewReport:
		return "InterviewReport"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// AnalysisTextFormatter renders an analysis for the terminal
type AnalysisTextFormatter struct{}

func (f *AnalysisTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected AnalysisResult, got %T", data)
	}

	var output strings.Builder
	writeAnalysisText(&output, result)
	return output.String(), nil
}

func (f *AnalysisTextFormatter) SupportedType() string {
	return "AnalysisResult"
}

// AnalysisMarkdownFormatter renders an analysis as markdown
type AnalysisMarkdownFormatter struct{}

func (f *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected AnalysisResult, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Resume Analysis\n\n")
	writeAnalysisMarkdown(&output, result, "##")
	return output.String(), nil
}

func (f *AnalysisMarkdownFormatter) SupportedType() string {
	return "AnalysisResult"
}

// InsightTextFormatter renders the personality insight and the answers it came from
type InsightTextFormatter struct{}

func (f *InsightTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.InsightResult)
	if !ok {
		return "", fmt.Errorf("expected InsightResult, got %T", data)
	}

	var output strings.Builder
	writeInsightText(&output, result)
	return output.String(), nil
}

func (f *InsightTextFormatter) SupportedType() string {
	return "InsightResult"
}

type InsightMarkdownFormatter struct{}

func (f *InsightMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.InsightResult)
	if !ok {
		return "", fmt.Errorf("expected InsightResult, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Personality Insights & Score\n\n")
	writeInsightMarkdown(&output, result, "##")
	return output.String(), nil
}

func (f *InsightMarkdownFormatter) SupportedType() string {
	return "InsightResult"
}

// ReportTextFormatter renders a whole interview: analysis, insight and chat
type ReportTextFormatter struct{}

func (f *ReportTextFormatter) Format(data any) (string, error) {
	report, ok := data.(types.InterviewReport)
	if !ok {
		return "", fmt.Errorf("expected InterviewReport, got %T", data)
	}

	var output strings.Builder
	writeAnalysisText(&output, report.Analysis)

	if report.Insight != nil {
		output.WriteString("\n")
		writeInsightText(&output, *report.Insight)
	}

	if len(report.Chat) > 0 {
		output.WriteString("\n=== CHAT ===\n\n")
		for _, c := range report.Chat {
			output.WriteString(fmt.Sprintf("Q: %s\n", c.Question))
			output.WriteString(fmt.Sprintf("A: %s\n\n", c.Reply))
		}
	}

	return output.String(), nil
}

func (f *ReportTextFormatter) SupportedType() string {
	return "InterviewReport"
}

type ReportMarkdownFormatter struct{}

func (f *ReportMarkdownFormatter) Format(data any) (string, error) {
	report, ok := data.(types.InterviewReport)
	if !ok {
		return "", fmt.Errorf("expected InterviewReport, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Resume Interview Report\n\n")
	output.WriteString("## Analysis\n\n")
	writeAnalysisMarkdown(&output, report.Analysis, "###")

	if report.Insight != nil {
		output.WriteString("## Personality Insights & Score\n\n")
		writeInsightMarkdown(&output, *report.Insight, "###")
	}

	if len(report.Chat) > 0 {
		output.WriteString("## Chat\n\n")
		for _, c := range report.Chat {
			output.WriteString(fmt.Sprintf("**Q:** %s\n\n", c.Question))
			output.WriteString(c.Reply)
			output.WriteString("\n\n")
		}
	}

	return output.String(), nil
}

func (f *ReportMarkdownFormatter) SupportedType() string {
	return "InterviewReport"
}

func writeAnalysisText(output *strings.Builder, result types.AnalysisResult) {
	output.WriteString("=== RESUME ANALYSIS ===\n")
	output.WriteString(fmt.Sprintf("Mode: %s\n", result.Mode.DisplayName()))
	if result.SourceFileName != "" {
		output.WriteString(fmt.Sprintf("Resume: %s (%d characters)\n", result.SourceFileName, result.ResumeChars))
	}
	output.WriteString(fmt.Sprintf("Job description: %s\n\n", yesNo(result.HasJobDescription)))
	output.WriteString(result.Response)
	output.WriteString("\n")
}

func writeAnalysisMarkdown(output *strings.Builder, result types.AnalysisResult, heading string) {
	output.WriteString(fmt.Sprintf("**Mode:** %s\n\n", result.Mode.DisplayName()))
	if result.SourceFileName != "" {
		output.WriteString(fmt.Sprintf("**Resume:** `%s` (%d characters)\n\n", result.SourceFileName, result.ResumeChars))
	}
	output.WriteString(fmt.Sprintf("**Job description:** %s\n\n", yesNo(result.HasJobDescription)))
	output.WriteString(heading + " Analysis Results\n\n")
	output.WriteString(result.Response)
	output.WriteString("\n\n")
}

func writeInsightText(output *strings.Builder, result types.InsightResult) {
	output.WriteString("=== PERSONALITY INSIGHTS & SCORE ===\n\n")
	output.WriteString(result.Insight)
	output.WriteString("\n")

	if len(result.Answers) > 0 {
		output.WriteString("\n=== YOUR ANSWERS ===\n\n")
		for i, qa := range result.Answers {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, qa.Question))
			output.WriteString(fmt.Sprintf("   %s\n", answerOrSkipped(qa.Answer)))
		}
	}
}

func writeInsightMarkdown(output *strings.Builder, result types.InsightResult, heading string) {
	output.WriteString(result.Insight)
	output.WriteString("\n\n")

	if len(result.Answers) > 0 {
		output.WriteString(heading + " Your Answers\n\n")
		for i, qa := range result.Answers {
			output.WriteString(fmt.Sprintf("%d. **%s**\n   %s\n", i+1, qa.Question, answerOrSkipped(qa.Answer)))
		}
		output.WriteString("\n")
	}
}

func yesNo(b bool) string {
	if b {
		return "provided"
	}
	return "not provided"
}

func answerOrSkipped(answer string) string {
	if strings.TrimSpace(answer) == "" {
		return "(no answer)"
	}
	return answer
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
