package ai

import (
	"fmt"
	"strings"

	"resumeats/internal/config"
	"resumeats/internal/types"
)

// SystemPrompts contains the persona sent as system instruction per operation
type SystemPrompts struct {
	Analysis  string
	Questions string
	Insight   string
	Chat      string
}

// UserPrompts contains user prompt templates. Analysis and question templates
// take %[1]s resume and %[2]s job description, the insight template %[1]s
// answers and %[2]s job description, the chat template %[1]s question,
// %[2]s resume and %[3]s previous analysis.
type UserPrompts struct {
	QuickScan        string
	DetailedAnalysis string
	ATSOptimization  string
	Questions        string
	Insight          string
	Chat             string
}

// noJobDescription stands in for an empty job description
const noJobDescription = "Not provided."

// DefaultSystemPrompts provides the default system instructions
var DefaultSystemPrompts = SystemPrompts{
	Analysis:  `You are ResumeChecker, an expert in resume analysis and ATS optimization.`,
	Questions: `You are a professional psychometric evaluator.`,
	Insight:   `You are a professional psychologist and career advisor.`,
	Chat:      `You are ResumeChecker, an expert in resume analysis. Answer questions about the resume and the analysis you already gave.`,
}

// DefaultUserPrompts provides the default user prompt templates
var DefaultUserPrompts = UserPrompts{
	QuickScan: `Provide a quick scan:
1. Identify the most suitable profession for this resume.
2. List 3 key strengths.
3. Suggest 2 quick improvements.
4. Give an overall ATS score out of 100.

Resume: %[1]s
Job description: %[2]s`,

	DetailedAnalysis: `Provide a detailed analysis:
1. Identify the most suitable profession.
2. List 5 strengths.
3. Suggest 3-5 improvements with specifics.
4. Rate Impact, Brevity, Style, Structure, Skills (out of 10).
5. Review each section (Summary, Experience, Education).
6. Give an overall ATS score with breakdown.

Resume: %[1]s
Job description: %[2]s`,

	ATSOptimization: `Analyze the resume for ATS optimization:
1. Identify keywords from the job description to include.
2. Suggest reformatting for better ATS readability.
3. Recommend keyword density improvements.
4. Suggest 3-5 ways to tailor the resume for this job.
5. Give an ATS compatibility score out of 100.

Resume: %[1]s
Job description: %[2]s`,

	Questions: `Based on this resume and job description, create 5 short, personality-assessment questions that help reveal work habits, team behavior, motivation, and adaptability.
Return one question per line.

Resume: %[1]s
Job description: %[2]s`,

	Insight: `Analyze the following psychometric answers and provide:
1. A short summary of personality traits.
2. 3 strengths relevant to workplace success.
3. 2 potential development areas.
4. Overall personality fit for the provided job description.
5. Give an overall psychometric score out of 100.

Answers:
%[1]s
Job description: %[2]s`,

	Chat: `Based on the resume and analysis above, answer:
%[1]s

Resume text: %[2]s
Previous analysis: %[3]s`,
}

// PromptBuilder renders the prompt for each operation. Each template resolves
// from a prompt file, then the configuration, then the built-in default.
type PromptBuilder struct {
	system SystemPrompts
	user   UserPrompts
}

// NewPromptBuilder resolves every prompt once. A nil config yields the defaults.
func NewPromptBuilder(cfg *config.Config) *PromptBuilder {
	if cfg == nil {
		return &PromptBuilder{system: DefaultSystemPrompts, user: DefaultUserPrompts}
	}

	analysisFiles, analysisCfg := promptSources(cfg, config.OperationAnalysis)
	questionsFiles, questionsCfg := promptSources(cfg, config.OperationQuestions)
	insightFiles, insightCfg := promptSources(cfg, config.OperationInsight)
	chatFiles, chatCfg := promptSources(cfg, config.OperationChat)

	return &PromptBuilder{
		system: SystemPrompts{
			Analysis:  resolvePrompt(analysisFiles.SystemPrompts.Analysis, analysisCfg.SystemPrompts.Analysis, DefaultSystemPrompts.Analysis),
			Questions: resolvePrompt(questionsFiles.SystemPrompts.Questions, questionsCfg.SystemPrompts.Questions, DefaultSystemPrompts.Questions),
			Insight:   resolvePrompt(insightFiles.SystemPrompts.Insight, insightCfg.SystemPrompts.Insight, DefaultSystemPrompts.Insight),
			Chat:      resolvePrompt(chatFiles.SystemPrompts.Chat, chatCfg.SystemPrompts.Chat, DefaultSystemPrompts.Chat),
		},
		user: UserPrompts{
			QuickScan:        resolvePrompt(analysisFiles.UserPrompts.QuickScan, analysisCfg.UserPrompts.QuickScan, DefaultUserPrompts.QuickScan),
			DetailedAnalysis: resolvePrompt(analysisFiles.UserPrompts.DetailedAnalysis, analysisCfg.UserPrompts.DetailedAnalysis, DefaultUserPrompts.DetailedAnalysis),
			ATSOptimization:  resolvePrompt(analysisFiles.UserPrompts.ATSOptimization, analysisCfg.UserPrompts.ATSOptimization, DefaultUserPrompts.ATSOptimization),
			Questions:        resolvePrompt(questionsFiles.UserPrompts.Questions, questionsCfg.UserPrompts.Questions, DefaultUserPrompts.Questions),
			Insight:          resolvePrompt(insightFiles.UserPrompts.Insight, insightCfg.UserPrompts.Insight, DefaultUserPrompts.Insight),
			Chat:             resolvePrompt(chatFiles.UserPrompts.Chat, chatCfg.UserPrompts.Chat, DefaultUserPrompts.Chat),
		},
	}
}

func promptSources(cfg *config.Config, op string) (config.LoadedPrompts, config.PromptConfig) {
	return cfg.GetLoadedPrompts(op), cfg.GetOperationConfig(op).CustomPrompts
}

// System returns the system instruction for op
func (b *PromptBuilder) System(op string) string {
	switch op {
	case config.OperationAnalysis:
		return b.system.Analysis
	case config.OperationQuestions:
		return b.system.Questions
	case config.OperationInsight:
		return b.system.Insight
	case config.OperationChat:
		return b.system.Chat
	default:
		return ""
	}
}

// Analysis renders the template of mode
func (b *PromptBuilder) Analysis(mode types.AnalysisMode, resumeText, jobDescription string) string {
	var tmpl string
	switch mode {
	case types.ModeDetailed:
		tmpl = b.user.DetailedAnalysis
	case types.ModeATSOptimization:
		tmpl = b.user.ATSOptimization
	default:
		tmpl = b.user.QuickScan
	}
	return fmt.Sprintf(tmpl, resumeText, orNotProvided(jobDescription))
}

func (b *PromptBuilder) Questions(resumeText, jobDescription string) string {
	return fmt.Sprintf(b.user.Questions, resumeText, orNotProvided(jobDescription))
}

func (b *PromptBuilder) Insight(transcript, jobDescription string) string {
	return fmt.Sprintf(b.user.Insight, transcript, orNotProvided(jobDescription))
}

func (b *PromptBuilder) Chat(question, resumeText, analysis string) string {
	return fmt.Sprintf(b.user.Chat, question, resumeText, analysis)
}

func orNotProvided(jobDescription string) string {
	if strings.TrimSpace(jobDescription) == "" {
		return noJobDescription
	}
	return jobDescription
}

// resolvePrompt picks the first non-empty of a file-loaded prompt, a prompt
// from configuration and the built-in default.
func resolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}
