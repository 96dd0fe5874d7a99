// Package assistant runs the resume dialogue: analysis, psychometric
// questions, insight and chat, each backed by one oracle call.
package assistant

import (
	"context"
	"strings"
	"time"

	"resumeats/internal/ai"
	"resumeats/internal/document"
	"resumeats/internal/errors"
	"resumeats/internal/session"
	"resumeats/internal/types"
)

// MessageResumeRequired is the only failure text specific to user input
const MessageResumeRequired = "Please upload a resume to analyze."

var (
	ErrResumeRequired    = errors.NewValidationError(errors.ErrCodeResumeRequired, MessageResumeRequired, nil)
	ErrAnalysisRequired  = errors.NewValidationError(errors.ErrCodeAnalysisRequired, "Analyze a resume first.", nil)
	ErrQuestionsRequired = errors.NewValidationError(errors.ErrCodeQuestionsRequired, "Generate the assessment questions first.", nil)
	ErrEmptyQuestion     = errors.NewValidationError(errors.ErrCodeInvalidRequest, "Please enter a question.", nil)
)

// Extractor turns an upload into resume text
type Extractor interface {
	Extract(ctx context.Context, up *document.Upload) (string, error)
}

// Oracles holds the oracle used by each step
type Oracles struct {
	Analysis  ai.Oracle
	Questions ai.Oracle
	Insight   ai.Oracle
	Chat      ai.Oracle
}

// Assistant is stateless; every operation works on the session passed in
type Assistant struct {
	oracles   Oracles
	prompts   *ai.PromptBuilder
	extractor Extractor
	logger    *errors.Logger
}

func New(oracles Oracles, prompts *ai.PromptBuilder, extractor Extractor, logger *errors.Logger) *Assistant {
	if prompts == nil {
		prompts = ai.NewPromptBuilder(nil)
	}
	return &Assistant{
		oracles:   oracles,
		prompts:   prompts,
		extractor: extractor,
		logger:    logger,
	}
}

// NewFromService wires the oracles and prompts of an ai.Service
func NewFromService(svc *ai.Service, extractor Extractor, logger *errors.Logger) *Assistant {
	return New(Oracles{
		Analysis:  svc.Analysis,
		Questions: svc.Questions,
		Insight:   svc.Insight,
		Chat:      svc.Chat,
	}, svc.Prompts, extractor, logger)
}

// Analyze extracts the resume, runs the analysis for mode and starts a new
// dialogue in st. Without an upload it fails with ErrResumeRequired.
func (a *Assistant) Analyze(ctx context.Context, st *session.State, upload *document.Upload, jobDescription string, mode types.AnalysisMode) (types.AnalysisResult, *ai.TokenUsage, error) {
	if upload.Empty() {
		return types.AnalysisResult{}, nil, ErrResumeRequired
	}

	resumeText, err := a.extractor.Extract(ctx, upload)
	if err != nil {
		return types.AnalysisResult{}, nil, err
	}

	jobDescription = strings.TrimSpace(jobDescription)
	prompt := a.prompts.Analysis(mode, resumeText, jobDescription)

	response, usage, err := a.oracles.Analysis.Generate(ctx, resumeText, prompt)
	if err != nil {
		return types.AnalysisResult{}, nil, err
	}

	st.BeginAnalysis(resumeText, jobDescription, mode, response)

	a.logger.Info("Resume analyzed",
		"session_id", st.ID(),
		"mode", mode,
		"resume_chars", len(resumeText),
		"has_job_description", jobDescription != "")

	return types.AnalysisResult{
		Mode:              mode,
		Response:          response,
		ResumeChars:       len(resumeText),
		HasJobDescription: jobDescription != "",
		SourceFileName:    upload.FileName,
		SourceContentType: upload.ContentType,
		AnalyzedAt:        time.Now().UTC(),
	}, usage, nil
}

// EnsureQuestions generates the questions once per analysis; later calls
// return the stored set without contacting the oracle. Concurrent callers on
// one session wait for the first generation instead of repeating it.
func (a *Assistant) EnsureQuestions(ctx context.Context, st *session.State) (types.QuestionSet, *ai.TokenUsage, error) {
	unlock := st.LockQuestions()
	defer unlock()

	analysis, ok := st.AnalysisContext()
	if !ok {
		return types.QuestionSet{}, nil, ErrAnalysisRequired
	}

	if existing := st.Questions(); len(existing) > 0 {
		return types.QuestionSet{Questions: existing}, nil, nil
	}

	prompt := a.prompts.Questions(analysis.ResumeText, analysis.JobDescription)
	raw, usage, err := a.oracles.Questions.Generate(ctx, analysis.ResumeText, prompt)
	if err != nil {
		return types.QuestionSet{}, nil, err
	}

	questions, stored := st.SetQuestionsFor(analysis.Seq, session.ParseQuestions(raw))
	if !stored {
		a.logger.Info("Discarding questions generated for a replaced analysis", "session_id", st.ID())
		return types.QuestionSet{Questions: questions}, usage, nil
	}
	if len(questions) == 0 {
		a.logger.Warn("Oracle returned no usable questions", "session_id", st.ID())
	}

	return types.QuestionSet{Questions: questions, Generated: true}, usage, nil
}

// SubmitAnswers records answers keyed by question text and produces the insight
func (a *Assistant) SubmitAnswers(ctx context.Context, st *session.State, answers map[string]string) (types.InsightResult, *ai.TokenUsage, error) {
	analysis, ok := st.AnalysisContext()
	if !ok {
		return types.InsightResult{}, nil, ErrAnalysisRequired
	}
	if len(st.Questions()) == 0 {
		return types.InsightResult{}, nil, ErrQuestionsRequired
	}

	st.RecordAnswers(answers)

	prompt := a.prompts.Insight(st.AnswersTranscript(), analysis.JobDescription)
	insight, usage, err := a.oracles.Insight.Generate(ctx, analysis.ResumeText, prompt)
	if err != nil {
		return types.InsightResult{}, nil, err
	}

	st.CompleteInsight(insight)

	return types.InsightResult{
		Insight: insight,
		Answers: st.Answers(),
	}, usage, nil
}

// Chat answers one question against the stored resume and analysis. Nothing
// is written back to st.
func (a *Assistant) Chat(ctx context.Context, st *session.State, question string) (types.ChatReply, *ai.TokenUsage, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return types.ChatReply{}, nil, ErrEmptyQuestion
	}

	analysis, ok := st.AnalysisContext()
	if !ok {
		return types.ChatReply{}, nil, ErrAnalysisRequired
	}

	prompt := a.prompts.Chat(question, analysis.ResumeText, analysis.Response)
	reply, usage, err := a.oracles.Chat.Generate(ctx, analysis.ResumeText, prompt)
	if err != nil {
		return types.ChatReply{}, nil, err
	}

	return types.ChatReply{Question: question, Reply: reply}, usage, nil
}
