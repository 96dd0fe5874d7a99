package server

import (
	"net/http"
	"strings"

	"resumeats/internal/assistant"
	"resumeats/internal/errors"
	"resumeats/internal/observability"
	"resumeats/internal/session"
	"resumeats/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MessageFeedbackThanks acknowledges a feedback submission
const MessageFeedbackThanks = "Thank you for your feedback!"

// AnswersRequest maps each question to the user's answer
type AnswersRequest struct {
	Answers map[string]string `json:"answers"`
}

type ChatRequest struct {
	Question string `json:"question"`
}

type FeedbackRequest struct {
	Feedback string `json:"feedback"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// apiSpan starts the handler span shared by every JSON endpoint
func (s *Server) apiSpan(r *http.Request, name string) (*http.Request, trace.Span) {
	ctx, span := s.Observability.Tracer("resumeats.api").Start(r.Context(), "api."+name)
	return r.WithContext(ctx), span
}

// failSpan records err on span and writes it to the client
func (s *Server) failSpan(w http.ResponseWriter, r *http.Request, span trace.Span, err error) {
	span.RecordError(err)
	span.SetAttributes(attribute.String("error.code", errorCode(err)))
	s.writeAppError(w, r, err)
}

func (s *Server) apiSessionHandler(w http.ResponseWriter, r *http.Request) {
	st := s.apiSession(w, r)
	writeJSON(w, http.StatusOK, st.Snapshot())
}

// apiAnalyzeHandler takes the same multipart fields as the HTML form
func (s *Server) apiAnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	r, span := s.apiSpan(r, "analyze")
	defer span.End()

	st := s.apiSession(w, r)
	result, err := s.analyze(r, st)
	if err != nil {
		s.failSpan(w, r, span, err)
		return
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.String("mode", result.Mode.String()),
		attribute.Int("response.length", len(result.Response)),
	)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) apiQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	r, span := s.apiSpan(r, "questions")
	defer span.End()

	st := s.apiSession(w, r)
	set, err := s.ensureQuestions(r, st)
	if err != nil {
		s.failSpan(w, r, span, err)
		return
	}

	span.SetAttributes(
		attribute.Bool("generated", set.Generated),
		attribute.Int("questions.count", len(set.Questions)),
	)
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) apiAnswersHandler(w http.ResponseWriter, r *http.Request) {
	r, span := s.apiSpan(r, "answers")
	defer span.End()

	var req AnswersRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.failSpan(w, r, span, err)
		return
	}

	st := s.apiSession(w, r)
	result, err := s.submitAnswers(r, st, req.Answers)
	if err != nil {
		s.failSpan(w, r, span, err)
		return
	}

	span.SetAttributes(attribute.Int("answers.count", len(result.Answers)))
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) apiChatHandler(w http.ResponseWriter, r *http.Request) {
	r, span := s.apiSpan(r, "chat")
	defer span.End()

	var req ChatRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.failSpan(w, r, span, err)
		return
	}

	st := s.apiSession(w, r)
	reply, err := s.chat(r, st, req.Question)
	if err != nil {
		s.failSpan(w, r, span, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) apiFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.writeAppError(w, r, err)
		return
	}

	st := s.apiSession(w, r)
	if err := s.recordFeedback(r, st.ID(), req.Feedback); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: MessageFeedbackThanks})
}

// The helpers below are shared by the JSON API and the HTML pages. Each runs
// one assistant step and records its business metric.

func (s *Server) analyze(r *http.Request, st *session.State) (types.AnalysisResult, error) {
	upload, err := readUpload(r, s.MaxRequestSize)
	if err != nil {
		return types.AnalysisResult{}, err
	}
	if upload.Empty() {
		return types.AnalysisResult{}, assistant.ErrResumeRequired
	}

	mode, err := types.ParseAnalysisMode(r.FormValue("mode"))
	if err != nil {
		return types.AnalysisResult{}, errors.NewValidationError(errors.ErrCodeInvalidMode, "Please choose a valid analysis mode.", err)
	}

	result, _, err := s.Assistant.Analyze(r.Context(), st, upload, r.FormValue("jobDescription"), mode)
	if err != nil {
		s.metrics().RecordBusinessMetric(r.Context(), observability.MetricResumeAnalyzed, false,
			attribute.String("mode", mode.String()))
		return types.AnalysisResult{}, err
	}

	s.metrics().RecordBusinessMetric(r.Context(), observability.MetricResumeAnalyzed, true,
		attribute.String("mode", mode.String()),
		attribute.Bool("job_description", result.HasJobDescription))
	return result, nil
}

func (s *Server) ensureQuestions(r *http.Request, st *session.State) (types.QuestionSet, error) {
	set, _, err := s.Assistant.EnsureQuestions(r.Context(), st)
	if err != nil {
		return types.QuestionSet{}, err
	}
	if set.Generated {
		s.metrics().RecordBusinessMetric(r.Context(), observability.MetricQuestionsCreated, len(set.Questions) > 0,
			attribute.Int("questions.count", len(set.Questions)))
	}
	return set, nil
}

func (s *Server) submitAnswers(r *http.Request, st *session.State, answers map[string]string) (types.InsightResult, error) {
	result, _, err := s.Assistant.SubmitAnswers(r.Context(), st, answers)
	if err != nil {
		return types.InsightResult{}, err
	}
	s.metrics().RecordBusinessMetric(r.Context(), observability.MetricInsightCreated, true)
	return result, nil
}

func (s *Server) chat(r *http.Request, st *session.State, question string) (types.ChatReply, error) {
	reply, _, err := s.Assistant.Chat(r.Context(), st, question)
	if err != nil {
		return types.ChatReply{}, err
	}
	s.metrics().RecordBusinessMetric(r.Context(), observability.MetricChatReply, true)
	return reply, nil
}

// recordFeedback logs the text; there is no feedback store
func (s *Server) recordFeedback(r *http.Request, sessionID, feedback string) error {
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "Please enter your feedback.", nil)
	}

	s.Logger.Info("Feedback received",
		"session_id", sessionID,
		"feedback", feedback)
	s.metrics().RecordBusinessMetric(r.Context(), observability.MetricFeedback, true,
		attribute.Int("feedback.length", len(feedback)))
	return nil
}
