// Package session keeps the per-user state of the analysis dialogue.
package session

import (
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"resumeats/internal/types"
)

// MaxQuestions caps the psychometric question list
const MaxQuestions = 5

// State is the mutable record of one user's dialogue. It is safe for
// concurrent use.
type State struct {
	mu sync.Mutex
	// genMu serializes question generation so it runs once per analysis
	genMu sync.Mutex

	id             string
	resumeText     string
	jobDescription string
	mode           types.AnalysisMode
	response       string
	questions      []string
	answers        map[string]string
	insight        string
	analysisDone   bool
	insightDone    bool
	analysisSeq    uint64
	updatedAt      time.Time
}

// AnalysisContext is what later steps reuse from the last analysis
type AnalysisContext struct {
	ResumeText     string
	JobDescription string
	Mode           types.AnalysisMode
	Response       string
	// Seq identifies the analysis; it changes on every BeginAnalysis
	Seq uint64
}

// NewState creates an empty state
func NewState(id string) *State {
	return &State{
		id:        id,
		answers:   make(map[string]string),
		updatedAt: time.Now(),
	}
}

func (s *State) ID() string {
	return s.id
}

// BeginAnalysis stores a fresh analysis and forgets everything derived from
// the previous one.
func (s *State) BeginAnalysis(resumeText, jobDescription string, mode types.AnalysisMode, response string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resumeText = resumeText
	s.jobDescription = jobDescription
	s.mode = mode
	s.response = response
	s.analysisDone = true
	s.analysisSeq++

	s.questions = nil
	s.answers = make(map[string]string)
	s.insight = ""
	s.insightDone = false
	s.touch()
}

// AnalysisContext returns the stored analysis, false before the first one
func (s *State) AnalysisContext() (AnalysisContext, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.analysisDone {
		return AnalysisContext{}, false
	}
	return AnalysisContext{
		ResumeText:     s.resumeText,
		JobDescription: s.jobDescription,
		Mode:           s.mode,
		Response:       s.response,
		Seq:            s.analysisSeq,
	}, true
}

// NeedsQuestions reports whether an analysis exists without questions
func (s *State) NeedsQuestions() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analysisDone && len(s.questions) == 0
}

// SetQuestions stores at most MaxQuestions distinct questions and returns them
func (s *State) SetQuestions(questions []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setQuestionsLocked(questions)
	return slices.Clone(s.questions)
}

// LockQuestions holds off other question generation for this state until
// the returned func is called.
func (s *State) LockQuestions() (unlock func()) {
	s.genMu.Lock()
	return s.genMu.Unlock
}

// SetQuestionsFor stores questions generated for analysis seq. Nothing is
// stored when a newer analysis has begun or questions already exist; the
// current questions are returned either way.
func (s *State) SetQuestionsFor(seq uint64, questions []string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.analysisSeq || len(s.questions) > 0 {
		return slices.Clone(s.questions), false
	}
	s.setQuestionsLocked(questions)
	return slices.Clone(s.questions), true
}

func (s *State) setQuestionsLocked(questions []string) {
	questions = uniqueQuestions(questions)
	if len(questions) > MaxQuestions {
		questions = questions[:MaxQuestions]
	}
	s.questions = questions
	s.touch()
}

func (s *State) Questions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.questions)
}

// RecordAnswers stores answers keyed by question text. Answers to unknown
// questions are dropped; questions missing from answers keep their prior answer.
func (s *State) RecordAnswers(answers map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, q := range s.questions {
		if a, ok := answers[q]; ok {
			s.answers[q] = strings.TrimSpace(a)
		}
	}
	s.touch()
}

// Answers pairs every question with its answer, in question order
func (s *State) Answers() []types.QA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.qaLocked()
}

func (s *State) qaLocked() []types.QA {
	pairs := make([]types.QA, 0, len(s.questions))
	for _, q := range s.questions {
		pairs = append(pairs, types.QA{Question: q, Answer: s.answers[q]})
	}
	return pairs
}

// AnswersTranscript renders "Q: <q>\nA: <a>" per question joined by newlines
func (s *State) AnswersTranscript() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]string, 0, len(s.questions))
	for _, qa := range s.qaLocked() {
		lines = append(lines, "Q: "+qa.Question+"\nA: "+qa.Answer)
	}
	return strings.Join(lines, "\n")
}

// CompleteInsight stores the insight and marks the dialogue finished
func (s *State) CompleteInsight(insight string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.insight = insight
	s.insightDone = true
	s.touch()
}

// Snapshot returns a copy safe to render or encode
func (s *State) Snapshot() types.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return types.SessionSnapshot{
		ID:             s.id,
		AnalysisDone:   s.analysisDone,
		InsightDone:    s.insightDone,
		Mode:           s.mode,
		Response:       s.response,
		Questions:      slices.Clone(s.questions),
		Answers:        maps.Clone(s.answers),
		Insight:        s.insight,
		JobDescription: s.jobDescription,
		UpdatedAt:      s.updatedAt,
	}
}

func (s *State) touch() {
	s.updatedAt = time.Now()
}
