package assistant

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"resumeats/internal/ai"
	"resumeats/internal/document"
	"resumeats/internal/errors"
	"resumeats/internal/session"
	"resumeats/internal/types"
)

// fakeOracle records every call and replies with the next queued reply
type fakeOracle struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   [][]string
}

func (f *fakeOracle) Generate(_ context.Context, parts ...string) (string, *ai.TokenUsage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, parts)
	if f.err != nil {
		return "", nil, f.err
	}
	reply := "reply"
	if len(f.replies) > 0 {
		reply, f.replies = f.replies[0], f.replies[1:]
	}
	return reply, &ai.TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}, nil
}

func (f *fakeOracle) GetModelInfo(context.Context) *ai.ModelInfo { return &ai.ModelInfo{Available: true} }
func (f *fakeOracle) Close() error                                { return nil }

func (f *fakeOracle) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeOracle) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return ""
	}
	parts := f.calls[len(f.calls)-1]
	return parts[len(parts)-1]
}

type fixture struct {
	assistant *Assistant
	analysis  *fakeOracle
	questions *fakeOracle
	insight   *fakeOracle
	chat      *fakeOracle
	state     *session.State
}

func newFixture() *fixture {
	f := &fixture{
		analysis:  &fakeOracle{replies: []string{"analysis one", "analysis two"}},
		questions: &fakeOracle{},
		insight:   &fakeOracle{replies: []string{"insight text"}},
		chat:      &fakeOracle{},
		state:     session.NewState("s1"),
	}
	f.assistant = New(Oracles{
		Analysis:  f.analysis,
		Questions: f.questions,
		Insight:   f.insight,
		Chat:      f.chat,
	}, nil, document.NewLoader(1<<20, 0, nil), errors.NewNopLogger())
	return f
}

func (f *fixture) totalCalls() int {
	return f.analysis.callCount() + f.questions.callCount() + f.insight.callCount() + f.chat.callCount()
}

func resumeUpload() *document.Upload {
	return &document.Upload{FileName: "resume.txt", Data: []byte("Jane Doe\nGo engineer, 8 years")}
}

func TestAnalyzeWithoutUpload(t *testing.T) {
	for _, up := range []*document.Upload{nil, {FileName: "empty.pdf"}} {
		f := newFixture()

		_, _, err := f.assistant.Analyze(context.Background(), f.state, up, "jd", types.ModeQuickScan)
		if !errors.IsCode(err, errors.ErrCodeResumeRequired) {
			t.Fatalf("expected RESUME_REQUIRED, got %v", err)
		}
		if msg := errors.UserMessage(err); msg != MessageResumeRequired {
			t.Errorf("user message = %q", msg)
		}
		if f.totalCalls() != 0 {
			t.Errorf("oracle called %d times without a resume", f.totalCalls())
		}
	}
}

func TestAnalyzeCallsOracleOncePerMode(t *testing.T) {
	modeText := map[types.AnalysisMode]string{
		types.ModeQuickScan:       "Provide a quick scan",
		types.ModeDetailed:        "Review each section (Summary, Experience, Education).",
		types.ModeATSOptimization: "Give an ATS compatibility score out of 100.",
	}

	for mode, want := range modeText {
		t.Run(string(mode), func(t *testing.T) {
			f := newFixture()

			result, usage, err := f.assistant.Analyze(context.Background(), f.state, resumeUpload(), "Backend role", mode)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.analysis.callCount() != 1 || f.totalCalls() != 1 {
				t.Fatalf("expected exactly one oracle call, got %d", f.totalCalls())
			}

			parts := f.analysis.calls[0]
			if len(parts) != 2 || !strings.HasPrefix(parts[0], "Jane Doe") {
				t.Errorf("first part should be the resume text, got %q", parts)
			}
			if !strings.Contains(parts[1], want) {
				t.Errorf("prompt lacks %q:\n%s", want, parts[1])
			}
			if result.Response != "analysis one" || result.Mode != mode || !result.HasJobDescription {
				t.Errorf("unexpected result %+v", result)
			}
			if usage == nil || usage.TotalTokens != 15 {
				t.Errorf("usage not propagated: %+v", usage)
			}
		})
	}
}

func TestAnalyzeReportsExtractionErrors(t *testing.T) {
	f := newFixture()
	up := &document.Upload{FileName: "photo.png", Data: append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...)}

	_, _, err := f.assistant.Analyze(context.Background(), f.state, up, "", types.ModeQuickScan)
	if !errors.IsCode(err, errors.ErrCodeUnsupportedFormat) {
		t.Fatalf("expected UNSUPPORTED_FORMAT, got %v", err)
	}
	if f.totalCalls() != 0 {
		t.Error("oracle must not be called when extraction fails")
	}
}

func TestNewAnalysisResetsQuestionsAndInsight(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.questions.replies = []string{"- Q1\n- Q2", "- Fresh question"}

	if _, _, err := f.assistant.Analyze(ctx, f.state, resumeUpload(), "", types.ModeQuickScan); err != nil {
		t.Fatal(err)
	}
	if _, _, err := f.assistant.EnsureQuestions(ctx, f.state); err != nil {
		t.Fatal(err)
	}
	if _, _, err := f.assistant.SubmitAnswers(ctx, f.state, map[string]string{"Q1": "yes"}); err != nil {
		t.Fatal(err)
	}
	if !f.state.Snapshot().InsightDone {
		t.Fatal("insight should be done")
	}

	if _, _, err := f.assistant.Analyze(ctx, f.state, resumeUpload(), "", types.ModeDetailed); err != nil {
		t.Fatal(err)
	}

	snap := f.state.Snapshot()
	if snap.InsightDone || len(snap.Questions) != 0 || len(snap.Answers) != 0 {
		t.Errorf("derived state not reset: %+v", snap)
	}
	if snap.Response != "analysis two" {
		t.Errorf("response = %q", snap.Response)
	}

	set, _, err := f.assistant.EnsureQuestions(ctx, f.state)
	if err != nil {
		t.Fatal(err)
	}
	if !set.Generated || len(set.Questions) != 1 || set.Questions[0] != "Fresh question" {
		t.Errorf("questions not regenerated: %+v", set)
	}
}

func TestEnsureQuestionsCapsAndGeneratesOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.questions.replies = []string{"• One\n• Two\n• Three\n• Four\n• Five\n• Six\n• Seven"}

	if _, _, err := f.assistant.Analyze(ctx, f.state, resumeUpload(), "", types.ModeQuickScan); err != nil {
		t.Fatal(err)
	}

	first, usage, err := f.assistant.EnsureQuestions(ctx, f.state)
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Questions) != session.MaxQuestions || !first.Generated || usage == nil {
		t.Fatalf("unexpected first set %+v", first)
	}

	second, usage, err := f.assistant.EnsureQuestions(ctx, f.state)
	if err != nil {
		t.Fatal(err)
	}
	if second.Generated || usage != nil {
		t.Error("second call should reuse the stored questions")
	}
	if f.questions.callCount() != 1 {
		t.Errorf("questions oracle called %d times, want 1", f.questions.callCount())
	}
}

// gatedOracle blocks every call until release is closed
type gatedOracle struct {
	fakeOracle
	entered chan struct{}
	release chan struct{}
}

func newGatedOracle(replies ...string) *gatedOracle {
	return &gatedOracle{
		fakeOracle: fakeOracle{replies: replies},
		entered:    make(chan struct{}, 4),
		release:    make(chan struct{}),
	}
}

func (g *gatedOracle) Generate(ctx context.Context, parts ...string) (string, *ai.TokenUsage, error) {
	g.entered <- struct{}{}
	<-g.release
	return g.fakeOracle.Generate(ctx, parts...)
}

func TestEnsureQuestionsConcurrentCallersShareOneGeneration(t *testing.T) {
	f := newFixture()
	gated := newGatedOracle("First?\nSecond?", "Other?")
	f.assistant.oracles.Questions = gated
	ctx := context.Background()

	if _, _, err := f.assistant.Analyze(ctx, f.state, resumeUpload(), "", types.ModeQuickScan); err != nil {
		t.Fatal(err)
	}

	results := make(chan types.QuestionSet, 2)
	run := func() {
		set, _, err := f.assistant.EnsureQuestions(ctx, f.state)
		if err != nil {
			t.Error(err)
		}
		results <- set
	}

	go run()
	<-gated.entered
	go run()
	time.Sleep(50 * time.Millisecond)
	close(gated.release)

	first, second := <-results, <-results
	if gated.callCount() != 1 {
		t.Errorf("questions oracle called %d times, want 1", gated.callCount())
	}
	for _, set := range []types.QuestionSet{first, second} {
		if strings.Join(set.Questions, "|") != "First?|Second?" {
			t.Errorf("unexpected questions %v", set.Questions)
		}
	}
	if first.Generated == second.Generated {
		t.Errorf("exactly one caller should report generation: %v, %v", first.Generated, second.Generated)
	}
}

func TestEnsureQuestionsDiscardedAfterNewAnalysis(t *testing.T) {
	f := newFixture()
	gated := newGatedOracle("Stale question?")
	f.assistant.oracles.Questions = gated
	ctx := context.Background()

	if _, _, err := f.assistant.Analyze(ctx, f.state, resumeUpload(), "", types.ModeQuickScan); err != nil {
		t.Fatal(err)
	}

	done := make(chan types.QuestionSet, 1)
	go func() {
		set, _, err := f.assistant.EnsureQuestions(ctx, f.state)
		if err != nil {
			t.Error(err)
		}
		done <- set
	}()

	<-gated.entered
	if _, _, err := f.assistant.Analyze(ctx, f.state, resumeUpload(), "", types.ModeDetailed); err != nil {
		t.Fatal(err)
	}
	close(gated.release)

	set := <-done
	if set.Generated || len(set.Questions) != 0 {
		t.Errorf("questions for the replaced analysis were returned as generated: %+v", set)
	}
	if !f.state.NeedsQuestions() {
		t.Error("new analysis should still need its own questions")
	}
}

func TestEnsureQuestionsRequiresAnalysis(t *testing.T) {
	f := newFixture()

	_, _, err := f.assistant.EnsureQuestions(context.Background(), f.state)
	if !errors.IsCode(err, errors.ErrCodeAnalysisRequired) {
		t.Fatalf("expected ANALYSIS_REQUIRED, got %v", err)
	}
}

func TestSubmitAnswersBuildsTranscriptInOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.questions.replies = []string{"- First?\n- Second?"}

	if _, _, err := f.assistant.SubmitAnswers(ctx, f.state, nil); !errors.IsCode(err, errors.ErrCodeAnalysisRequired) {
		t.Fatalf("expected ANALYSIS_REQUIRED, got %v", err)
	}

	if _, _, err := f.assistant.Analyze(ctx, f.state, resumeUpload(), "Platform team", types.ModeQuickScan); err != nil {
		t.Fatal(err)
	}
	if _, _, err := f.assistant.SubmitAnswers(ctx, f.state, nil); !errors.IsCode(err, errors.ErrCodeQuestionsRequired) {
		t.Fatalf("expected QUESTIONS_REQUIRED, got %v", err)
	}
	if _, _, err := f.assistant.EnsureQuestions(ctx, f.state); err != nil {
		t.Fatal(err)
	}

	result, _, err := f.assistant.SubmitAnswers(ctx, f.state, map[string]string{
		"Second?": "B",
		"First?":  "A",
	})
	if err != nil {
		t.Fatal(err)
	}

	prompt := f.insight.lastPrompt()
	if !strings.Contains(prompt, "Q: First?\nA: A\nQ: Second?\nA: B") {
		t.Errorf("transcript out of order:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Job description: Platform team") {
		t.Errorf("job description missing:\n%s", prompt)
	}
	if result.Insight != "insight text" || len(result.Answers) != 2 || result.Answers[0].Answer != "A" {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestChatIsStateless(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.chat.replies = []string{"first reply", "second reply"}

	if _, _, err := f.assistant.Chat(ctx, f.state, "anything?"); !errors.IsCode(err, errors.ErrCodeAnalysisRequired) {
		t.Fatalf("expected ANALYSIS_REQUIRED, got %v", err)
	}
	if _, _, err := f.assistant.Analyze(ctx, f.state, resumeUpload(), "", types.ModeQuickScan); err != nil {
		t.Fatal(err)
	}
	before := f.state.Snapshot()

	if _, _, err := f.assistant.Chat(ctx, f.state, "What is my best skill?"); err != nil {
		t.Fatal(err)
	}
	reply, _, err := f.assistant.Chat(ctx, f.state, "  How long is it?  ")
	if err != nil {
		t.Fatal(err)
	}
	if reply.Reply != "second reply" || reply.Question != "How long is it?" {
		t.Errorf("unexpected reply %+v", reply)
	}

	prompt := f.chat.lastPrompt()
	if strings.Contains(prompt, "What is my best skill?") || strings.Contains(prompt, "first reply") {
		t.Error("chat prompt must not carry earlier chat turns")
	}
	if !strings.Contains(prompt, "Previous analysis: analysis one") {
		t.Errorf("chat prompt lacks the stored analysis:\n%s", prompt)
	}

	after := f.state.Snapshot()
	if after.Response != before.Response || after.UpdatedAt != before.UpdatedAt {
		t.Error("chat must not modify the session")
	}
}

func TestChatRejectsEmptyQuestion(t *testing.T) {
	f := newFixture()

	_, _, err := f.assistant.Chat(context.Background(), f.state, "   ")
	if !errors.IsCode(err, errors.ErrCodeInvalidRequest) {
		t.Fatalf("expected INVALID_REQUEST, got %v", err)
	}
	if f.totalCalls() != 0 {
		t.Error("oracle must not be called for an empty question")
	}
}

func TestOracleFailureLeavesSessionUntouched(t *testing.T) {
	f := newFixture()
	f.analysis.err = errors.NewAIError(errors.ErrCodeAIRateLimited, "quota", nil)

	_, _, err := f.assistant.Analyze(context.Background(), f.state, resumeUpload(), "", types.ModeQuickScan)
	if !errors.IsCode(err, errors.ErrCodeAIRateLimited) {
		t.Fatalf("expected AI_RATE_LIMITED, got %v", err)
	}
	if errors.UserMessage(err) != errors.MessageAIUnavailable {
		t.Errorf("user message = %q", errors.UserMessage(err))
	}
	if f.state.Snapshot().AnalysisDone {
		t.Error("failed analysis must not mark the session analyzed")
	}
}
