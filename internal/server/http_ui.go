package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"resumeats/internal/config"
	appErrors "resumeats/internal/errors"
	"resumeats/internal/session"
	"resumeats/internal/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// Notices shown after a redirect, selected by the notice query parameter
var notices = map[string]string{
	"analyzed": "Resume analyzed successfully",
	"insight":  "Your personality insights are ready.",
	"feedback": MessageFeedbackThanks,
	"reset":    "Started a new session.",
}

type modeOption struct {
	Value    string
	Label    string
	Selected bool
}

type pageData struct {
	Session      types.SessionSnapshot
	Modes        []modeOption
	Resources    []config.Resource
	Notice       string
	Error        string
	Chat         *types.ChatReply
	ChatQuestion string
	Version      string
}

func parseTemplates() (*template.Template, error) {
	tmpl, err := template.New("pages").
		Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}
	return tmpl, nil
}

func (s *Server) newPage(st *session.State) pageData {
	snap := st.Snapshot()

	selected := snap.Mode
	if selected == "" {
		selected = types.ModeQuickScan
	}
	modes := make([]modeOption, 0, len(types.AllModes))
	for _, m := range types.AllModes {
		modes = append(modes, modeOption{Value: m.String(), Label: m.DisplayName(), Selected: m == selected})
	}

	return pageData{
		Session:   snap,
		Modes:     modes,
		Resources: s.Resources,
		Version:   s.Version,
	}
}

// render executes the page into a buffer first so a template failure
// still yields a clean 500.
func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		s.Logger.LogError(err, "Failed to render page")
		http.Error(w, appErrors.MessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		s.Logger.Debug("Failed to write page", "error", err.Error())
	}
}

// renderError shows the page again with the user-facing text of err
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, st *session.State, err error, chatQuestion string) {
	status := statusForError(err)
	s.logRequestError(r, err, status)

	data := s.newPage(st)
	data.Error = appErrors.UserMessage(err)
	data.ChatQuestion = chatQuestion
	s.render(w, status, data)
}

// indexHandler renders the page. Once an analysis exists the questions are
// generated on the first view and reused afterwards.
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	st := s.pageSession(w, r)

	if st.NeedsQuestions() {
		if _, err := s.ensureQuestions(r, st); err != nil {
			s.renderError(w, r, st, err, "")
			return
		}
	}

	data := s.newPage(st)
	data.Notice = notices[r.URL.Query().Get("notice")]
	s.render(w, http.StatusOK, data)
}

func (s *Server) analyzePageHandler(w http.ResponseWriter, r *http.Request) {
	st := s.pageSession(w, r)

	if _, err := s.analyze(r, st); err != nil {
		s.renderError(w, r, st, err, "")
		return
	}
	http.Redirect(w, r, "/?notice=analyzed", http.StatusSeeOther)
}

// answersPageHandler reads answer_<i> for the i-th stored question
func (s *Server) answersPageHandler(w http.ResponseWriter, r *http.Request) {
	st := s.pageSession(w, r)

	questions := st.Questions()
	answers := make(map[string]string, len(questions))
	for i, q := range questions {
		answers[q] = r.FormValue(fmt.Sprintf("answer_%d", i))
	}

	if _, err := s.submitAnswers(r, st, answers); err != nil {
		s.renderError(w, r, st, err, "")
		return
	}
	http.Redirect(w, r, "/?notice=insight", http.StatusSeeOther)
}

// chatPageHandler renders the reply directly; it is not kept in the session
func (s *Server) chatPageHandler(w http.ResponseWriter, r *http.Request) {
	st := s.pageSession(w, r)
	question := r.FormValue("question")

	reply, err := s.chat(r, st, question)
	if err != nil {
		s.renderError(w, r, st, err, question)
		return
	}

	data := s.newPage(st)
	data.Chat = &reply
	data.ChatQuestion = reply.Question
	s.render(w, http.StatusOK, data)
}

func (s *Server) feedbackPageHandler(w http.ResponseWriter, r *http.Request) {
	st := s.pageSession(w, r)

	if err := s.recordFeedback(r, st.ID(), r.FormValue("feedback")); err != nil {
		s.renderError(w, r, st, err, "")
		return
	}
	http.Redirect(w, r, "/?notice=feedback", http.StatusSeeOther)
}

// resetPageHandler drops the current session and starts a fresh one
func (s *Server) resetPageHandler(w http.ResponseWriter, r *http.Request) {
	if id := s.cookieSessionID(r); id != "" {
		s.Sessions.Delete(id)
	}
	st := s.Sessions.Create()
	s.setSessionCookie(w, st.ID())
	http.Redirect(w, r, "/?notice=reset", http.StatusSeeOther)
}
