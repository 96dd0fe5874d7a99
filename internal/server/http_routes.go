package server

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Handler returns the full route tree wrapped with HTTP instrumentation
func (s *Server) Handler() http.Handler {
	return s.Observability.HTTPMiddleware()(s.setupRoutes())
}

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Browser pages never require an API key
	page := func(h http.HandlerFunc) http.HandlerFunc {
		return s.rateLimitMiddleware(s.requestSizeLimitMiddleware(s.requestDeadlineMiddleware(h)))
	}
	api := func(h http.HandlerFunc) http.HandlerFunc {
		return s.rateLimitMiddleware(s.authMiddleware(s.requestSizeLimitMiddleware(s.requestDeadlineMiddleware(h))))
	}

	mux.HandleFunc("GET /{$}", s.rateLimitMiddleware(s.requestDeadlineMiddleware(s.indexHandler)))
	mux.HandleFunc("POST /analyze", page(s.analyzePageHandler))
	mux.HandleFunc("POST /answers", page(s.answersPageHandler))
	mux.HandleFunc("POST /chat", page(s.chatPageHandler))
	mux.HandleFunc("POST /feedback", page(s.feedbackPageHandler))
	mux.HandleFunc("POST /reset", page(s.resetPageHandler))

	mux.HandleFunc("GET /api/session", api(s.apiSessionHandler))
	mux.HandleFunc("POST /api/analyze", api(s.apiAnalyzeHandler))
	mux.HandleFunc("POST /api/questions", api(s.apiQuestionsHandler))
	mux.HandleFunc("POST /api/answers", api(s.apiAnswersHandler))
	mux.HandleFunc("POST /api/chat", api(s.apiChatHandler))
	mux.HandleFunc("POST /api/feedback", api(s.apiFeedbackHandler))

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /stats", s.statsHandler)

	return mux
}

// authMiddleware provides API key authentication
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(s.APIKeys) == 0 {
			next(w, r)
			return
		}

		apiKey := requestAPIKey(r)
		if apiKey == "" {
			s.Logger.Info("Authentication failed: missing API key",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r))
			writeErrorResponse(w, "Missing API key", "X-API-Key header or Authorization Bearer token required", http.StatusUnauthorized)
			return
		}

		if !s.APIKeys[apiKey] {
			s.Logger.Info("Authentication failed: invalid API key",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r),
				"api_key_prefix", maskAPIKey(apiKey))
			writeErrorResponse(w, "Invalid API key", "Unauthorized access", http.StatusUnauthorized)
			return
		}

		s.Logger.Debug("API authentication successful",
			"endpoint", r.URL.Path,
			"api_key_prefix", maskAPIKey(apiKey))

		next(w, r)
	}
}

// requestAPIKey reads X-API-Key, falling back to a Bearer token
func requestAPIKey(r *http.Request) string {
	if apiKey := r.Header.Get("X-API-Key"); apiKey != "" {
		return apiKey
	}
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return after
	}
	return ""
}

// requestSizeLimitMiddleware limits the size of incoming requests
func (s *Server) requestSizeLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.MaxRequestSize > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
		}
		next(w, r)
	}
}

// requestDeadlineMiddleware ends oracle work before the server's write
// timeout so a slow model still gets an error response written.
func (s *Server) requestDeadlineMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		budget := requestBudget(s.WriteTimeout)
		if budget <= 0 {
			next(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), budget)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}

// requestBudget leaves a tenth of the write timeout, at most 5s, for the response
func requestBudget(writeTimeout time.Duration) time.Duration {
	if writeTimeout <= 0 {
		return 0
	}
	return writeTimeout - min(writeTimeout/10, 5*time.Second)
}

// maskAPIKey masks an API key for logging (shows only first 8 characters)
func maskAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "****"
	}
	return apiKey[:8] + "****"
}
