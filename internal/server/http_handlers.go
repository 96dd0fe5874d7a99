package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"time"

	"resumeats/internal/document"
	appErrors "resumeats/internal/errors"
)

const defaultHealthCheckTimeout = 15 * time.Second

func (s *Server) getHealthCheckTimeout() time.Duration {
	if s.AppConfig != nil && s.AppConfig.Observability.HealthCheck.Timeout > 0 {
		return s.AppConfig.Observability.HealthCheck.Timeout
	}
	return defaultHealthCheckTimeout
}

// healthHandler reports model availability, breaker state and certificate expiry
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":          "healthy",
		"service":         "resumeats",
		"version":         s.Version,
		"active_sessions": s.Sessions.Len(),
	}
	healthy := true

	if s.AI != nil {
		ctx, cancel := context.WithTimeout(r.Context(), s.getHealthCheckTimeout())
		defer cancel()

		models := s.AI.GetModelInfo(ctx)
		for _, info := range models {
			if info != nil && !info.Available {
				healthy = false
			}
		}
		response["ai_models"] = models
		response["circuit_breakers"] = s.AI.CircuitBreakerStats()
	}

	if s.certs != nil {
		certStatus := s.certs.Status(time.Now())
		if ok, _ := certStatus["healthy"].(bool); !ok {
			healthy = false
		}
		response["certificates"] = certStatus
	}

	status := http.StatusOK
	if !healthy {
		response["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "resumeats",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"tls_mode":               s.TLSConfig.Mode,
		},
		"sessions": map[string]any{
			"active": s.Sessions.Len(),
			"ttl":    s.Session.TTL.String(),
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	if s.AI != nil {
		response["circuit_breakers"] = s.AI.CircuitBreakerStats()
	}

	writeJSON(w, http.StatusOK, response)
}

// parseJSONRequest decodes a JSON body into v. Failures are validation errors.
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return appErrors.NewValidationError(appErrors.ErrCodeInvalidRequest,
			"Content-Type must be application/json", err)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return appErrors.NewValidationError(appErrors.ErrCodeInvalidRequest,
				fmt.Sprintf("Request body too large (limit is %d bytes)", maxBytesErr.Limit), err)
		}
		return appErrors.NewIOError(appErrors.ErrCodeFileNotReadable, "Failed to read request body", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return appErrors.NewValidationError(appErrors.ErrCodeInvalidRequest, "Request body is not valid JSON", err)
	}
	return nil
}

// readUpload parses a multipart form and returns the "resume" file, or nil
// when none was attached.
func readUpload(r *http.Request, maxMemory int64) (*document.Upload, error) {
	if maxMemory <= 0 {
		maxMemory = 32 << 20
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			return nil, appErrors.NewIOError(appErrors.ErrCodeFileTooLarge,
				fmt.Sprintf("File is too large (limit is %d bytes)", maxBytesErr.Limit), err)
		case errors.Is(err, http.ErrNotMultipart):
			return nil, appErrors.NewValidationError(appErrors.ErrCodeInvalidRequest,
				"Content-Type must be multipart/form-data", err)
		default:
			return nil, appErrors.NewValidationError(appErrors.ErrCodeInvalidRequest,
				"Could not read the uploaded form", err)
		}
	}

	file, header, err := r.FormFile("resume")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, appErrors.NewIOError(appErrors.ErrCodeFileNotReadable, "Could not read the uploaded file", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Printf("Failed to close uploaded file: %v", err)
		}
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, appErrors.NewIOError(appErrors.ErrCodeFileNotReadable, "Could not read the uploaded file", err)
	}

	return &document.Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// statusForError maps an AppError type to the HTTP status shown to clients
func statusForError(err error) int {
	appErr, ok := appErrors.AsAppError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch appErr.Type {
	case appErrors.ErrorTypeValidation, appErrors.ErrorTypeIO:
		return http.StatusBadRequest
	case appErrors.ErrorTypeAI, appErrors.ErrorTypeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorCode is the machine-readable code reported for err
func errorCode(err error) string {
	if appErr, ok := appErrors.AsAppError(err); ok {
		switch appErr.Type {
		case appErrors.ErrorTypeAI, appErrors.ErrorTypeNetwork:
			return "AI_UNAVAILABLE"
		}
		return appErr.Code
	}
	return "INTERNAL_ERROR"
}

// logRequestError logs server-side failures and keeps client mistakes at debug
func (s *Server) logRequestError(r *http.Request, err error, status int) {
	if status >= http.StatusInternalServerError {
		s.Logger.LogError(err, "Request failed",
			"endpoint", r.URL.Path,
			"status", status)
		return
	}
	s.Logger.Debug("Request rejected",
		"endpoint", r.URL.Path,
		"status", status,
		"error", err.Error())
}

// writeAppError writes err as JSON with a message that is safe to show
func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	s.logRequestError(r, err, status)
	writeErrorResponse(w, errorCode(err), appErrors.UserMessage(err), status)
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   error,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
