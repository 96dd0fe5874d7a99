package server

import (
	"fmt"
	"html/template"
	"time"

	"resumeats/internal/ai"
	"resumeats/internal/assistant"
	"resumeats/internal/config"
	appErrors "resumeats/internal/errors"
	"resumeats/internal/observability"
	"resumeats/internal/session"
)

// multipartOverhead is added to the file size limit for form fields and boundaries
const multipartOverhead = 1 << 20

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	TLSConfig config.TLSConfig
	certs     *certificateStore

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	Session   config.SessionConfig
	Resources []config.Resource

	Assistant     *assistant.Assistant
	Sessions      *session.Store
	AI            *ai.Service
	Observability *observability.ObservabilityManager

	templates *template.Template

	Logger *appErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
	Session        config.SessionConfig
	Resources      []config.Resource
}

// Dependencies are the components the handlers delegate to. AI and
// Observability may be nil.
type Dependencies struct {
	Assistant     *assistant.Assistant
	Sessions      *session.Store
	AI            *ai.Service
	Observability *observability.ObservabilityManager
}

// ServerConfigFromApp derives the server settings from the application config
func ServerConfigFromApp(appCfg *config.Config, version string) ServerConfig {
	return ServerConfig{
		Host:           appCfg.Server.Host,
		Port:           appCfg.Server.Port,
		Version:        version,
		TLSConfig:      appCfg.Server.TLS,
		APIKeys:        appCfg.Server.APIKeys,
		ReadTimeout:    appCfg.Server.ReadTimeout,
		WriteTimeout:   appCfg.Server.WriteTimeout,
		IdleTimeout:    appCfg.Server.IdleTimeout,
		MaxRequestSize: appCfg.App.MaxFileSize + multipartOverhead,
		RateLimit:      &appCfg.Server.RateLimit,
		Session:        appCfg.Session,
		Resources:      appCfg.App.Resources,
	}
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, deps Dependencies, logger *appErrors.Logger) (*Server, error) {
	if deps.Assistant == nil || deps.Sessions == nil {
		return nil, fmt.Errorf("server requires an assistant and a session store")
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.BurstCapacity,
			cfg.RateLimit.Window,
			logger,
		)
	}

	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = defaultSessionCookie
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Session:        cfg.Session,
		Resources:      cfg.Resources,
		Assistant:      deps.Assistant,
		Sessions:       deps.Sessions,
		AI:             deps.AI,
		Observability:  deps.Observability,
		templates:      tmpl,
		Logger:         logger,
	}, nil
}

// metrics never returns nil
func (s *Server) metrics() *observability.Metrics {
	return s.Observability.GetMetrics()
}

// tlsEnabled reports whether the server terminates TLS itself
func (s *Server) tlsEnabled() bool {
	return s.TLSConfig.Mode == "server" || s.TLSConfig.Mode == "mutual"
}
