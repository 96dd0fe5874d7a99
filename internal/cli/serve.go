package cli

import (
	"context"
	"fmt"
	"time"

	"resumeats/internal/config"
	"resumeats/internal/observability"
	"resumeats/internal/server"
	"resumeats/internal/session"

	"github.com/spf13/cobra"
)

const observabilityShutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web interface and JSON API",
	Long: `Start an HTTP server with the browser interface and a JSON API.

Pages:
- GET /: upload a resume, answer the assessment and chat about the result

API (X-API-Key header when API keys are configured):
- POST /api/analyze: analyze a resume (multipart: resume, jobDescription, mode)
- POST /api/questions: psychometric questions for the current analysis
- POST /api/answers: personality insight from the answers
- POST /api/chat: ask a question about the resume
- GET /api/session: current session state
- GET /health and GET /stats

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server, mutual
- Use --cert-file and --key-file for TLS certificates
- Use --ca-file for mutual TLS client certificate verification`,
	RunE: runServe,
}

var serveOverrides *flagOverrides

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("tls-mode", "", "TLS mode: disabled, server, mutual (overrides config)")
	serveCmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")
	serveCmd.Flags().String("ca-file", "", "CA certificate file for client cert verification (PEM, overrides config)")
	serveCmd.Flags().Bool("secure-cookie", false, "Mark the session cookie Secure even without TLS (behind a TLS proxy)")

	serveOverrides = bindFlags(serveCmd, map[string]string{
		"server.port":          "port",
		"server.host":          "host",
		"server.tls.mode":      "tls-mode",
		"server.tls.certfile":  "cert-file",
		"server.tls.keyfile":   "key-file",
		"server.tls.cafile":    "ca-file",
		"session.securecookie": "secure-cookie",
	})
}

func applyServeOverrides(cfg *config.Config) {
	serveOverrides.string("server.port", &cfg.Server.Port)
	serveOverrides.string("server.host", &cfg.Server.Host)
	serveOverrides.string("server.tls.mode", &cfg.Server.TLS.Mode)
	serveOverrides.string("server.tls.certfile", &cfg.Server.TLS.CertFile)
	serveOverrides.string("server.tls.keyfile", &cfg.Server.TLS.KeyFile)
	serveOverrides.string("server.tls.cafile", &cfg.Server.TLS.CAFile)
	serveOverrides.bool("session.securecookie", &cfg.Session.SecureCookie)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	applyServeOverrides(cfg)

	om, err := observability.NewObservabilityManager(ctx, observability.GetObservabilityConfig(cfg, Version))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), observabilityShutdownTimeout)
		defer cancel()
		if err := om.Shutdown(shutdownCtx); err != nil {
			logger.LogError(err, "Failed to shut down observability")
		}
	}()

	asst, svc, err := buildAssistant(ctx, cfg, logger, om.GetMetrics())
	if err != nil {
		return err
	}
	defer closeService(svc, logger)

	// Flags and Vault certificate content may have changed the TLS settings
	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	store := session.NewStore(cfg.Session.TTL, cfg.Session.CleanupInterval, logger)
	defer store.Close()

	if err := om.GetMetrics().RegisterActiveSessions(store.Len); err != nil {
		logger.LogError(err, "Failed to register active sessions metric")
	}

	srv, err := server.NewServer(cfg, server.ServerConfigFromApp(cfg, Version), server.Dependencies{
		Assistant:     asst,
		Sessions:      store,
		AI:            svc,
		Observability: om,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}
