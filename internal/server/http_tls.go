package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
)

// configureTLS sets up TLS configuration based on the mode
func (s *Server) configureTLS(httpServer *http.Server) error {
	switch s.TLSConfig.Mode {
	case "server", "mutual":
	case "disabled", "":
		return nil
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", s.TLSConfig.Mode)
	}

	certs, err := newCertificateStore(s.TLSConfig)
	if err != nil {
		return fmt.Errorf("failed to set up TLS: %w", err)
	}
	s.certs = certs

	httpServer.TLSConfig = s.buildTLSConfig()
	return nil
}

// buildTLSConfig serves certificates from the store so reloads apply to new
// handshakes without a restart.
func (s *Server) buildTLSConfig() *tls.Config {
	tlsConfig := &tls.Config{
		MinVersion:     minTLSVersion(s.TLSConfig.MinVersion),
		GetCertificate: s.certs.GetCertificate,
		ClientAuth:     tls.NoClientCert,
	}

	if s.TLSConfig.Mode != "mutual" {
		return tlsConfig
	}

	tlsConfig.ClientAuth = getClientAuthPolicy(s.TLSConfig.ClientAuthPolicy)
	tlsConfig.ClientCAs = s.certs.CACertPool()

	// The CA pool is read per handshake to pick up reloads
	tlsConfig.GetConfigForClient = func(*tls.ClientHelloInfo) (*tls.Config, error) {
		cfg := tlsConfig.Clone()
		cfg.GetConfigForClient = nil
		cfg.ClientCAs = s.certs.CACertPool()
		return cfg, nil
	}
	return tlsConfig
}

// certWatcher returns a file watcher when auto-reload applies, or nil.
// Certificates supplied as PEM content are never watched.
func (s *Server) certWatcher() *CertWatcher {
	if s.certs == nil || !s.TLSConfig.AutoReload.Enabled {
		return nil
	}

	files := []string{s.TLSConfig.CertFile, s.TLSConfig.KeyFile}
	if s.TLSConfig.Mode == "mutual" {
		files = append(files, s.TLSConfig.CAFile)
	}
	if s.TLSConfig.CertContent != "" {
		files[0], files[1] = "", ""
	}

	w := NewCertWatcher(files, s.TLSConfig.AutoReload.DebounceDelay, s.reloadCertificates, s.Logger)
	if len(w.GetWatchedFiles()) == 0 {
		return nil
	}
	return w
}

func (s *Server) reloadCertificates() {
	err := s.certs.Reload()
	s.metrics().RecordCertReload(context.Background(), err == nil)
	if err != nil {
		s.Logger.LogError(err, "Failed to reload TLS certificates, keeping the previous ones")
		return
	}
	s.Logger.Info("TLS certificates reloaded successfully")
}

func minTLSVersion(v string) uint16 {
	if v == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}

// getClientAuthPolicy returns the appropriate client authentication policy
func getClientAuthPolicy(policy string) tls.ClientAuthType {
	switch policy {
	case "request":
		return tls.RequestClientCert
	case "verify":
		return tls.VerifyClientCertIfGiven
	default:
		return tls.RequireAndVerifyClientCert
	}
}
