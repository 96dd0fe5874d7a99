package server

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"
	"time"

	"resumeats/internal/config"
)

const (
	certCriticalThreshold = 24 * time.Hour
	certWarningThreshold  = 7 * 24 * time.Hour
)

// certificateStore holds the serving certificate and, for mutual TLS, the
// client CA pool. Reload swaps both atomically; a failed reload keeps the
// previous pair.
type certificateStore struct {
	mu sync.RWMutex

	config config.TLSConfig

	serverCert *tls.Certificate
	caCertPool *x509.CertPool
	notAfter   time.Time

	lastReloadTime     time.Time
	reloadSuccessCount int64
	reloadFailureCount int64
	lastReloadError    string
}

// newCertificateStore loads the initial certificates or fails
func newCertificateStore(cfg config.TLSConfig) (*certificateStore, error) {
	cs := &certificateStore{config: cfg}
	if err := cs.Reload(); err != nil {
		return nil, err
	}
	return cs, nil
}

// Reload reads the certificates again from their files or PEM content
func (cs *certificateStore) Reload() error {
	cert, notAfter, err := loadServerCertificate(cs.config)
	var pool *x509.CertPool
	if err == nil && cs.config.Mode == "mutual" {
		pool, err = loadCACertPool(cs.config)
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.lastReloadTime = time.Now()
	if err != nil {
		cs.reloadFailureCount++
		cs.lastReloadError = err.Error()
		return err
	}

	cs.serverCert = &cert
	cs.caCertPool = pool
	cs.notAfter = notAfter
	cs.reloadSuccessCount++
	cs.lastReloadError = ""
	return nil
}

// GetCertificate serves tls.Config.GetCertificate
func (cs *certificateStore) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	if cs.serverCert == nil {
		return nil, fmt.Errorf("no server certificate loaded")
	}
	return cs.serverCert, nil
}

// CACertPool returns the pool used to verify client certificates
func (cs *certificateStore) CACertPool() *x509.CertPool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.caCertPool
}

// Status describes certificate expiry and reload history for /health
func (cs *certificateStore) Status(now time.Time) map[string]any {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	timeToExpiry := cs.notAfter.Sub(now)
	status := map[string]any{
		"not_after":            cs.notAfter,
		"time_to_expiry_hours": int(timeToExpiry.Hours()),
		"reload_success_count": cs.reloadSuccessCount,
		"reload_failure_count": cs.reloadFailureCount,
		"last_reload_time":     cs.lastReloadTime,
		"auto_reload":          cs.config.AutoReload.Enabled,
	}
	if cs.lastReloadError != "" {
		status["last_reload_error"] = cs.lastReloadError
	}

	switch {
	case timeToExpiry <= 0:
		status["healthy"] = false
		status["status"] = "expired"
	case timeToExpiry <= certCriticalThreshold:
		status["healthy"] = false
		status["status"] = "critical"
	case timeToExpiry <= certWarningThreshold:
		status["healthy"] = true
		status["status"] = "warning"
	default:
		status["healthy"] = true
		status["status"] = "ok"
	}

	return status
}

// loadServerCertificate prefers PEM content (from Vault) over files
func loadServerCertificate(cfg config.TLSConfig) (tls.Certificate, time.Time, error) {
	var (
		cert tls.Certificate
		err  error
	)
	switch {
	case cfg.CertContent != "" && cfg.KeyContent != "":
		cert, err = tls.X509KeyPair([]byte(cfg.CertContent), []byte(cfg.KeyContent))
		if err != nil {
			return tls.Certificate{}, time.Time{}, fmt.Errorf("failed to load server cert/key from content: %w", err)
		}
	case cfg.CertFile != "" && cfg.KeyFile != "":
		cert, err = tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return tls.Certificate{}, time.Time{}, fmt.Errorf("failed to load server cert/key from files: %w", err)
		}
	default:
		return tls.Certificate{}, time.Time{}, fmt.Errorf("TLS certificate and key are required (provide either files or content)")
	}

	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return tls.Certificate{}, time.Time{}, fmt.Errorf("failed to parse server certificate: %w", err)
	}
	cert.Leaf = leaf
	return cert, leaf.NotAfter, nil
}

func loadCACertPool(cfg config.TLSConfig) (*x509.CertPool, error) {
	var caCert []byte
	switch {
	case cfg.CAContent != "":
		caCert = []byte(cfg.CAContent)
	case cfg.CAFile != "":
		data, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}
		caCert = data
	default:
		return nil, fmt.Errorf("CA certificate is required for mutual TLS mode (provide either caFile or caContent)")
	}

	pool := x509.NewCertPool()
	if ok := pool.AppendCertsFromPEM(caCert); !ok {
		return nil, fmt.Errorf("failed to parse CA certificate")
	}
	return pool, nil
}
