package config

import "fmt"

// pemSource is a PEM input that comes from either a file or inline content
type pemSource struct {
	name    string
	file    string
	content string
}

func (p pemSource) provided() bool {
	return p.file != "" || p.content != ""
}

func (p pemSource) checkSingleSource() error {
	if p.file != "" && p.content != "" {
		return fmt.Errorf("cannot specify both %sFile and %sContent - choose one", p.name, p.name)
	}
	return nil
}

// ValidateTLSConfig validates the TLS configuration
func (c *Config) ValidateTLSConfig() error {
	tls := c.Server.TLS

	cert := pemSource{name: "cert", file: tls.CertFile, content: tls.CertContent}
	key := pemSource{name: "key", file: tls.KeyFile, content: tls.KeyContent}
	ca := pemSource{name: "ca", file: tls.CAFile, content: tls.CAContent}

	switch tls.Mode {
	case "disabled":
	case "server", "mutual":
		if !cert.provided() || !key.provided() {
			return fmt.Errorf("TLS certificate and key are required for %s mode (provide either files or content)", tls.Mode)
		}
		sources := []pemSource{cert, key}
		if tls.Mode == "mutual" {
			if !ca.provided() {
				return fmt.Errorf("CA certificate is required for mutual TLS mode (provide either caFile or caContent)")
			}
			sources = append(sources, ca)
			if err := validateClientAuthPolicy(tls.ClientAuthPolicy); err != nil {
				return err
			}
		}
		for _, src := range sources {
			if err := src.checkSingleSource(); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", tls.Mode)
	}

	switch tls.MinVersion {
	case "", "1.2", "1.3":
		return nil
	default:
		return fmt.Errorf("invalid TLS minVersion: %s (must be '1.2' or '1.3')", tls.MinVersion)
	}
}

// validateClientAuthPolicy accepts an empty policy, which means "require"
func validateClientAuthPolicy(policy string) error {
	switch policy {
	case "require", "request", "verify", "":
		return nil
	default:
		return fmt.Errorf("invalid clientAuthPolicy: %s (must be 'require', 'request', or 'verify')", policy)
	}
}
