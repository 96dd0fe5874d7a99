package server

import "fmt"

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo() {
	s.displayAddress()
	s.displayEndpoints()
	s.displayAuthInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
}

func (s *Server) displayAddress() {
	switch s.TLSConfig.Mode {
	case "server":
		fmt.Printf("Starting server with HTTPS (server-only TLS) on https://%s:%s\n", s.Host, s.Port)
	case "mutual":
		fmt.Printf("Starting server with mTLS (mutual TLS) on https://%s:%s\n", s.Host, s.Port)
		fmt.Println("TLS mode: Mutual (client certificates required)")
	default:
		fmt.Printf("Starting server on http://%s:%s\n", s.Host, s.Port)
	}
	if s.certs != nil && s.TLSConfig.AutoReload.Enabled {
		fmt.Println("TLS auto-reload: ENABLED (file watching)")
	}
}

// displayEndpoints shows the pages and API endpoints
func (s *Server) displayEndpoints() {
	fmt.Println("Pages:")
	fmt.Println("  GET  /                - Resume assistant")
	fmt.Println("  POST /analyze         - Analyze an uploaded resume")
	fmt.Println("  POST /answers         - Submit psychometric answers")
	fmt.Println("  POST /chat            - Ask about the resume")
	fmt.Println("  POST /feedback        - Leave feedback")
	fmt.Println("  POST /reset           - Start a new session")
	fmt.Println("API:")
	fmt.Println("  GET  /api/session     - Current session state")
	fmt.Println("  POST /api/analyze     - Analyze a resume (multipart)")
	fmt.Println("  POST /api/questions   - Psychometric questions")
	fmt.Println("  POST /api/answers     - Personality insight from answers")
	fmt.Println("  POST /api/chat        - Ask about the resume")
	fmt.Println("  POST /api/feedback    - Leave feedback")
	fmt.Println("  GET  /health          - Health check")
	fmt.Println("  GET  /stats           - Server statistics")
}

// displayAuthInfo shows authentication configuration
func (s *Server) displayAuthInfo() {
	if len(s.APIKeys) > 0 {
		fmt.Printf("API authentication: ENABLED (%d keys configured)\n", len(s.APIKeys))
		fmt.Println("Include 'X-API-Key: <your-key>' header in requests to /api/*")
	} else {
		fmt.Println("API authentication: DISABLED (no API keys configured)")
	}
}

// displayRequestLimitInfo shows request size limit configuration
func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Printf("Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Println("Request size limit: DISABLED")
		fmt.Println("WARNING: No request size limits configured!")
	}
}

// displayRateLimitInfo shows rate limiting configuration
func (s *Server) displayRateLimitInfo() {
	if s.RateLimit != nil && s.RateLimit.Enabled {
		fmt.Printf("Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
		if s.RateLimit.ByAPIKey {
			fmt.Println("  - Per API key rate limiting enabled")
		}
		if s.RateLimit.ByIP {
			fmt.Println("  - Per IP address rate limiting enabled")
		}
	} else {
		fmt.Println("Rate limiting: DISABLED")
	}
}
