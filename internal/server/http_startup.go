package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resumeats/internal/observability"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

// Start serves until ctx is cancelled or SIGINT/SIGTERM arrives. The
// Prometheus listener and the certificate watcher run alongside and stop
// with it.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := s.setupHTTPServer()
	if err := s.configureTLS(httpServer); err != nil {
		return err
	}

	s.displayServerInfo()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.listen(httpServer)
	})

	g.Go(func() error {
		<-gctx.Done()
		return s.performGracefulShutdown(httpServer)
	})

	if s.Observability != nil {
		if mux := s.Observability.PrometheusMux(); mux != nil {
			port := s.Observability.PrometheusPort()
			s.Logger.Info("Serving Prometheus metrics", "port", port)
			g.Go(func() error {
				return observability.ServePrometheus(gctx, mux, port)
			})
		}
	}

	if watcher := s.certWatcher(); watcher != nil {
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}

	return g.Wait()
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer() *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%s", s.Host, s.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.ReadTimeout,
		WriteTimeout:      s.WriteTimeout,
		IdleTimeout:       s.IdleTimeout,
	}
}

// listen blocks until the server stops. A graceful shutdown is not an error.
func (s *Server) listen(server *http.Server) error {
	s.Logger.Info("Starting HTTP server",
		"address", server.Addr,
		"tls_enabled", server.TLSConfig != nil)

	var err error
	if server.TLSConfig != nil {
		// Certificates come from TLSConfig.GetCertificate
		err = server.ListenAndServeTLS("", "")
	} else {
		err = server.ListenAndServe()
	}

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// performGracefulShutdown handles the graceful shutdown process
func (s *Server) performGracefulShutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.RateLimiter != nil {
		s.RateLimiter.Close()
	}

	s.Logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}
