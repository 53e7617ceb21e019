package infra

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"
)

// HTTPServer runs the studio API and shuts it down gracefully.
type HTTPServer struct {
	server *http.Server
	logger *Logger
}

// NewHTTPServer binds handler to cfg.Port. Write timeouts must outlast a
// backend generation call, so they come from config rather than constants.
func NewHTTPServer(cfg *Config, handler http.Handler, logger *Logger) *HTTPServer {
	logger = OrDiscard(logger)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ErrorLog:          log.New(logger.With().Str("component", "http").Logger(), "", 0),
	}
	return &HTTPServer{server: srv, logger: logger}
}

func (s *HTTPServer) Addr() string {
	return s.server.Addr
}

// Start blocks serving requests. A server stopped through Shutdown returns nil.
func (s *HTTPServer) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown.
func (s *HTTPServer) Serve(ln net.Listener) error {
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("http server listening")
	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
