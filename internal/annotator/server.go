package annotator

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"rallycut/internal/annotations"
	"rallycut/internal/logging"
)

// Deps carries the collaborators the handlers need.
type Deps struct {
	Store  *annotations.Store
	Logger *slog.Logger
}

// Server hosts the correction API.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	logger     *slog.Logger
}

// NewServer builds the annotator server bound to addr.
func NewServer(addr string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.New(logging.NoopHandler{})
	}
	deps.Logger = logging.NewComponentLogger(deps.Logger, "annotator")

	return &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     NewRouter(deps),
			ReadTimeout: 15 * time.Second,
			// WriteTimeout stays zero: video streaming responses can run
			// for as long as the reviewer keeps the player open.
			IdleTimeout: 60 * time.Second,
		},
		logger: deps.Logger,
	}
}

// Start listens and serves until Shutdown or a listener error.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.logger.Info("annotator listening", logging.String("addr", listener.Addr().String()))
	if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("annotator shutting down")
	return s.httpServer.Shutdown(ctx)
}

// Addr reports the bound address once Start has begun listening.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}
