package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Server runs one HTTP surface. Handlers may block on chain confirmation
// for as long as it takes, so no write timeout is set.
type Server struct {
	name   string
	server *http.Server
	log    logrus.FieldLogger
}

func NewServer(name, addr string, handler http.Handler, log logrus.FieldLogger) *Server {
	return &Server{
		name: name,
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		log: log.WithField("server", name),
	}
}

// Serve listens on the configured address and serves until Shutdown.
func (s *Server) Serve() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	return s.ServeListener(ln)
}

// ServeListener serves on an already bound listener.
func (s *Server) ServeListener(ln net.Listener) error {
	s.log.WithField("addr", ln.Addr().String()).Info("HTTP server listening")
	err := s.server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		s.log.Debug("HTTP server shut down")
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
