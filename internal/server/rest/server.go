// Package rest exposes the HTTP API: authentication, owner file management,
// and the public share flow.
package rest

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/secureshare/internal/logging"
	"github.com/dmitrijs2005/secureshare/internal/server/config"
	"github.com/dmitrijs2005/secureshare/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	address        string
	logger         logging.Logger
	users          *services.UserService
	files          *services.FileService
	shares         *services.ShareService
	jwtSecret      []byte
	maxUploadBytes int64
	spoolDir       string
}

func NewServer(cfg *config.Config, l logging.Logger, us *services.UserService, fs *services.FileService, ss *services.ShareService) (*Server, error) {
	if err := os.MkdirAll(cfg.SpoolDir, 0o770); err != nil {
		return nil, err
	}
	return &Server{
		address:        cfg.EndpointAddr,
		logger:         l.With("module", "http_server"),
		users:          us,
		files:          fs,
		shares:         ss,
		jwtSecret:      []byte(cfg.SecretKey),
		maxUploadBytes: cfg.MaxUploadBytes,
		spoolDir:       cfg.SpoolDir,
	}, nil
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.routes(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
