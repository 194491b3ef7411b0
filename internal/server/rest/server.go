// Package rest serves the upload API over HTTP.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/oasis/internal/logging"
	"github.com/dmitrijs2005/oasis/internal/server/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// UploadAPI is the upload flow the handlers drive.
type UploadAPI interface {
	Begin(ctx context.Context, identity models.Identity, req models.BeginRequest) (string, error)
	PutSlice(ctx context.Context, identity models.Identity, uploadID string, slice models.SliceRequest) error
	Finish(ctx context.Context, identity models.Identity, uploadID string) (*models.FileRecord, error)
}

// TokenValidator resolves an access token to an identity.
type TokenValidator interface {
	Validate(token string) (models.Identity, error)
}

const shutdownTimeout = 10 * time.Second

type Server struct {
	address       string
	uploads       UploadAPI
	tokens        TokenValidator
	maxSliceBytes int64
	logger        logging.Logger
}

func NewServer(address string, uploads UploadAPI, tokens TokenValidator, maxSliceBytes int64, l logging.Logger) *Server {
	return &Server{
		address:       address,
		uploads:       uploads,
		tokens:        tokens,
		maxSliceBytes: maxSliceBytes,
		logger:        l.With("module", "http_server"),
	}
}

// Handler returns the router with all routes and middleware installed.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/api/health", s.health)

	r.Route("/api/upload", func(ur chi.Router) {
		ur.Use(s.authenticate)
		ur.Post("/before", s.beginUpload)
		ur.Post("/finish", s.finishUpload)
		ur.Post("/{uploadID}", s.putSlice)
	})

	return r
}

// Run serves until ctx is done, then shuts down gracefully. Requests in
// flight keep their own contexts and are drained before Run returns.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if err != nil {
			s.logger.Error(ctx, "HTTP shutdown", "error", err)
		}
		stopped <- err
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-stopped
}
