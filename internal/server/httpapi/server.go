// Package httpapi exposes the authentication core over HTTP. It is the only
// transport; view rendering and client-side token storage belong to the
// front-end consumer.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/authcore/authcore/internal/logging"
	"github.com/authcore/authcore/internal/server/services"
	"github.com/gorilla/mux"
)

type HTTPServer struct {
	address string
	logger  logging.Logger
	auth    *services.AuthService
}

func NewHTTPServer(address string, l logging.Logger, auth *services.AuthService) *HTTPServer {
	return &HTTPServer{
		address: address,
		logger:  l.With("module", "http_server"),
		auth:    auth,
	}
}

func (s *HTTPServer) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/login", s.handleLogin).Methods(http.MethodPost)
	r.Handle("/api/me", s.requireAuth(http.HandlerFunc(s.handleMe))).Methods(http.MethodGet)
	return r
}

func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
