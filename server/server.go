// Package server exposes a dialogue engine's sessions over HTTP: create a
// session from a loaded project, advance it one event at a time, submit
// option selections, and tear it down. Each session is confined to its own
// goroutine (see Session), so a client drives it purely through requests -
// no shared VM state crosses goroutines unguarded.
//
//	POST   /api/v1/sessions          - create a session from a project
//	GET    /api/v1/sessions/{id}     - get a session's current state
//	POST   /api/v1/sessions/{id}/next   - advance one event
//	POST   /api/v1/sessions/{id}/select - submit an option index
//	DELETE /api/v1/sessions/{id}     - stop and discard a session
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// PathPrefix is the prefix every route in the API is mounted under.
const PathPrefix = "/api/v1"

// Config configures a Server.
type Config struct {
	// TokenSecret signs and validates session bearer tokens. Must be at
	// least 32 bytes; Validate rejects a Config with a shorter one.
	TokenSecret []byte

	// UnauthDelayMillis pads 401/403/500 responses by this many
	// milliseconds, to deprioritize retries from naive clients. Defaults to
	// 1000 via FillDefaults.
	UnauthDelayMillis int
}

// UnauthDelay returns the configured delay as a time.Duration.
func (cfg Config) UnauthDelay() time.Duration {
	if cfg.UnauthDelayMillis < 1 {
		return 0
	}
	return time.Duration(cfg.UnauthDelayMillis) * time.Millisecond
}

// FillDefaults returns a copy of cfg with unset fields set to their
// defaults.
func (cfg Config) FillDefaults() Config {
	out := cfg
	if out.UnauthDelayMillis == 0 {
		out.UnauthDelayMillis = 1000
	}
	return out
}

// Validate returns an error if cfg cannot be used to start a Server.
func (cfg Config) Validate() error {
	if len(cfg.TokenSecret) < 32 {
		return errTokenSecretTooShort
	}
	return nil
}

var errTokenSecretTooShort = &configError{"token secret must be at least 32 bytes"}

type configError struct{ msg string }

func (e *configError) Error() string { return e.msg }

// Server wraps a chi router bound to a SessionManager.
type Server struct {
	router   chi.Router
	sessions *SessionManager
	cfg      Config
	httpSrv  *http.Server
}

// New constructs a Server ready to ListenAndServe.
func New(cfg Config) *Server {
	cfg = cfg.FillDefaults()

	s := &Server{
		sessions: NewSessionManager(),
		cfg:      cfg,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	api := API{Sessions: s.sessions, UnauthDelay: s.cfg.UnauthDelay()}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route(PathPrefix, func(r chi.Router) {
		r.Use(RequireAuth(s.cfg.TokenSecret, s.cfg.UnauthDelay()))

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", api.HTTPCreateSession())
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", api.HTTPGetSession())
				r.Delete("/", api.HTTPDeleteSession())
				r.Post("/next", api.HTTPAdvanceSession())
				r.Post("/select", api.HTTPSelectOption())
			})
		})
	})

	return r
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.router.ServeHTTP(w, req)
}

// ListenAndServe starts the HTTP server on addr, blocking until it stops.
func (s *Server) ListenAndServe(addr string) error {
	s.httpSrv = &http.Server{Addr: addr, Handler: s}
	return s.httpSrv.ListenAndServe()
}

// Shutdown gracefully shuts down the underlying http.Server (if started via
// ListenAndServe) and stops every live session.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.sessions.Close()
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}
