package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"catanrig/internal/feed"
	"catanrig/internal/game"
	"catanrig/internal/storage"
)

// StateSource returns a copy of the live game state.
type StateSource interface {
	Snapshot() (*game.State, error)
}

// HistorySource lists recorded states, newest first.
type HistorySource interface {
	History(ctx context.Context, limit int) ([]storage.SnapshotRow, error)
}

// Checker verifies that an infrastructure dependency is reachable.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a ping function to Checker.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

// Options wires the server to the game. State is required; a nil History,
// Queue, Broker or Web disables the routes that need it.
type Options struct {
	State   StateSource
	History HistorySource
	Queue   *ActionQueue
	Broker  *feed.Broker
	Checks  map[string]Checker
	Web     fs.FS
	Logger  *slog.Logger
}

// Server is the HTTP and websocket surface of a running game.
type Server struct {
	router  chi.Router
	srv     *http.Server
	state   StateSource
	history HistorySource
	queue   *ActionQueue
	broker  *feed.Broker
	checks  map[string]Checker
	webFS   fs.FS
	log     *slog.Logger
}

// New creates a server listening on addr with all routes.
func New(addr string, opts Options) *Server {
	s := &Server{
		state:   opts.State,
		history: opts.History,
		queue:   opts.Queue,
		broker:  opts.Broker,
		checks:  opts.Checks,
		webFS:   opts.Web,
		log:     opts.Logger,
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(newStructuredLogger(s.log))
	r.Use(middleware.Recoverer)
	s.router = r
	s.routes()

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/history", s.handleHistory)
		r.Post("/actions", s.handleAction)
		r.Post("/confirm", s.handleConfirm)
		r.Get("/ws", s.handleWebSocket)
	})

	// Static viewer
	if s.webFS != nil {
		s.router.Handle("/*", http.FileServer(http.FS(s.webFS)))
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves until Shutdown. Request contexts derive from ctx, so
// cancelling it also ends open websocket streams.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}
	s.srv.BaseContext = func(net.Listener) context.Context { return ctx }

	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func newStructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
