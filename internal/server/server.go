package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/formstate/pkg/form"
	"github.com/vango-dev/formstate/pkg/reactive"
)

// Config configures a Server.
type Config struct {
	// Addr is the listen address used by Run.
	Addr string

	// MetricsPath is where metrics are served. Empty disables the endpoint.
	MetricsPath string

	// ReadBufferSize and WriteBufferSize size WebSocket buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// CheckOrigin validates WebSocket origins. Nil allows same-origin
	// requests only.
	CheckOrigin func(r *http.Request) bool

	// Registry receives the HTTP collectors and backs the metrics endpoint.
	// Nil uses the Prometheus default registry.
	Registry *prometheus.Registry

	// ShutdownTimeout bounds graceful shutdown in Run (default: 5s).
	ShutdownTimeout time.Duration

	// Logger is used for request and connection logs (default: slog.Default()).
	Logger *slog.Logger
}

// Server hosts one form.
type Server struct {
	form   *form.Form
	loop   *reactive.Loop
	config Config
	logger *slog.Logger

	router   chi.Router
	upgrader websocket.Upgrader
	hub      *hub

	controls *form.Observer
	global   *form.Observer
	snapshot Snapshot
}

// Snapshot is the aggregate state pushed to WebSocket clients.
type Snapshot struct {
	Errors form.Errors   `json:"errors"`
	Global form.Errors   `json:"global"`
	Valid  form.Validity `json:"valid"`
}

// New creates a server for f. loop must be the loop that drives f; it is
// usually f.Loop(). New must be called before the loop starts running.
func New(f *form.Form, loop *reactive.Loop, config Config) (*Server, error) {
	if loop == nil {
		return nil, errors.New("server: form has no loop")
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 5 * time.Second
	}

	s := &Server{
		form:   f,
		loop:   loop,
		config: config,
		logger: config.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		hub: newHub(config.Logger),
	}

	s.controls = f.ObserveErrors(func(e form.Errors) {
		s.snapshot.Errors = e
		s.publish()
	})
	s.global = f.ObserveGlobalErrors(func(e form.Errors) {
		s.snapshot.Global = e
		s.publish()
	})

	s.router = s.routes()
	return s, nil
}

// publish recomputes validity and broadcasts. Runs on the loop.
func (s *Server) publish() {
	merged := make(form.Errors, len(s.snapshot.Errors)+len(s.snapshot.Global))
	for k, st := range s.snapshot.Errors {
		merged[k] = st
	}
	for k, st := range s.snapshot.Global {
		merged["global:"+k] = st
	}
	s.snapshot.Valid = merged.Validity()
	s.hub.broadcast(s.snapshot)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.logRequests)
	r.Use(tracing())
	r.Use(requestMetrics(s.config.Registry))

	r.Route("/values", func(r chi.Router) {
		r.Get("/", s.handleValues)
		r.Patch("/", s.handleWriteMany)
		r.Get("/nested", s.handleNestedValues)
	})
	r.Route("/fields/{key}", func(r chi.Router) {
		r.Get("/", s.handleField)
		r.Put("/", s.handleSetField)
		r.Put("/error", s.handleSetFieldError)
	})
	r.Get("/errors", s.handleErrors)
	r.Get("/errors/global", s.handleGlobalErrors)
	r.Get("/validity", s.handleValidity)
	r.Get("/ws/errors", s.handleWebSocket)

	if s.config.MetricsPath != "" {
		var h http.Handler = promhttp.Handler()
		if s.config.Registry != nil {
			h = promhttp.HandlerFor(s.config.Registry, promhttp.HandlerOpts{})
		}
		r.Method(http.MethodGet, s.config.MetricsPath, h)
	}
	return r
}

// Handler returns the HTTP handler. The loop must be running for requests to
// complete.
func (s *Server) Handler() http.Handler {
	return s.router
}

// call runs fn on the loop and waits for it.
func (s *Server) call(ctx context.Context, fn func()) error {
	return s.loop.Call(ctx, fn)
}

// Run drives the loop and serves HTTP on Config.Addr until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go s.loop.Run(loopCtx)

	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("formstate server listening", "addr", s.config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.hub.close()
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	s.hub.close()
	err := srv.Shutdown(shutdownCtx)

	_ = s.call(shutdownCtx, func() {
		s.controls.Close()
		s.global.Close()
		s.form.Close()
	})
	s.logger.Info("formstate server stopped")
	return err
}
