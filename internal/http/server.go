package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
	"todo-server/internal/http/handler"
	"todo-server/internal/http/middleware"
	"todo-server/internal/repository"
	"todo-server/internal/workers"

	"github.com/charmbracelet/log"
)

const DefaultAddress = ":8080"

// ServerOptions configures the HTTP server.
type ServerOptions struct {
	Addr              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	Logger            *log.Logger
}

// Server hosts the todo API.
type Server struct {
	http     *http.Server
	logger   *log.Logger
	opts     ServerOptions
	listener net.Listener
	errc     chan error
}

// NewHandler assembles the full request pipeline: request ids, access
// logging and worker-pool admission in front of the router.
func NewHandler(repo repository.TodoRepository, pool *workers.Pool, opts handler.Options) (http.Handler, error) {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	todoHandler, err := handler.NewTodoHandler(repo, opts)
	if err != nil {
		return nil, err
	}

	var h http.Handler = NewRouter(todoHandler)
	h = middleware.Limit(pool, opts.Logger)(h)
	h = middleware.AccessLog(opts.Logger)(h)
	h = middleware.RequestID(h)
	return h, nil
}

// NewServer wraps h in an http.Server. Nothing listens until Start.
func NewServer(h http.Handler, opts ServerOptions) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddress
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 5 * time.Second
	}
	if opts.ReadHeaderTimeout == 0 {
		opts.ReadHeaderTimeout = 2 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	if opts.IdleTimeout == 0 {
		opts.IdleTimeout = 60 * time.Second
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &Server{
		logger: opts.Logger,
		opts:   opts,
		errc:   make(chan error, 1),
		http: &http.Server{
			Addr:              opts.Addr,
			Handler:           h,
			ReadTimeout:       opts.ReadTimeout,
			ReadHeaderTimeout: opts.ReadHeaderTimeout,
			WriteTimeout:      opts.WriteTimeout,
			IdleTimeout:       opts.IdleTimeout,
			ErrorLog:          opts.Logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}),
		},
	}
}

// Start binds the listen address and serves in a background goroutine.
// Bind errors are returned directly; later serve errors arrive on Err.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	s.listener = ln

	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		if err := s.http.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("serve failed", "err", err)
			s.errc <- err
		}
		close(s.errc)
	}()
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.opts.Addr
}

// Err delivers a serve error, if any, and is closed when serving stops.
func (s *Server) Err() <-chan error {
	return s.errc
}

// Stop gracefully shuts down the server, waiting up to ShutdownTimeout.
func (s *Server) Stop(ctx context.Context) error {
	timeout := s.opts.ShutdownTimeout
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.http.Shutdown(ctx)
}
