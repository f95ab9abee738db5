package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

var (
	// ErrStart indicates that the server failed to start.
	ErrStart = errors.New("failed to start HTTP server")
	// ErrShutdown indicates that graceful shutdown failed.
	ErrShutdown = errors.New("failed to shutdown HTTP server gracefully")
)

// Config holds the HTTP listener settings, populated from the environment.
type Config struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Drainer flushes buffered work during shutdown. Drainers run after the
// listener stops accepting connections and share the shutdown deadline, so
// in-flight side effects (audit writes, queued jobs) get a bounded chance
// to land before the process exits.
type Drainer func(context.Context) error

// Server wraps http.Server with graceful shutdown, signal handling and
// post-listener drain hooks.
type Server struct {
	cfg      Config
	log      *slog.Logger
	drainers []Drainer

	once sync.Once
	srv  *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger supplies the diagnostic logger. Nil falls back to a silent one.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithDrainer registers a drain hook. Hooks run in registration order.
func WithDrainer(d Drainer) Option {
	if d == nil {
		panic("httpserver: nil drainer")
	}
	return func(s *Server) { s.drainers = append(s.drainers, d) }
}

// New returns a Server for the given config.
func New(cfg Config, opts ...Option) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	s := &Server{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	return s
}

// Run starts the listener and blocks until the context is cancelled, an
// interrupt or SIGTERM arrives, or the listener fails. Shutdown is graceful:
// in-flight requests finish and drain hooks run within the shutdown timeout.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	if handler == nil {
		handler = http.NotFoundHandler()
	}
	s.srv = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.ListenAndServe() }()
	s.log.InfoContext(ctx, "http server listening", slog.String("addr", s.cfg.Addr))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case <-ctx.Done():
		runErr = s.shutdown()
	case sig := <-stop:
		s.log.Info("shutdown signal received", slog.String("signal", sig.String()))
		runErr = s.shutdown()
	case runErr = <-errCh:
		if runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
			return errors.Join(ErrStart, runErr)
		}
		runErr = nil
	}
	return runErr
}

// shutdown stops the listener, then runs drain hooks on the remaining
// budget. Safe for repeated calls; only the first does the work.
func (s *Server) shutdown() error {
	var err error
	s.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		if sErr := s.srv.Shutdown(ctx); sErr != nil && !errors.Is(sErr, http.ErrServerClosed) {
			err = errors.Join(ErrShutdown, sErr)
		}
		for _, d := range s.drainers {
			if dErr := d(ctx); dErr != nil {
				s.log.Error("drain hook failed", slog.Any("error", dErr))
				err = errors.Join(err, dErr)
			}
		}
	})
	return err
}
