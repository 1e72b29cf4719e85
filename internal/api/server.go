package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Sanji-IO/sanji-bundle-routes/internal/logger"
	"github.com/Sanji-IO/sanji-bundle-routes/internal/routes"
)

// Constants for route prefixing. Versioning is explicit to allow
// non-breaking additions.
const (
	APIVersion     = "v1"
	DefaultAddress = "127.0.0.1:8799"
)

// ServerOptions configures the HTTP server. Timeouts are conservative
// defaults suitable for a local control-plane server.
type ServerOptions struct {
	Addr              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

// Server hosts the HTTP control API for the daemon.
type Server struct {
	http     *http.Server
	switcher *routes.Switcher
	log      *logger.Logger
	opts     ServerOptions
}

// NewServer constructs the API server bound to the provided switcher. The
// server does not start listening until Start is called.
func NewServer(switcher *routes.Switcher, opts ServerOptions, log *logger.Logger) *Server {
	if switcher == nil {
		panic("api.NewServer: switcher is nil")
	}
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

	mux := http.NewServeMux()
	s := &Server{
		switcher: switcher,
		log:      log.WithComponent("api"),
		opts:     opts,
		http: &http.Server{
			Addr:              opts.Addr,
			Handler:           mux,
			ReadTimeout:       opts.ReadTimeout,
			ReadHeaderTimeout: opts.ReadHeaderTimeout,
			WriteTimeout:      opts.WriteTimeout,
			IdleTimeout:       opts.IdleTimeout,
		},
	}

	// Routes
	mux.HandleFunc("/"+APIVersion+"/healthz", s.handleHealthz)
	mux.HandleFunc("/"+APIVersion+"/network/routes/interfaces", s.handleInterfaces)
	mux.HandleFunc("/"+APIVersion+"/network/routes/default", s.handleDefault)
	mux.HandleFunc("/"+APIVersion+"/network/routes/db", s.handleRouterDB)
	mux.HandleFunc("/"+APIVersion+"/network/interface", s.handleInterfaceEvent)
	mux.HandleFunc("/"+APIVersion+"/network/cellular", s.handleCellular)

	return s
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start begins serving HTTP in a background goroutine. It returns
// immediately; use Stop for graceful shutdown.
func (s *Server) Start() {
	go func() {
		s.log.Info("API listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("API server error", "error", err)
		}
	}()
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
