// Package server exposes resolved component trees over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vladimir-polyakov/esencia/internal/component"
	"github.com/vladimir-polyakov/esencia/internal/logging"
	"github.com/vladimir-polyakov/esencia/internal/metrics"
	"github.com/vladimir-polyakov/esencia/internal/treecache"
)

// APIVersion identifies the HTTP contract exposed via /health.
const APIVersion = "1.0.0"

// ServerStatus reports runtime lifecycle states for the HTTP server.
type ServerStatus string

const (
	StatusStarting ServerStatus = "starting"
	StatusReady    ServerStatus = "ready"
	StatusDraining ServerStatus = "draining"
)

// RegistrySource supplies the registry to serve. *manifest.Catalog satisfies
// it, so reloads are picked up on the next request.
type RegistrySource interface {
	Registry() *component.Registry
}

// Static serves a fixed registry.
func Static(reg *component.Registry) RegistrySource {
	return staticSource{reg: reg}
}

type staticSource struct {
	reg *component.Registry
}

func (s staticSource) Registry() *component.Registry { return s.reg }

// Server wraps the HTTP listener and handlers.
type Server struct {
	settings Settings
	source   RegistrySource
	cache    *treecache.Cache
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	logger   *logging.Logger
	clock    func() time.Time

	mu        sync.RWMutex
	server    *http.Server
	listener  net.Listener
	status    ServerStatus
	startTime time.Time
}

// Option customizes server construction.
type Option func(*Server)

// WithCache memoizes /tree responses.
func WithCache(c *treecache.Cache) Option {
	return func(s *Server) {
		s.cache = c
	}
}

// WithMetrics records resolves and serves /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithTracer wraps requests and resolves in spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Server) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithLogger overrides the default no-op logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithClock allows tests to control timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewServer prepares a server for source using the provided settings.
func NewServer(settings Settings, source RegistrySource, opts ...Option) *Server {
	s := &Server{
		settings: settings,
		source:   source,
		tracer:   noop.NewTracerProvider().Tracer("esencia"),
		clock:    func() time.Time { return time.Now().UTC() },
		status:   StatusStarting,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Handler returns the routed handler without binding a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/components", s.handleComponents)
	mux.HandleFunc("/tree", s.handleTree)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
	return s.withRequestID(mux)
}

// Start binds the TCP listener and begins serving HTTP traffic.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("server: server is nil")
	}
	if s.source == nil {
		return fmt.Errorf("server: registry source is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("server: already started")
	}
	addr := s.settings.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	s.listener = listener
	s.startTime = s.clock()
	server := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.settings.ReadTimeout,
		WriteTimeout: s.settings.WriteTimeout,
		IdleTimeout:  s.settings.IdleTimeout,
	}
	if ctx != nil {
		server.BaseContext = func(net.Listener) context.Context { return ctx }
	}
	s.server = server
	s.status = StatusReady
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.ErrorErr(logging.CatServer, "serve error", err)
		}
	}()
	s.logger.Info(logging.CatServer, "listening", "addr", listener.Addr().String())
	return nil
}

// Shutdown stops accepting new connections and waits for in-flight requests to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil || s.server == nil {
		return nil
	}
	s.status = StatusDraining
	deadline := ctx
	if deadline == nil {
		var cancel context.CancelFunc
		deadline, cancel = context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
	}
	if err := s.server.Shutdown(deadline); err != nil {
		return err
	}
	s.listener = nil
	s.server = nil
	return nil
}

// Addr returns the bound TCP address once the server has started.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// BaseURL returns the HTTP base URL (scheme + host:port) for the running server.
func (s *Server) BaseURL() string {
	addr := s.Addr()
	if addr == "" {
		return s.settings.URL()
	}
	return "http://" + addr
}

// Status reports the server's lifecycle state.
func (s *Server) Status() ServerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Server) uptimeSeconds() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.startTime.IsZero() {
		return 0
	}
	return int64(s.clock().Sub(s.startTime).Seconds())
}
