package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

const (
	// MCPEndpointPath is where the streamable HTTP transport is mounted.
	MCPEndpointPath = "/mcp"

	defaultReadHeaderTimeout = 10 * time.Second
	defaultIdleTimeout       = 120 * time.Second
)

// HTTPServerConfig configures the streamable HTTP transport.
type HTTPServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// DisableStreaming makes the transport answer with plain JSON instead of
	// SSE streams, for clients that cannot consume them.
	DisableStreaming bool
}

// HTTPServer serves the MCP server over streamable HTTP next to the health
// endpoints. Every request is counted in the HTTP request metrics.
type HTTPServer struct {
	mcpServer *mcpserver.MCPServer
	sc        *ServerContext
	health    *HealthChecker
	config    HTTPServerConfig

	mu         sync.Mutex
	httpServer *http.Server
	addr       string
}

// NewHTTPServer creates a streamable HTTP server for mcpServer.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, sc *ServerContext, config HTTPServerConfig) (*HTTPServer, error) {
	if mcpServer == nil {
		return nil, fmt.Errorf("mcp server is required")
	}
	if config.Addr == "" {
		return nil, fmt.Errorf("http address is required")
	}
	return &HTTPServer{
		mcpServer: mcpServer,
		sc:        sc,
		health:    NewHealthChecker(sc),
		config:    config,
		addr:      config.Addr,
	}, nil
}

// Health returns the health checker backing /healthz and /readyz.
func (s *HTTPServer) Health() *HealthChecker {
	return s.health
}

// Handler returns the HTTP handler with all routes mounted.
func (s *HTTPServer) Handler() http.Handler {
	opts := []mcpserver.StreamableHTTPOption{
		mcpserver.WithEndpointPath(MCPEndpointPath),
	}
	if s.config.DisableStreaming {
		opts = append(opts, mcpserver.WithDisableStreaming(true))
	}
	streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer, opts...)

	mux := http.NewServeMux()
	mux.Handle(MCPEndpointPath, streamable)
	s.health.RegisterHealthEndpoints(mux)

	return s.metricsMiddleware(mux)
}

// Start listens on the configured address and serves until Shutdown.
func (s *HTTPServer) Start() error {
	return s.StartWithReadySignal(nil)
}

// StartWithReadySignal is Start that closes ready (when non-nil) once the
// listener is bound.
func (s *HTTPServer) StartWithReadySignal(ready chan<- struct{}) error {
	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}

	s.mu.Lock()
	s.addr = listener.Addr().String()
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		IdleTimeout:       defaultIdleTimeout,
	}
	srv := s.httpServer
	s.mu.Unlock()

	slog.Info("starting MCP HTTP server", "addr", listener.Addr().String(), "endpoint", MCPEndpointPath)
	if ready != nil {
		close(ready)
	}
	return srv.Serve(listener)
}

// Addr returns the listen address, resolved once the server is started.
func (s *HTTPServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Shutdown marks the server not ready and drains in-flight requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)

	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the wrapper.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (s *HTTPServer) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		if s.sc == nil {
			return
		}
		if m := s.sc.Metrics(); m != nil {
			m.RecordHTTPRequest(r.Context(), r.Method, routeLabel(r.URL.Path), rec.status, time.Since(start))
		}
	})
}

// routeLabel maps a request path to a bounded metric label.
func routeLabel(path string) string {
	switch path {
	case MCPEndpointPath, "/healthz", "/readyz", "/healthz/detailed":
		return path
	default:
		return "other"
	}
}
