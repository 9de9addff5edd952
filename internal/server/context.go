package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teemow/todoistguard/internal/destination"
	"github.com/teemow/todoistguard/internal/instrumentation"
	"github.com/teemow/todoistguard/internal/logging"
	"github.com/teemow/todoistguard/internal/todoist"
	"github.com/teemow/todoistguard/internal/verify"
)

// metricsSetter is implemented by API clients that record their own
// operation metrics.
type metricsSetter interface {
	SetMetrics(*instrumentation.Metrics)
}

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc
	api    todoist.API
	logger *slog.Logger

	mu          sync.RWMutex
	verifier    *verify.Verifier
	resolver    *destination.Resolver
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	shutdown    bool
}

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithLogger sets the logger used by the server and the verifier.
func WithLogger(logger *slog.Logger) Option {
	return func(sc *ServerContext) {
		if logger != nil {
			sc.logger = logger
		}
	}
}

// NewServerContext creates a new server context around a Todoist API client.
// The verifier and destination resolver read through the same client.
func NewServerContext(ctx context.Context, api todoist.API, opts ...Option) (*ServerContext, error) {
	if api == nil {
		return nil, fmt.Errorf("todoist API client is required")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	sc := &ServerContext{
		ctx:    shutdownCtx,
		cancel: cancel,
		api:    api,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(sc)
	}
	sc.rebuildLocked()
	return sc, nil
}

// rebuildLocked recreates the verifier and resolver so they pick up the
// current logger and metrics. Callers hold mu or own sc exclusively.
func (sc *ServerContext) rebuildLocked() {
	sc.verifier = verify.New(sc.api,
		verify.WithLogger(logging.NewSlogAdapter(sc.logger)),
		verify.WithMetrics(sc.metrics),
	)
	sc.resolver = destination.NewResolver(sc.verifier)
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// API returns the Todoist client.
func (sc *ServerContext) API() todoist.API {
	return sc.api
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Verifier returns the identity verifier.
func (sc *ServerContext) Verifier() *verify.Verifier {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.verifier
}

// Resolver returns the move destination resolver.
func (sc *ServerContext) Resolver() *destination.Resolver {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.resolver
}

// SetMetrics attaches metrics to the context, the verifier and, when it
// supports it, the API client.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
	if setter, ok := sc.api.(metricsSetter); ok {
		setter.SetMetrics(m)
	}
	sc.rebuildLocked()
}

// Metrics returns the attached metrics, or nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger attaches the audit logger used by instrumented tools.
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// AuditLogger returns the attached audit logger, or nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
