package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/todoistguard/internal/config"
	"github.com/teemow/todoistguard/internal/instrumentation"
	"github.com/teemow/todoistguard/internal/logging"
	"github.com/teemow/todoistguard/internal/resources"
	"github.com/teemow/todoistguard/internal/server"
	"github.com/teemow/todoistguard/internal/todoist"
	"github.com/teemow/todoistguard/internal/tools/comment_tools"
	"github.com/teemow/todoistguard/internal/tools/label_tools"
	"github.com/teemow/todoistguard/internal/tools/project_tools"
	"github.com/teemow/todoistguard/internal/tools/section_tools"
	"github.com/teemow/todoistguard/internal/tools/task_tools"
)

func newServeCmd() *cobra.Command {
	var (
		debugMode        bool
		disableStreaming bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server with the Todoist tools.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport

Configuration:
  Settings are read from an optional YAML file (--config), then from
  environment variables, then from flags. The Todoist API token is required,
  usually through TODOIST_API_TOKEN.

Read-only mode:
  With --read-only only the get/list tools are registered.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadServeConfig(cmd)
			if err != nil {
				return err
			}
			return runServe(cfg, debugMode, disableStreaming)
		},
	}

	cmd.Flags().String("config", "", "Path to a YAML configuration file")
	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().String("transport", config.TransportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().String("http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().Bool("read-only", false, "Register only tools that do not change Todoist data")
	cmd.Flags().BoolVar(&disableStreaming, "disable-streaming", false, "Disable streaming for HTTP transport (for compatibility with certain clients)")
	cmd.Flags().Bool("metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().String("metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// loadServeConfig layers the configuration: defaults, the YAML file, the
// environment and finally flags that were set on the command line.
func loadServeConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	configFile, _ := flags.GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if flags.Changed("transport") {
		cfg.Server.Transport, _ = flags.GetString("transport")
	}
	if flags.Changed("http-addr") {
		cfg.Server.HTTPAddr, _ = flags.GetString("http-addr")
	}
	if flags.Changed("read-only") {
		cfg.Server.ReadOnly, _ = flags.GetBool("read-only")
	}
	if flags.Changed("metrics-enabled") {
		cfg.Metrics.Enabled, _ = flags.GetBool("metrics-enabled")
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr, _ = flags.GetString("metrics-addr")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runServe(cfg *config.Config, debugMode, disableStreaming bool) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// stdout belongs to the stdio transport
	logger := logging.NewLogger(os.Stderr, debugMode)
	slog.SetDefault(logger)

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	stdio := cfg.Server.Transport == config.TransportStdio

	var metricsServer *server.MetricsServer
	if !stdio && cfg.Metrics.Enabled && provider.Enabled() {
		metricsServer, err = startMetricsServer(cfg.Metrics.Addr, provider, logger)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("error during metrics server shutdown", logging.Err(err))
			}
		}()
	}

	clientConfig := cfg.ClientConfig()
	clientConfig.Logger = logging.NewSlogAdapter(logger)
	client, err := todoist.NewClient(clientConfig)
	if err != nil {
		return fmt.Errorf("failed to create Todoist client: %w", err)
	}

	serverContext, err := server.NewServerContext(shutdownCtx, client, server.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("error during server context shutdown", logging.Err(err))
		}
	}()

	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging))
	}

	mcpSrv := mcpserver.NewMCPServer("todoistguard", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)

	readOnly := cfg.Server.ReadOnly
	if readOnly {
		logger.Info("starting server in read-only mode")
	} else {
		logger.Info("starting server with write operations enabled")
	}

	if err := registerAllTools(mcpSrv, serverContext, readOnly); err != nil {
		return err
	}

	switch cfg.Server.Transport {
	case config.TransportStdio:
		return runStdioServer(mcpSrv)
	case config.TransportStreamableHTTP:
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, cfg, readOnly, disableStreaming, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: %s, %s)",
			cfg.Server.Transport, config.TransportStdio, config.TransportStreamableHTTP)
	}
}

// startMetricsServer starts the Prometheus endpoint and waits until it is
// listening.
func startMetricsServer(addr string, provider *instrumentation.Provider, logger *slog.Logger) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		Enabled:                 true,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case <-metricsReady:
		logger.Info("metrics server started", "addr", metricsServer.Addr())
		return metricsServer, nil
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("metrics server startup timed out")
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAllTools registers every tool group and the resources with the
// MCP server.
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	type toolRegistration struct {
		name     string
		register func(*mcpserver.MCPServer, *server.ServerContext, bool) error
	}

	registrations := []toolRegistration{
		{name: "Task tools", register: task_tools.RegisterTaskTools},
		{name: "Project tools", register: project_tools.RegisterProjectTools},
		{name: "Section tools", register: section_tools.RegisterSectionTools},
		{name: "Comment tools", register: comment_tools.RegisterCommentTools},
		{name: "Label tools", register: label_tools.RegisterLabelTools},
		{name: "resources", register: func(s *mcpserver.MCPServer, sc *server.ServerContext, _ bool) error {
			return resources.RegisterResources(s, sc)
		}},
	}

	for _, reg := range registrations {
		if err := reg.register(mcpSrv, sc, readOnly); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, cfg *config.Config, readOnly, disableStreaming bool, logger *slog.Logger) error {
	httpServer, err := server.NewHTTPServer(mcpSrv, sc, server.HTTPServerConfig{
		Addr:             cfg.Server.HTTPAddr,
		DisableStreaming: disableStreaming,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}
	httpServer.Health().SetBuildInfo(server.BuildInfo{Version: version, ReadOnly: readOnly})

	logger.Info("starting todoistguard MCP server",
		"transport", cfg.Server.Transport,
		"addr", cfg.Server.HTTPAddr,
		"endpoint", server.MCPEndpointPath,
		"health", "/healthz, /readyz",
		"metrics_enabled", cfg.Metrics.Enabled)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		logger.Info("HTTP server stopped normally")
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}
