package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/teemow/schedulr/internal/config"
	"github.com/teemow/schedulr/internal/google"
	"github.com/teemow/schedulr/internal/instrumentation"
	"github.com/teemow/schedulr/internal/logging"
	"github.com/teemow/schedulr/internal/server"
	"github.com/teemow/schedulr/internal/tools/calendar_tools"
	"github.com/teemow/schedulr/internal/tools/contacts_tools"
	"github.com/teemow/schedulr/internal/tools/google_tools"
	"github.com/teemow/schedulr/internal/tools/scheduling_tools"
)

func newServeCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server providing the meeting
scheduling tools.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport on /mcp

Configuration:
  Every flag can also be set in a schedulr.yaml config file (searched in the
  working directory and the user config directory, or given with --config)
  or through an environment variable with the SCHEDULR_ prefix, e.g.
  SCHEDULR_SENDER_EMAIL for --sender-email.

Google access:
  The Google token of an account is read from <token-dir>/google-<account>.token,
  written by the save-token command.
  Alternatively pass --google-access-token and/or --google-refresh-token.
  Refreshing tokens needs --google-client-id and --google-client-secret
  (or GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.New(cmd.Flags(), configFile)
			if err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "Path to a YAML config file (default: schedulr.yaml in . or the user config dir)")
	addServeFlags(cmd.Flags())

	return cmd
}

// addServeFlags defines the flags of the serve command. Flag names are the
// config keys they are bound to.
func addServeFlags(f *pflag.FlagSet) {
	f.Bool("debug", false, "Enable debug logging")
	f.String("transport", config.TransportStdio, "Transport type: stdio or streamable-http")
	f.String("http-addr", ":8080", "HTTP server address (for streamable-http transport)")

	f.Bool("metrics-enabled", true, "Enable the metrics server on a dedicated port (streamable-http only)")
	f.String("metrics-addr", server.DefaultMetricsAddr, "Metrics server address")
	f.String("metrics-exporter", instrumentation.ExporterPrometheus, "Metrics exporter: prometheus, otlp or stdout")

	f.String("account", google.DefaultAccount, "Google account used when a tool call names none")
	f.String("token-dir", "", "Directory holding google-<account>.token files (default: user cache dir)")
	f.String("google-access-token", "", "Google OAuth access token, instead of a token file")
	f.String("google-refresh-token", "", "Google OAuth refresh token, instead of a token file")
	f.String("google-client-id", "", "Google OAuth client ID for token refresh. Can also use GOOGLE_CLIENT_ID env var.")
	f.String("google-client-secret", "", "Google OAuth client secret for token refresh. Can also use GOOGLE_CLIENT_SECRET env var.")

	f.String("sender-name", "", "Name used to sign scheduling emails")
	f.String("sender-email", "", "Organizer address of calendar invites")
	f.Int("days-ahead", 7, "Default number of days to offer slots from")
	f.IntSlice("daily-hours", []int{10, 14, 16}, "UTC hours offered on weekdays when no calendar is used")
	f.Duration("min-slot", 30*time.Minute, "Shortest free slot offered")
}

func runServe(ctx context.Context, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// stdout carries the stdio transport, so logs always go to stderr
	logger := logging.New(os.Stderr, cfg.Debug)
	slog.SetDefault(logger)

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	instrConfig.MetricsExporter = cfg.MetricsExporter

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Warn("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	tokenProvider, err := newTokenProvider(cfg.Google)
	if err != nil {
		return err
	}
	if cfg.Google.HasStaticToken() {
		logger.Debug("using static Google token",
			logging.Account(cfg.Google.Account),
			slog.String("access_token", logging.SanitizeToken(cfg.Google.AccessToken)),
			slog.String("refresh_token", logging.SanitizeToken(cfg.Google.RefreshToken)))
	}

	opts := server.Options{
		TokenProvider: tokenProvider,
		Credentials: google.Credentials{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
		},
		Settings: server.Settings{
			DefaultAccount: cfg.Google.Account,
			SenderName:     cfg.Scheduling.SenderName,
			SenderEmail:    cfg.Scheduling.SenderEmail,
			DaysAhead:      cfg.Scheduling.DaysAhead,
			DailyHours:     cfg.Scheduling.DailyHours,
			MinSlot:        cfg.Scheduling.MinSlot,
		},
		Logger: logger,
	}
	if provider.Enabled() {
		opts.Metrics = provider.Metrics()
		opts.AuditLogger = instrumentation.NewAuditLogger(logger, instrConfig.AuditLogging)
	}

	serverContext, err := server.NewServerContext(shutdownCtx, opts)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("error during server context shutdown", logging.Err(err))
		}
	}()

	if !serverContext.HasTokenForAccount(cfg.Google.Account) {
		logger.Warn("no Google token for the default account, Google backed tools will fail",
			logging.Account(cfg.Google.Account))
	}

	mcpSrv := mcpserver.NewMCPServer("schedulr", version,
		mcpserver.WithToolCapabilities(true),
	)

	if err := registerAllTools(mcpSrv, serverContext); err != nil {
		return err
	}

	switch cfg.Transport {
	case config.TransportStdio:
		return runStdioServer(mcpSrv)
	case config.TransportStreamableHTTP:
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, cfg, provider, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", cfg.Transport)
	}
}

func newTokenProvider(cfg config.GoogleConfig) (google.TokenProvider, error) {
	if cfg.HasStaticToken() {
		p, err := google.NewStaticTokenProvider(cfg.AccessToken, cfg.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("invalid Google token configuration: %w", err)
		}
		return p, nil
	}
	return google.NewFileTokenProvider(cfg.TokenDir), nil
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

// registerAllTools registers all MCP tools
func registerAllTools(mcpSrv *mcpserver.MCPServer, ctx *server.ServerContext) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Calendar",
			register: func() error {
				return calendar_tools.RegisterCalendarTools(mcpSrv, ctx)
			},
		},
		{
			name: "Contacts",
			register: func() error {
				return contacts_tools.RegisterContactsTools(mcpSrv, ctx)
			},
		},
		{
			name: "Scheduling",
			register: func() error {
				return scheduling_tools.RegisterSchedulingTools(mcpSrv, ctx)
			},
		},
		{
			name: "Google",
			register: func() error {
				return google_tools.RegisterGoogleTools(mcpSrv, ctx)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, cfg config.Config, provider *instrumentation.Provider, logger *slog.Logger) error {
	health := server.NewHealthChecker(sc)
	httpServer := server.NewHTTPServer(mcpSrv, health, provider.Metrics())

	errCh := make(chan error, 2)

	var metricsServer *server.MetricsServer
	if cfg.MetricsEnabled && provider.Enabled() && cfg.MetricsExporter == instrumentation.ExporterPrometheus {
		var err error
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.MetricsAddr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server failed: %w", err)
			}
		}()
	}

	go func() {
		if err := httpServer.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
	case runErr = <-errCh:
	}

	health.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error during HTTP server shutdown", logging.Err(err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("error during metrics server shutdown", logging.Err(err))
		}
	}

	return runErr
}
