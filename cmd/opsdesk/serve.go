package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"ai-ops-desk/backend/internal/api"
	"ai-ops-desk/backend/internal/config"
	"ai-ops-desk/backend/internal/logging"
	"ai-ops-desk/backend/internal/mcp"
	"ai-ops-desk/backend/internal/orchestrator"
	"ai-ops-desk/backend/internal/repository"
	"ai-ops-desk/backend/internal/services"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the orchestrator HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	logger := logging.NewLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Info("Starting AI Ops Desk Orchestrator",
		"store_driver", cfg.Store.Driver,
		"classifier_url", cfg.Classifier.URL,
	)

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	orch := orchestrator.New(store, buildServices(cfg), cfg.Pipeline.ConnectorTimeout, logger)

	// Create Echo server
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(otelecho.Middleware("ai-ops-desk"))

	// Mount REST API handlers
	apiServer := api.NewServer(orch, store)
	apiServer.Register(e)

	logger.Info("REST API handlers mounted")

	// Mount MCP protocol handlers
	mcpServer := mcp.NewServer(orch, store)
	mcpHandlers := http.NewServeMux()
	mcp.MountHTTPHandlers(mcpHandlers, mcpServer.GetMCPServer())
	e.Any("/mcp/*", echo.WrapHandler(mcpHandlers))

	logger.Info("MCP protocol handlers mounted")

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown handling
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", cfg.Server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
			if err := server.Close(); err != nil {
				logger.Error("Server close error", "error", err)
			}
		}

		logger.Info("Server stopped gracefully")
	}
	return nil
}

// buildServices wires the external collaborators. Anything without a
// configured endpoint falls back to its built-in implementation.
func buildServices(cfg *config.Config) orchestrator.Services {
	var classifier services.Classifier = services.RuleClassifier{}
	if cfg.Classifier.URL != "" {
		classifier = services.NewHTTPClassifier(cfg.Classifier.URL)
	}

	return orchestrator.Services{
		Threads:    services.NullThreadConnector{},
		Calendar:   services.StaticCalendar{},
		Classifier: classifier,
		KB: services.StaticKnowledgeBase{Articles: []services.KBMatch{
			{Title: "password reset", Snippet: "Use the Forgot Password link on the sign-in page.", Score: 1},
			{Title: "billing cycle", Snippet: "Invoices are issued on the first of each month.", Score: 1},
			{Title: "data export", Snippet: "Exports are available under Settings > Data.", Score: 1},
		}},
	}
}

func openStore(ctx context.Context, cfg *config.Config, logger *logging.Logger) (repository.WorkflowStore, func(), error) {
	if cfg.Store.Driver == "memory" {
		logger.Info("Using in-memory workflow store")
		return repository.NewMemoryWorkflowStore(), func() {}, nil
	}

	pool, err := initDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewPostgresWorkflowStore(pool), pool.Close, nil
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*pgxpool.Pool, error) {
	logger.Debug("Initializing database connection")

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
