package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/coyotlinden/opentsdb/internal/config"
	"github.com/coyotlinden/opentsdb/internal/core/aggregate"
	"github.com/coyotlinden/opentsdb/internal/core/storage/postgres"
	"github.com/coyotlinden/opentsdb/internal/ingestion"
	"github.com/coyotlinden/opentsdb/internal/migrations"
	"github.com/coyotlinden/opentsdb/internal/query"
	"github.com/coyotlinden/opentsdb/internal/rollup"
	"github.com/coyotlinden/opentsdb/internal/server"
)

func main() {
	configPath := flag.String("config", "tsd.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "config", cfg)

	// 2. Initialize Storage (PostgreSQL)
	store, err := postgres.NewAdapter(
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// 2.1. Run Database Migrations
	if err := migrations.RunMigrations(store.DB(), cfg.Database.AutoMigrate); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	// 3. Initialize the Aggregator Registry
	registry := aggregate.NewRegistry()
	slog.Info("Aggregator registry initialized", "aggregators", registry.Names())

	// 4. Load Rollup Policies
	policies, err := rollup.Load(cfg.Rollup.ConfigDir, registry)
	if err != nil {
		slog.Error("Failed to load rollup policies", "error", err)
		os.Exit(1)
	}
	slog.Info("Rollup policies loaded", "count", policies.Len(), "dir", cfg.Rollup.ConfigDir)

	// 5. Initialize Ingestion
	ingestionSvc := ingestion.NewService(store, cfg.Server.MaxBodySizeMB)

	// 6. Initialize Query API
	querySvc := query.NewService(store, registry, policies)

	// 7. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), store, cfg.Server.Mode)
	ingestionSvc.RegisterRoutes(srv.Engine)
	querySvc.RegisterRoutes(srv.Engine)

	// 8. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handler cancels ctx and triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
