// Package main provides the HTTP API server for FlowMind.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raphaelgruber/flowmind/internal/auth"
	"github.com/raphaelgruber/flowmind/internal/config"
	"github.com/raphaelgruber/flowmind/internal/db"
	"github.com/raphaelgruber/flowmind/internal/flow"
	"github.com/raphaelgruber/flowmind/internal/metrics"
	"github.com/raphaelgruber/flowmind/internal/server"
	"github.com/raphaelgruber/flowmind/internal/service"
)

func main() {
	// Parse flags
	wipeDB := flag.Bool("wipe", false, "wipe all data from database on startup (testing only)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize logging
	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	slog.SetDefault(logger)
	defer func() {
		if err := closeLog(); err != nil {
			slog.Error("failed to close log file", "error", err)
		}
	}()

	slog.Info("starting flowmind-server", "addr", cfg.ListenAddr)

	// Connect to database
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	dbClient, err := db.NewClient(ctx, db.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
	}, logger)
	cancel()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(context.Background()); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	// Initialize schema
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	err = dbClient.InitSchema(ctx)
	cancel()
	if err != nil {
		slog.Error("failed to initialize schema", "error", err)
		os.Exit(1)
	}

	// Wipe database if requested (via flag or env var)
	if *wipeDB || os.Getenv("FLOWMIND_WIPE_DB") == "true" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := dbClient.WipeData(ctx)
		cancel()
		if err != nil {
			slog.Error("failed to wipe database", "error", err)
			os.Exit(1)
		}
		slog.Warn("wiped all database data")
	}

	// Wire services
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	accounts := service.NewAccountService(dbClient, tokens, &service.LogMailer{Log: logger}, logger)
	collector := metrics.NewCollector()
	dbClient.SetCollector(collector)
	hub := server.NewHub(logger)
	sessions := flow.NewSessions(hub.Broadcast)

	srv := server.New(cfg, logger, accounts, sessions, tokens, collector, hub)

	// Serve until interrupted
	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(runCtx); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
