package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taskhive/taskhive/internal/app"
	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/internal/db"
	"github.com/taskhive/taskhive/internal/logger"
	"github.com/taskhive/taskhive/internal/routes"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)

	// `server rollback` reverts the most recent migration and exits.
	if len(os.Args) > 1 && os.Args[1] == "rollback" {
		rollback(cfg)
		return
	}

	app, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer func() {
		closeErr := app.Close()
		if closeErr != nil {
			slog.Error("failed to close app", "error", closeErr)
		}
	}()

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: routes.SetupRoutes(app),
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = server.Shutdown(ctx)
	if err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
}

func rollback(cfg *config.Config) {
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = database.Close() }()

	err = db.MigrateDown(database.DB, cfg.DBDriver)
	if err != nil {
		slog.Error("rollback failed", "error", err)
		os.Exit(1)
	}
}
