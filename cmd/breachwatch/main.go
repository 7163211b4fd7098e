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

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/boscoh/breachwatch/internal/adapter/driven/hibp"
	"github.com/boscoh/breachwatch/internal/adapter/driven/reportdir"
	sqliteadapter "github.com/boscoh/breachwatch/internal/adapter/driven/sqlite"
	"github.com/boscoh/breachwatch/internal/adapter/driven/vault"
	httphandler "github.com/boscoh/breachwatch/internal/adapter/driving/http"
	"github.com/boscoh/breachwatch/internal/application"
	"github.com/boscoh/breachwatch/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"reports_dir", cfg.ReportsDir,
		"api_key_configured", cfg.HasAPIKey(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open the scan-history database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on the writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire adapters.
	scanStore := sqliteadapter.NewScanRepo(db)

	reportStore, err := reportdir.New(cfg.ReportsDir, cfg.ReportRetention, slog.Default())
	if err != nil {
		return err
	}

	source := vault.NewExecSource(cfg.VaultCommand)

	apiClient := hibp.NewClient(hibp.Config{
		APIKey:          cfg.HIBPAPIKey,
		BaseURL:         cfg.BaseURL,
		PasswordsURL:    cfg.PasswordsURL,
		UserAgent:       cfg.UserAgent,
		Timeout:         cfg.RequestTimeout,
		MinRequestDelay: cfg.AuthDelay,
	})
	if !cfg.HasAPIKey() {
		slog.Info("no API key configured, account checks disabled until one is provided")
	}

	// 6. Create application services.
	checkSvc := application.NewCheckService(apiClient, cfg.CheckDelay, slog.Default())
	accountSvc := application.NewAccountService(apiClient, slog.Default())
	taskSvc := application.NewTaskService(
		checkSvc, accountSvc, source, reportStore, scanStore, cfg.CheckTimeout, slog.Default(),
	)

	// 7. Create HTTP handler and register API routes.
	apiHandler := httphandler.NewHandler(
		taskSvc, source, reportStore, scanStore, cfg.HasAPIKey(), slog.Default(),
	)
	handler := httphandler.NewServeMux(apiHandler, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	// 8. Log startup complete.
	slog.Info("breachwatch started",
		"listen_addr", cfg.ListenAddr,
		"check_timeout", cfg.CheckTimeout,
	)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout for HTTP server drain.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
