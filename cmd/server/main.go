package main

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

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/runlog/internal/auth"
	"github.com/mmynk/runlog/internal/config"
	"github.com/mmynk/runlog/internal/middleware"
	"github.com/mmynk/runlog/internal/service"
	"github.com/mmynk/runlog/internal/storage"
	"github.com/mmynk/runlog/internal/storage/postgres"
	"github.com/mmynk/runlog/internal/storage/sqlite"
	"github.com/mmynk/runlog/internal/web"
	"github.com/mmynk/runlog/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)

	if cfg.InsecureSecret() {
		logger.Warn("Dev mode: using the built-in secret key; session tokens are forgeable")
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	jwtManager := auth.NewJWTManager(cfg.SecretKey, cfg.SessionDuration, cfg.RememberDuration)
	accounts := service.NewAccountService(auth.NewPasswordAuthenticator(store), store, logger)
	runs := service.NewRunService(store, logger)

	srv, err := web.New(web.Config{
		Store:        store,
		Accounts:     accounts,
		Runs:         runs,
		JWT:          jwtManager,
		Metrics:      middleware.NewMetrics(),
		Logger:       logger,
		CookieName:   cfg.CookieName,
		CookieSecure: cfg.CookieSecure,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h2c.NewHandler(srv.Handler(), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "address", cfg.Addr, "db_driver", cfg.DBDriver)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		store, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres storage: %w", err)
		}
		slog.Info("Storage initialized", "driver", cfg.DBDriver)
		return store, nil
	default:
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sqlite storage: %w", err)
		}
		slog.Info("Storage initialized", "driver", cfg.DBDriver, "database", cfg.DBPath)
		return store, nil
	}
}
