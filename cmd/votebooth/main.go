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

	"github.com/joho/godotenv"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/votebooth/internal/adapter/driven/memstore"
	sqliteadapter "github.com/ericfisherdev/votebooth/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/votebooth/internal/adapter/driven/votingapi"
	httphandler "github.com/ericfisherdev/votebooth/internal/adapter/driving/http"
	"github.com/ericfisherdev/votebooth/internal/application"
	"github.com/ericfisherdev/votebooth/internal/config"
	"github.com/ericfisherdev/votebooth/internal/domain/model"
	"github.com/ericfisherdev/votebooth/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (.env first, then environment; fail fast on
	// missing required variables).
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"api_base", cfg.APIBase,
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"categories", cfg.Categories,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	categories := make([]model.Category, 0, len(cfg.Categories))
	for _, c := range cfg.Categories {
		categories = append(categories, model.NormalizeCategory(c))
	}

	// 3. Open the durable session store; fall back to process memory when the
	// database cannot be opened so the booth stays usable for the current run.
	var store driven.SessionStore
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		slog.Warn("durable store unavailable, session state will not survive restarts",
			"path", cfg.DBPath,
			"error", err,
		)
		store = memstore.New()
	} else {
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()

		if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
			return err
		}
		slog.Info("database opened", "path", cfg.DBPath)
		store = sqliteadapter.NewSessionRepo(db)
	}

	// 4. Wire the backend client and session services.
	api := votingapi.NewClient(cfg.APIBase, cfg.HTTPTimeout)

	authSvc := application.NewAuthService(store, api, cfg.PINLength)
	selectionSvc := application.NewSelectionService(store, api, categories)
	navigator := application.NewNavigator(store, categories)
	submitSvc := application.NewSubmitService(store, api, categories)

	// 5. Create the booth-facing HTTP facade.
	handler := httphandler.NewHandler(authSvc, selectionSvc, navigator, submitSvc, api, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(handler, slog.Default()),
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

	slog.Info("votebooth started", "listen_addr", cfg.ListenAddr, "api_base", cfg.APIBase)

	// 6. Wait for shutdown signal, then drain.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
