package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mak-braai/pos/internal/domain"
	"github.com/mak-braai/pos/internal/handlers"
	"github.com/mak-braai/pos/internal/platform/config"
	"github.com/mak-braai/pos/internal/platform/idempotency"
	"github.com/mak-braai/pos/internal/platform/observability"
	"github.com/mak-braai/pos/internal/state"
	"github.com/mak-braai/pos/internal/storage"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("pos")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	medium, err := storage.NewRedisMedium(cfg.Redis.URL)
	if err != nil {
		logger.Fatal("failed to initialise redis medium", zap.Error(err))
	}
	defer func() {
		if err := medium.Close(); err != nil {
			logger.Warn("redis close error", zap.Error(err))
		}
	}()

	backend, err := storage.NewBackend(storage.BackendDeps{
		Medium:    medium,
		Namespace: cfg.Redis.Namespace,
		Logger:    observability.EventLogger(logger.Named("storage")),
	})
	if err != nil {
		logger.Fatal("failed to initialise storage backend", zap.Error(err))
	}

	store, err := state.New(ctx, state.Deps{
		Backend:           backend,
		Logger:            observability.EventLogger(logger.Named("state")),
		DeliverySurcharge: cfg.Checkout.DeliverySurcharge,
		PrepTimeMin:       cfg.Checkout.PrepTimeMin,
		PrepTimeMax:       cfg.Checkout.PrepTimeMax,
		PaymentDelay:      cfg.Checkout.PaymentDelay,
	})
	if err != nil {
		logger.Fatal("failed to initialise store", zap.Error(err))
	}

	idempotencyStore := idempotency.NewMemoryStore()

	router := handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.InjectLoggerMiddleware(logger),
			observability.TraceMiddleware(),
			observability.RequestLoggerMiddleware(),
			observability.RecoveryMiddleware(logger),
		),
		handlers.WithHealthHandlers(handlers.NewHealthHandlers(
			handlers.WithReadinessProbe(backend.Probe),
		)),
		handlers.WithMenuRoutes(handlers.NewMenuHandlers(domain.Menu).Routes),
		handlers.WithCartRoutes(handlers.NewCartHandlers(store, domain.Menu).Routes),
		handlers.WithCheckoutRoutes(func(r chi.Router) {
			r.Use(idempotency.Middleware(idempotencyStore,
				idempotency.WithLogger(observability.NewPrintfAdapter(logger.Named("idempotency"))),
			))
			handlers.NewCheckoutHandlers(store).Routes(r)
		}),
		handlers.WithOrderRoutes(handlers.NewOrderHandlers(store).Routes),
		handlers.WithAdminRoutes(handlers.NewAdminHandlers(store, time.Now).Routes),
		handlers.WithStorageRoutes(handlers.NewStorageHandlers(store).Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("braai pos api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
