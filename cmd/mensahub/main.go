package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mensahub/mensahub/internal/app"
	"github.com/mensahub/mensahub/internal/auth"
	"github.com/mensahub/mensahub/internal/authz"
	"github.com/mensahub/mensahub/internal/catalog"
	"github.com/mensahub/mensahub/internal/dashboard"
	"github.com/mensahub/mensahub/internal/platform/cache"
	"github.com/mensahub/mensahub/internal/platform/db"
	"github.com/mensahub/mensahub/internal/reservations"
	"github.com/mensahub/mensahub/internal/shared"
	"github.com/mensahub/mensahub/internal/users"
	"github.com/mensahub/mensahub/internal/view"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "mensahub_session", cfg.SessionSecret, cfg.SessionTTL, cfg.SessionRememberTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	userRepo := users.NewRepository(pool)
	userService := users.NewService(userRepo)
	profileHandler := users.NewHandler(logger, userService, templates, csrfManager)

	sessionStore := auth.NewSessionStore(pool)
	authService := auth.NewService(userRepo, sessionStore)
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager)

	catalogRepo := catalog.NewRepository(pool)
	catalogService := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(logger, catalogService, templates, csrfManager)

	reservationRepo := reservations.NewRepository(pool)
	reservationService := reservations.NewService(reservationRepo)
	reservationHandler := reservations.NewHandler(logger, reservationService, templates, csrfManager)

	dashboardHandler := dashboard.NewHandler(logger, catalogService, reservationService, templates, csrfManager)

	authzMiddleware := authz.Middleware{Users: userRepo, Logger: logger}

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Templates:          templates,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		Authz:              authzMiddleware,
		AuthHandler:        authHandler,
		DashboardHandler:   dashboardHandler,
		ProfileHandler:     profileHandler,
		ReservationHandler: reservationHandler,
		CatalogHandler:     catalogHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
