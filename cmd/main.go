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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/Rouva01/competition-system/brackets"
	"github.com/Rouva01/competition-system/config"
	"github.com/Rouva01/competition-system/db"
	"github.com/Rouva01/competition-system/handlers"
	"github.com/Rouva01/competition-system/models"
	"github.com/Rouva01/competition-system/optimistic"
	"github.com/Rouva01/competition-system/ratelimit"
	"github.com/Rouva01/competition-system/repositories"
	api "github.com/Rouva01/competition-system/routes"
	"github.com/Rouva01/competition-system/services"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	wsHub := brackets.NewHub()
	go wsHub.Run()
	logger.Info("websocket hub started")

	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	qualificationRepo := repositories.NewPostgresQualificationRepository(dbConn)
	entryRepo := repositories.NewPostgresEntryRepository(dbConn)
	logger.Info("repositories initialized")

	retryOpts := optimistic.RetryOptions{}
	matchController := optimistic.NewController[*models.Match](
		dbConn, optimistic.MatchAccessor{Repo: matchRepo}, retryOpts)
	qualificationController := optimistic.NewController[*models.QualificationRecord](
		dbConn, optimistic.QualificationAccessor{Repo: qualificationRepo}, retryOpts)
	entryController := optimistic.NewController[*models.Entry](
		dbConn, optimistic.EntryAccessor{Repo: entryRepo}, retryOpts)

	standingsService := services.NewStandingsService(matchRepo, qualificationRepo, qualificationController)
	matchService := services.NewMatchService(matchRepo, matchController, standingsService, wsHub)
	qualificationService := services.NewQualificationService(dbConn, matchRepo, qualificationRepo, entryRepo, wsHub)
	bracketService := services.NewBracketService(dbConn, matchRepo, qualificationRepo, entryRepo, wsHub)
	entryService := services.NewEntryService(entryRepo, entryController, wsHub)
	logger.Info("services initialized")

	matchHandler := handlers.NewMatchHandler(matchService)
	tournamentHandler := handlers.NewTournamentHandler(qualificationService, bracketService, standingsService)
	entryHandler := handlers.NewEntryHandler(entryService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)

	limiter := ratelimit.NewStore(cfg.RateLimitCapacity)

	router := chi.NewRouter()
	api.SetupRoutes(router, limiter, matchHandler, tournamentHandler, entryHandler, webSocketHandler)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
