package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/padel-system/config"
	"github.com/Dosada05/padel-system/db"
	"github.com/Dosada05/padel-system/handlers"
	"github.com/Dosada05/padel-system/live"
	"github.com/Dosada05/padel-system/ordering"
	"github.com/Dosada05/padel-system/repositories"
	api "github.com/Dosada05/padel-system/routes"
	"github.com/Dosada05/padel-system/services"
	"github.com/Dosada05/padel-system/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

const statusSchedulerInterval = 30 * time.Second

// @title Padel Tournament System API
// @version 1.0
// @description Match generation, standings and court scheduling for padel tournaments.
// @BasePath /
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

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
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	wsHub := live.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket hub started")

	companyRepo := repositories.NewPostgresCompanyRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	coupleRepo := repositories.NewPostgresCoupleRepository(dbConn)
	courtRepo := repositories.NewPostgresCourtRepository(dbConn)
	stageRepo := repositories.NewPostgresStageRepository(dbConn)
	groupRepo := repositories.NewPostgresGroupRepository(dbConn)
	bracketRepo := repositories.NewPostgresBracketRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	statsRepo := repositories.NewPostgresCoupleStatsRepository(dbConn)
	logger.Info("repositories initialized")

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	authService := services.NewAuthService(companyRepo)
	playerService := services.NewPlayerService(playerRepo)
	coupleService := services.NewCoupleService(coupleRepo, playerRepo, tournamentRepo)
	courtService := services.NewCourtService(dbConn, courtRepo, matchRepo, tournamentRepo)
	tournamentService := services.NewTournamentService(
		tournamentRepo,
		stageRepo,
		groupRepo,
		bracketRepo,
		coupleRepo,
		playerRepo,
		courtRepo,
		matchRepo,
		uploader,
	)
	standingsService := services.NewStandingsService(
		dbConn,
		statsRepo,
		matchRepo,
		stageRepo,
		groupRepo,
		coupleRepo,
		playerRepo,
		tournamentRepo,
		wsHub,
	)
	stagingService := services.NewStagingService(
		dbConn,
		stageRepo,
		groupRepo,
		bracketRepo,
		coupleRepo,
		playerRepo,
		statsRepo,
		matchRepo,
		tournamentRepo,
		rng,
	)
	matchService := services.NewMatchService(
		dbConn,
		matchRepo,
		coupleRepo,
		tournamentRepo,
		standingsService,
		wsHub,
	)
	schedulingService := services.NewSchedulingService(
		dbConn,
		matchRepo,
		stageRepo,
		courtRepo,
		coupleRepo,
		tournamentRepo,
		ordering.NewEngine(rng),
		wsHub,
	)
	generationService := services.NewGenerationService(
		dbConn,
		stageRepo,
		groupRepo,
		bracketRepo,
		coupleRepo,
		matchRepo,
		courtRepo,
		statsRepo,
		tournamentRepo,
		schedulingService,
		rng,
	)
	logger.Info("services initialized")

	// Advance tournament statuses by date on a fixed interval.
	go func() {
		ticker := time.NewTicker(statusSchedulerInterval)
		defer ticker.Stop()
		logger.Info("tournament status scheduler started", slog.Duration("interval", statusSchedulerInterval))

		if n, err := tournamentService.AutoUpdateStatusesByDates(context.Background()); err != nil {
			logger.Error("status scheduler: initial run failed", slog.Any("error", err))
		} else if n > 0 {
			logger.Info("status scheduler: tournaments advanced", slog.Int("count", n))
		}

		for range ticker.C {
			n, err := tournamentService.AutoUpdateStatusesByDates(context.Background())
			if err != nil {
				logger.Error("status scheduler: periodic run failed", slog.Any("error", err))
				continue
			}
			if n > 0 {
				logger.Info("status scheduler: tournaments advanced", slog.Int("count", n))
			}
		}
	}()

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, standingsService)
	playerHandler := handlers.NewPlayerHandler(playerService)
	coupleHandler := handlers.NewCoupleHandler(coupleService)
	courtHandler := handlers.NewCourtHandler(courtService)
	stagingHandler := handlers.NewStagingHandler(stagingService, generationService, standingsService)
	matchHandler := handlers.NewMatchHandler(matchService)
	schedulingHandler := handlers.NewSchedulingHandler(schedulingService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		tournamentHandler,
		playerHandler,
		coupleHandler,
		courtHandler,
		stagingHandler,
		matchHandler,
		schedulingHandler,
		webSocketHandler,
	)
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

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
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
