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
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/brackets"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/config"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/db"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/handlers"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/models"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/repositories"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/routes"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/services"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/standings"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/storage"
)

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.Int("total_qualifiers", cfg.TotalQualifiers),
		slog.Int("auto_qualifiers_per_group", cfg.AutoQualifiersPerGroup),
	)

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
	if err := db.Migrate(dbConn, logger); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}

	archiver := storage.NopArchiver()
	if cfg.ArchiveEnabled() {
		store, err := storage.NewR2Store(context.Background(), storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize snapshot archive", slog.Any("error", err))
			os.Exit(1)
		}
		archiver = storage.NewArchiver(store, "tournament")
		logger.Info("snapshot archive enabled", slog.String("bucket", cfg.R2BucketName))
	}

	wsHub := brackets.NewHub(logger)
	go wsHub.Run()

	groupRepo := repositories.NewPostgresGroupRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	stageRepo := repositories.NewPostgresStageRepository(dbConn)

	tournamentService := services.NewTournamentService(
		dbConn,
		groupRepo,
		matchRepo,
		stageRepo,
		wsHub,
		archiver,
		logger,
		services.TournamentConfig{
			Qualification: standings.Config{
				AutoPerGroup: cfg.AutoQualifiersPerGroup,
				Total:        cfg.TotalQualifiers,
			},
			KnockoutFormat: models.MatchFormat(cfg.KnockoutMatchFormat),
			Generator:      brackets.NewKnockoutGenerator(brackets.StrategyFor(cfg.BracketSeed)),
			KnockoutDelay:  time.Hour,
		},
	)
	matchService := services.NewMatchService(dbConn, groupRepo, matchRepo, stageRepo, tournamentService, wsHub, logger)
	groupService := services.NewGroupService(dbConn, groupRepo, matchRepo, stageRepo, models.MatchFormat(cfg.GroupMatchFormat), logger)
	authService := services.NewAuthService(cfg.OperatorPasswordHash)
	if cfg.OperatorPasswordHash == "" {
		logger.Warn("OPERATOR_PASSWORD_HASH is not set; operator endpoints are unreachable")
	}

	reconciler, err := services.NewReconcileScheduler(tournamentService, cfg.ReconcileInterval, 30*time.Second, logger)
	if err != nil {
		logger.Error("failed to create reconcile scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	reconciler.Start()
	defer func() {
		if err := reconciler.Shutdown(); err != nil {
			logger.Error("failed to stop reconcile scheduler", slog.Any("error", err))
		}
	}()

	router := chi.NewRouter()
	routes.SetupRoutes(router, routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		Tournament: handlers.NewTournamentHandler(tournamentService),
		Match:      handlers.NewMatchHandler(matchService),
		Group:      handlers.NewGroupHandler(groupService),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, cfg.CORSAllowedOrigins, logger),
	}, routes.Options{
		JWTSecret:      cfg.JWTSecretKey,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
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
			return
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
			return
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
