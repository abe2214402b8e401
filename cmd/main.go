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

	"github.com/glaucius/back-to-the-loop/config"
	"github.com/glaucius/back-to-the-loop/db"
	"github.com/glaucius/back-to-the-loop/handlers"
	"github.com/glaucius/back-to-the-loop/middleware"
	"github.com/glaucius/back-to-the-loop/monitor"
	"github.com/glaucius/back-to-the-loop/repositories"
	api "github.com/glaucius/back-to-the-loop/routes"
	"github.com/glaucius/back-to-the-loop/services"
	"github.com/glaucius/back-to-the-loop/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
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
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	var uploader storage.FileUploader
	if cfg.S3Endpoint != "" {
		uploader, err = storage.NewS3Uploader(storage.S3UploaderConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			BucketName:      cfg.S3BucketName,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize S3 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("S3 uploader initialized", slog.String("endpoint", cfg.S3Endpoint))
	} else {
		logger.Info("S3 storage not configured, image uploads disabled")
	}

	backyardRepo := repositories.NewPostgresBackyardRepository(dbConn)
	loopRepo := repositories.NewPostgresLoopRepository(dbConn)
	atletaLoopRepo := repositories.NewPostgresAtletaLoopRepository(dbConn)
	inscricaoRepo := repositories.NewPostgresInscricaoRepository(dbConn)
	atletaRepo := repositories.NewPostgresAtletaRepository(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	logger.Info("repositories initialized")

	transactor := db.NewTransactor(dbConn)
	loopConfig := services.LoopConfig{
		TempoLimite: cfg.LoopTempoLimite,
		DistanciaKM: cfg.LoopDistanciaKM,
	}

	authService := services.NewAuthService(atletaRepo, userRepo, cfg.JWTSecretKey, cfg.TokenTTL)
	backyardService := services.NewBackyardService(backyardRepo, loopRepo, uploader)
	inscricaoService := services.NewInscricaoService(inscricaoRepo, backyardRepo, atletaRepo)
	bibService := services.NewBibService(transactor, backyardRepo, inscricaoRepo, logger)
	raceService := services.NewRaceService(
		transactor,
		backyardRepo,
		loopRepo,
		atletaLoopRepo,
		inscricaoRepo,
		atletaRepo,
		loopConfig,
		logger,
	)
	resultsService := services.NewResultsService(backyardRepo, loopRepo, atletaLoopRepo, inscricaoRepo, atletaRepo)
	logger.Info("services initialized")

	timeLimitMonitor := monitor.New(loopRepo, raceService, logger, cfg.MonitorInterval, cfg.MonitorErrorBackoff)
	timeLimitMonitor.Start(context.Background())
	defer timeLimitMonitor.Stop()

	authHandler := handlers.NewAuthHandler(authService)
	backyardHandler := handlers.NewBackyardHandler(backyardService)
	raceHandler := handlers.NewRaceHandler(raceService)
	inscricaoHandler := handlers.NewInscricaoHandler(inscricaoService, bibService)
	resultsHandler := handlers.NewResultsHandler(resultsService)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		middleware.NewAuthenticator(cfg.JWTSecretKey),
		authHandler,
		backyardHandler,
		raceHandler,
		inscricaoHandler,
		resultsHandler,
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
