package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/api"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/auth"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/cache"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/config"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/db"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/ingest"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/logger"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/stats"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Msg("Starting gradebook service")

	database, err := db.NewConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	store := db.NewStore(database)

	// Redis and S3 are optional collaborators: without them the service
	// still ingests and aggregates, just without snapshot caching or
	// upload archival.
	var statsCache *cache.StatsCache
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, statistics caching disabled")
	} else {
		defer redisClient.Close()
		statsCache = cache.NewStatsCache(redisClient, cfg)
	}

	var archive storage.Storage
	if cfg.Storage.S3.Bucket != "" {
		s3Storage, err := storage.NewS3Storage(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("S3 unavailable, gradebook archival disabled")
		} else {
			archive = s3Storage
		}
	}

	authService := auth.NewService(store, cfg)

	var invalidator ingest.StatsInvalidator
	var snapshots stats.SnapshotCache
	if statsCache != nil {
		invalidator = statsCache
		snapshots = statsCache
	}
	ingestService := ingest.NewService(store, archive, invalidator)
	statsService := stats.NewService(store, snapshots)

	handler := api.NewHandler(store, authService, ingestService, statsService, cfg)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(api.CORSMiddleware())
	router.Use(api.LoggingMiddleware())
	router.Use(api.RecoveryMiddleware())

	api.SetupRoutes(router, handler, authService)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
