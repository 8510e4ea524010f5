package main

import (
	"alcyxob/training-planner/internal/api"
	"alcyxob/training-planner/internal/config"
	"alcyxob/training-planner/internal/logger"
	"alcyxob/training-planner/internal/repository/mongo"
	"alcyxob/training-planner/internal/service"
	"alcyxob/training-planner/internal/storage"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// @title Training Planner API
// @version 1.0
// @description Mesocycle generation and progressive overload tracking.
// @host localhost:8080
// @BasePath /api/v1
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("could not load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)
	log.Info("starting training planner",
		"address", cfg.Server.Address,
		"database", cfg.Database.Name,
		"set_batch_size", cfg.Generation.SetBatchSize,
		"start_timeout", cfg.Generation.Timeout,
		"archive_enabled", cfg.S3.Enabled(),
	)

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Error("could not connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		log.Info("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Error("failed to disconnect MongoDB", "error", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)

	// --- Ensure Indexes ---
	// The single-active-mesocycle index must exist before any start is served.
	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), time.Minute)
	err = mongo.EnsureIndexes(indexCtx, appDB)
	cancelIndexes()
	if err != nil {
		log.Error("could not create indexes", "error", err)
		os.Exit(1)
	}

	// --- Initialize Storage ---
	var archive storage.ArchiveStorage
	if cfg.S3.Enabled() {
		archive, err = storage.NewS3Storage(context.Background(), cfg.S3, log)
		if err != nil {
			log.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
	} else {
		log.Warn("s3.bucket_name not set, finished mesocycles will not be archived")
	}

	// --- Initialize Repositories ---
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	planRepo := mongo.NewMongoTrainingPlanRepository(appDB)
	mesocycleRepo := mongo.NewMongoMesocycleRepository(appDB)
	workoutRepo := mongo.NewMongoWorkoutRepository(appDB)
	setRepo := mongo.NewMongoWorkoutSetRepository(appDB, cfg.Generation.SetBatchSize)
	transactor := mongo.NewTransactor(dbClient)

	// --- Initialize Services ---
	generator := service.NewScheduleGenerator(planRepo, exerciseRepo, workoutRepo, setRepo, log)
	exerciseService := service.NewExerciseService(exerciseRepo)
	planService := service.NewPlanService(planRepo, exerciseRepo)
	mesocycleService := service.NewMesocycleService(planRepo, mesocycleRepo, workoutRepo, setRepo, transactor, generator, archive, cfg.Generation.Timeout, log)
	workoutService := service.NewWorkoutService(mesocycleRepo, workoutRepo, setRepo, transactor, log)
	progressionService := service.NewProgressionService(planRepo, mesocycleRepo, workoutRepo, setRepo, transactor, log)

	// --- Initialize Gin Engine ---
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, log, exerciseService, planService, mesocycleService, workoutService, progressionService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Generation.Timeout + 10*time.Second, // A start may run for the whole generation timeout
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("ListenAndServe failed", "error", err)
			os.Exit(1)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exiting")
}
