package api

import (
	"alcyxob/training-planner/internal/service"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	logger *slog.Logger,
	exerciseService service.ExerciseService,
	planService service.PlanService,
	mesocycleService service.MesocycleService,
	workoutService service.WorkoutService,
	progressionService service.ProgressionService,
) {
	exerciseHandler := NewExerciseHandler(exerciseService)
	planHandler := NewPlanHandler(planService)
	mesocycleHandler := NewMesocycleHandler(mesocycleService, progressionService)
	workoutHandler := NewWorkoutHandler(workoutService)

	router.Use(RequestIDMiddleware(), LoggingMiddleware(logger))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")

	// --- Exercise Library ---
	exerciseGroup := apiV1.Group("/exercises")
	{
		exerciseGroup.POST("", exerciseHandler.CreateExercise)
		exerciseGroup.GET("", exerciseHandler.ListExercises)
		exerciseGroup.GET("/:id", exerciseHandler.GetExerciseByID)
	}

	// --- Plan Templates ---
	planGroup := apiV1.Group("/plans")
	{
		planGroup.POST("", planHandler.CreatePlan)
		planGroup.GET("/:planId", planHandler.GetPlan)
		planGroup.POST("/:planId/days", planHandler.AddDay)
		planGroup.POST("/:planId/days/:dayId/exercises", planHandler.AddExercise)
	}

	// --- Mesocycle Lifecycle ---
	mesocycleGroup := apiV1.Group("/mesocycles")
	{
		mesocycleGroup.POST("", mesocycleHandler.CreateMesocycle)
		mesocycleGroup.GET("/:id", mesocycleHandler.GetMesocycle)
		mesocycleGroup.POST("/:id/start", mesocycleHandler.StartMesocycle)
		mesocycleGroup.POST("/:id/complete", mesocycleHandler.CompleteMesocycle)
		mesocycleGroup.POST("/:id/cancel", mesocycleHandler.CancelMesocycle)
		mesocycleGroup.GET("/:id/archive", mesocycleHandler.GetArchive)

		// Adaptive progression
		mesocycleGroup.GET("/:id/progression/next", mesocycleHandler.PreviewNextWeek)
		mesocycleGroup.POST("/:id/progression/advance", mesocycleHandler.AdvanceWeek)
	}

	athleteGroup := apiV1.Group("/athletes/:athleteId")
	{
		athleteGroup.GET("/mesocycles", mesocycleHandler.ListAthleteMesocycles)
		athleteGroup.GET("/mesocycles/active", mesocycleHandler.GetActiveMesocycle)
	}

	// --- Workout Execution ---
	workoutGroup := apiV1.Group("/workouts")
	{
		workoutGroup.GET("/:id", workoutHandler.GetWorkout)
		workoutGroup.POST("/:id/start", workoutHandler.StartWorkout)
		workoutGroup.POST("/:id/complete", workoutHandler.CompleteWorkout)
		workoutGroup.POST("/:id/skip", workoutHandler.SkipWorkout)
	}

	setGroup := apiV1.Group("/sets")
	{
		setGroup.POST("/:id/log", workoutHandler.LogSet)
		setGroup.POST("/:id/skip", workoutHandler.SkipSet)
	}
}
