package api

import (
	"alcyxob/training-planner/internal/domain"
	"alcyxob/training-planner/internal/service"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutHandler serves workout execution.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// LogSetRequest carries what was actually lifted. Pointers let zero reps through "required".
type LogSetRequest struct {
	ActualReps   *int     `json:"actualReps" binding:"required,min=0"`
	ActualWeight *float64 `json:"actualWeight" binding:"required,min=0"`
}

// GetWorkout godoc
// @Summary Get a workout with its sets
// @Tags Workouts
// @Produce json
// @Param id path string true "Workout ID"
// @Success 200 {object} service.WorkoutDetail
// @Failure 404 {object} gin.H "Workout not found"
// @Router /workouts/{id} [get]
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	h.workout(c, h.workoutService.GetWorkout)
}

// StartWorkout godoc
// @Summary Start a workout
// @Tags Workouts
// @Produce json
// @Param id path string true "Workout ID"
// @Success 200 {object} service.WorkoutDetail
// @Failure 409 {object} gin.H "Workout finished or mesocycle not active"
// @Router /workouts/{id}/start [post]
func (h *WorkoutHandler) StartWorkout(c *gin.Context) {
	h.workout(c, h.workoutService.StartWorkout)
}

// CompleteWorkout godoc
// @Summary Complete a workout, skipping sets that were not logged
// @Tags Workouts
// @Produce json
// @Param id path string true "Workout ID"
// @Success 200 {object} service.WorkoutDetail
// @Failure 409 {object} gin.H "Workout finished or mesocycle not active"
// @Router /workouts/{id}/complete [post]
func (h *WorkoutHandler) CompleteWorkout(c *gin.Context) {
	h.workout(c, h.workoutService.CompleteWorkout)
}

// SkipWorkout godoc
// @Summary Skip a workout
// @Tags Workouts
// @Produce json
// @Param id path string true "Workout ID"
// @Success 200 {object} service.WorkoutDetail
// @Failure 409 {object} gin.H "Workout finished or mesocycle not active"
// @Router /workouts/{id}/skip [post]
func (h *WorkoutHandler) SkipWorkout(c *gin.Context) {
	h.workout(c, h.workoutService.SkipWorkout)
}

func (h *WorkoutHandler) workout(c *gin.Context, fn func(context.Context, primitive.ObjectID) (*service.WorkoutDetail, error)) {
	workoutID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	workout, err := fn(c.Request.Context(), workoutID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, workout)
}

// LogSet godoc
// @Summary Log the actual reps and weight of a set
// @Tags Workouts
// @Accept json
// @Produce json
// @Param id path string true "Set ID"
// @Param set body LogSetRequest true "Actual performance"
// @Success 200 {object} domain.WorkoutSet
// @Failure 409 {object} gin.H "Set already finished"
// @Router /sets/{id}/log [post]
func (h *WorkoutHandler) LogSet(c *gin.Context) {
	setID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req LogSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	h.respondSet(c, func(ctx context.Context) (*domain.WorkoutSet, error) {
		return h.workoutService.LogSet(ctx, setID, *req.ActualReps, *req.ActualWeight)
	})
}

// SkipSet godoc
// @Summary Skip a set
// @Tags Workouts
// @Produce json
// @Param id path string true "Set ID"
// @Success 200 {object} domain.WorkoutSet
// @Failure 409 {object} gin.H "Set already finished"
// @Router /sets/{id}/skip [post]
func (h *WorkoutHandler) SkipSet(c *gin.Context) {
	setID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	h.respondSet(c, func(ctx context.Context) (*domain.WorkoutSet, error) {
		return h.workoutService.SkipSet(ctx, setID)
	})
}

func (h *WorkoutHandler) respondSet(c *gin.Context, fn func(context.Context) (*domain.WorkoutSet, error)) {
	set, err := fn(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, set)
}
