package api

import (
	"alcyxob/training-planner/internal/domain"
	"alcyxob/training-planner/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- DTOs for API (Data Transfer Objects) ---

// CreateExerciseRequest defines the expected JSON for creating an exercise.
type CreateExerciseRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	MuscleGroup string `json:"muscleGroup" binding:"omitempty"` // e.g., "Chest", "Legs"
}

// ExerciseResponse is the DTO for returning exercise details.
type ExerciseResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	MuscleGroup string    `json:"muscleGroup,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse DTO.
func MapExerciseToResponse(ex *domain.Exercise) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	return ExerciseResponse{
		ID:          ex.ID.Hex(),
		Name:        ex.Name,
		Description: ex.Description,
		MuscleGroup: ex.MuscleGroup,
		CreatedAt:   ex.CreatedAt,
		UpdatedAt:   ex.UpdatedAt,
	}
}

// MapExercisesToResponse converts a slice of domain.Exercise to a slice of ExerciseResponse DTO.
func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i, ex := range exercises {
		responses[i] = MapExerciseToResponse(&ex)
	}
	return responses
}

// --- Handler Methods ---

// CreateExercise godoc
// @Summary Create a new exercise
// @Description Adds an exercise to the shared library.
// @Tags Exercises
// @Accept json
// @Produce json
// @Param exercise body CreateExerciseRequest true "Exercise details"
// @Success 201 {object} ExerciseResponse "Exercise created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), req.Name, req.Description, req.MuscleGroup)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}

// ListExercises godoc
// @Summary List the exercise library
// @Tags Exercises
// @Produce json
// @Success 200 {array} ExerciseResponse "List of exercises"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	exercises, err := h.exerciseService.ListExercises(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// GetExerciseByID godoc
// @Summary Get one exercise
// @Tags Exercises
// @Produce json
// @Param id path string true "Exercise ID"
// @Success 200 {object} ExerciseResponse
// @Failure 400 {object} gin.H "Invalid ID format"
// @Failure 404 {object} gin.H "Exercise not found"
// @Router /exercises/{id} [get]
func (h *ExerciseHandler) GetExerciseByID(c *gin.Context) {
	exerciseID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	exercise, err := h.exerciseService.GetExerciseByID(c.Request.Context(), exerciseID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}
