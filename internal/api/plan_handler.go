package api

import (
	"alcyxob/training-planner/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanHandler serves plan templates.
type PlanHandler struct {
	planService service.PlanService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// --- DTOs ---

// CreatePlanRequest defines the expected JSON for creating a plan.
type CreatePlanRequest struct {
	AthleteID   string `json:"athleteId" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// AddPlanDayRequest defines the expected JSON for adding a day.
type AddPlanDayRequest struct {
	DayOfWeek *int   `json:"dayOfWeek" binding:"required,min=0,max=6"` // 0 = Sunday
	Name      string `json:"name"`
}

// AddPlanExerciseRequest prescribes an exercise on a day.
type AddPlanExerciseRequest struct {
	ExerciseID      string  `json:"exerciseId" binding:"required"`
	BaseSets        int     `json:"baseSets" binding:"required,min=1"`
	BaseReps        int     `json:"baseReps" binding:"required,min=1"`
	BaseWeight      float64 `json:"baseWeight" binding:"min=0"`
	MinReps         int     `json:"minReps" binding:"required,min=1"`
	MaxReps         int     `json:"maxReps" binding:"required,min=1"`
	WeightIncrement float64 `json:"weightIncrement" binding:"min=0"`
}

// CreatePlan godoc
// @Summary Create a training plan
// @Tags Plans
// @Accept json
// @Produce json
// @Param plan body CreatePlanRequest true "Plan details"
// @Success 201 {object} domain.TrainingPlan
// @Failure 400 {object} gin.H "Invalid input"
// @Router /plans [post]
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	athleteID, err := primitive.ObjectIDFromHex(req.AthleteID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid athleteId format.")
		return
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), athleteID, req.Name, req.Description)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// GetPlan godoc
// @Summary Get a plan with its days and exercises
// @Tags Plans
// @Produce json
// @Param planId path string true "Plan ID"
// @Success 200 {object} service.PlanDetail
// @Failure 404 {object} gin.H "Plan not found"
// @Router /plans/{planId} [get]
func (h *PlanHandler) GetPlan(c *gin.Context) {
	planID, ok := objectIDParam(c, "planId")
	if !ok {
		return
	}
	plan, err := h.planService.GetPlan(c.Request.Context(), planID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// AddDay godoc
// @Summary Add a training day to a plan
// @Tags Plans
// @Accept json
// @Produce json
// @Param planId path string true "Plan ID"
// @Param day body AddPlanDayRequest true "Day details"
// @Success 201 {object} domain.PlanDay
// @Failure 404 {object} gin.H "Plan not found"
// @Router /plans/{planId}/days [post]
func (h *PlanHandler) AddDay(c *gin.Context) {
	planID, ok := objectIDParam(c, "planId")
	if !ok {
		return
	}
	var req AddPlanDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	day, err := h.planService.AddDay(c.Request.Context(), planID, *req.DayOfWeek, req.Name)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, day)
}

// AddExercise godoc
// @Summary Prescribe an exercise on a plan day
// @Tags Plans
// @Accept json
// @Produce json
// @Param planId path string true "Plan ID"
// @Param dayId path string true "Plan day ID"
// @Param exercise body AddPlanExerciseRequest true "Prescription"
// @Success 201 {object} domain.PlanDayExercise
// @Failure 400 {object} gin.H "Invalid rep range or loading"
// @Failure 404 {object} gin.H "Plan day or exercise not found"
// @Router /plans/{planId}/days/{dayId}/exercises [post]
func (h *PlanHandler) AddExercise(c *gin.Context) {
	planID, ok := objectIDParam(c, "planId")
	if !ok {
		return
	}
	dayID, ok := objectIDParam(c, "dayId")
	if !ok {
		return
	}
	var req AddPlanExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	exerciseID, err := primitive.ObjectIDFromHex(req.ExerciseID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exerciseId format.")
		return
	}

	pde, err := h.planService.AddExercise(c.Request.Context(), planID, dayID, service.PlanExerciseInput{
		ExerciseID:      exerciseID,
		BaseSets:        req.BaseSets,
		BaseReps:        req.BaseReps,
		BaseWeight:      req.BaseWeight,
		MinReps:         req.MinReps,
		MaxReps:         req.MaxReps,
		WeightIncrement: req.WeightIncrement,
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pde)
}
