package api

import (
	"alcyxob/training-planner/internal/domain"
	"alcyxob/training-planner/internal/service"
	"alcyxob/training-planner/internal/storage"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// dateLayout is the format of calendar dates in requests.
const dateLayout = "2006-01-02"

// MesocycleHandler serves the mesocycle lifecycle and the progression endpoints.
type MesocycleHandler struct {
	mesocycleService   service.MesocycleService
	progressionService service.ProgressionService
}

// NewMesocycleHandler creates a new MesocycleHandler.
func NewMesocycleHandler(mesocycleService service.MesocycleService, progressionService service.ProgressionService) *MesocycleHandler {
	return &MesocycleHandler{
		mesocycleService:   mesocycleService,
		progressionService: progressionService,
	}
}

// CreateMesocycleRequest defines the expected JSON for creating a mesocycle.
type CreateMesocycleRequest struct {
	PlanID    string `json:"planId" binding:"required"`
	StartDate string `json:"startDate" binding:"required"` // YYYY-MM-DD
}

// ArchiveResponse carries a temporary download link.
type ArchiveResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CreateMesocycle godoc
// @Summary Create a pending mesocycle from a plan
// @Tags Mesocycles
// @Accept json
// @Produce json
// @Param mesocycle body CreateMesocycleRequest true "Plan and start date"
// @Success 201 {object} domain.Mesocycle
// @Failure 404 {object} gin.H "Plan not found"
// @Failure 422 {object} gin.H "Plan has no workout days"
// @Router /mesocycles [post]
func (h *MesocycleHandler) CreateMesocycle(c *gin.Context) {
	var req CreateMesocycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	planID, err := primitive.ObjectIDFromHex(req.PlanID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid planId format.")
		return
	}
	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "startDate must be formatted as YYYY-MM-DD.")
		return
	}

	mesocycle, err := h.mesocycleService.Create(c.Request.Context(), planID, startDate)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mesocycle)
}

// GetMesocycle godoc
// @Summary Get the detail view of a mesocycle
// @Tags Mesocycles
// @Produce json
// @Param id path string true "Mesocycle ID"
// @Success 200 {object} service.MesocycleDetail
// @Failure 404 {object} gin.H "Mesocycle not found"
// @Router /mesocycles/{id} [get]
func (h *MesocycleHandler) GetMesocycle(c *gin.Context) {
	h.detail(c, h.mesocycleService.GetByID)
}

// StartMesocycle godoc
// @Summary Generate the schedule and activate the mesocycle
// @Tags Mesocycles
// @Produce json
// @Param id path string true "Mesocycle ID"
// @Success 200 {object} service.MesocycleDetail
// @Failure 409 {object} gin.H "Not pending, or the athlete already has an active mesocycle"
// @Failure 500 {object} gin.H "Failed to start mesocycle"
// @Router /mesocycles/{id}/start [post]
func (h *MesocycleHandler) StartMesocycle(c *gin.Context) {
	h.detail(c, h.mesocycleService.Start)
}

// CompleteMesocycle godoc
// @Summary Complete an active mesocycle
// @Tags Mesocycles
// @Produce json
// @Param id path string true "Mesocycle ID"
// @Success 200 {object} service.MesocycleDetail
// @Failure 409 {object} gin.H "Mesocycle is not active"
// @Router /mesocycles/{id}/complete [post]
func (h *MesocycleHandler) CompleteMesocycle(c *gin.Context) {
	h.detail(c, h.mesocycleService.Complete)
}

// CancelMesocycle godoc
// @Summary Cancel an active mesocycle
// @Tags Mesocycles
// @Produce json
// @Param id path string true "Mesocycle ID"
// @Success 200 {object} service.MesocycleDetail
// @Failure 409 {object} gin.H "Mesocycle is not active"
// @Router /mesocycles/{id}/cancel [post]
func (h *MesocycleHandler) CancelMesocycle(c *gin.Context) {
	h.detail(c, h.mesocycleService.Cancel)
}

func (h *MesocycleHandler) detail(c *gin.Context, fn func(context.Context, primitive.ObjectID) (*service.MesocycleDetail, error)) {
	mesocycleID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	detail, err := fn(c.Request.Context(), mesocycleID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// GetArchive godoc
// @Summary Get a download link for the archived snapshot of a finished mesocycle
// @Tags Mesocycles
// @Produce json
// @Param id path string true "Mesocycle ID"
// @Success 200 {object} ArchiveResponse
// @Failure 404 {object} gin.H "No archive for this mesocycle"
// @Router /mesocycles/{id}/archive [get]
func (h *MesocycleHandler) GetArchive(c *gin.Context) {
	mesocycleID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	url, err := h.mesocycleService.ArchiveURL(c.Request.Context(), mesocycleID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ArchiveResponse{URL: url, ExpiresAt: time.Now().UTC().Add(storage.DefaultPresignedURLExpiry)})
}

// ListAthleteMesocycles godoc
// @Summary List an athlete's mesocycles, newest first
// @Tags Mesocycles
// @Produce json
// @Param athleteId path string true "Athlete ID"
// @Success 200 {array} domain.Mesocycle
// @Router /athletes/{athleteId}/mesocycles [get]
func (h *MesocycleHandler) ListAthleteMesocycles(c *gin.Context) {
	athleteID, ok := objectIDParam(c, "athleteId")
	if !ok {
		return
	}
	mesocycles, err := h.mesocycleService.ListByAthlete(c.Request.Context(), athleteID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	if mesocycles == nil {
		mesocycles = []domain.Mesocycle{}
	}
	c.JSON(http.StatusOK, mesocycles)
}

// GetActiveMesocycle godoc
// @Summary Get the athlete's active mesocycle
// @Tags Mesocycles
// @Produce json
// @Param athleteId path string true "Athlete ID"
// @Success 200 {object} service.MesocycleDetail
// @Failure 404 {object} gin.H "No active mesocycle"
// @Router /athletes/{athleteId}/mesocycles/active [get]
func (h *MesocycleHandler) GetActiveMesocycle(c *gin.Context) {
	athleteID, ok := objectIDParam(c, "athleteId")
	if !ok {
		return
	}
	detail, err := h.mesocycleService.GetActive(c.Request.Context(), athleteID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// PreviewNextWeek godoc
// @Summary Preview the adaptive targets of the coming week
// @Tags Progression
// @Produce json
// @Param id path string true "Mesocycle ID"
// @Success 200 {object} service.WeekPreview
// @Failure 409 {object} gin.H "Mesocycle is not active or is in its last week"
// @Router /mesocycles/{id}/progression/next [get]
func (h *MesocycleHandler) PreviewNextWeek(c *gin.Context) {
	h.progression(c, h.progressionService.PreviewNextWeek)
}

// AdvanceWeek godoc
// @Summary Apply the adaptive targets and move to the next week
// @Tags Progression
// @Produce json
// @Param id path string true "Mesocycle ID"
// @Success 200 {object} service.WeekPreview
// @Failure 409 {object} gin.H "Mesocycle is not active or is in its last week"
// @Router /mesocycles/{id}/progression/advance [post]
func (h *MesocycleHandler) AdvanceWeek(c *gin.Context) {
	h.progression(c, h.progressionService.AdvanceWeek)
}

func (h *MesocycleHandler) progression(c *gin.Context, fn func(context.Context, primitive.ObjectID) (*service.WeekPreview, error)) {
	mesocycleID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	preview, err := fn(c.Request.Context(), mesocycleID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}
