package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/steptracker/steptracker-backend-go/internal/middleware"
	"github.com/steptracker/steptracker-backend-go/internal/models"
	"github.com/steptracker/steptracker-backend-go/internal/service"
	"github.com/steptracker/steptracker-backend-go/pkg/response"
)

// StepHandler handles HTTP requests for daily step data
type StepHandler struct {
	stepService *service.StepService
}

// NewStepHandler creates a new step handler
func NewStepHandler(stepService *service.StepService) *StepHandler {
	return &StepHandler{stepService: stepService}
}

// GetDaily handles GET /api/steps/daily
func (h *StepHandler) GetDaily(c *gin.Context) {
	record, err := h.stepService.GetDaily(middleware.UserID(c), c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, record)
}

// GetRange handles GET /api/steps/range
func (h *StepHandler) GetRange(c *gin.Context) {
	startDate := c.Query("startDate")
	endDate := c.Query("endDate")
	if startDate == "" || endDate == "" {
		response.BadRequest(c, "startDate and endDate are required")
		return
	}

	records, err := h.stepService.GetRange(middleware.UserID(c), startDate, endDate)
	if err != nil {
		respondError(c, err)
		return
	}
	if records == nil {
		records = []models.StepData{}
	}
	response.Success(c, records)
}

// Sync handles POST /api/steps/sync
func (h *StepHandler) Sync(c *gin.Context) {
	var req models.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid sync payload: "+err.Error())
		return
	}

	results, err := h.stepService.Sync(middleware.UserID(c), req.Steps)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"synced": len(results), "results": results})
}

// GetStatistics handles GET /api/steps/statistics
func (h *StepHandler) GetStatistics(c *gin.Context) {
	period := c.DefaultQuery("period", "week")

	stats, err := h.stepService.Statistics(middleware.UserID(c), period, c.Query("startDate"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, stats)
}

// GetTrends handles GET /api/steps/trends
func (h *StepHandler) GetTrends(c *gin.Context) {
	daysStr := c.DefaultQuery("days", "30")
	days, err := strconv.Atoi(daysStr)
	if err != nil {
		response.BadRequest(c, "Invalid days parameter")
		return
	}

	trends, err := h.stepService.Trends(middleware.UserID(c), days)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, trends)
}
