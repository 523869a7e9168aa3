package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/steptracker/steptracker-backend-go/internal/middleware"
	"github.com/steptracker/steptracker-backend-go/internal/models"
	"github.com/steptracker/steptracker-backend-go/internal/service"
	"github.com/steptracker/steptracker-backend-go/pkg/response"
)

// WalkHandler handles HTTP requests for stored walks
type WalkHandler struct {
	walkService *service.WalkService
}

// NewWalkHandler creates a new walk handler
func NewWalkHandler(walkService *service.WalkService) *WalkHandler {
	return &WalkHandler{walkService: walkService}
}

// Create handles POST /api/walks
func (h *WalkHandler) Create(c *gin.Context) {
	var req models.CreateWalkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid walk payload: "+err.Error())
		return
	}

	session, err := h.walkService.Create(middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, session)
}

// List handles GET /api/walks
func (h *WalkHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	sessions, total, err := h.walkService.List(middleware.UserID(c),
		page, pageSize, c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		respondError(c, err)
		return
	}
	if sessions == nil {
		sessions = []models.WalkSession{}
	}
	response.Success(c, gin.H{
		"walks":    sessions,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// Get handles GET /api/walks/:id
func (h *WalkHandler) Get(c *gin.Context) {
	session, err := h.walkService.Get(middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, session)
}

// Update handles PUT /api/walks/:id
func (h *WalkHandler) Update(c *gin.Context) {
	var req models.UpdateWalkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid update payload: "+err.Error())
		return
	}

	session, err := h.walkService.Update(middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, session)
}

// Delete handles DELETE /api/walks/:id
func (h *WalkHandler) Delete(c *gin.Context) {
	if err := h.walkService.Delete(middleware.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// Summary handles GET /api/walks/statistics/summary
func (h *WalkHandler) Summary(c *gin.Context) {
	summary, err := h.walkService.Summary(middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, summary)
}

// ExportGPX handles GET /api/walks/:id/gpx
func (h *WalkHandler) ExportGPX(c *gin.Context) {
	data, filename, err := h.walkService.ExportGPX(middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(200, "application/gpx+xml", data)
}
