package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/steptracker/steptracker-backend-go/internal/models"
	"github.com/steptracker/steptracker-backend-go/internal/walk"
	"github.com/steptracker/steptracker-backend-go/pkg/response"
)

// respondError maps service errors onto the HTTP surface. Validation
// failures are 400, missing resources 404 and illegal session
// transitions 409; everything else is an internal error.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		response.BadRequest(c, err.Error())
	case errors.Is(err, models.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, walk.ErrInvalidState):
		response.Conflict(c, err.Error())
	default:
		response.InternalError(c, err.Error())
	}
}
