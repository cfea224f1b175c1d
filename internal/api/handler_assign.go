package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cabinet-status-backend/internal/session"
)

type postAssignmentRequest struct {
	DeviceID string `json:"deviceId" binding:"required"`
	Address  int    `json:"address" binding:"required"`
	DoorNo   int    `json:"doorNo" binding:"required"`
	// UserID null/absent reverts the slot to cycling.
	UserID *string `json:"userId"`
}

// PostAssignment binds one dispenser slot to a user, or releases it when
// userId is omitted. Last writer wins; there is no optimistic locking.
func (h *Handler) PostAssignment(c *gin.Context) {
	var req postAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.session.Assign(c.Request.Context(), req.DeviceID, req.Address, req.DoorNo, req.UserID)
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, session.ErrSlotOutOfRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrNotAssignable):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
