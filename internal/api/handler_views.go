package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cabinet-status-backend/internal/session"
)

// GetViews lists the configured views and which one is active.
func (h *Handler) GetViews(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"views":  h.session.Views(),
		"active": h.session.Status().ActiveView,
	})
}

type putActiveViewRequest struct {
	ID string `json:"id" binding:"required"`
}

// PutActiveView switches the active view. The next refresh cycle starts
// immediately; a fetch still running for the old view is cancelled.
func (h *Handler) PutActiveView(c *gin.Context) {
	var req putActiveViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.session.SwitchView(req.ID); err != nil {
		if errors.Is(err, session.ErrUnknownView) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// GetTiles returns the active view's current tile snapshot.
func (h *Handler) GetTiles(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Snapshot())
}

// PostRefresh runs one refresh cycle immediately, even while the poller is
// paused, and returns the resulting snapshot.
func (h *Handler) PostRefresh(c *gin.Context) {
	h.session.RefreshOnce(c.Request.Context())
	c.JSON(http.StatusOK, h.session.Snapshot())
}
