package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetPoller reports the refresh loop state.
func (h *Handler) GetPoller(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Status())
}

type putPollerRequest struct {
	Enabled         *bool `json:"enabled"`
	IntervalSeconds *int  `json:"intervalSeconds"`
}

// PutPoller adjusts the refresh loop at runtime. The interval is clamped to
// the allowed range; the response carries the applied values.
func (h *Handler) PutPoller(c *gin.Context) {
	var req putPollerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.IntervalSeconds != nil {
		h.session.SetInterval(*req.IntervalSeconds)
	}
	if req.Enabled != nil {
		h.session.SetEnabled(*req.Enabled)
	}

	c.JSON(http.StatusOK, h.session.Status())
}
