package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetCabinets lists all changing cupboards with their display labels.
func (h *Handler) GetCabinets(c *gin.Context) {
	refs, err := h.store.ListCupboards(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve cabinets"})
		return
	}
	c.JSON(http.StatusOK, refs)
}
