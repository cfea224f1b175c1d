package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetUsers returns the user picker source, filtered by sex. Assignment is
// only offered on the female dispensers, so the default is sex=0.
func (h *Handler) GetUsers(c *gin.Context) {
	sex := 0
	if raw := c.Query("sex"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sex must be an integer"})
			return
		}
		sex = v
	}

	users, err := h.store.ListUsersBySex(c.Request.Context(), sex)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}
	c.JSON(http.StatusOK, users)
}
