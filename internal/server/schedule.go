package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListPaymentSchedule(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	entries, err := s.scheduleSvc.ListPaymentSchedule(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}

func (s *Server) ListRecurringSchedule(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	entries, err := s.scheduleSvc.ListRecurringSchedule(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}
