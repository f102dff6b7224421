package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// defaultAlertLimit bounds alert listings when no limit is given
const defaultAlertLimit = 100

// AcknowledgeAlertRequest carries the acknowledging user
type AcknowledgeAlertRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// listAlerts returns alerts newest first, optionally filtered by level
func (s *Server) listAlerts(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultAlertLimit)))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return
	}

	alerts, err := s.handler.ListAlerts(c.Request.Context(), c.Query("level"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// acknowledgeAlert moves a pending alert to acknowledged
func (s *Server) acknowledgeAlert(c *gin.Context) {
	var req AcknowledgeAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alert, err := s.handler.AcknowledgeAlert(c.Request.Context(), c.Param("id"), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, alert)
}

// resolveAlert moves a pending or acknowledged alert to resolved
func (s *Server) resolveAlert(c *gin.Context) {
	alert, err := s.handler.ResolveAlert(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, alert)
}

// getAlertStatistics returns aggregate counts over the alert store
func (s *Server) getAlertStatistics(c *gin.Context) {
	stats, err := s.handler.GetAlertStatistics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}
