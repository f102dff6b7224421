package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"example.com/backstage/services/supplychain/domain"
)

// RecordEventRequest is the ingestion payload. Unknown event types are
// accepted; metadata is an open key-value map with no schema enforced
// at this layer.
type RecordEventRequest struct {
	ID        string                 `json:"id"`
	ItemID    string                 `json:"item_id" binding:"required"`
	Type      string                 `json:"type" binding:"required"`
	Timestamp *time.Time             `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// recordEvent ingests a supply chain event
func (s *Server) recordEvent(c *gin.Context) {
	var req RecordEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event := domain.Event{
		ID:       req.ID,
		ItemID:   req.ItemID,
		Type:     req.Type,
		Metadata: req.Metadata,
	}
	if req.Timestamp != nil {
		event.Timestamp = *req.Timestamp
	}

	stored, err := s.handler.RecordEvent(c.Request.Context(), event)
	if err != nil {
		log.Error().Err(err).Str("item_id", req.ItemID).Msg("Failed to record event")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, stored)
}

// getRecentEvents returns the newest events across all items
func (s *Server) getRecentEvents(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return
	}

	events, err := s.handler.GetRecentEvents(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

// getEventStatistics returns aggregate counts over the event log
func (s *Server) getEventStatistics(c *gin.Context) {
	stats, err := s.handler.GetEventStatistics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}
