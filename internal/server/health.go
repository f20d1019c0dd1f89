package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/airdraw"
	"github.com/kode4food/airdraw/pkg/api"
)

// Health statuses
const (
	HealthHealthy = "healthy"
	HealthPending = "pending"
)

func (s *Server) handleHealth(c *gin.Context) {
	snap := s.catalog.Snapshot()
	status := HealthHealthy
	if snap.ScannedAt.IsZero() {
		status = HealthPending
	}
	c.JSON(http.StatusOK, api.HealthResponse{
		ScannedAt: snap.ScannedAt,
		Service:   airdraw.Name,
		Version:   airdraw.Version,
		Status:    status,
	})
}
