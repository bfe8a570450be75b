package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	extractorEndpoint string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(extractorEndpoint string) *HealthHandler {
	return &HealthHandler{extractorEndpoint: extractorEndpoint}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "extractor": h.extractorEndpoint})
}
