package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse reports service health.
type HealthResponse struct {
	Success   bool      `json:"success"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthHandler serves GET /api/health.
type HealthHandler struct {
	facade HealthFacade
	now    func() time.Time
}

// NewHealthHandler constructs HealthHandler.
func NewHealthHandler(facade HealthFacade) *HealthHandler {
	return &HealthHandler{facade: facade, now: time.Now}
}

// Check answers 503 when the database is unreachable.
func (h *HealthHandler) Check(c *gin.Context) {
	if err := h.facade.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Timestamp: h.now().UTC()})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Success: true, Status: "healthy", Timestamp: h.now().UTC()})
}
