package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/paxiitdevteam/retentionos/internal/pkg/response"
	"github.com/paxiitdevteam/retentionos/internal/service"
)

// PerformanceHandler serves the dashboard analytics listings.
type PerformanceHandler struct {
	performanceService *service.PerformanceService
}

func NewPerformanceHandler(performanceService *service.PerformanceService) *PerformanceHandler {
	return &PerformanceHandler{
		performanceService: performanceService,
	}
}

// ListOffers returns the per-(offer type, segment) aggregates.
// GET /api/v1/performance/offers
func (h *PerformanceHandler) ListOffers(c *gin.Context) {
	views, err := h.performanceService.ListOffers()
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, views)
}

// ListMessages returns the per-template aggregates.
// GET /api/v1/performance/messages
func (h *PerformanceHandler) ListMessages(c *gin.Context) {
	views, err := h.performanceService.ListMessages()
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, views)
}
