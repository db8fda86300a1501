package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/paxiitdevteam/retentionos/internal/pkg/response"
	"github.com/paxiitdevteam/retentionos/internal/service"
)

type ChurnHandler struct {
	churnService *service.ChurnService
}

func NewChurnHandler(churnService *service.ChurnService) *ChurnHandler {
	return &ChurnHandler{
		churnService: churnService,
	}
}

// GetChurnRisk scores a user by their host SaaS identifier.
// GET /api/v1/retention/churn-risk/:external_id
func (h *ChurnHandler) GetChurnRisk(c *gin.Context) {
	externalID := c.Param("external_id")
	if externalID == "" {
		response.ParamError(c, "external_id is required")
		return
	}

	resp, err := h.churnService.Score(externalID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}
