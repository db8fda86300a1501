package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/paxiitdevteam/retentionos/internal/model/dto"
	"github.com/paxiitdevteam/retentionos/internal/pkg/response"
	"github.com/paxiitdevteam/retentionos/internal/service"
)

// RetentionHandler serves the widget-facing interception endpoints.
type RetentionHandler struct {
	retentionService *service.RetentionService
}

func NewRetentionHandler(retentionService *service.RetentionService) *RetentionHandler {
	return &RetentionHandler{
		retentionService: retentionService,
	}
}

// StartFlow intercepts a cancel attempt and returns the ordered offer steps.
// POST /api/v1/retention/start
func (h *RetentionHandler) StartFlow(c *gin.Context) {
	var req dto.StartFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.retentionService.StartFlow(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoActiveFlow):
			response.NoActiveFlowError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// RecordDecision records accept/decline for one offer.
// POST /api/v1/retention/decision
func (h *RetentionHandler) RecordDecision(c *gin.Context) {
	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.retentionService.RecordDecision(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOfferType):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrFlowNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}
