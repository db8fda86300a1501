package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/paxiitdevteam/retentionos/internal/model/dto"
	"github.com/paxiitdevteam/retentionos/internal/pkg/response"
	"github.com/paxiitdevteam/retentionos/internal/service"
)

// FlowHandler serves the dashboard flow management endpoints.
type FlowHandler struct {
	flowService *service.FlowService
}

func NewFlowHandler(flowService *service.FlowService) *FlowHandler {
	return &FlowHandler{
		flowService: flowService,
	}
}

func flowID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ParamError(c, "invalid flow id")
		return 0, false
	}
	return id, true
}

// Create stores a new (inactive) flow.
// POST /api/v1/flows
func (h *FlowHandler) Create(c *gin.Context) {
	var req dto.CreateFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	flow, err := h.flowService.Create(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOfferType), errors.Is(err, service.ErrInvalidInput):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, flow)
}

// List returns flows, best ranked first.
// GET /api/v1/flows?language=en&page=1&page_size=20
func (h *FlowHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	flows, total, err := h.flowService.List(c.Query("language"), page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, flows)
}

// Get returns one flow with its steps.
// GET /api/v1/flows/:id
func (h *FlowHandler) Get(c *gin.Context) {
	id, ok := flowID(c)
	if !ok {
		return
	}

	flow, err := h.flowService.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFlowNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, flow)
}

// Update applies partial changes to name, language or steps.
// PUT /api/v1/flows/:id
func (h *FlowHandler) Update(c *gin.Context) {
	id, ok := flowID(c)
	if !ok {
		return
	}

	var req dto.UpdateFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	flow, err := h.flowService.Update(id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFlowNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrInvalidOfferType), errors.Is(err, service.ErrInvalidInput):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, flow)
}

// Validate reports structural errors and warnings without changing anything.
// POST /api/v1/flows/:id/validate
func (h *FlowHandler) Validate(c *gin.Context) {
	id, ok := flowID(c)
	if !ok {
		return
	}

	result, err := h.flowService.ValidateByID(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFlowNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, result)
}

// Activate makes a flow eligible for selection. Validation failures refuse
// activation and return the detailed result.
// POST /api/v1/flows/:id/activate
func (h *FlowHandler) Activate(c *gin.Context) {
	id, ok := flowID(c)
	if !ok {
		return
	}

	flow, err := h.flowService.Activate(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFlowNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrFlowValidation):
			result, verr := h.flowService.ValidateByID(id)
			if verr != nil {
				response.ServerError(c, "")
				return
			}
			response.ValidationError(c, result)
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, flow)
}

// Deactivate hides a flow from selection.
// POST /api/v1/flows/:id/deactivate
func (h *FlowHandler) Deactivate(c *gin.Context) {
	id, ok := flowID(c)
	if !ok {
		return
	}

	flow, err := h.flowService.Deactivate(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFlowNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, flow)
}

// Recompute rebuilds a flow's ranking score from its recorded events.
// POST /api/v1/flows/:id/recompute
func (h *FlowHandler) Recompute(c *gin.Context) {
	id, ok := flowID(c)
	if !ok {
		return
	}

	flow, err := h.flowService.RecomputeRanking(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFlowNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, flow)
}
