package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/paxiitdevteam/retentionos/internal/model"
	"github.com/paxiitdevteam/retentionos/internal/model/dto"
	"github.com/paxiitdevteam/retentionos/internal/pkg/response"
	"github.com/paxiitdevteam/retentionos/internal/service"
)

// OfferHandler exposes the ranking rules and the data-driven recommendation.
type OfferHandler struct {
	rankingService     *service.OfferRankingService
	performanceService *service.PerformanceService
	retentionService   *service.RetentionService
}

func NewOfferHandler(
	rankingService *service.OfferRankingService,
	performanceService *service.PerformanceService,
	retentionService *service.RetentionService,
) *OfferHandler {
	return &OfferHandler{
		rankingService:     rankingService,
		performanceService: performanceService,
		retentionService:   retentionService,
	}
}

// Rank orders candidate offer types for an explicit user context.
// POST /api/v1/offers/rank
func (h *OfferHandler) Rank(c *gin.Context) {
	var req dto.RankOffersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	candidates := make([]model.OfferType, 0, len(req.CandidateTypes))
	for _, candidate := range req.CandidateTypes {
		offerType := model.OfferType(candidate)
		if !offerType.Valid() {
			response.ParamError(c, "unknown offer type: "+candidate)
			return
		}
		candidates = append(candidates, offerType)
	}

	ranked := h.rankingService.Rank(candidates, service.OfferContext{
		MonthlyValueCents: model.Cents(req.MonthlyValue),
		Plan:              req.Plan,
		CancelAttempts:    req.CancelAttempts,
	})

	response.Success(c, ranked)
}

// Recommend returns the best offer for a user or a named segment. A user id
// takes precedence; without either, the all-segments rollup is consulted.
// GET /api/v1/offers/recommend?external_user_id=...&segment=...
func (h *OfferHandler) Recommend(c *gin.Context) {
	if externalID := c.Query("external_user_id"); externalID != "" {
		resp, err := h.retentionService.RecommendBestOffer(externalID)
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
		return
	}

	segment := model.Segment(c.Query("segment"))
	resp, err := h.performanceService.RecommendBestOffer(segment)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, resp)
}
