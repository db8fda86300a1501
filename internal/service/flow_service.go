package service

import (
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"

	"github.com/paxiitdevteam/retentionos/config"
	"github.com/paxiitdevteam/retentionos/internal/model"
	"github.com/paxiitdevteam/retentionos/internal/model/dto"
	"github.com/paxiitdevteam/retentionos/internal/repository"
)

// Ranking blend: acceptance rate dominates, revenue keeps big savers ahead
// of flows that only retain cheap accounts.
const (
	acceptanceWeight = 0.6
	revenueWeight    = 0.4
)

const maxStepsWarning = 10

// FlowService owns flow lifecycle: creation, validation, activation and the
// performance-driven ranking score that gates selection.
type FlowService struct {
	flowRepo  *repository.FlowRepository
	eventRepo *repository.OfferEventRepository
	cfg       *config.Config
}

func NewFlowService(
	flowRepo *repository.FlowRepository,
	eventRepo *repository.OfferEventRepository,
	cfg *config.Config,
) *FlowService {
	return &FlowService{
		flowRepo:  flowRepo,
		eventRepo: eventRepo,
		cfg:       cfg,
	}
}

// Create stores a new flow. The flow starts with ranking score 0, invisible
// to selection until it is activated.
func (s *FlowService) Create(req *dto.CreateFlowRequest) (*model.Flow, error) {
	if len(req.Steps) == 0 {
		return nil, ErrInvalidInput
	}

	steps, err := buildSteps(req.Steps)
	if err != nil {
		return nil, err
	}

	language := req.Language
	if language == "" {
		language = s.cfg.Retention.DefaultLanguage
	}

	flow := &model.Flow{
		Name:     req.Name,
		Language: language,
		Steps:    steps,
	}

	if err := s.flowRepo.Create(flow); err != nil {
		return nil, err
	}

	return flow, nil
}

func (s *FlowService) Get(id int64) (*model.Flow, error) {
	flow, err := s.flowRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFlowNotFound
		}
		return nil, err
	}
	return flow, nil
}

func (s *FlowService) List(language string, page, pageSize int) ([]model.Flow, int64, error) {
	return s.flowRepo.List(language, page, pageSize)
}

// Update applies partial changes. Replacing steps re-validates the basics.
func (s *FlowService) Update(id int64, req *dto.UpdateFlowRequest) (*model.Flow, error) {
	flow, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Language != nil {
		fields["language"] = *req.Language
	}
	if len(fields) > 0 {
		if err := s.flowRepo.UpdateFields(flow.ID, fields); err != nil {
			return nil, err
		}
	}

	if req.Steps != nil {
		if len(req.Steps) == 0 {
			return nil, ErrInvalidInput
		}
		steps, err := buildSteps(req.Steps)
		if err != nil {
			return nil, err
		}
		if err := s.flowRepo.ReplaceSteps(flow.ID, steps); err != nil {
			return nil, err
		}
	}

	return s.Get(id)
}

// Validate checks a flow's structure. Errors block activation, warnings are
// advisory.
func (s *FlowService) Validate(flow *model.Flow) *dto.ValidationResult {
	result := &dto.ValidationResult{
		Errors:   []string{},
		Warnings: []string{},
	}

	if flow.Name == "" {
		result.Errors = append(result.Errors, "flow name is required")
	}
	if len(flow.Name) > 255 {
		result.Errors = append(result.Errors, "flow name must be at most 255 characters")
	}

	if len(flow.Steps) == 0 {
		result.Errors = append(result.Errors, "flow must have at least one step")
	}
	if len(flow.Steps) > maxStepsWarning {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("flow has %d steps, conversion drops sharply after %d", len(flow.Steps), maxStepsWarning))
	}

	for i, step := range flow.Steps {
		label := fmt.Sprintf("step %d", i+1)

		if !step.OfferType.Valid() {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: unknown offer type %q", label, step.OfferType))
			continue
		}
		if step.Title == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: title is required", label))
		}
		if step.Message == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: message is required", label))
		}

		switch step.OfferType {
		case model.OfferDiscount:
			percentage, ok := step.ConfigFloat("percentage")
			if !ok {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: discount requires a numeric percentage", label))
			} else if percentage <= 0 || percentage > 100 {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: discount percentage must be in (0, 100]", label))
			}
		case model.OfferDowngrade:
			if _, ok := step.ConfigString("target_plan"); !ok {
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: downgrade should specify a target plan", label))
			}
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// ValidateByID loads and validates.
func (s *FlowService) ValidateByID(id int64) (*dto.ValidationResult, error) {
	flow, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return s.Validate(flow), nil
}

// Activate re-validates and refuses on failure without touching the ranking
// score. A valid flow with score 0 gets the minimum eligible score of 1 so
// it can be selected before any live performance data exists.
func (s *FlowService) Activate(id int64) (*model.Flow, error) {
	flow, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if result := s.Validate(flow); !result.Valid {
		return nil, ErrFlowValidation
	}

	if flow.RankingScore == 0 {
		if err := s.flowRepo.UpdateScore(flow.ID, 1); err != nil {
			return nil, err
		}
		flow.RankingScore = 1
	}

	return flow, nil
}

// Deactivate unconditionally zeroes the ranking score, hiding the flow from
// selection.
func (s *FlowService) Deactivate(id int64) (*model.Flow, error) {
	flow, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if err := s.flowRepo.UpdateScore(flow.ID, 0); err != nil {
		return nil, err
	}
	flow.RankingScore = 0

	return flow, nil
}

// SelectActive picks the best eligible flow for a language.
func (s *FlowService) SelectActive(language string) (*model.Flow, error) {
	if language == "" {
		language = s.cfg.Retention.DefaultLanguage
	}

	flow, err := s.flowRepo.SelectActive(language)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveFlow
		}
		return nil, err
	}
	return flow, nil
}

// RecomputeRanking rebuilds a flow's score from its offer events. With no
// events the score is left untouched: a fresh flow stays at whatever
// activation gave it, and a deactivated flow stays at 0.
func (s *FlowService) RecomputeRanking(flowID int64) (*model.Flow, error) {
	flow, err := s.Get(flowID)
	if err != nil {
		return nil, err
	}

	events, err := s.eventRepo.ListByFlow(flowID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return flow, nil
	}

	accepted := 0
	var savedCents int64
	for _, event := range events {
		if event.Accepted {
			accepted++
			savedCents += event.RevenueSavedCents
		}
	}

	acceptanceRate := float64(accepted) / float64(len(events)) * 100
	revenueFactor := model.Amount(savedCents) / 10
	if revenueFactor > 100 {
		revenueFactor = 100
	}

	score := int(math.Round(acceptanceRate*acceptanceWeight + revenueFactor*revenueWeight))
	if err := s.flowRepo.UpdateScore(flow.ID, score); err != nil {
		return nil, err
	}
	flow.RankingScore = score

	return flow, nil
}

// buildSteps converts request steps, enforcing the closed offer type set and
// discount percentage bounds up front.
func buildSteps(reqSteps []dto.FlowStepRequest) ([]model.FlowStep, error) {
	steps := make([]model.FlowStep, 0, len(reqSteps))
	for i, rs := range reqSteps {
		offerType := model.OfferType(rs.OfferType)
		if !offerType.Valid() {
			return nil, ErrInvalidOfferType
		}

		step := model.FlowStep{
			Position:  i + 1,
			OfferType: offerType,
			Title:     rs.Title,
			Message:   rs.Message,
			Config:    model.JSONMap(rs.Config),
		}

		if offerType == model.OfferDiscount {
			percentage, ok := step.ConfigFloat("percentage")
			if ok && (percentage <= 0 || percentage > 100) {
				return nil, ErrInvalidInput
			}
		}

		steps = append(steps, step)
	}
	return steps, nil
}
