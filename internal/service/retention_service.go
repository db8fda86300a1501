package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/paxiitdevteam/retentionos/config"
	"github.com/paxiitdevteam/retentionos/internal/model"
	"github.com/paxiitdevteam/retentionos/internal/model/dto"
	"github.com/paxiitdevteam/retentionos/internal/pkg/queue"
	"github.com/paxiitdevteam/retentionos/internal/repository"
)

// Priority assigned to steps whose type the ranking did not emit; they keep
// their authored relative order after every ranked step.
const unrankedPriority = 100

// RetentionService is the orchestrator: it sequences segmentation, flow
// selection and offer ranking into StartFlow, and folds user decisions back
// into the ranking signals via RecordDecision.
type RetentionService struct {
	userRepo    *repository.UserRepository
	subRepo     *repository.SubscriptionRepository
	flowRepo    *repository.FlowRepository
	eventRepo   *repository.OfferEventRepository
	reasonRepo  *repository.ChurnReasonRepository
	segments    *SegmentService
	ranking     *OfferRankingService
	flows       *FlowService
	performance *PerformanceService
	feedback    *queue.Queue // nil means apply feedback in-process
	cfg         *config.Config
}

func NewRetentionService(
	userRepo *repository.UserRepository,
	subRepo *repository.SubscriptionRepository,
	flowRepo *repository.FlowRepository,
	eventRepo *repository.OfferEventRepository,
	reasonRepo *repository.ChurnReasonRepository,
	segments *SegmentService,
	ranking *OfferRankingService,
	flows *FlowService,
	performance *PerformanceService,
	feedback *queue.Queue,
	cfg *config.Config,
) *RetentionService {
	return &RetentionService{
		userRepo:    userRepo,
		subRepo:     subRepo,
		flowRepo:    flowRepo,
		eventRepo:   eventRepo,
		reasonRepo:  reasonRepo,
		segments:    segments,
		ranking:     ranking,
		flows:       flows,
		performance: performance,
		feedback:    feedback,
		cfg:         cfg,
	}
}

// StartFlow intercepts a cancellation: upserts user and subscription, bumps
// the cancel-attempt counter, picks the best flow for the language and
// returns its steps reordered for this user.
func (s *RetentionService) StartFlow(req *dto.StartFlowRequest) (*dto.StartFlowResponse, error) {
	language := req.Language
	if language == "" {
		language = s.cfg.Retention.DefaultLanguage
	}

	user, err := s.upsertUser(req, language)
	if err != nil {
		return nil, err
	}

	sub, err := s.upsertSubscription(user, req)
	if err != nil {
		return nil, err
	}

	if err := s.subRepo.IncrementCancelAttempts(sub.ID); err != nil {
		return nil, err
	}
	sub, err = s.subRepo.GetByID(sub.ID)
	if err != nil {
		return nil, err
	}

	segment := s.segments.Segment(user, sub)

	flow, err := s.flows.SelectActive(language)
	if err != nil {
		return nil, err
	}

	steps := s.orderSteps(flow, sub, user)

	// The synthetic cancel_attempt event is analytics bookkeeping; its
	// failure must not block the offer sequence.
	if err := s.eventRepo.Create(&model.OfferEvent{
		UserID:    user.ID,
		FlowID:    flow.ID,
		OfferType: model.EventCancelAttempt,
	}); err != nil {
		log.Printf("Failed to log cancel attempt for user %d: %v", user.ID, err)
	}

	return &dto.StartFlowResponse{
		FlowID:         flow.ID,
		Language:       flow.Language,
		Segment:        segment.String(),
		CancelAttempts: sub.CancelAttempts,
		Steps:          steps,
	}, nil
}

// RecordDecision persists the user's reaction to one offer, applies the
// subscription effect on acceptance, and dispatches the feedback update.
func (s *RetentionService) RecordDecision(req *dto.DecisionRequest) (*dto.DecisionResponse, error) {
	offerType := model.OfferType(req.OfferType)
	if !offerType.Valid() {
		return nil, ErrInvalidOfferType
	}

	flow, err := s.flows.Get(req.FlowID)
	if err != nil {
		return nil, err
	}

	user, err := s.resolveUser(req, flow)
	if err != nil {
		return nil, err
	}

	sub, err := s.subRepo.GetByUserID(user.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	accepted := req.Accepted != nil && *req.Accepted

	baseCents := sub.Value()
	if req.RevenueValue != nil {
		baseCents = model.Cents(*req.RevenueValue)
	}

	var savedCents int64
	if accepted {
		savedCents = int64(math.Round(float64(baseCents) * s.savePercent(offerType, flow)))
	}

	event := &model.OfferEvent{
		UserID:            user.ID,
		FlowID:            flow.ID,
		OfferType:         offerType.String(),
		Accepted:          accepted,
		RevenueSavedCents: savedCents,
	}
	if err := s.eventRepo.Create(event); err != nil {
		return nil, err
	}

	message := "Offer declined"
	subscriptionUpdated := false
	if accepted {
		message, subscriptionUpdated = s.applyOffer(offerType, flow, sub)
	} else if req.ReasonCode != "" {
		reason := &model.ChurnReason{
			UserID:     user.ID,
			FlowID:     &flow.ID,
			ReasonCode: req.ReasonCode,
			ReasonText: req.ReasonText,
		}
		if err := s.reasonRepo.Create(reason); err != nil {
			return nil, err
		}
	}

	s.dispatchFeedback(&queue.FeedbackMessage{
		EventID:           event.ID,
		UserID:            user.ID,
		FlowID:            flow.ID,
		OfferType:         offerType.String(),
		Segment:           s.segments.Segment(user, sub).String(),
		Accepted:          accepted,
		RevenueSavedCents: savedCents,
		StepMessage:       stepMessage(flow, offerType),
	})

	return &dto.DecisionResponse{
		Success:             true,
		Message:             message,
		RevenueSaved:        model.Amount(savedCents),
		SubscriptionUpdated: subscriptionUpdated,
	}, nil
}

// RecommendBestOffer resolves a user's segment and delegates to the
// performance table with its rule fallback.
func (s *RetentionService) RecommendBestOffer(externalUserID string) (*dto.RecommendationResponse, error) {
	user, err := s.userRepo.GetByExternalID(externalUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	sub, err := s.subRepo.GetByUserID(user.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return s.performance.RecommendBestOffer(s.segments.Segment(user, sub))
}

func (s *RetentionService) upsertUser(req *dto.StartFlowRequest, language string) (*model.User, error) {
	user, err := s.userRepo.GetByExternalID(req.ExternalUserID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		user = &model.User{
			ExternalID: req.ExternalUserID,
			Plan:       req.Plan,
			Region:     req.Region,
			Language:   language,
		}
		if req.Email != "" {
			user.Email = &req.Email
		}
		if err := s.userRepo.Create(user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Lost a create race; the row exists now.
				return s.userRepo.GetByExternalID(req.ExternalUserID)
			}
			return nil, err
		}
		return user, nil
	}

	fields := map[string]interface{}{}
	if req.Plan != "" && req.Plan != user.Plan {
		fields["plan"] = req.Plan
		user.Plan = req.Plan
	}
	if req.Region != "" && req.Region != user.Region {
		fields["region"] = req.Region
		user.Region = req.Region
	}
	if req.Email != "" && (user.Email == nil || *user.Email != req.Email) {
		fields["email"] = req.Email
		email := req.Email
		user.Email = &email
	}
	if req.Language != "" && req.Language != user.Language {
		fields["language"] = req.Language
		user.Language = req.Language
	}
	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(user.ID, fields); err != nil {
			return nil, err
		}
	}

	return user, nil
}

func (s *RetentionService) upsertSubscription(user *model.User, req *dto.StartFlowRequest) (*model.Subscription, error) {
	sub, err := s.subRepo.GetByUserID(user.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		sub = &model.Subscription{
			UserID:     user.ID,
			Status:     model.SubscriptionActive,
			BillingRef: req.BillingRef,
		}
		if req.Value != nil {
			cents := model.Cents(*req.Value)
			sub.ValueCents = &cents
		}
		if err := s.subRepo.Create(sub); err != nil {
			return nil, err
		}
		return sub, nil
	}

	fields := map[string]interface{}{}
	if req.Value != nil {
		cents := model.Cents(*req.Value)
		if sub.ValueCents == nil || *sub.ValueCents != cents {
			fields["value_cents"] = cents
			sub.ValueCents = &cents
		}
	}
	if req.BillingRef != "" && req.BillingRef != sub.BillingRef {
		fields["billing_ref"] = req.BillingRef
		sub.BillingRef = req.BillingRef
	}
	if len(fields) > 0 {
		if err := s.subRepo.UpdateFields(sub.ID, fields); err != nil {
			return nil, err
		}
	}

	return sub, nil
}

// orderSteps reorders a flow's steps by the computed offer ranking. Steps
// whose type has no ranking entry keep their authored relative order and go
// after every ranked step.
func (s *RetentionService) orderSteps(flow *model.Flow, sub *model.Subscription, user *model.User) []dto.StepView {
	candidates := make([]model.OfferType, 0, len(flow.Steps))
	seen := make(map[model.OfferType]bool, len(flow.Steps))
	for _, step := range flow.Steps {
		if step.OfferType.Valid() && !seen[step.OfferType] {
			seen[step.OfferType] = true
			candidates = append(candidates, step.OfferType)
		}
	}

	ranked := s.ranking.Rank(candidates, OfferContext{
		MonthlyValueCents: sub.Value(),
		Plan:              user.Plan,
		CancelAttempts:    sub.CancelAttempts,
	})

	priorities := make(map[string]dto.RankedOffer, len(ranked))
	for _, offer := range ranked {
		priorities[offer.Type] = offer
	}

	views := make([]dto.StepView, 0, len(flow.Steps))
	for _, step := range flow.Steps {
		view := dto.StepView{
			OfferType: step.OfferType.String(),
			Title:     step.Title,
			Message:   s.stepText(step),
			Config:    step.Config,
			Priority:  unrankedPriority,
		}
		if offer, ok := priorities[step.OfferType.String()]; ok {
			view.Priority = offer.Priority
			view.Reason = offer.Reason
		}
		views = append(views, view)
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Priority < views[j].Priority
	})

	return views
}

// stepText optionally swaps in the best-performing message template for the
// step's offer type.
func (s *RetentionService) stepText(step model.FlowStep) string {
	if !s.cfg.Retention.MessageOptimization {
		return step.Message
	}

	best, ok, err := s.performance.BestMessage(step.OfferType)
	if err != nil {
		log.Printf("Best message lookup failed for %s: %v", step.OfferType, err)
		return step.Message
	}
	if !ok {
		return step.Message
	}
	return best
}

// savePercent returns the fraction of the revenue base counted as saved for
// an accepted offer. Steps may override the default with a revenue_percent
// config value (0-100).
func (s *RetentionService) savePercent(offerType model.OfferType, flow *model.Flow) float64 {
	if step := findStep(flow, offerType); step != nil {
		if percent, ok := step.ConfigFloat("revenue_percent"); ok && percent > 0 && percent <= 100 {
			return percent / 100
		}
	}

	switch offerType {
	case model.OfferPause, model.OfferSupport:
		return 1.0
	case model.OfferDiscount:
		return s.cfg.Retention.DiscountSavePercent
	case model.OfferDowngrade:
		return s.cfg.Retention.DowngradeSavePercent
	case model.OfferFeedback:
		return 0
	}
	return 0
}

// applyOffer mutates the subscription for an accepted offer and returns the
// confirmation message shown to the user.
func (s *RetentionService) applyOffer(offerType model.OfferType, flow *model.Flow, sub *model.Subscription) (string, bool) {
	step := findStep(flow, offerType)

	switch offerType {
	case model.OfferPause:
		if sub == nil {
			return "Your subscription will be paused.", false
		}
		if err := s.subRepo.UpdateFields(sub.ID, map[string]interface{}{
			"status": model.SubscriptionPaused,
		}); err != nil {
			log.Printf("Failed to pause subscription %d: %v", sub.ID, err)
			return "Your subscription will be paused.", false
		}
		return "Your subscription has been paused. Come back any time.", true

	case model.OfferDiscount:
		percentage := s.cfg.Retention.DiscountSavePercent * 100
		if step != nil {
			if p, ok := step.ConfigFloat("percentage"); ok {
				percentage = p
			}
		}
		if sub == nil || sub.ValueCents == nil {
			return fmt.Sprintf("A %.0f%% discount has been applied to your subscription.", percentage), false
		}
		newValue := int64(math.Round(float64(*sub.ValueCents) * (1 - percentage/100)))
		if err := s.subRepo.UpdateFields(sub.ID, map[string]interface{}{
			"value_cents": newValue,
		}); err != nil {
			log.Printf("Failed to apply discount on subscription %d: %v", sub.ID, err)
			return fmt.Sprintf("A %.0f%% discount has been applied to your subscription.", percentage), false
		}
		return fmt.Sprintf("A %.0f%% discount has been applied to your subscription.", percentage), true

	case model.OfferDowngrade:
		targetPlan := ""
		if step != nil {
			targetPlan, _ = step.ConfigString("target_plan")
		}
		if sub == nil {
			return "Your plan has been switched.", false
		}
		fields := map[string]interface{}{}
		if sub.ValueCents != nil {
			fields["value_cents"] = int64(math.Round(float64(*sub.ValueCents) * (1 - s.cfg.Retention.DowngradeSavePercent)))
		}
		if err := s.subRepo.UpdateFields(sub.ID, fields); err != nil {
			log.Printf("Failed to downgrade subscription %d: %v", sub.ID, err)
		}
		if targetPlan != "" {
			if err := s.userRepo.UpdateFields(sub.UserID, map[string]interface{}{"plan": targetPlan}); err != nil {
				log.Printf("Failed to switch plan for user %d: %v", sub.UserID, err)
			}
			return fmt.Sprintf("Your plan has been switched to %s.", targetPlan), true
		}
		return "Your plan has been switched to a smaller one.", true

	case model.OfferSupport:
		return "Our support team will reach out to you shortly.", false

	case model.OfferFeedback:
		return "Thanks for sharing your feedback.", false
	}

	return "Offer accepted.", false
}

// dispatchFeedback hands the decision to the async pipeline. With a queue
// configured this is fire-and-forget through redis; without one (tests,
// single-binary deployments) the update runs inline but still never fails
// the caller.
func (s *RetentionService) dispatchFeedback(msg *queue.FeedbackMessage) {
	if s.feedback != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.feedback.Push(ctx, msg); err != nil {
			log.Printf("Failed to enqueue feedback for event %d: %v", msg.EventID, err)
		}
		return
	}

	s.ApplyFeedback(msg)
}

// ApplyFeedback runs the aggregate updates for one decision. Failures are
// logged, never propagated: the user-facing response is already committed.
func (s *RetentionService) ApplyFeedback(msg *queue.FeedbackMessage) {
	event := &model.OfferEvent{
		ID:                msg.EventID,
		UserID:            msg.UserID,
		FlowID:            msg.FlowID,
		OfferType:         msg.OfferType,
		Accepted:          msg.Accepted,
		RevenueSavedCents: msg.RevenueSavedCents,
	}

	if err := s.performance.RecordOutcome(event, model.Segment(msg.Segment), msg.StepMessage); err != nil {
		log.Printf("Failed to record outcome for event %d: %v", msg.EventID, err)
	}

	if _, err := s.flows.RecomputeRanking(msg.FlowID); err != nil {
		log.Printf("Failed to recompute ranking for flow %d: %v", msg.FlowID, err)
	}
}

func (s *RetentionService) resolveUser(req *dto.DecisionRequest, flow *model.Flow) (*model.User, error) {
	if req.ExternalUserID != "" {
		user, err := s.userRepo.GetByExternalID(req.ExternalUserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		return user, nil
	}

	// Best-effort fallback: the latest event on the flow (usually the
	// cancel_attempt marker from startFlow) names the acting user.
	event, err := s.eventRepo.LatestByFlow(flow.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user, err := s.userRepo.GetByID(event.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func findStep(flow *model.Flow, offerType model.OfferType) *model.FlowStep {
	for i := range flow.Steps {
		if flow.Steps[i].OfferType == offerType {
			return &flow.Steps[i]
		}
	}
	return nil
}

func stepMessage(flow *model.Flow, offerType model.OfferType) string {
	if step := findStep(flow, offerType); step != nil {
		return step.Message
	}
	return ""
}
