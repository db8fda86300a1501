package service

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"gorm.io/gorm"

	"github.com/paxiitdevteam/retentionos/config"
	"github.com/paxiitdevteam/retentionos/internal/model"
	"github.com/paxiitdevteam/retentionos/internal/model/dto"
	"github.com/paxiitdevteam/retentionos/internal/repository"
)

// ChurnService computes the 0-100 churn risk score from four weighted
// behavioral factors. The computed score is written back onto the user
// asynchronously and best-effort; the caller always gets the score.
type ChurnService struct {
	userRepo   *repository.UserRepository
	subRepo    *repository.SubscriptionRepository
	eventRepo  *repository.OfferEventRepository
	weightRepo *repository.AIWeightRepository
	cfg        *config.Config
}

func NewChurnService(
	userRepo *repository.UserRepository,
	subRepo *repository.SubscriptionRepository,
	eventRepo *repository.OfferEventRepository,
	weightRepo *repository.AIWeightRepository,
	cfg *config.Config,
) *ChurnService {
	return &ChurnService{
		userRepo:   userRepo,
		subRepo:    subRepo,
		eventRepo:  eventRepo,
		weightRepo: weightRepo,
		cfg:        cfg,
	}
}

// Score computes the churn risk for a user identified by the host SaaS id.
func (s *ChurnService) Score(externalUserID string) (*dto.ChurnScoreResponse, error) {
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

	history, err := s.eventRepo.RecentByUser(user.ID, 10)
	if err != nil {
		return nil, err
	}

	weights := s.weights()
	factors := computeFactors(sub, history)

	weighted := float64(factors.Behavior)*weights[model.WeightBehavior] +
		float64(factors.Value)*weights[model.WeightValue] +
		float64(factors.History)*weights[model.WeightHistory] +
		float64(factors.CancelAttempts)*weights[model.WeightCancelAttempts]

	score := clampScore(int(math.Round(weighted)))

	// Best-effort write-back; the response does not wait for it.
	go func(userID int64, score int) {
		if err := s.userRepo.UpdateChurnScore(userID, score); err != nil {
			log.Printf("Churn score write-back failed for user %d: %v", userID, err)
		}
	}(user.ID, score)

	return &dto.ChurnScoreResponse{
		Score:       score,
		Factors:     factors,
		Explanation: buildExplanation(sub, history),
	}, nil
}

// weights merges stored coefficients over config fallbacks over hard
// defaults. Stored values are used as-is even when they do not sum to 1.0;
// the final score clamp absorbs that.
func (s *ChurnService) weights() map[string]float64 {
	weights := make(map[string]float64, len(config.DefaultWeights))
	for name, value := range config.DefaultWeights {
		weights[name] = value
	}
	if s.cfg != nil {
		for name, value := range s.cfg.Retention.Weights {
			weights[name] = value
		}
	}

	stored, err := s.weightRepo.GetAll()
	if err != nil {
		log.Printf("Failed to load AI weights, using defaults: %v", err)
		return weights
	}
	for name, value := range stored {
		weights[name] = value
	}
	return weights
}

func computeFactors(sub *model.Subscription, history []model.OfferEvent) dto.ChurnFactors {
	attempts := 0
	if sub != nil {
		attempts = sub.CancelAttempts
	}

	behavior := attempts * 20
	if behavior > 100 {
		behavior = 100
	}

	// Lower value implies higher assumed risk.
	value := 70
	if sub != nil && sub.ValueCents != nil {
		switch {
		case sub.Value() > 5000:
			value = 30
		case sub.Value() > 2000:
			value = 50
		}
	}

	historyScore := 30 // new-user default
	if len(history) > 0 {
		accepted := 0
		for _, event := range history {
			if event.Accepted {
				accepted++
			}
		}
		rate := float64(accepted) / float64(len(history)) * 100
		historyScore = int(math.Round(100 - rate))
	}

	cancelFactor := attempts * 25
	if cancelFactor > 100 {
		cancelFactor = 100
	}

	return dto.ChurnFactors{
		Behavior:       behavior,
		Value:          value,
		History:        historyScore,
		CancelAttempts: cancelFactor,
	}
}

func buildExplanation(sub *model.Subscription, history []model.OfferEvent) string {
	var parts []string

	if sub != nil && sub.CancelAttempts > 0 {
		parts = append(parts, fmt.Sprintf("%d cancel attempt(s)", sub.CancelAttempts))
	}
	if sub != nil && sub.ValueCents != nil {
		parts = append(parts, fmt.Sprintf("subscription value %.2f", model.Amount(sub.Value())))
	}
	if len(history) > 0 {
		accepted := 0
		for _, event := range history {
			if event.Accepted {
				accepted++
			}
		}
		parts = append(parts, fmt.Sprintf("accepted %d of %d recent offers", accepted, len(history)))
	} else {
		parts = append(parts, "new user with no history")
	}

	return strings.Join(parts, ", ")
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
