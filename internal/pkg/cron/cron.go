package cron

import (
	"log"
	"time"

	"github.com/paxiitdevteam/retentionos/internal/repository"
	"github.com/paxiitdevteam/retentionos/internal/service"
)

// Service runs the nightly ranking sweep: every flow with recorded offer
// events gets its score rebuilt from scratch, catching drift from missed or
// failed incremental recomputes.
type Service struct {
	flowService *service.FlowService
	flowRepo    *repository.FlowRepository
	stopChan    chan struct{}
}

func NewService(flowService *service.FlowService, flowRepo *repository.FlowRepository) *Service {
	return &Service{
		flowService: flowService,
		flowRepo:    flowRepo,
		stopChan:    make(chan struct{}),
	}
}

func (s *Service) Start() {
	go s.runNightlySweep()
	log.Println("Cron service started (nightly ranking sweep)")
}

func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

func (s *Service) runNightlySweep() {
	now := time.Now().UTC()
	nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	timer := time.NewTimer(nextMidnight.Sub(now))

	for {
		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			s.sweep()
			timer.Reset(24 * time.Hour)
		}
	}
}

func (s *Service) sweep() {
	log.Println("Starting ranking sweep...")

	ids, err := s.flowRepo.ListIDsWithEvents()
	if err != nil {
		log.Printf("Ranking sweep: failed to list flows: %v", err)
		return
	}

	recomputed := 0
	for _, id := range ids {
		if _, err := s.flowService.RecomputeRanking(id); err != nil {
			log.Printf("Ranking sweep: failed to recompute flow %d: %v", id, err)
			continue
		}
		recomputed++
	}

	log.Printf("Ranking sweep completed: %d/%d flows recomputed", recomputed, len(ids))
}

// RunNow triggers a sweep immediately, for manual operation and tests.
func (s *Service) RunNow() error {
	ids, err := s.flowRepo.ListIDsWithEvents()
	if err != nil {
		return err
	}

	for _, id := range ids {
		if _, err := s.flowService.RecomputeRanking(id); err != nil {
			return err
		}
	}
	return nil
}
