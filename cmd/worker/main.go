package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paxiitdevteam/retentionos/config"
	"github.com/paxiitdevteam/retentionos/internal/database"
	"github.com/paxiitdevteam/retentionos/internal/pkg/cron"
	"github.com/paxiitdevteam/retentionos/internal/pkg/pubsub"
	"github.com/paxiitdevteam/retentionos/internal/pkg/queue"
	"github.com/paxiitdevteam/retentionos/internal/repository"
	"github.com/paxiitdevteam/retentionos/internal/service"
	"github.com/paxiitdevteam/retentionos/internal/worker"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	feedbackQueue := queue.NewQueue(rdb, cfg.Queue.FeedbackQueue)
	publisher := pubsub.NewPublisher(rdb)

	flowRepo := repository.NewFlowRepository(db)
	eventRepo := repository.NewOfferEventRepository(db)
	perfRepo := repository.NewPerformanceRepository(db)

	flowService := service.NewFlowService(flowRepo, eventRepo, cfg)
	performanceService := service.NewPerformanceService(perfRepo, cfg)

	processor := worker.NewProcessor(performanceService, flowService, publisher, cfg)

	cronService := cron.NewService(flowService, flowRepo)
	cronService.Start()
	defer cronService.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Received shutdown signal")
		cancel()
	}()

	log.Printf("Worker started, max workers: %d", cfg.Queue.MaxWorkers)

	for i := 0; i < cfg.Queue.MaxWorkers; i++ {
		go func(workerID int) {
			for {
				select {
				case <-ctx.Done():
					log.Printf("Worker %d shutting down", workerID)
					return
				default:
					msg, err := feedbackQueue.Pop(ctx, 5*time.Second)
					if err != nil {
						if ctx.Err() != nil {
							return
						}
						log.Printf("Worker %d: failed to pop job: %v", workerID, err)
						continue
					}

					if msg == nil {
						continue // timeout, keep waiting
					}

					log.Printf("Worker %d: processing feedback for event %d", workerID, msg.EventID)
					if err := processor.Process(ctx, msg); err != nil {
						log.Printf("Worker %d: feedback for event %d failed: %v", workerID, msg.EventID, err)
					}
				}
			}
		}(i)
	}

	<-ctx.Done()
	log.Println("Worker shutdown complete")
}
