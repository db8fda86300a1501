package main

import (
	"context"
	"fmt"
	"log"

	"github.com/paxiitdevteam/retentionos/config"
	"github.com/paxiitdevteam/retentionos/internal/api"
	"github.com/paxiitdevteam/retentionos/internal/api/handler"
	"github.com/paxiitdevteam/retentionos/internal/database"
	"github.com/paxiitdevteam/retentionos/internal/pkg/pubsub"
	"github.com/paxiitdevteam/retentionos/internal/pkg/queue"
	"github.com/paxiitdevteam/retentionos/internal/pkg/ws"
	"github.com/paxiitdevteam/retentionos/internal/repository"
	"github.com/paxiitdevteam/retentionos/internal/service"
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

	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Relay worker-published decisions to connected dashboards.
	subscriber := pubsub.NewSubscriber(rdb)
	go func() {
		err := subscriber.Subscribe(context.Background(), func(msg *pubsub.DecisionMessage) {
			if err := wsHub.Broadcast(&ws.Message{Type: msg.Type, Data: msg}); err != nil {
				log.Printf("Failed to broadcast decision: %v", err)
			}
		})
		if err != nil {
			log.Printf("Decision feed subscription ended: %v", err)
		}
	}()

	userRepo := repository.NewUserRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	flowRepo := repository.NewFlowRepository(db)
	eventRepo := repository.NewOfferEventRepository(db)
	reasonRepo := repository.NewChurnReasonRepository(db)
	perfRepo := repository.NewPerformanceRepository(db)
	weightRepo := repository.NewAIWeightRepository(db)

	authService := service.NewAuthService(cfg)
	segmentService := service.NewSegmentService()
	rankingService := service.NewOfferRankingService()
	flowService := service.NewFlowService(flowRepo, eventRepo, cfg)
	performanceService := service.NewPerformanceService(perfRepo, cfg)
	churnService := service.NewChurnService(userRepo, subRepo, eventRepo, weightRepo, cfg)
	retentionService := service.NewRetentionService(
		userRepo, subRepo, flowRepo, eventRepo, reasonRepo,
		segmentService, rankingService, flowService, performanceService,
		feedbackQueue, cfg,
	)

	authHandler := handler.NewAuthHandler(authService)
	retentionHandler := handler.NewRetentionHandler(retentionService)
	churnHandler := handler.NewChurnHandler(churnService)
	offerHandler := handler.NewOfferHandler(rankingService, performanceService, retentionService)
	flowHandler := handler.NewFlowHandler(flowService)
	performanceHandler := handler.NewPerformanceHandler(performanceService)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret)

	router := api.NewRouter(
		authHandler,
		retentionHandler,
		churnHandler,
		offerHandler,
		flowHandler,
		performanceHandler,
		websocketHandler,
		cfg,
	)
	engine := router.Setup()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
