package main

import (
	"flag"
	"log"
	"os"

	"github.com/paxiitdevteam/retentionos/config"
	"github.com/paxiitdevteam/retentionos/internal/database"
	"github.com/paxiitdevteam/retentionos/internal/model"
	"github.com/paxiitdevteam/retentionos/internal/repository"
)

var seedFlow = flag.Bool("flow", true, "Seed a default active retention flow when none exists")

// Seeds the default churn weights and, optionally, a ready-to-serve starter
// flow so a fresh install can intercept cancellations immediately.
func main() {
	flag.Parse()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	weightRepo := repository.NewAIWeightRepository(db)
	for name, value := range config.DefaultWeights {
		if _, exists, err := weightRepo.Get(name); err != nil {
			log.Fatalf("Failed to check weight %s: %v", name, err)
		} else if exists {
			log.Printf("Weight %s already present, skipping", name)
			continue
		}
		if err := weightRepo.Upsert(name, value); err != nil {
			log.Fatalf("Failed to seed weight %s: %v", name, err)
		}
		log.Printf("Seeded weight %s = %.2f", name, value)
	}

	if !*seedFlow {
		log.Println("Seed completed")
		return
	}

	flowRepo := repository.NewFlowRepository(db)
	if _, err := flowRepo.SelectActive(cfg.Retention.DefaultLanguage); err == nil {
		log.Println("An active flow already exists, skipping flow seed")
		log.Println("Seed completed")
		return
	}

	flow := &model.Flow{
		Name:         "Default Retention Flow",
		Language:     cfg.Retention.DefaultLanguage,
		RankingScore: 1,
		Steps: []model.FlowStep{
			{Position: 1, OfferType: model.OfferPause, Title: "Take a break instead",
				Message: "Pause your subscription for up to 3 months. Your data stays safe."},
			{Position: 2, OfferType: model.OfferDiscount, Title: "Stay for less",
				Message: "Keep everything you have for 20% off your next 3 months.",
				Config:  model.JSONMap{"percentage": 20.0}},
			{Position: 3, OfferType: model.OfferDowngrade, Title: "Switch to a smaller plan",
				Message: "Move to the starter plan and keep your account.",
				Config:  model.JSONMap{"target_plan": "starter"}},
			{Position: 4, OfferType: model.OfferSupport, Title: "Talk to us",
				Message: "Tell us what went wrong and our team will help."},
			{Position: 5, OfferType: model.OfferFeedback, Title: "Before you go",
				Message: "What made you decide to cancel?"},
		},
	}
	if err := flowRepo.Create(flow); err != nil {
		log.Fatalf("Failed to seed default flow: %v", err)
	}
	log.Printf("Seeded default flow %d with %d steps", flow.ID, len(flow.Steps))

	log.Println("Seed completed")
}
