package main

import (
	"fmt"
	"log"

	"github.com/ferrara94/CashCard-Microservice/internal/auth"
	"github.com/ferrara94/CashCard-Microservice/internal/config"
	"github.com/ferrara94/CashCard-Microservice/internal/database"
	"github.com/ferrara94/CashCard-Microservice/internal/gateway"
	"github.com/ferrara94/CashCard-Microservice/internal/models"
	"github.com/ferrara94/CashCard-Microservice/internal/router"

	"gorm.io/gorm"
)

func main() {
	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	// fixed principal set, hashed once at startup
	credentials, err := auth.NewStore(cfg.Users, cfg.Security.BcryptCost)
	if err != nil {
		log.Fatalf("build credential store: %v", err)
	}

	if cfg.App.SeedDemoData {
		if err := seedDemoCards(db); err != nil {
			log.Fatalf("seed demo cards: %v", err)
		}
	}

	// optional user-service gateway
	var userService gateway.UserServiceClient
	if addr := cfg.Gateway.UserServiceAddr; addr != "" {
		userService, err = gateway.Dial(addr)
		if err != nil {
			log.Fatalf("dial user service: %v", err)
		}
		log.Printf("userservice gateway forwarding to %s", addr)
	}

	r := router.SetupRouter(cfg, db, credentials, userService)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	log.Printf("server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}

// seedDemoCards inserts the well-known demo rows on an empty table.
func seedDemoCards(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.CashCard{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	cards := []models.CashCard{
		{ID: 99, Amount: 123.45, Owner: "felix"},
		{ID: 100, Amount: 1.00, Owner: "felix"},
		{ID: 101, Amount: 150.00, Owner: "felix"},
		{ID: 102, Amount: 200.00, Owner: "kumar2"},
	}
	return db.Create(&cards).Error
}
