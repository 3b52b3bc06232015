package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/namkjs/p2plending/config"
	"github.com/namkjs/p2plending/controllers"
	"github.com/namkjs/p2plending/database"
	"github.com/namkjs/p2plending/routes"
	"github.com/namkjs/p2plending/services"
	"github.com/namkjs/p2plending/utils"
)

func main() {
	// Platform timezone for all logs and cron schedules
	time.Local = utils.VietnamLocation()

	cfg := config.LoadConfig()
	if err := utils.InitLogger(); err != nil {
		log.Printf("file logging disabled: %v", err)
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	log.Println("Connected to PostgreSQL")

	utils.SetDB(db)

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}
	log.Println("Migration complete")

	if err := database.SeedDemoData(db); err != nil {
		log.Fatalf("failed to seed demo data: %v", err)
	}
	log.Println("Demo data seeded (if needed)")

	// Background schedulers: market rate scraping and the daily payment sweep
	go func() {
		services.StartMarketRateCron(db)
		services.StartPaymentCron(db)
	}()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	utils.SetRedis(rdb)
	log.Println("Connected to Redis")

	controllers.InitGoogleOAuth()

	r := routes.SetupRouter(cfg)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	log.Printf("Server is running on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
