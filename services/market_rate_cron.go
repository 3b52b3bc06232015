package services

import (
	"log"
	"os"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

func refreshMarketRates(db *gorm.DB, logger *log.Logger) {
	parser := NewMarketRateParser()

	db.Exec("TRUNCATE market_rates RESTART IDENTITY")

	total := 0
	for _, url := range marketRateURLs {
		rates, err := parser.ParseURL(url)
		if err != nil {
			logger.Printf("market rate parse %s failed: %v", url, err)
			continue
		}
		for _, r := range rates {
			if err := db.Create(r).Error; err != nil {
				logger.Printf("market rate save failed: %v", err)
				continue
			}
			total++
		}
	}
	logger.Printf("market rates refreshed, %d offers stored", total)
}

// StartMarketRateCron refreshes the benchmark rates once at boot and then
// every day at 21:00.
func StartMarketRateCron(db *gorm.DB) {
	logFile, _ := os.OpenFile("logs/parser_errors.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	logger := log.New(logFile, "", log.LstdFlags)

	refreshMarketRates(db, logger)

	c := cron.New(cron.WithSeconds())
	c.AddFunc("0 0 21 * * *", func() {
		refreshMarketRates(db, logger)
	})
	c.Start()
	log.Printf("[MARKET RATE CRON] Scheduler started, daily refresh at 21:00")
}
