package database

import (
	"github.com/namkjs/p2plending/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.KYCDocument{},
		&models.LoanRequest{},
		&models.LenderProfile{},
		&models.BorrowerRiskProfile{},
		&models.LenderMatchResult{},
		&models.LoanContract{},
		&models.PaymentSchedule{},
		&models.PaymentTransaction{},
		&models.Dispute{},
		&models.DisputeEvidence{},
		&models.Notification{},
		&models.AgentLog{},
		&models.MarketRate{},
	)
}
