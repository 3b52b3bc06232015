package database

import (
	"fmt"
	"time"

	"github.com/namkjs/p2plending/models"
	"github.com/namkjs/p2plending/utils"

	"gorm.io/gorm"
)

// SeedDemoData creates a small set of demo borrowers, lenders and loans the
// first time the service boots against an empty database. Seeded accounts all
// use the password "password123".
func SeedDemoData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Where("email LIKE ?", "seed_%").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword("password123")
	if err != nil {
		return err
	}

	borrowerNames := []string{"Nguyen Van An", "Tran Thi Binh", "Le Van Cuong"}
	lenderNames := []string{"Pham Thi Dao", "Hoang Van Em"}

	return db.Transaction(func(tx *gorm.DB) error {
		dob := time.Date(1992, 4, 15, 0, 0, 0, 0, time.UTC)

		var borrowers []models.User
		for i, name := range borrowerNames {
			email := fmt.Sprintf("seed_borrower_%d@example.com", i+1)
			n := name
			user := models.User{Email: &email, Password: hash, Confirmed: true, Name: &n}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			profile := models.UserProfile{
				UserID:        user.ID,
				Balance:       5_000_000,
				FullName:      name,
				IDCardNumber:  fmt.Sprintf("0012345678%02d", i+1),
				DateOfBirth:   &dob,
				Gender:        "male",
				Hometown:      "Ha Noi",
				Address:       "123 Pho Hue, Ha Noi",
				Occupation:    "Engineer",
				MonthlyIncome: 15_000_000,
				KYCStatus:     models.KYCVerified,
				OCRVerified:   true,
				OCRMatchScore: 95,
			}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
			borrowers = append(borrowers, user)
		}

		for i, name := range lenderNames {
			email := fmt.Sprintf("seed_lender_%d@example.com", i+1)
			n := name
			user := models.User{Email: &email, Password: hash, Confirmed: true, Name: &n}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			profile := models.UserProfile{
				UserID:        user.ID,
				Balance:       200_000_000,
				FullName:      name,
				KYCStatus:     models.KYCVerified,
				OCRVerified:   true,
				OCRMatchScore: 98,
			}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
			lp := models.LenderProfile{
				UserID:          user.ID,
				MinAmount:       1_000_000,
				MaxAmount:       100_000_000,
				MinInterestRate: 8,
				PreferredDurMin: 1,
				PreferredDurMax: 24,
				RiskTolerance:   models.RiskToleranceMedium,
				IsActive:        true,
			}
			if err := tx.Create(&lp).Error; err != nil {
				return err
			}
		}

		loans := []models.LoanRequest{
			{BorrowerID: borrowers[0].ID, Amount: 10_000_000, InterestRate: 12, DurationMonths: 6, Purpose: "Mua laptop phuc vu cong viec", Status: models.LoanApproved},
			{BorrowerID: borrowers[1].ID, Amount: 30_000_000, InterestRate: 14, DurationMonths: 12, Purpose: "Sua nha", Status: models.LoanApproved},
			{BorrowerID: borrowers[2].ID, Amount: 5_000_000, InterestRate: 10, DurationMonths: 3, Purpose: "Dong hoc phi", Status: models.LoanPending},
		}
		for i := range loans {
			if err := tx.Create(&loans[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
