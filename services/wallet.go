package services

import (
	"errors"
	"fmt"

	"github.com/namkjs/p2plending/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrInsufficientBalance = errors.New("insufficient wallet balance")

// transferBalance moves money between two wallets inside the caller's
// transaction. Rows are locked in user-id order to avoid deadlocks between
// concurrent transfers.
func transferBalance(tx *gorm.DB, fromUserID, toUserID uint, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("transfer amount must be positive, got %d", amount)
	}

	first, second := fromUserID, toUserID
	if second < first {
		first, second = second, first
	}

	var profiles []models.UserProfile
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id IN ?", []uint{first, second}).
		Order("user_id").
		Find(&profiles).Error; err != nil {
		return err
	}
	if len(profiles) != 2 {
		return errors.New("wallet not found for one of the parties")
	}

	var from, to *models.UserProfile
	for i := range profiles {
		switch profiles[i].UserID {
		case fromUserID:
			from = &profiles[i]
		case toUserID:
			to = &profiles[i]
		}
	}

	if from.Balance < amount {
		return ErrInsufficientBalance
	}

	if err := tx.Model(from).Update("balance", gorm.Expr("balance - ?", amount)).Error; err != nil {
		return err
	}
	return tx.Model(to).Update("balance", gorm.Expr("balance + ?", amount)).Error
}
