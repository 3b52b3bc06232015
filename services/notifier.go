package services

import (
	"github.com/namkjs/p2plending/models"
	"github.com/namkjs/p2plending/utils"

	"gorm.io/gorm"
)

// Notify creates an in-app notification for a user.
func Notify(db *gorm.DB, userID uint, notificationType, title, message string, relatedLoanID *uint) {
	n := models.Notification{
		UserID:           userID,
		NotificationType: notificationType,
		Title:            title,
		Message:          message,
		RelatedLoanID:    relatedLoanID,
	}
	if err := db.Create(&n).Error; err != nil {
		utils.LogError(err, "create notification")
	}
}
