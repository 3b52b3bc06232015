package models

import (
	"time"
)

// Notification types
const (
	NotifyPaymentReminder = "PAYMENT_REMINDER"
	NotifyPaymentOverdue  = "PAYMENT_OVERDUE"
	NotifyPaymentReceived = "PAYMENT_RECEIVED"
	NotifyLoanApproved    = "LOAN_APPROVED"
	NotifyLoanRejected    = "LOAN_REJECTED"
	NotifyLoanFunded      = "LOAN_FUNDED"
	NotifyLoanMatch       = "LOAN_MATCH"
	NotifyContractStatus  = "CONTRACT_STATUS"
	NotifyDisputeStatus   = "DISPUTE_STATUS"
	NotifyKYCStatus       = "KYC_STATUS"
	NotifySystem          = "SYSTEM"
)

// Notification is created by platform services for a user.
type Notification struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	UserID           uint   `gorm:"index;not null" json:"user_id"`
	NotificationType string `gorm:"not null" json:"notification_type"`
	Title            string `gorm:"not null" json:"title"`
	Message          string `json:"message"`
	RelatedLoanID    *uint  `json:"related_loan_id"`

	IsRead    bool      `gorm:"default:false;index" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
