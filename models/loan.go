package models

import (
	"time"
)

// Loan request statuses
const (
	LoanPending         = "PENDING"
	LoanApproved        = "APPROVED" // cleared for the marketplace
	LoanContractCreated = "CONTRACT_CREATED"
	LoanFunded          = "FUNDED"
	LoanCompleted       = "COMPLETED"
	LoanRejected        = "REJECTED"
)

// LoanRequest is a borrower's application for a loan.
type LoanRequest struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	BorrowerID     uint      `gorm:"index;not null" json:"borrower_id"`
	Amount         int64     `gorm:"not null" json:"amount"`        // VND
	InterestRate   float64   `gorm:"not null" json:"interest_rate"` // desired %/year
	DurationMonths int       `gorm:"not null" json:"duration_months"`
	Purpose        string    `json:"purpose"`
	Status         string    `gorm:"default:PENDING;index" json:"status"`
	CreatedAt      time.Time `json:"created_at"`

	Borrower User `json:"borrower,omitempty" gorm:"foreignKey:BorrowerID"`
}

// MarketRate is a published microcredit offer scraped from bank listings,
// shown to borrowers as an interest-rate benchmark.
type MarketRate struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	BankName    string    `json:"bank_name"`
	Description string    `json:"description"`
	Rate        string    `json:"rate"`
	Term        string    `json:"term"`
	Amount      string    `json:"amount"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
}

// ---- requests / responses ----

type CreateLoanRequest struct {
	Amount         int64   `json:"amount" binding:"required,gt=0"`
	InterestRate   float64 `json:"interest_rate" binding:"required,gt=0"`
	DurationMonths int     `json:"duration_months" binding:"required,gt=0"`
	Purpose        string  `json:"purpose" binding:"required"`
}

type LoanResponse struct {
	ID             uint      `json:"id"`
	BorrowerID     uint      `json:"borrower_id"`
	Borrower       string    `json:"borrower"`
	Amount         int64     `json:"amount"`
	InterestRate   float64   `json:"interest_rate"`
	DurationMonths int       `json:"duration_months"`
	Purpose        string    `json:"purpose"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

type LoanListResponse struct {
	Loans      []LoanResponse `json:"loans"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}
