package models

import (
	"time"

	"gorm.io/datatypes"
)

// Risk tolerance of a lender
const (
	RiskToleranceLow    = "LOW"
	RiskToleranceMedium = "MEDIUM"
	RiskToleranceHigh   = "HIGH"
)

// LenderProfile holds the investment preferences the matcher works from.
type LenderProfile struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`

	MinAmount        int64   `gorm:"default:1000000" json:"min_amount"`
	MaxAmount        int64   `gorm:"default:100000000" json:"max_amount"`
	MinInterestRate  float64 `gorm:"default:8" json:"min_interest_rate"`
	PreferredDurMin  int     `gorm:"default:1" json:"preferred_duration_min"`
	PreferredDurMax  int     `gorm:"default:24" json:"preferred_duration_max"`
	RiskTolerance    string  `gorm:"default:MEDIUM" json:"risk_tolerance"`

	TotalInvested     int64 `gorm:"default:0" json:"total_invested"`
	TotalReturns      int64 `gorm:"default:0" json:"total_returns"`
	ActiveInvestments int   `gorm:"default:0" json:"active_investments"`

	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Risk levels produced by the profiler
const (
	RiskVeryLow  = "VERY_LOW"
	RiskLow      = "LOW"
	RiskMedium   = "MEDIUM"
	RiskHigh     = "HIGH"
	RiskVeryHigh = "VERY_HIGH"
)

// BorrowerRiskProfile is the profiler's assessment of a borrower.
type BorrowerRiskProfile struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`

	CreditScore int    `gorm:"default:0" json:"credit_score"` // 0-1000
	RiskLevel   string `gorm:"default:MEDIUM" json:"risk_level"`

	IncomeStability     float64 `gorm:"default:0" json:"income_stability"`      // 0-100
	DebtToIncomeRatio   float64 `gorm:"default:0" json:"debt_to_income_ratio"`  // monthly debt / income
	PaymentHistoryScore float64 `gorm:"default:0" json:"payment_history_score"` // 0-100

	AIAnalysis  datatypes.JSON `json:"ai_analysis"`
	LastUpdated time.Time      `gorm:"autoUpdateTime" json:"last_updated"`
}

// LenderMatchResult is a persisted match between a loan and a lender.
type LenderMatchResult struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	LoanRequestID uint `gorm:"index:idx_loan_lender,unique;not null" json:"loan_request_id"`
	LenderID      uint `gorm:"index:idx_loan_lender,unique;not null" json:"lender_id"`

	MatchScore   float64        `gorm:"default:0;index" json:"match_score"` // 0-100
	MatchReasons datatypes.JSON `json:"match_reasons"`

	IsNotified   bool `gorm:"default:false" json:"is_notified"`
	IsViewed     bool `gorm:"default:false" json:"is_viewed"`
	IsInterested bool `gorm:"default:false" json:"is_interested"`

	CreatedAt time.Time `json:"created_at"`

	LoanRequest LoanRequest `json:"loan_request,omitempty" gorm:"foreignKey:LoanRequestID"`
	Lender      User        `json:"lender,omitempty" gorm:"foreignKey:LenderID"`
}

// ---- requests / responses ----

type LenderProfileRequest struct {
	MinAmount       int64   `json:"min_amount"`
	MaxAmount       int64   `json:"max_amount"`
	MinInterestRate float64 `json:"min_interest_rate"`
	PreferredDurMin int     `json:"preferred_duration_min"`
	PreferredDurMax int     `json:"preferred_duration_max"`
	RiskTolerance   string  `json:"risk_tolerance"`
	IsActive        *bool   `json:"is_active"`
}

type MatchedLoan struct {
	Loan       LoanResponse `json:"loan"`
	MatchScore float64      `json:"match_score"`
	Reasons    []string     `json:"reasons"`
}
