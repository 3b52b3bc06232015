package models

import (
	"time"
)

// Contract statuses
const (
	ContractPendingSignatures = "PENDING_SIGNATURES"
	ContractActive            = "ACTIVE"
	ContractCompleted         = "COMPLETED"
	ContractDefaulted         = "DEFAULTED"
	ContractCancelled         = "CANCELLED"
)

// LoanContract is the signed agreement between borrower and lender.
type LoanContract struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	ContractNumber string `gorm:"uniqueIndex" json:"contract_number"`
	LoanRequestID  uint   `gorm:"uniqueIndex;not null" json:"loan_request_id"`
	BorrowerID     uint   `gorm:"index;not null" json:"borrower_id"`
	LenderID       uint   `gorm:"index;not null" json:"lender_id"`

	PrincipalAmount int64   `gorm:"default:0" json:"principal_amount"`
	InterestRate    float64 `gorm:"default:0" json:"interest_rate"`
	TotalInterest   int64   `gorm:"default:0" json:"total_interest"`
	TotalAmount     int64   `gorm:"default:0" json:"total_amount"`
	PaymentMethod   string  `gorm:"default:EQUAL_PRINCIPAL" json:"payment_method"`

	StartDate  *time.Time `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
	SignedDate time.Time  `gorm:"autoCreateTime" json:"signed_date"`

	ContractContent string `json:"contract_content"`

	BorrowerSigned   bool       `gorm:"default:false" json:"borrower_signed"`
	BorrowerSignedAt *time.Time `json:"borrower_signed_at"`
	LenderSigned     bool       `gorm:"default:false" json:"lender_signed"`
	LenderSignedAt   *time.Time `json:"lender_signed_at"`

	Status     string `gorm:"default:PENDING_SIGNATURES" json:"status"`
	IsActive   bool   `gorm:"default:true" json:"is_active"`
	IsDisputed bool   `gorm:"default:false" json:"is_disputed"`

	LoanRequest LoanRequest `json:"loan_request,omitempty" gorm:"foreignKey:LoanRequestID"`
	Borrower    User        `json:"borrower,omitempty" gorm:"foreignKey:BorrowerID"`
	Lender      User        `json:"lender,omitempty" gorm:"foreignKey:LenderID"`
}

// Installment statuses
const (
	InstallmentPending = "PENDING"
	InstallmentPaid    = "PAID"
	InstallmentOverdue = "OVERDUE"
	InstallmentPartial = "PARTIAL"
)

// PaymentSchedule is one installment of a contract.
type PaymentSchedule struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ContractID        uint      `gorm:"index:idx_contract_installment,unique;not null" json:"contract_id"`
	InstallmentNumber int       `gorm:"index:idx_contract_installment,unique;not null" json:"installment_number"`
	DueDate           time.Time `gorm:"not null" json:"due_date"`

	PrincipalAmount int64 `gorm:"default:0" json:"principal_amount"`
	InterestAmount  int64 `gorm:"default:0" json:"interest_amount"`
	TotalAmount     int64 `gorm:"default:0" json:"total_amount"`

	PaidAmount int64      `gorm:"default:0" json:"paid_amount"`
	PaidDate   *time.Time `json:"paid_date"`

	LateFee  int64 `gorm:"default:0" json:"late_fee"`
	LateDays int   `gorm:"default:0" json:"late_days"`

	Status       string `gorm:"default:PENDING;index" json:"status"`
	Note         string `json:"note"`
	ReminderSent bool   `gorm:"default:false" json:"reminder_sent"`

	CreatedAt time.Time `json:"created_at"`

	Contract LoanContract `json:"-" gorm:"foreignKey:ContractID"`
}

// Transaction types
const (
	TxDisbursement = "DISBURSEMENT"
	TxInstallment  = "INSTALLMENT"
	TxEarlyPayoff  = "EARLY_PAYOFF"
	TxLateFee      = "LATE_FEE"
	TxRefund       = "REFUND"
)

// Transaction statuses
const (
	TxPending   = "PENDING"
	TxCompleted = "COMPLETED"
	TxFailed    = "FAILED"
	TxRefunded  = "REFUNDED"
)

// PaymentTransaction records a transfer of money between the two wallets.
type PaymentTransaction struct {
	ID                uint  `gorm:"primaryKey" json:"id"`
	ContractID        uint  `gorm:"index;not null" json:"contract_id"`
	PaymentScheduleID *uint `json:"payment_schedule_id"`

	PayerID     uint `gorm:"index;not null" json:"payer_id"`
	RecipientID uint `gorm:"index;not null" json:"recipient_id"`

	Amount          int64  `gorm:"not null" json:"amount"`
	TransactionType string `gorm:"not null" json:"transaction_type"`
	PaymentMethod   string `gorm:"default:WALLET" json:"payment_method"`
	Status          string `gorm:"default:PENDING" json:"status"`

	LateFee  int64 `gorm:"default:0" json:"late_fee"`
	LateDays int   `gorm:"default:0" json:"late_days"`

	TransactionRef string `json:"transaction_ref"`
	Note           string `json:"note"`

	CreatedAt time.Time `json:"created_at"`
}

// ---- requests / responses ----

type SignContractRequest struct {
	Role string `json:"role" binding:"required,oneof=borrower lender"`
}

type InstallmentResponse struct {
	ID          uint   `json:"id"`
	Installment int    `json:"installment"`
	DueDate     string `json:"due_date"`
	Principal   int64  `json:"principal"`
	Interest    int64  `json:"interest"`
	Total       int64  `json:"total"`
	PaidAmount  int64  `json:"paid_amount"`
	Status      string `json:"status"`
	IsOverdue   bool   `json:"is_overdue"`
	LateDays    int    `json:"late_days"`
	LateFee     int64  `json:"late_fee"`
}

// ScheduleItem is one row of a computed amortization plan (before a contract exists).
type ScheduleItem struct {
	Month            int   `json:"month"`
	PrincipalPayment int64 `json:"principal_payment"`
	InterestPayment  int64 `json:"interest_payment"`
	TotalPayment     int64 `json:"total_payment"`
	RemainingBalance int64 `json:"remaining_balance"`
}

type SchedulePlan struct {
	Principal      int64          `json:"principal"`
	InterestRate   float64        `json:"interest_rate"`
	DurationMonths int            `json:"duration_months"`
	PaymentMethod  string         `json:"payment_method"`
	TotalInterest  int64          `json:"total_interest"`
	TotalPayment   int64          `json:"total_payment"`
	Schedule       []ScheduleItem `json:"schedule"`
}

type EarlyPayoffQuote struct {
	ContractID            uint  `json:"contract_id"`
	RemainingInstallments int   `json:"remaining_installments"`
	TotalPrincipal        int64 `json:"total_principal_remaining"`
	TotalInterest         int64 `json:"total_interest_remaining"`
	DiscountedInterest    int64 `json:"discounted_interest"`
	LateFees              int64 `json:"late_fees"`
	TotalPayoff           int64 `json:"total_payoff_amount"`
	Savings               int64 `json:"savings"`
}
