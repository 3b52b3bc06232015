package models

import (
	"time"
)

// Dispute types
const (
	DisputePayment           = "PAYMENT"
	DisputeLatePayment       = "LATE_PAYMENT"
	DisputeWrongAmount       = "WRONG_AMOUNT"
	DisputeContractTerms     = "CONTRACT_TERMS"
	DisputeContractViolation = "CONTRACT_VIOLATION"
	DisputeFraud             = "FRAUD"
	DisputeOther             = "OTHER"
)

// Dispute statuses
const (
	DisputeOpen      = "OPEN"
	DisputeInReview  = "IN_REVIEW"
	DisputeResolved  = "RESOLVED"
	DisputeClosed    = "CLOSED"
	DisputeEscalated = "ESCALATED"
)

// Resolution types
const (
	ResolutionFavorComplainant = "FAVOR_COMPLAINANT"
	ResolutionFavorRespondent  = "FAVOR_RESPONDENT"
	ResolutionCompromise       = "COMPROMISE"
	ResolutionDismissed        = "DISMISSED"
)

type Dispute struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	ContractID    uint `gorm:"index;not null" json:"contract_id"`
	ComplainantID uint `gorm:"index;not null" json:"complainant_id"`
	RespondentID  uint `gorm:"index;not null" json:"respondent_id"`

	DisputeType string `gorm:"not null" json:"dispute_type"`
	Description string `json:"description"`
	Status      string `gorm:"default:OPEN;index" json:"status"`

	ResolutionType string `json:"resolution_type"`
	Resolution     string `json:"resolution"`
	RefundAmount   int64  `gorm:"default:0" json:"refund_amount"`
	PenaltyAmount  int64  `gorm:"default:0" json:"penalty_amount"`

	AIAnalysis       string `json:"ai_analysis"`
	AIRecommendation string `json:"ai_recommendation"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ResolvedAt *time.Time `json:"resolved_at"`

	Contract    LoanContract `json:"contract,omitempty" gorm:"foreignKey:ContractID"`
	Complainant User         `json:"complainant,omitempty" gorm:"foreignKey:ComplainantID"`
	Respondent  User         `json:"respondent,omitempty" gorm:"foreignKey:RespondentID"`
}

// Evidence types
const (
	EvidenceScreenshot   = "SCREENSHOT"
	EvidenceDocument     = "DOCUMENT"
	EvidenceChatLog      = "CHAT_LOG"
	EvidencePaymentProof = "PAYMENT_PROOF"
	EvidenceOther        = "OTHER"
)

type DisputeEvidence struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	DisputeID     uint   `gorm:"index;not null" json:"dispute_id"`
	SubmittedByID uint   `gorm:"not null" json:"submitted_by_id"`
	EvidenceType  string `gorm:"not null" json:"evidence_type"`
	Description   string `json:"description"`
	FilePath      string `json:"file_path"`

	CreatedAt time.Time `json:"created_at"`

	SubmittedBy User `json:"submitted_by,omitempty" gorm:"foreignKey:SubmittedByID"`
}

// ---- requests / responses ----

type CreateDisputeRequest struct {
	DisputeType string `json:"dispute_type" binding:"required"`
	Description string `json:"description" binding:"required"`
}

type AddEvidenceRequest struct {
	EvidenceType string `json:"evidence_type" binding:"required"`
	Description  string `json:"description" binding:"required"`
}

type ResolveDisputeRequest struct {
	ResolutionType  string `json:"resolution_type" binding:"required,oneof=FAVOR_COMPLAINANT FAVOR_RESPONDENT COMPROMISE DISMISSED"`
	ResolutionNote  string `json:"resolution_note" binding:"required"`
	RefundAmount    int64  `json:"refund_amount"`
	PenaltyAmount   int64  `json:"penalty_amount"`
	PenalizedUserID uint   `json:"penalized_user_id"`
}
