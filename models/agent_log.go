package models

import (
	"time"

	"gorm.io/datatypes"
)

// Agent types
const (
	AgentBorrowerProfiler  = "BORROWER_PROFILER"
	AgentLenderMatcher     = "LENDER_MATCHER"
	AgentContractGenerator = "CONTRACT_GENERATOR"
	AgentPaymentMonitor    = "PAYMENT_MONITOR"
	AgentDisputeResolver   = "DISPUTE_RESOLVER"
)

// Agent run statuses
const (
	AgentRunPending = "PENDING"
	AgentRunSuccess = "SUCCESS"
	AgentRunFailed  = "FAILED"
)

// AgentLog records one run of an automation service: input, output, timing.
type AgentLog struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	AgentType string `gorm:"not null;index" json:"agent_type"`
	UserID    *uint  `gorm:"index" json:"user_id"`

	InputData  datatypes.JSON `json:"input_data"`
	OutputData datatypes.JSON `json:"output_data"`

	Status       string `gorm:"default:PENDING" json:"status"`
	ErrorMessage string `json:"error_message"`

	CreatedAt        time.Time  `json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at"`
	ProcessingTimeMs int64      `json:"processing_time_ms"`
}
