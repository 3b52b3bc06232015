package services

import (
	"encoding/json"
	"time"

	"github.com/namkjs/p2plending/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StartAgentLog opens a run record for an automation service. Marshal failures
// are swallowed: logging must never break the flow it observes.
func StartAgentLog(db *gorm.DB, agentType string, userID *uint, input interface{}) *models.AgentLog {
	raw, _ := json.Marshal(input)
	log := &models.AgentLog{
		AgentType: agentType,
		UserID:    userID,
		InputData: datatypes.JSON(raw),
		Status:    models.AgentRunPending,
	}
	db.Create(log)
	return log
}

func FinishAgentLogSuccess(db *gorm.DB, log *models.AgentLog, output interface{}, started time.Time) {
	raw, _ := json.Marshal(output)
	now := time.Now()
	log.OutputData = datatypes.JSON(raw)
	log.Status = models.AgentRunSuccess
	log.CompletedAt = &now
	log.ProcessingTimeMs = time.Since(started).Milliseconds()
	db.Save(log)
}

func FinishAgentLogFailure(db *gorm.DB, log *models.AgentLog, errMsg string, started time.Time) {
	now := time.Now()
	log.Status = models.AgentRunFailed
	log.ErrorMessage = errMsg
	log.CompletedAt = &now
	log.ProcessingTimeMs = time.Since(started).Milliseconds()
	db.Save(log)
}
