package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/namkjs/p2plending/models"
	"github.com/namkjs/p2plending/utils"

	"gorm.io/gorm"
)

// Dispute severities assigned by the analyzer.
const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

// Disputes open longer than this are flagged for priority review.
const disputeStaleDays = 7

// FileDispute opens a dispute on a contract. Only the two parties can file,
// and the respondent is always the other party.
func FileDispute(db *gorm.DB, contractID, complainantID uint, req *models.CreateDisputeRequest) (*models.Dispute, error) {
	var dispute *models.Dispute
	err := db.Transaction(func(tx *gorm.DB) error {
		var contract models.LoanContract
		if err := tx.First(&contract, contractID).Error; err != nil {
			return errors.New("contract not found")
		}

		var respondentID uint
		switch complainantID {
		case contract.BorrowerID:
			respondentID = contract.LenderID
		case contract.LenderID:
			respondentID = contract.BorrowerID
		default:
			return errors.New("only contract parties can file a dispute")
		}

		var open int64
		tx.Model(&models.Dispute{}).
			Where("contract_id = ? AND status IN ?", contractID,
				[]string{models.DisputeOpen, models.DisputeInReview, models.DisputeEscalated}).
			Count(&open)
		if open > 0 {
			return errors.New("contract already has an open dispute")
		}

		d := models.Dispute{
			ContractID:    contractID,
			ComplainantID: complainantID,
			RespondentID:  respondentID,
			DisputeType:   req.DisputeType,
			Description:   req.Description,
			Status:        models.DisputeOpen,
		}
		if err := tx.Create(&d).Error; err != nil {
			return err
		}
		if err := tx.Model(&contract).Update("is_disputed", true).Error; err != nil {
			return err
		}
		dispute = &d
		return nil
	})
	if err != nil {
		return nil, err
	}

	Notify(db, dispute.RespondentID, models.NotifyDisputeStatus,
		"Dispute filed against you",
		fmt.Sprintf("A %s dispute was filed on contract #%d. You can submit evidence.",
			dispute.DisputeType, dispute.ContractID),
		nil)

	// Run the triage immediately so low-severity cases settle without review.
	if _, err := AnalyzeDispute(db, dispute.ID); err != nil {
		utils.LogError(err, "dispute triage")
	}
	db.First(dispute, dispute.ID)
	return dispute, nil
}

// AddEvidence attaches a piece of evidence to an unresolved dispute.
func AddEvidence(db *gorm.DB, disputeID, userID uint, req *models.AddEvidenceRequest, filePath string) (*models.DisputeEvidence, error) {
	var dispute models.Dispute
	if err := db.First(&dispute, disputeID).Error; err != nil {
		return nil, errors.New("dispute not found")
	}
	if dispute.Status == models.DisputeResolved || dispute.Status == models.DisputeClosed {
		return nil, errors.New("dispute is already resolved")
	}
	if userID != dispute.ComplainantID && userID != dispute.RespondentID {
		return nil, errors.New("only dispute parties can submit evidence")
	}

	ev := models.DisputeEvidence{
		DisputeID:     disputeID,
		SubmittedByID: userID,
		EvidenceType:  req.EvidenceType,
		Description:   req.Description,
		FilePath:      filePath,
	}
	if err := db.Create(&ev).Error; err != nil {
		return nil, err
	}

	other := dispute.ComplainantID
	if userID == dispute.ComplainantID {
		other = dispute.RespondentID
	}
	Notify(db, other, models.NotifyDisputeStatus,
		"New evidence submitted",
		fmt.Sprintf("New %s evidence was added to dispute #%d.", req.EvidenceType, disputeID),
		nil)
	return &ev, nil
}

// DisputeAnalysis is the triage verdict for one dispute.
type DisputeAnalysis struct {
	DisputeID      uint   `json:"dispute_id"`
	Severity       string `json:"severity"`
	Summary        string `json:"summary"`
	Recommendation string `json:"recommendation"`
	AutoResolved   bool   `json:"auto_resolved"`
}

// AnalyzeDispute grades a dispute from the contract's payment record and the
// dispute type, then moves it to IN_REVIEW. LOW severity cases are settled on
// the spot as a compromise with no money moved.
func AnalyzeDispute(db *gorm.DB, disputeID uint) (*DisputeAnalysis, error) {
	started := time.Now()
	runLog := StartAgentLog(db, models.AgentDisputeResolver, nil, map[string]uint{"dispute_id": disputeID})

	var dispute models.Dispute
	if err := db.Preload("Contract").First(&dispute, disputeID).Error; err != nil {
		FinishAgentLogFailure(db, runLog, err.Error(), started)
		return nil, errors.New("dispute not found")
	}
	if dispute.Status != models.DisputeOpen {
		FinishAgentLogFailure(db, runLog, "dispute is not open", started)
		return nil, errors.New("dispute is not open")
	}

	var paid, late int64
	db.Model(&models.PaymentSchedule{}).
		Where("contract_id = ? AND status = ?", dispute.ContractID, models.InstallmentPaid).
		Count(&paid)
	db.Model(&models.PaymentSchedule{}).
		Where("contract_id = ? AND status = ? AND late_days > 0", dispute.ContractID, models.InstallmentPaid).
		Count(&late)

	severity := SeverityLow
	summary := "No aggravating payment pattern found."
	switch {
	case dispute.DisputeType == models.DisputeFraud:
		severity = SeverityCritical
		summary = "Fraud allegations require manual investigation."
	case paid == 0:
		severity = SeverityHigh
		summary = "No installment has been paid on this contract."
	case late*2 > paid:
		severity = SeverityHigh
		summary = "More than half of the paid installments were late."
	case dispute.DisputeType == models.DisputeContractTerms:
		severity = SeverityMedium
		summary = "Contract terms disagreement, both signatures are on file."
	}

	analysis := &DisputeAnalysis{
		DisputeID: disputeID,
		Severity:  severity,
		Summary:   summary,
	}

	if severity == SeverityLow {
		analysis.Recommendation = "Minor disagreement, settle as a compromise with no transfers."
		analysis.AutoResolved = true
		err := applyResolution(db, &dispute, &models.ResolveDisputeRequest{
			ResolutionType: models.ResolutionCompromise,
			ResolutionNote: "Auto-settled: " + summary,
		})
		if err != nil {
			FinishAgentLogFailure(db, runLog, err.Error(), started)
			return nil, err
		}
	} else {
		analysis.Recommendation = "Needs review by an administrator."
		updates := map[string]interface{}{
			"status":            models.DisputeInReview,
			"ai_analysis":       fmt.Sprintf("severity=%s; paid=%d; late=%d; %s", severity, paid, late, summary),
			"ai_recommendation": analysis.Recommendation,
		}
		if severity == SeverityCritical {
			updates["status"] = models.DisputeEscalated
		}
		if err := db.Model(&dispute).Updates(updates).Error; err != nil {
			FinishAgentLogFailure(db, runLog, err.Error(), started)
			return nil, err
		}
	}

	FinishAgentLogSuccess(db, runLog, analysis, started)
	return analysis, nil
}

// ResolveDispute is the admin action closing a dispute, optionally moving a
// refund to the complainant and a penalty from the party at fault.
func ResolveDispute(db *gorm.DB, disputeID uint, req *models.ResolveDisputeRequest) (*models.Dispute, error) {
	var dispute models.Dispute
	if err := db.First(&dispute, disputeID).Error; err != nil {
		return nil, errors.New("dispute not found")
	}
	if dispute.Status == models.DisputeResolved || dispute.Status == models.DisputeClosed {
		return nil, errors.New("dispute is already resolved")
	}
	if err := applyResolution(db, &dispute, req); err != nil {
		return nil, err
	}
	db.First(&dispute, disputeID)
	return &dispute, nil
}

func applyResolution(db *gorm.DB, dispute *models.Dispute, req *models.ResolveDisputeRequest) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		if req.RefundAmount > 0 {
			if err := transferBalance(tx, dispute.RespondentID, dispute.ComplainantID, req.RefundAmount); err != nil {
				return fmt.Errorf("refund transfer: %w", err)
			}
			record := models.PaymentTransaction{
				ContractID:      dispute.ContractID,
				PayerID:         dispute.RespondentID,
				RecipientID:     dispute.ComplainantID,
				Amount:          req.RefundAmount,
				TransactionType: models.TxRefund,
				Status:          models.TxCompleted,
				TransactionRef:  fmt.Sprintf("DSP-%d-REFUND", dispute.ID),
				Note:            "Dispute resolution refund",
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}

		if req.PenaltyAmount > 0 && req.PenalizedUserID != 0 {
			recipient := dispute.ComplainantID
			if req.PenalizedUserID == dispute.ComplainantID {
				recipient = dispute.RespondentID
			}
			if err := transferBalance(tx, req.PenalizedUserID, recipient, req.PenaltyAmount); err != nil {
				return fmt.Errorf("penalty transfer: %w", err)
			}
			record := models.PaymentTransaction{
				ContractID:      dispute.ContractID,
				PayerID:         req.PenalizedUserID,
				RecipientID:     recipient,
				Amount:          req.PenaltyAmount,
				TransactionType: models.TxLateFee,
				Status:          models.TxCompleted,
				TransactionRef:  fmt.Sprintf("DSP-%d-PENALTY", dispute.ID),
				Note:            "Dispute resolution penalty",
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}

		now := utils.VietnamTime()
		if err := tx.Model(dispute).Updates(map[string]interface{}{
			"status":          models.DisputeResolved,
			"resolution_type": req.ResolutionType,
			"resolution":      req.ResolutionNote,
			"refund_amount":   req.RefundAmount,
			"penalty_amount":  req.PenaltyAmount,
			"resolved_at":     now,
		}).Error; err != nil {
			return err
		}

		var open int64
		tx.Model(&models.Dispute{}).
			Where("contract_id = ? AND status IN ? AND id <> ?", dispute.ContractID,
				[]string{models.DisputeOpen, models.DisputeInReview, models.DisputeEscalated}, dispute.ID).
			Count(&open)
		if open == 0 {
			if err := tx.Model(&models.LoanContract{}).
				Where("id = ?", dispute.ContractID).
				Update("is_disputed", false).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("Dispute #%d was resolved: %s.", dispute.ID, req.ResolutionType)
	Notify(db, dispute.ComplainantID, models.NotifyDisputeStatus, "Dispute resolved", msg, nil)
	Notify(db, dispute.RespondentID, models.NotifyDisputeStatus, "Dispute resolved", msg, nil)
	return nil
}

// DisputeReview is the output of the periodic sweep over unresolved disputes.
type DisputeReview struct {
	TotalOpen    int    `json:"total_open"`
	HighPriority []uint `json:"high_priority"`
	AutoResolved int    `json:"auto_resolved"`
}

// ReviewOpenDisputes triages any dispute still OPEN and flags unresolved ones
// older than a week for priority handling.
func ReviewOpenDisputes(db *gorm.DB) (*DisputeReview, error) {
	var disputes []models.Dispute
	if err := db.Where("status IN ?",
		[]string{models.DisputeOpen, models.DisputeInReview, models.DisputeEscalated}).
		Find(&disputes).Error; err != nil {
		return nil, err
	}

	review := &DisputeReview{TotalOpen: len(disputes)}
	cutoff := utils.VietnamTime().AddDate(0, 0, -disputeStaleDays)

	for i := range disputes {
		d := &disputes[i]
		if d.Status == models.DisputeOpen {
			if analysis, err := AnalyzeDispute(db, d.ID); err == nil && analysis.AutoResolved {
				review.AutoResolved++
				continue
			}
		}
		if d.CreatedAt.Before(cutoff) {
			review.HighPriority = append(review.HighPriority, d.ID)
		}
	}
	return review, nil
}
