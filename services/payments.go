package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/namkjs/p2plending/models"
	"github.com/namkjs/p2plending/utils"

	"gorm.io/gorm"
)

// Late installments accrue 0.05% of the installment amount per day.
const lateFeeDailyRate = 0.0005

// Reminders go out this many days before an installment falls due.
const reminderWindowDays = 3

// At most this many overdue notices per sweep. Rows beyond the cap still get
// their late fees updated.
const overdueNoticeCap = 50

// LateCharge computes the days late and fee for an installment as of a date.
// Installments due today or later carry no charge.
func LateCharge(s *models.PaymentSchedule, asOf time.Time) (int, int64) {
	due := s.DueDate.Truncate(24 * time.Hour)
	day := asOf.Truncate(24 * time.Hour)
	if !day.After(due) {
		return 0, 0
	}
	lateDays := int(day.Sub(due).Hours() / 24)
	fee := roundVND(float64(s.TotalAmount) * lateFeeDailyRate * float64(lateDays))
	return lateDays, fee
}

// settleInstallment applies a payment to the row and returns the amount to
// transfer. An amount of zero, or anything covering the outstanding total,
// settles the installment in full including the late fee accrued as of now.
// A smaller amount is a partial payment: it reduces the outstanding total and
// the late fee keeps running until final settlement.
func settleInstallment(s *models.PaymentSchedule, amount int64, now time.Time) int64 {
	lateDays, lateFee := LateCharge(s, now)
	outstanding := s.TotalAmount - s.PaidAmount
	s.LateDays = lateDays
	s.LateFee = lateFee

	if amount > 0 && amount < outstanding {
		s.PaidAmount += amount
		s.Status = models.InstallmentPartial
		s.Note = fmt.Sprintf("Partial payment of %s", utils.FormatVND(amount))
		return amount
	}

	s.PaidAmount = s.TotalAmount
	s.PaidDate = &now
	s.Status = models.InstallmentPaid
	if lateDays > 0 {
		s.Note = fmt.Sprintf("Paid %d days late, fee %s", lateDays, utils.FormatVND(lateFee))
	}
	return outstanding + lateFee
}

// PayInstallment pays an installment from the borrower's wallet. amount zero
// settles the row in full; a smaller amount records a partial payment.
func PayInstallment(db *gorm.DB, scheduleID, payerID uint, amount int64) (*models.PaymentTransaction, error) {
	var txRecord *models.PaymentTransaction
	err := db.Transaction(func(tx *gorm.DB) error {
		var schedule models.PaymentSchedule
		if err := tx.Preload("Contract").First(&schedule, scheduleID).Error; err != nil {
			return errors.New("installment not found")
		}
		contract := schedule.Contract
		if contract.BorrowerID != payerID {
			return errors.New("only the borrower can pay this installment")
		}
		if contract.Status != models.ContractActive {
			return errors.New("contract is not active")
		}
		if schedule.Status == models.InstallmentPaid {
			return errors.New("installment is already paid")
		}
		if amount < 0 {
			return errors.New("amount cannot be negative")
		}

		now := utils.VietnamTime()
		pay := settleInstallment(&schedule, amount, now)

		if err := transferBalance(tx, payerID, contract.LenderID, pay); err != nil {
			return err
		}
		if err := tx.Save(&schedule).Error; err != nil {
			return err
		}

		record := models.PaymentTransaction{
			ContractID:        contract.ID,
			PaymentScheduleID: &schedule.ID,
			PayerID:           payerID,
			RecipientID:       contract.LenderID,
			Amount:            pay,
			TransactionType:   models.TxInstallment,
			Status:            models.TxCompleted,
			TransactionRef:    fmt.Sprintf("PAY-%s-%d", contract.ContractNumber, schedule.InstallmentNumber),
			Note:              schedule.Note,
		}
		if schedule.Status == models.InstallmentPaid {
			record.LateFee = schedule.LateFee
			record.LateDays = schedule.LateDays
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		txRecord = &record

		if err := tx.Model(&models.LenderProfile{}).
			Where("user_id = ?", contract.LenderID).
			Update("total_returns", gorm.Expr("total_returns + ?", pay)).Error; err != nil {
			return err
		}

		if schedule.Status != models.InstallmentPaid {
			return nil
		}
		return settleContractIfDone(tx, &contract)
	})
	if err != nil {
		return nil, err
	}

	var schedule models.PaymentSchedule
	if db.Preload("Contract").First(&schedule, scheduleID).Error == nil {
		Notify(db, schedule.Contract.LenderID, models.NotifyPaymentReceived,
			"Installment received",
			fmt.Sprintf("Installment %d of contract %s was paid: %s.",
				schedule.InstallmentNumber, schedule.Contract.ContractNumber, utils.FormatVND(txRecord.Amount)),
			&schedule.Contract.LoanRequestID)
	}
	return txRecord, nil
}

// settleContractIfDone completes the contract once no unpaid installments remain.
func settleContractIfDone(tx *gorm.DB, contract *models.LoanContract) error {
	var unpaid int64
	if err := tx.Model(&models.PaymentSchedule{}).
		Where("contract_id = ? AND status <> ?", contract.ID, models.InstallmentPaid).
		Count(&unpaid).Error; err != nil {
		return err
	}
	if unpaid > 0 {
		return nil
	}

	if err := tx.Model(contract).Updates(map[string]interface{}{
		"status":    models.ContractCompleted,
		"is_active": false,
	}).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.LoanRequest{}).
		Where("id = ?", contract.LoanRequestID).
		Update("status", models.LoanCompleted).Error; err != nil {
		return err
	}
	return tx.Model(&models.LenderProfile{}).
		Where("user_id = ? AND active_investments > 0", contract.LenderID).
		Update("active_investments", gorm.Expr("active_investments - 1")).Error
}

// QuoteEarlyPayoff prices settling a contract today: all remaining principal,
// half of the remaining interest, plus accrued late fees.
func QuoteEarlyPayoff(db *gorm.DB, contractID, userID uint) (*models.EarlyPayoffQuote, error) {
	var contract models.LoanContract
	if err := db.First(&contract, contractID).Error; err != nil {
		return nil, errors.New("contract not found")
	}
	if contract.BorrowerID != userID {
		return nil, errors.New("only the borrower can pay off this contract")
	}
	if contract.Status != models.ContractActive {
		return nil, errors.New("contract is not active")
	}

	var remaining []models.PaymentSchedule
	if err := db.Where("contract_id = ? AND status <> ?", contractID, models.InstallmentPaid).
		Order("installment_number").Find(&remaining).Error; err != nil {
		return nil, err
	}
	if len(remaining) == 0 {
		return nil, errors.New("nothing left to pay")
	}

	quote := payoffQuote(remaining, utils.VietnamTime())
	quote.ContractID = contractID
	return &quote, nil
}

// payoffQuote prices the unpaid rows: the full remaining principal, half of
// the remaining interest, plus late fees accrued as of the given date.
func payoffQuote(remaining []models.PaymentSchedule, asOf time.Time) models.EarlyPayoffQuote {
	quote := models.EarlyPayoffQuote{RemainingInstallments: len(remaining)}
	for i := range remaining {
		quote.TotalPrincipal += remaining[i].PrincipalAmount
		quote.TotalInterest += remaining[i].InterestAmount - remaining[i].PaidAmount
		_, fee := LateCharge(&remaining[i], asOf)
		quote.LateFees += fee
	}
	if quote.TotalInterest < 0 {
		quote.TotalInterest = 0
	}
	quote.DiscountedInterest = quote.TotalInterest / 2
	quote.TotalPayoff = quote.TotalPrincipal + quote.DiscountedInterest + quote.LateFees
	quote.Savings = quote.TotalInterest - quote.DiscountedInterest
	return quote
}

// ExecuteEarlyPayoff settles the contract at the quoted price and closes it.
func ExecuteEarlyPayoff(db *gorm.DB, contractID, userID uint) (*models.EarlyPayoffQuote, error) {
	quote, err := QuoteEarlyPayoff(db, contractID, userID)
	if err != nil {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var contract models.LoanContract
		if err := tx.First(&contract, contractID).Error; err != nil {
			return err
		}

		if err := transferBalance(tx, userID, contract.LenderID, quote.TotalPayoff); err != nil {
			return err
		}

		now := utils.VietnamTime()
		if err := tx.Model(&models.PaymentSchedule{}).
			Where("contract_id = ? AND status <> ?", contractID, models.InstallmentPaid).
			Updates(map[string]interface{}{
				"status":    models.InstallmentPaid,
				"paid_date": now,
				"note":      "Settled by early payoff",
			}).Error; err != nil {
			return err
		}

		record := models.PaymentTransaction{
			ContractID:      contract.ID,
			PayerID:         userID,
			RecipientID:     contract.LenderID,
			Amount:          quote.TotalPayoff,
			TransactionType: models.TxEarlyPayoff,
			Status:          models.TxCompleted,
			LateFee:         quote.LateFees,
			TransactionRef:  fmt.Sprintf("PAYOFF-%s", contract.ContractNumber),
			Note: fmt.Sprintf("Early payoff, interest discounted by %s",
				utils.FormatVND(quote.Savings)),
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.LenderProfile{}).
			Where("user_id = ?", contract.LenderID).
			Update("total_returns", gorm.Expr("total_returns + ?", quote.TotalPayoff)).Error; err != nil {
			return err
		}
		return settleContractIfDone(tx, &contract)
	})
	if err != nil {
		return nil, err
	}

	var contract models.LoanContract
	if db.First(&contract, contractID).Error == nil {
		Notify(db, contract.LenderID, models.NotifyPaymentReceived,
			"Contract settled early",
			fmt.Sprintf("Contract %s was paid off early for %s.",
				contract.ContractNumber, utils.FormatVND(quote.TotalPayoff)),
			&contract.LoanRequestID)
	}
	return quote, nil
}

// PendingInstallments lists the borrower's unpaid installments across active
// contracts, soonest first, with the live late charge attached.
func PendingInstallments(db *gorm.DB, borrowerID uint) ([]models.InstallmentResponse, error) {
	var rows []models.PaymentSchedule
	err := db.Joins("JOIN loan_contracts ON loan_contracts.id = payment_schedules.contract_id").
		Where("loan_contracts.borrower_id = ? AND loan_contracts.status = ?", borrowerID, models.ContractActive).
		Where("payment_schedules.status <> ?", models.InstallmentPaid).
		Order("payment_schedules.due_date").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	now := utils.VietnamTime()
	out := make([]models.InstallmentResponse, 0, len(rows))
	for i := range rows {
		lateDays, fee := LateCharge(&rows[i], now)
		out = append(out, models.InstallmentResponse{
			ID:          rows[i].ID,
			Installment: rows[i].InstallmentNumber,
			DueDate:     rows[i].DueDate.Format("2006-01-02"),
			Principal:   rows[i].PrincipalAmount,
			Interest:    rows[i].InterestAmount,
			Total:       rows[i].TotalAmount,
			PaidAmount:  rows[i].PaidAmount,
			Status:      rows[i].Status,
			IsOverdue:   lateDays > 0,
			LateDays:    lateDays,
			LateFee:     fee,
		})
	}
	return out, nil
}

// PaymentMonitorReport summarizes one sweep over all active contracts.
type PaymentMonitorReport struct {
	CheckedContracts int `json:"checked_contracts"`
	MarkedOverdue    int `json:"marked_overdue"`
	RemindersSent    int `json:"reminders_sent"`
	OverdueNotices   int `json:"overdue_notices"`
}

// MonitorAllPayments is the daily sweep: flags overdue installments with
// their accrued fees, reminds borrowers of upcoming due dates, and nudges
// anyone already behind.
func MonitorAllPayments(db *gorm.DB) (*PaymentMonitorReport, error) {
	started := time.Now()
	runLog := StartAgentLog(db, models.AgentPaymentMonitor, nil, map[string]string{"trigger": "scheduled"})

	report := &PaymentMonitorReport{}
	now := utils.VietnamTime()

	var contracts []models.LoanContract
	if err := db.Where("status = ?", models.ContractActive).Find(&contracts).Error; err != nil {
		FinishAgentLogFailure(db, runLog, err.Error(), started)
		return nil, err
	}
	report.CheckedContracts = len(contracts)

	for i := range contracts {
		contract := &contracts[i]

		var rows []models.PaymentSchedule
		if err := db.Where("contract_id = ? AND status <> ?", contract.ID, models.InstallmentPaid).
			Order("installment_number").Find(&rows).Error; err != nil {
			utils.LogError(err, "payment monitor load schedule")
			continue
		}

		for j := range rows {
			s := &rows[j]
			lateDays, fee := LateCharge(s, now)

			if lateDays > 0 {
				updates := map[string]interface{}{
					"late_days": lateDays,
					"late_fee":  fee,
				}
				if s.Status != models.InstallmentOverdue && s.Status != models.InstallmentPartial {
					updates["status"] = models.InstallmentOverdue
					report.MarkedOverdue++
				}
				if err := db.Model(s).Updates(updates).Error; err != nil {
					utils.LogError(err, "payment monitor mark overdue")
					continue
				}
				if report.OverdueNotices < overdueNoticeCap {
					Notify(db, contract.BorrowerID, models.NotifyPaymentOverdue,
						"Installment overdue",
						fmt.Sprintf("Installment %d of contract %s is %d days overdue. Late fee so far: %s.",
							s.InstallmentNumber, contract.ContractNumber, lateDays, utils.FormatVND(fee)),
						&contract.LoanRequestID)
					report.OverdueNotices++
				}
				continue
			}

			daysUntil := int(s.DueDate.Truncate(24*time.Hour).Sub(now.Truncate(24*time.Hour)).Hours() / 24)
			if daysUntil >= 0 && daysUntil <= reminderWindowDays && !s.ReminderSent {
				Notify(db, contract.BorrowerID, models.NotifyPaymentReminder,
					"Payment due soon",
					fmt.Sprintf("Installment %d of contract %s (%s) is due on %s.",
						s.InstallmentNumber, contract.ContractNumber,
						utils.FormatVND(s.TotalAmount), s.DueDate.Format("02/01/2006")),
					&contract.LoanRequestID)
				db.Model(s).Update("reminder_sent", true)
				report.RemindersSent++
			}
		}
	}

	FinishAgentLogSuccess(db, runLog, report, started)
	return report, nil
}
