package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/namkjs/p2plending/models"
	"github.com/namkjs/p2plending/utils"

	"gorm.io/gorm"
)

// Repayment methods
const (
	MethodEqualPrincipal = "EQUAL_PRINCIPAL"
	MethodEqualPayment   = "EQUAL_PAYMENT"
)

// Installments fall due every 30 days from the start date.
const installmentStepDays = 30

// CalculateSchedule builds an amortization plan. EQUAL_PRINCIPAL pays the
// principal down in equal parts with interest on the declining balance,
// EQUAL_PAYMENT is a standard annuity. Amounts are whole VND.
func CalculateSchedule(principal int64, annualRate float64, months int, method string) (*models.SchedulePlan, error) {
	if principal <= 0 {
		return nil, errors.New("principal must be positive")
	}
	if months <= 0 {
		return nil, errors.New("duration must be at least one month")
	}
	if annualRate < 0 {
		return nil, errors.New("interest rate cannot be negative")
	}

	monthlyRate := annualRate / 12 / 100
	plan := &models.SchedulePlan{
		Principal:      principal,
		InterestRate:   annualRate,
		DurationMonths: months,
		PaymentMethod:  method,
	}

	remaining := principal
	switch method {
	case MethodEqualPrincipal:
		base := principal / int64(months)
		for m := 1; m <= months; m++ {
			principalPay := base
			if m == months {
				principalPay = remaining // remainder lands on the last installment
			}
			interestPay := roundVND(float64(remaining) * monthlyRate)
			remaining -= principalPay
			plan.Schedule = append(plan.Schedule, models.ScheduleItem{
				Month:            m,
				PrincipalPayment: principalPay,
				InterestPayment:  interestPay,
				TotalPayment:     principalPay + interestPay,
				RemainingBalance: remaining,
			})
			plan.TotalInterest += interestPay
		}

	case MethodEqualPayment:
		var payment int64
		if monthlyRate == 0 {
			payment = roundVND(float64(principal) / float64(months))
		} else {
			factor := math.Pow(1+monthlyRate, float64(months))
			payment = roundVND(float64(principal) * monthlyRate * factor / (factor - 1))
		}
		for m := 1; m <= months; m++ {
			interestPay := roundVND(float64(remaining) * monthlyRate)
			principalPay := payment - interestPay
			if m == months || principalPay > remaining {
				principalPay = remaining // absorb rounding drift
			}
			remaining -= principalPay
			plan.Schedule = append(plan.Schedule, models.ScheduleItem{
				Month:            m,
				PrincipalPayment: principalPay,
				InterestPayment:  interestPay,
				TotalPayment:     principalPay + interestPay,
				RemainingBalance: remaining,
			})
			plan.TotalInterest += interestPay
		}

	default:
		return nil, fmt.Errorf("unknown payment method: %s", method)
	}

	plan.TotalPayment = principal + plan.TotalInterest
	return plan, nil
}

func roundVND(v float64) int64 {
	return int64(math.Round(v))
}

// validateContractParties gates the invest action: the loan must be open, the
// borrower verified and distinct from the lender, and the lender's wallet must
// cover the principal.
func validateContractParties(loan *models.LoanRequest, borrower, lenderWallet *models.UserProfile, lenderID uint) error {
	if loan.Status != models.LoanApproved {
		return errors.New("loan is not open for investment")
	}
	if loan.BorrowerID == lenderID {
		return errors.New("cannot invest in your own loan")
	}
	if borrower.KYCStatus != models.KYCVerified {
		return errors.New("borrower identity is not verified")
	}
	if lenderWallet.Balance < loan.Amount {
		return ErrInsufficientBalance
	}
	return nil
}

// CreateContract is the lender's invest action: the principal moves from the
// lender to the borrower, a contract is drafted for signatures and the loan
// leaves the marketplace. Any failure rolls the transfer back.
func CreateContract(db *gorm.DB, loanRequestID, lenderID uint, method string) (*models.LoanContract, error) {
	started := time.Now()
	runLog := StartAgentLog(db, models.AgentContractGenerator, &lenderID, map[string]uint{
		"loan_request_id": loanRequestID, "lender_id": lenderID,
	})

	if method == "" {
		method = MethodEqualPrincipal
	}

	var contract *models.LoanContract
	err := db.Transaction(func(tx *gorm.DB) error {
		var loan models.LoanRequest
		if err := tx.Preload("Borrower").First(&loan, loanRequestID).Error; err != nil {
			return errors.New("loan request not found")
		}
		var borrowerProfile models.UserProfile
		if err := tx.Where("user_id = ?", loan.BorrowerID).First(&borrowerProfile).Error; err != nil {
			return errors.New("borrower has no profile")
		}
		var lenderWallet models.UserProfile
		if err := tx.Where("user_id = ?", lenderID).First(&lenderWallet).Error; err != nil {
			return errors.New("lender has no wallet")
		}
		if err := validateContractParties(&loan, &borrowerProfile, &lenderWallet, lenderID); err != nil {
			return err
		}

		plan, err := CalculateSchedule(loan.Amount, loan.InterestRate, loan.DurationMonths, method)
		if err != nil {
			return err
		}

		c := models.LoanContract{
			ContractNumber:  fmt.Sprintf("HD-%d-%d", time.Now().Unix(), loan.ID),
			LoanRequestID:   loan.ID,
			BorrowerID:      loan.BorrowerID,
			LenderID:        lenderID,
			PrincipalAmount: loan.Amount,
			InterestRate:    loan.InterestRate,
			TotalInterest:   plan.TotalInterest,
			TotalAmount:     plan.TotalPayment,
			PaymentMethod:   method,
			Status:          models.ContractPendingSignatures,
		}
		c.ContractContent = renderContractContent(&c, &loan, plan)

		if err := tx.Create(&c).Error; err != nil {
			return err
		}

		if err := transferBalance(tx, lenderID, loan.BorrowerID, loan.Amount); err != nil {
			return err
		}
		disbursement := models.PaymentTransaction{
			ContractID:      c.ID,
			PayerID:         lenderID,
			RecipientID:     loan.BorrowerID,
			Amount:          loan.Amount,
			TransactionType: models.TxDisbursement,
			Status:          models.TxCompleted,
			TransactionRef:  fmt.Sprintf("DISB-%s", c.ContractNumber),
			Note:            "Loan disbursement on investment",
		}
		if err := tx.Create(&disbursement).Error; err != nil {
			return err
		}

		if err := tx.Model(&loan).Update("status", models.LoanContractCreated).Error; err != nil {
			return err
		}
		contract = &c
		return nil
	})
	if err != nil {
		FinishAgentLogFailure(db, runLog, err.Error(), started)
		return nil, err
	}

	Notify(db, contract.BorrowerID, models.NotifyContractStatus,
		"Contract ready to sign",
		fmt.Sprintf("A lender funded your loan #%d: %s is in your wallet. Contract %s is waiting for your signature.",
			contract.LoanRequestID, utils.FormatVND(contract.PrincipalAmount), contract.ContractNumber),
		&contract.LoanRequestID)
	Notify(db, contract.LenderID, models.NotifyContractStatus,
		"Contract created",
		fmt.Sprintf("Contract %s has been drafted. Sign it to proceed.", contract.ContractNumber),
		&contract.LoanRequestID)

	FinishAgentLogSuccess(db, runLog, contract, started)
	return contract, nil
}

// SignContract records one party's signature. When both have signed, the
// contract activates: the schedule is materialized and the loan becomes
// FUNDED. The principal already moved at investment time.
func SignContract(db *gorm.DB, contractID, userID uint, role string) (*models.LoanContract, error) {
	var contract models.LoanContract
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&contract, contractID).Error; err != nil {
			return errors.New("contract not found")
		}
		if contract.Status != models.ContractPendingSignatures {
			return errors.New("contract is not awaiting signatures")
		}

		now := utils.VietnamTime()
		switch role {
		case "borrower":
			if contract.BorrowerID != userID {
				return errors.New("only the borrower can sign as borrower")
			}
			if contract.BorrowerSigned {
				return errors.New("borrower has already signed")
			}
			contract.BorrowerSigned = true
			contract.BorrowerSignedAt = &now
		case "lender":
			if contract.LenderID != userID {
				return errors.New("only the lender can sign as lender")
			}
			if contract.LenderSigned {
				return errors.New("lender has already signed")
			}
			contract.LenderSigned = true
			contract.LenderSignedAt = &now
		default:
			return errors.New("role must be borrower or lender")
		}

		if contract.BorrowerSigned && contract.LenderSigned {
			if err := activateContract(tx, &contract, now); err != nil {
				return err
			}
		}
		return tx.Save(&contract).Error
	})
	if err != nil {
		return nil, err
	}

	if contract.Status == models.ContractActive {
		Notify(db, contract.BorrowerID, models.NotifyLoanFunded,
			"Loan funded",
			fmt.Sprintf("Contract %s is active. Your repayment schedule starts today.",
				contract.ContractNumber),
			&contract.LoanRequestID)
		Notify(db, contract.LenderID, models.NotifyContractStatus,
			"Contract active",
			fmt.Sprintf("Contract %s is active. Repayments run for the agreed term.", contract.ContractNumber),
			&contract.LoanRequestID)
	}
	return &contract, nil
}

// activateContract runs inside the signing transaction once both signatures
// are in place.
func activateContract(tx *gorm.DB, contract *models.LoanContract, now time.Time) error {
	var loan models.LoanRequest
	if err := tx.First(&loan, contract.LoanRequestID).Error; err != nil {
		return err
	}

	method := contract.PaymentMethod
	if method == "" {
		method = MethodEqualPrincipal
	}
	plan, err := CalculateSchedule(contract.PrincipalAmount, contract.InterestRate, loan.DurationMonths, method)
	if err != nil {
		return err
	}

	end := now.AddDate(0, 0, installmentStepDays*loan.DurationMonths)
	contract.StartDate = &now
	contract.EndDate = &end
	contract.Status = models.ContractActive

	for _, item := range plan.Schedule {
		row := models.PaymentSchedule{
			ContractID:        contract.ID,
			InstallmentNumber: item.Month,
			DueDate:           now.AddDate(0, 0, installmentStepDays*item.Month),
			PrincipalAmount:   item.PrincipalPayment,
			InterestAmount:    item.InterestPayment,
			TotalAmount:       item.TotalPayment,
			Status:            models.InstallmentPending,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}

	if err := tx.Model(&loan).Update("status", models.LoanFunded).Error; err != nil {
		return err
	}
	return tx.Model(&models.LenderProfile{}).
		Where("user_id = ?", contract.LenderID).
		Updates(map[string]interface{}{
			"total_invested":     gorm.Expr("total_invested + ?", contract.PrincipalAmount),
			"active_investments": gorm.Expr("active_investments + 1"),
		}).Error
}

func renderContractContent(c *models.LoanContract, loan *models.LoanRequest, plan *models.SchedulePlan) string {
	borrowerName := "Borrower"
	if loan.Borrower.Name != nil {
		borrowerName = *loan.Borrower.Name
	}
	return fmt.Sprintf(`LOAN AGREEMENT %s

Borrower: %s (user #%d)
Lender:   user #%d

Principal:       %s
Interest rate:   %s per year
Duration:        %d months
Repayment:       %s, %d installments every %d days
Total interest:  %s
Total repayment: %s

Purpose: %s

The borrower repays per the attached installment schedule. Installments unpaid
past their due date accrue a late fee of 0.05%% of the installment amount per
day. Early payoff settles the full remaining principal plus half of the
remaining interest. Disputes are handled through the platform's resolution
process before any external escalation.`,
		c.ContractNumber,
		borrowerName, c.BorrowerID,
		c.LenderID,
		utils.FormatVND(c.PrincipalAmount),
		utils.FormatPercent(c.InterestRate),
		loan.DurationMonths,
		plan.PaymentMethod, len(plan.Schedule), installmentStepDays,
		utils.FormatVND(c.TotalInterest),
		utils.FormatVND(c.TotalAmount),
		loan.Purpose)
}
