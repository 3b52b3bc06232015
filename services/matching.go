package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/namkjs/p2plending/models"
	"github.com/namkjs/p2plending/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MatchThreshold is the minimum score for a lender-loan pair to be recorded.
const MatchThreshold = 50.0

// Component weights of the match score.
const (
	matchWeightAmount   = 30.0
	matchWeightDuration = 25.0
	matchWeightRate     = 25.0
	matchWeightRisk     = 20.0
)

// ScoreMatch rates how well a loan request fits a lender's preferences,
// 0-100, with human-readable reasons for the hits.
func ScoreMatch(loan *models.LoanRequest, lender *models.LenderProfile, risk *models.BorrowerRiskProfile) (float64, []string) {
	var score float64
	var reasons []string

	// Amount: full weight in range, otherwise a half-scaled ratio of how far
	// outside the range the request falls.
	switch {
	case loan.Amount >= lender.MinAmount && loan.Amount <= lender.MaxAmount:
		score += matchWeightAmount
		reasons = append(reasons, fmt.Sprintf("amount %s within range", utils.FormatVND(loan.Amount)))
	case loan.Amount < lender.MinAmount && lender.MinAmount > 0:
		score += matchWeightAmount * 0.5 * float64(loan.Amount) / float64(lender.MinAmount)
	case loan.Amount > lender.MaxAmount && loan.Amount > 0:
		score += matchWeightAmount * 0.5 * float64(lender.MaxAmount) / float64(loan.Amount)
	}

	// Duration: lose 2 points per month outside the preferred range.
	monthsOut := 0
	if loan.DurationMonths < lender.PreferredDurMin {
		monthsOut = lender.PreferredDurMin - loan.DurationMonths
	} else if loan.DurationMonths > lender.PreferredDurMax {
		monthsOut = loan.DurationMonths - lender.PreferredDurMax
	}
	if monthsOut == 0 {
		score += matchWeightDuration
		reasons = append(reasons, fmt.Sprintf("duration %d months within range", loan.DurationMonths))
	} else if d := matchWeightDuration - 2*float64(monthsOut); d > 0 {
		score += d
	}

	// Rate: lose 5 points per percentage point under the lender's minimum.
	if loan.InterestRate >= lender.MinInterestRate {
		score += matchWeightRate
		reasons = append(reasons, fmt.Sprintf("rate %s meets minimum", utils.FormatPercent(loan.InterestRate)))
	} else if r := matchWeightRate - 5*(lender.MinInterestRate-loan.InterestRate); r > 0 {
		score += r
	}

	riskScore, riskReason := scoreRiskFit(lender.RiskTolerance, risk)
	score += riskScore
	if riskReason != "" {
		reasons = append(reasons, riskReason)
	}

	return score, reasons
}

// scoreRiskFit compares the borrower's risk level against the lender's
// tolerance. HIGH tolerance accepts every level, MEDIUM accepts LOW and
// MEDIUM, LOW accepts only LOW. Anything else, VERY_LOW included, earns the
// consolation 10; unprofiled borrowers score a flat 14.
func scoreRiskFit(tolerance string, risk *models.BorrowerRiskProfile) (float64, string) {
	if risk == nil {
		return 14, ""
	}

	var accepted bool
	switch tolerance {
	case models.RiskToleranceHigh:
		accepted = true
	case models.RiskToleranceLow:
		accepted = risk.RiskLevel == models.RiskLow
	default:
		accepted = risk.RiskLevel == models.RiskLow || risk.RiskLevel == models.RiskMedium
	}

	if accepted {
		return matchWeightRisk, fmt.Sprintf("borrower risk %s within tolerance", risk.RiskLevel)
	}
	return 10, ""
}

// MatchLoanToLenders scores an approved loan against every active lender
// profile, replaces the stored results for the loan with the pairs at or
// above the threshold and notifies the lenders. The borrower hears back
// either way.
func MatchLoanToLenders(db *gorm.DB, loanRequestID uint) ([]models.LenderMatchResult, error) {
	started := time.Now()
	runLog := StartAgentLog(db, models.AgentLenderMatcher, nil, map[string]uint{"loan_request_id": loanRequestID})

	var loan models.LoanRequest
	if err := db.First(&loan, loanRequestID).Error; err != nil {
		FinishAgentLogFailure(db, runLog, err.Error(), started)
		return nil, err
	}
	if loan.Status != models.LoanApproved {
		FinishAgentLogFailure(db, runLog, "loan is not approved", started)
		return nil, errors.New("loan is not approved")
	}

	risk := loadRiskProfile(db, loan.BorrowerID)

	var lenders []models.LenderProfile
	if err := db.Where("is_active = ? AND user_id <> ?", true, loan.BorrowerID).Find(&lenders).Error; err != nil {
		FinishAgentLogFailure(db, runLog, err.Error(), started)
		return nil, err
	}

	// Results from a previous run are stale once preferences change
	db.Where("loan_request_id = ?", loan.ID).Delete(&models.LenderMatchResult{})

	var matches []models.LenderMatchResult
	for i := range lenders {
		score, reasons := ScoreMatch(&loan, &lenders[i], risk)
		if score < MatchThreshold {
			continue
		}
		rawReasons, _ := json.Marshal(reasons)
		match := models.LenderMatchResult{
			LoanRequestID: loan.ID,
			LenderID:      lenders[i].UserID,
			MatchScore:    score,
			MatchReasons:  datatypes.JSON(rawReasons),
			IsNotified:    true,
		}
		if err := db.Create(&match).Error; err != nil {
			utils.LogError(err, "persist match result")
			continue
		}
		matches = append(matches, match)

		Notify(db, lenders[i].UserID, models.NotifyLoanMatch,
			"New matching loan",
			fmt.Sprintf("Loan #%d for %s at %s over %d months matches your preferences (score %.0f).",
				loan.ID, utils.FormatVND(loan.Amount), utils.FormatPercent(loan.InterestRate), loan.DurationMonths, score),
			&loan.ID)
	}

	if len(matches) > 0 {
		Notify(db, loan.BorrowerID, models.NotifySystem,
			"Lenders found",
			fmt.Sprintf("%d lenders match your loan request #%d.", len(matches), loan.ID),
			&loan.ID)
	} else {
		Notify(db, loan.BorrowerID, models.NotifySystem,
			"No matching lenders yet",
			fmt.Sprintf("No lender currently matches your loan request #%d. It stays visible on the marketplace.", loan.ID),
			&loan.ID)
	}

	FinishAgentLogSuccess(db, runLog, map[string]int{"matches": len(matches)}, started)
	return matches, nil
}

// MatchLenderToLoans scores every open approved loan for one lender, for the
// marketplace view. Nothing is persisted.
func MatchLenderToLoans(db *gorm.DB, lenderID uint) ([]models.MatchedLoan, error) {
	var lender models.LenderProfile
	if err := db.Where("user_id = ?", lenderID).First(&lender).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("lender profile not found")
		}
		return nil, err
	}

	var loans []models.LoanRequest
	if err := db.Preload("Borrower").
		Where("status = ? AND borrower_id <> ?", models.LoanApproved, lenderID).
		Order("created_at DESC").Find(&loans).Error; err != nil {
		return nil, err
	}

	var matched []models.MatchedLoan
	for i := range loans {
		risk := loadRiskProfile(db, loans[i].BorrowerID)
		score, reasons := ScoreMatch(&loans[i], &lender, risk)
		if score < MatchThreshold {
			continue
		}
		matched = append(matched, models.MatchedLoan{
			Loan:       ToLoanResponse(&loans[i]),
			MatchScore: score,
			Reasons:    reasons,
		})
	}
	sortMatchedLoans(matched)
	return matched, nil
}

// NotifyLenderOfMatches sends one aggregate notification with the lender's
// best current matches, used after a preference update.
func NotifyLenderOfMatches(db *gorm.DB, lenderID uint) {
	matched, err := MatchLenderToLoans(db, lenderID)
	if err != nil || len(matched) == 0 {
		return
	}

	lines := make([]string, 0, 5)
	for i := range matched {
		if i == 5 {
			break
		}
		lines = append(lines, fmt.Sprintf("#%d %s at %s (score %.0f)",
			matched[i].Loan.ID, utils.FormatVND(matched[i].Loan.Amount),
			utils.FormatPercent(matched[i].Loan.InterestRate), matched[i].MatchScore))
	}
	Notify(db, lenderID, models.NotifyLoanMatch,
		"Loans matching your preferences",
		fmt.Sprintf("%d loans match your updated preferences. Top matches: %s.",
			len(matched), strings.Join(lines, "; ")),
		nil)
}

func sortMatchedLoans(matched []models.MatchedLoan) {
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].MatchScore > matched[j].MatchScore
	})
}

// ToLoanResponse flattens a loan row for API output.
func ToLoanResponse(loan *models.LoanRequest) models.LoanResponse {
	borrowerName := ""
	if loan.Borrower.Name != nil {
		borrowerName = *loan.Borrower.Name
	}
	return models.LoanResponse{
		ID:             loan.ID,
		BorrowerID:     loan.BorrowerID,
		Borrower:       borrowerName,
		Amount:         loan.Amount,
		InterestRate:   loan.InterestRate,
		DurationMonths: loan.DurationMonths,
		Purpose:        loan.Purpose,
		Status:         loan.Status,
		CreatedAt:      loan.CreatedAt,
	}
}

func loadRiskProfile(db *gorm.DB, userID uint) *models.BorrowerRiskProfile {
	var risk models.BorrowerRiskProfile
	if err := db.Where("user_id = ?", userID).First(&risk).Error; err != nil {
		return nil
	}
	return &risk
}
