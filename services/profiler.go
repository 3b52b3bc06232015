package services

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/namkjs/p2plending/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Factor weights for the 0-1000 credit score. Each factor is scored 0-100
// and contributes factor * weight * 10 points.
const (
	weightKYC            = 0.30
	weightIncome         = 0.25
	weightPaymentHistory = 0.20
	weightDebtRatio      = 0.25
)

type scoreBreakdown struct {
	KYCScore            float64 `json:"kyc_score"`
	IncomeScore         float64 `json:"income_score"`
	PaymentHistoryScore float64 `json:"payment_history_score"`
	DebtRatioScore      float64 `json:"debt_ratio_score"`
	DebtToIncomeRatio   float64 `json:"debt_to_income_ratio"`
	CreditScore         int     `json:"credit_score"`
	RiskLevel           string  `json:"risk_level"`
	Recommendation      string  `json:"recommendation"`
}

// ProfileBorrower recomputes the borrower's credit score and risk level from
// KYC status, declared income, repayment history and current debt load, and
// upserts the risk profile.
func ProfileBorrower(db *gorm.DB, userID uint) (*models.BorrowerRiskProfile, error) {
	started := time.Now()
	runLog := StartAgentLog(db, models.AgentBorrowerProfiler, &userID, map[string]uint{"user_id": userID})

	var profile models.UserProfile
	if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			FinishAgentLogFailure(db, runLog, "user has no profile", started)
			return nil, errors.New("user has no profile")
		}
		FinishAgentLogFailure(db, runLog, err.Error(), started)
		return nil, err
	}

	kycScore := scoreKYC(&profile)
	incomeScore := scoreIncome(profile.MonthlyIncome)
	historyScore := scoreLoanHistory(db, userID)
	debtRatio := debtToIncomeRatio(db, userID, profile.MonthlyIncome)
	debtScore := scoreDebtRatio(debtRatio, profile.MonthlyIncome)

	raw := kycScore*weightKYC*10 +
		incomeScore*weightIncome*10 +
		historyScore*weightPaymentHistory*10 +
		debtScore*weightDebtRatio*10
	creditScore := clampScore(int(raw))
	riskLevel := riskLevelFor(creditScore)

	breakdown := scoreBreakdown{
		KYCScore:            kycScore,
		IncomeScore:         incomeScore,
		PaymentHistoryScore: historyScore,
		DebtRatioScore:      debtScore,
		DebtToIncomeRatio:   debtRatio,
		CreditScore:         creditScore,
		RiskLevel:           riskLevel,
		Recommendation:      riskRecommendation(&profile, debtRatio, riskLevel),
	}
	analysis, _ := json.Marshal(breakdown)

	risk := models.BorrowerRiskProfile{
		UserID:              userID,
		CreditScore:         creditScore,
		RiskLevel:           riskLevel,
		IncomeStability:     incomeScore,
		DebtToIncomeRatio:   debtRatio,
		PaymentHistoryScore: historyScore,
		AIAnalysis:          datatypes.JSON(analysis),
	}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"credit_score", "risk_level", "income_stability",
			"debt_to_income_ratio", "payment_history_score", "ai_analysis",
		}),
	}).Create(&risk).Error
	if err != nil {
		FinishAgentLogFailure(db, runLog, err.Error(), started)
		return nil, err
	}

	FinishAgentLogSuccess(db, runLog, breakdown, started)
	return &risk, nil
}

// scoreKYC gives full credit for a verified identity, otherwise falls back to
// how well the OCR matched whatever the user entered.
func scoreKYC(profile *models.UserProfile) float64 {
	if profile.KYCStatus == models.KYCVerified {
		return 100
	}
	if profile.OCRMatchScore > 0 {
		return profile.OCRMatchScore
	}
	return 0
}

// scoreIncome maps declared monthly income (VND) onto 0-100.
func scoreIncome(monthly int64) float64 {
	switch {
	case monthly >= 20_000_000:
		return 100
	case monthly >= 10_000_000:
		return 80
	case monthly >= 5_000_000:
		return 60
	case monthly > 0:
		return 40
	default:
		return 0
	}
}

// scoreLoanHistory rewards closed contracts. A borrower with no history gets
// the neutral thin-file score.
func scoreLoanHistory(db *gorm.DB, userID uint) float64 {
	var total, closed int64
	db.Model(&models.LoanContract{}).Where("borrower_id = ?", userID).Count(&total)
	if total == 0 {
		return 50
	}
	db.Model(&models.LoanContract{}).
		Where("borrower_id = ? AND status = ?", userID, models.ContractCompleted).
		Count(&closed)
	score := 60 + 10*float64(closed)
	if score > 100 {
		score = 100
	}
	return score
}

// debtToIncomeRatio sums monthly obligations on active contracts against income.
func debtToIncomeRatio(db *gorm.DB, userID uint, monthlyIncome int64) float64 {
	if monthlyIncome <= 0 {
		return 0
	}
	var contracts []models.LoanContract
	db.Where("borrower_id = ? AND status = ?", userID, models.ContractActive).Find(&contracts)

	var monthlyDebt int64
	for _, c := range contracts {
		var months int64
		db.Model(&models.PaymentSchedule{}).Where("contract_id = ?", c.ID).Count(&months)
		if months > 0 {
			monthlyDebt += c.TotalAmount / months
		}
	}
	return float64(monthlyDebt) / float64(monthlyIncome)
}

func scoreDebtRatio(ratio float64, monthlyIncome int64) float64 {
	if monthlyIncome <= 0 {
		// No income declared, the ratio means nothing
		return 60
	}
	switch {
	case ratio <= 0.3:
		return 100
	case ratio <= 0.5:
		return 70
	case ratio <= 0.7:
		return 50
	default:
		return 30
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 1000 {
		return 1000
	}
	return score
}

func riskLevelFor(creditScore int) string {
	switch {
	case creditScore >= 800:
		return models.RiskVeryLow
	case creditScore >= 650:
		return models.RiskLow
	case creditScore >= 500:
		return models.RiskMedium
	case creditScore >= 350:
		return models.RiskHigh
	default:
		return models.RiskVeryHigh
	}
}

func riskRecommendation(profile *models.UserProfile, debtRatio float64, riskLevel string) string {
	switch {
	case profile.KYCStatus != models.KYCVerified:
		return "Identity not verified, lend with caution"
	case debtRatio > 0.5:
		return "Debt load above half of declared income"
	case riskLevel == models.RiskVeryLow || riskLevel == models.RiskLow:
		return "Reliable borrower profile"
	default:
		return "No outstanding flags"
	}
}
