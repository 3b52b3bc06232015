package services

import (
	"testing"

	"github.com/namkjs/p2plending/models"

	"github.com/stretchr/testify/assert"
)

func testLender() *models.LenderProfile {
	return &models.LenderProfile{
		UserID:          2,
		MinAmount:       5_000_000,
		MaxAmount:       50_000_000,
		MinInterestRate: 10,
		PreferredDurMin: 3,
		PreferredDurMax: 12,
		RiskTolerance:   models.RiskToleranceMedium,
		IsActive:        true,
	}
}

func TestScoreMatchPerfectFit(t *testing.T) {
	loan := &models.LoanRequest{
		BorrowerID:     1,
		Amount:         10_000_000,
		InterestRate:   12,
		DurationMonths: 6,
	}
	risk := &models.BorrowerRiskProfile{RiskLevel: models.RiskLow}

	score, reasons := ScoreMatch(loan, testLender(), risk)
	assert.Equal(t, float64(100), score)
	assert.Len(t, reasons, 4)
}

func TestScoreMatchBelowThreshold(t *testing.T) {
	loan := &models.LoanRequest{
		BorrowerID:     1,
		Amount:         200_000_000, // far above the lender's range
		InterestRate:   5,           // below minimum rate
		DurationMonths: 48,          // far beyond preferred duration
	}
	risk := &models.BorrowerRiskProfile{RiskLevel: models.RiskVeryHigh}

	score, _ := ScoreMatch(loan, testLender(), risk)
	assert.Less(t, score, MatchThreshold)
}

func TestScoreMatchRiskTolerance(t *testing.T) {
	loan := &models.LoanRequest{
		BorrowerID:     1,
		Amount:         10_000_000,
		InterestRate:   12,
		DurationMonths: 6,
	}

	// Risk beyond tolerance still earns the consolation 10
	highRisk := &models.BorrowerRiskProfile{RiskLevel: models.RiskHigh}
	score, _ := ScoreMatch(loan, testLender(), highRisk)
	assert.Equal(t, float64(90), score)

	// MEDIUM tolerance accepts exactly LOW and MEDIUM, so even a VERY_LOW
	// borrower sits outside the list
	veryLow := &models.BorrowerRiskProfile{RiskLevel: models.RiskVeryLow}
	riskScore, _ := scoreRiskFit(models.RiskToleranceMedium, veryLow)
	assert.Equal(t, float64(10), riskScore)
	score, _ = ScoreMatch(loan, testLender(), veryLow)
	assert.Equal(t, float64(90), score)

	// HIGH tolerance accepts every level
	riskScore, _ = scoreRiskFit(models.RiskToleranceHigh, &models.BorrowerRiskProfile{RiskLevel: models.RiskVeryHigh})
	assert.Equal(t, float64(20), riskScore)

	// LOW tolerance accepts only LOW
	riskScore, _ = scoreRiskFit(models.RiskToleranceLow, &models.BorrowerRiskProfile{RiskLevel: models.RiskMedium})
	assert.Equal(t, float64(10), riskScore)
}

func TestScoreMatchUnprofiledBorrower(t *testing.T) {
	loan := &models.LoanRequest{
		BorrowerID:     1,
		Amount:         10_000_000,
		InterestRate:   12,
		DurationMonths: 6,
	}

	// Unknown risk profile earns a flat 14 on the risk component
	score, _ := ScoreMatch(loan, testLender(), nil)
	assert.Equal(t, float64(94), score)
}

func TestScoreMatchDurationPenalty(t *testing.T) {
	loan := &models.LoanRequest{
		BorrowerID:     1,
		Amount:         10_000_000,
		InterestRate:   12,
		DurationMonths: 14, // two months past the preferred maximum
	}
	risk := &models.BorrowerRiskProfile{RiskLevel: models.RiskLow}

	// Duration loses 2 points per month out of range: 25 - 4 = 21
	score, _ := ScoreMatch(loan, testLender(), risk)
	assert.Equal(t, float64(96), score)
}

func TestScoreMatchRatePenalty(t *testing.T) {
	loan := &models.LoanRequest{
		BorrowerID:     1,
		Amount:         10_000_000,
		InterestRate:   8, // two points under the lender's minimum
		DurationMonths: 6,
	}
	risk := &models.BorrowerRiskProfile{RiskLevel: models.RiskLow}

	// Rate loses 5 points per percentage point under: 25 - 10 = 15
	score, _ := ScoreMatch(loan, testLender(), risk)
	assert.Equal(t, float64(90), score)
}

func TestRiskLevelBands(t *testing.T) {
	assert.Equal(t, models.RiskVeryLow, riskLevelFor(850))
	assert.Equal(t, models.RiskVeryLow, riskLevelFor(800))
	assert.Equal(t, models.RiskLow, riskLevelFor(700))
	assert.Equal(t, models.RiskMedium, riskLevelFor(500))
	assert.Equal(t, models.RiskHigh, riskLevelFor(400))
	assert.Equal(t, models.RiskVeryHigh, riskLevelFor(100))
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, clampScore(-5))
	assert.Equal(t, 1000, clampScore(1200))
	assert.Equal(t, 640, clampScore(640))
}
