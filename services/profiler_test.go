package services

import (
	"testing"

	"github.com/namkjs/p2plending/models"

	"github.com/stretchr/testify/assert"
)

func TestScoreKYC(t *testing.T) {
	verified := &models.UserProfile{KYCStatus: models.KYCVerified}
	assert.Equal(t, float64(100), scoreKYC(verified))

	// Unverified borrowers fall back to the OCR match score
	pending := &models.UserProfile{KYCStatus: models.KYCPending, OCRMatchScore: 65}
	assert.Equal(t, float64(65), scoreKYC(pending))

	fresh := &models.UserProfile{KYCStatus: models.KYCUnverified}
	assert.Equal(t, float64(0), scoreKYC(fresh))
}

func TestScoreIncome(t *testing.T) {
	assert.Equal(t, float64(100), scoreIncome(25_000_000))
	assert.Equal(t, float64(80), scoreIncome(15_000_000))
	assert.Equal(t, float64(60), scoreIncome(6_000_000))
	assert.Equal(t, float64(40), scoreIncome(2_000_000))
	assert.Equal(t, float64(0), scoreIncome(0))
}

func TestScoreDebtRatio(t *testing.T) {
	assert.Equal(t, float64(100), scoreDebtRatio(0.25, 10_000_000))
	assert.Equal(t, float64(70), scoreDebtRatio(0.45, 10_000_000))
	assert.Equal(t, float64(50), scoreDebtRatio(0.65, 10_000_000))
	assert.Equal(t, float64(30), scoreDebtRatio(0.9, 10_000_000))
	// No declared income: the ratio means nothing, neutral score
	assert.Equal(t, float64(60), scoreDebtRatio(0, 0))
}

// A verified borrower with a solid income, clean history and light debt load
// must land in the lowest risk band.
func TestCreditScoreComposition(t *testing.T) {
	kyc := 100.0
	income := scoreIncome(30_000_000)
	history := 100.0
	debt := scoreDebtRatio(0.15, 30_000_000)

	raw := kyc*weightKYC*10 + income*weightIncome*10 + history*weightPaymentHistory*10 + debt*weightDebtRatio*10
	score := clampScore(int(raw))

	assert.Equal(t, 1000, score)
	assert.Equal(t, models.RiskVeryLow, riskLevelFor(score))
}
