package services

import (
	"testing"

	"github.com/namkjs/p2plending/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateContractParties(t *testing.T) {
	loan := &models.LoanRequest{BorrowerID: 1, Amount: 10_000_000, Status: models.LoanApproved}
	borrower := &models.UserProfile{UserID: 1, KYCStatus: models.KYCVerified}
	lender := &models.UserProfile{UserID: 2, Balance: 20_000_000}

	assert.NoError(t, validateContractParties(loan, borrower, lender, 2))

	// Self-lending
	assert.Error(t, validateContractParties(loan, borrower, lender, 1))

	// Loan not open
	closed := &models.LoanRequest{BorrowerID: 1, Amount: 10_000_000, Status: models.LoanFunded}
	assert.Error(t, validateContractParties(closed, borrower, lender, 2))

	// A borrower whose verification was later rejected cannot be funded
	rejected := &models.UserProfile{UserID: 1, KYCStatus: models.KYCRejected}
	assert.Error(t, validateContractParties(loan, rejected, lender, 2))
	unsubmitted := &models.UserProfile{UserID: 1, KYCStatus: models.KYCPending}
	assert.Error(t, validateContractParties(loan, unsubmitted, lender, 2))

	// The principal is debited at invest, so the balance check runs here
	broke := &models.UserProfile{UserID: 2, Balance: 5_000_000}
	err := validateContractParties(loan, borrower, broke, 2)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestCalculateScheduleEqualPrincipal(t *testing.T) {
	plan, err := CalculateSchedule(12_000_000, 12, 6, MethodEqualPrincipal)
	require.NoError(t, err)

	assert.Len(t, plan.Schedule, 6)
	assert.Equal(t, int64(2_000_000), plan.Schedule[0].PrincipalPayment)

	// First month interest: 12,000,000 * 1% = 120,000
	assert.Equal(t, int64(120_000), plan.Schedule[0].InterestPayment)
	// Interest declines with the balance
	assert.Greater(t, plan.Schedule[0].InterestPayment, plan.Schedule[5].InterestPayment)

	var principalSum int64
	for _, item := range plan.Schedule {
		principalSum += item.PrincipalPayment
	}
	assert.Equal(t, int64(12_000_000), principalSum)
	assert.Equal(t, int64(0), plan.Schedule[5].RemainingBalance)
	assert.Equal(t, plan.Principal+plan.TotalInterest, plan.TotalPayment)
}

func TestCalculateScheduleEqualPrincipalRemainder(t *testing.T) {
	// 10,000,000 over 3 months does not divide evenly
	plan, err := CalculateSchedule(10_000_000, 12, 3, MethodEqualPrincipal)
	require.NoError(t, err)

	var principalSum int64
	for _, item := range plan.Schedule {
		principalSum += item.PrincipalPayment
	}
	assert.Equal(t, int64(10_000_000), principalSum)
	assert.Equal(t, int64(0), plan.Schedule[2].RemainingBalance)
	// The remainder lands on the last installment
	assert.GreaterOrEqual(t, plan.Schedule[2].PrincipalPayment, plan.Schedule[0].PrincipalPayment)
}

func TestCalculateScheduleEqualPayment(t *testing.T) {
	plan, err := CalculateSchedule(12_000_000, 12, 12, MethodEqualPayment)
	require.NoError(t, err)

	assert.Len(t, plan.Schedule, 12)
	assert.Equal(t, int64(0), plan.Schedule[11].RemainingBalance)

	var principalSum int64
	for _, item := range plan.Schedule {
		principalSum += item.PrincipalPayment
	}
	assert.Equal(t, int64(12_000_000), principalSum)

	// Annuity pays more interest than the declining-balance method
	declining, err := CalculateSchedule(12_000_000, 12, 12, MethodEqualPrincipal)
	require.NoError(t, err)
	assert.Greater(t, plan.TotalInterest, declining.TotalInterest)
}

func TestCalculateScheduleZeroRate(t *testing.T) {
	plan, err := CalculateSchedule(9_000_000, 0, 3, MethodEqualPayment)
	require.NoError(t, err)

	assert.Equal(t, int64(0), plan.TotalInterest)
	assert.Equal(t, int64(9_000_000), plan.TotalPayment)
}

func TestCalculateScheduleValidation(t *testing.T) {
	_, err := CalculateSchedule(0, 12, 6, MethodEqualPrincipal)
	assert.Error(t, err)

	_, err = CalculateSchedule(1_000_000, 12, 0, MethodEqualPrincipal)
	assert.Error(t, err)

	_, err = CalculateSchedule(1_000_000, -1, 6, MethodEqualPrincipal)
	assert.Error(t, err)

	_, err = CalculateSchedule(1_000_000, 12, 6, "BALLOON")
	assert.Error(t, err)
}
