package services

import (
	"testing"
	"time"

	"github.com/namkjs/p2plending/models"

	"github.com/stretchr/testify/assert"
)

func TestLateChargeNotDue(t *testing.T) {
	due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	s := &models.PaymentSchedule{DueDate: due, TotalAmount: 2_000_000}

	days, fee := LateCharge(s, due.AddDate(0, 0, -2))
	assert.Equal(t, 0, days)
	assert.Equal(t, int64(0), fee)

	// Due today is not late yet
	days, fee = LateCharge(s, due)
	assert.Equal(t, 0, days)
	assert.Equal(t, int64(0), fee)
}

func TestLateChargeAccrual(t *testing.T) {
	due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	s := &models.PaymentSchedule{DueDate: due, TotalAmount: 2_000_000}

	// 0.05% per day on 2,000,000 is 1,000 per day
	days, fee := LateCharge(s, due.AddDate(0, 0, 1))
	assert.Equal(t, 1, days)
	assert.Equal(t, int64(1_000), fee)

	days, fee = LateCharge(s, due.AddDate(0, 0, 10))
	assert.Equal(t, 10, days)
	assert.Equal(t, int64(10_000), fee)
}

func TestSettleInstallmentFull(t *testing.T) {
	due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	s := &models.PaymentSchedule{
		DueDate:         due,
		PrincipalAmount: 1_900_000,
		InterestAmount:  100_000,
		TotalAmount:     2_000_000,
		Status:          models.InstallmentPending,
	}

	pay := settleInstallment(s, 0, due.AddDate(0, 0, -1))
	assert.Equal(t, int64(2_000_000), pay)
	assert.Equal(t, models.InstallmentPaid, s.Status)
	assert.Equal(t, s.TotalAmount, s.PaidAmount)
	assert.NotNil(t, s.PaidDate)
}

func TestSettleInstallmentLate(t *testing.T) {
	due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	s := &models.PaymentSchedule{
		DueDate:     due,
		TotalAmount: 2_000_000,
		Status:      models.InstallmentOverdue,
	}

	// 10 days late adds 10,000 on top of the installment
	pay := settleInstallment(s, 0, due.AddDate(0, 0, 10))
	assert.Equal(t, int64(2_010_000), pay)
	assert.Equal(t, models.InstallmentPaid, s.Status)
	assert.Equal(t, 10, s.LateDays)
	assert.Equal(t, int64(10_000), s.LateFee)
	assert.Contains(t, s.Note, "10 days late")
}

func TestSettleInstallmentPartialThenFull(t *testing.T) {
	due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	s := &models.PaymentSchedule{
		DueDate:     due,
		TotalAmount: 2_000_000,
		Status:      models.InstallmentPending,
	}

	pay := settleInstallment(s, 500_000, due.AddDate(0, 0, -5))
	assert.Equal(t, int64(500_000), pay)
	assert.Equal(t, models.InstallmentPartial, s.Status)
	assert.Equal(t, int64(500_000), s.PaidAmount)
	assert.Nil(t, s.PaidDate)

	// The remainder settles the row; a paid slice never pays twice
	pay = settleInstallment(s, 0, due.AddDate(0, 0, -1))
	assert.Equal(t, int64(1_500_000), pay)
	assert.Equal(t, models.InstallmentPaid, s.Status)
	assert.Equal(t, s.TotalAmount, s.PaidAmount)
}

func TestSettleInstallmentOverpaymentSettlesFull(t *testing.T) {
	due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	s := &models.PaymentSchedule{
		DueDate:     due,
		TotalAmount: 2_000_000,
		Status:      models.InstallmentPending,
	}

	// Anything covering the outstanding total is a full settlement
	pay := settleInstallment(s, 3_000_000, due.AddDate(0, 0, -1))
	assert.Equal(t, int64(2_000_000), pay)
	assert.Equal(t, models.InstallmentPaid, s.Status)
}

func TestPayoffQuotePricing(t *testing.T) {
	asOf := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	remaining := []models.PaymentSchedule{
		{
			// 10 days overdue: late fee 0.05% * 5,100,000 * 10 = 25,500
			DueDate:         asOf.AddDate(0, 0, -10),
			PrincipalAmount: 5_000_000,
			InterestAmount:  100_000,
			TotalAmount:     5_100_000,
			Status:          models.InstallmentOverdue,
		},
		{
			DueDate:         asOf.AddDate(0, 0, 20),
			PrincipalAmount: 5_000_000,
			InterestAmount:  50_000,
			TotalAmount:     5_050_000,
			Status:          models.InstallmentPending,
		},
	}

	quote := payoffQuote(remaining, asOf)
	assert.Equal(t, 2, quote.RemainingInstallments)
	assert.Equal(t, int64(10_000_000), quote.TotalPrincipal)
	assert.Equal(t, int64(150_000), quote.TotalInterest)
	// Half of the remaining interest is forgiven
	assert.Equal(t, int64(75_000), quote.DiscountedInterest)
	assert.Equal(t, int64(75_000), quote.Savings)
	assert.Equal(t, int64(25_500), quote.LateFees)
	// Payoff = principal + discounted interest + late fees
	assert.Equal(t, int64(10_100_500), quote.TotalPayoff)
}

func TestPayoffQuoteCountsPartialPayments(t *testing.T) {
	asOf := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	remaining := []models.PaymentSchedule{
		{
			DueDate:         asOf.AddDate(0, 0, 5),
			PrincipalAmount: 2_000_000,
			InterestAmount:  100_000,
			TotalAmount:     2_100_000,
			PaidAmount:      40_000,
			Status:          models.InstallmentPartial,
		},
	}

	quote := payoffQuote(remaining, asOf)
	assert.Equal(t, int64(60_000), quote.TotalInterest)
	assert.Equal(t, int64(30_000), quote.DiscountedInterest)
	assert.Equal(t, int64(2_030_000), quote.TotalPayoff)
}
