package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/namkjs/p2plending/models"
	"github.com/namkjs/p2plending/services"
	"github.com/namkjs/p2plending/utils"

	"github.com/gin-gonic/gin"
)

type PaymentController struct{}

func NewPaymentController() *PaymentController {
	return &PaymentController{}
}

type payInstallmentRequest struct {
	Amount int64 `json:"amount"`
}

// POST /payments/installments/:id/pay
// An empty body or amount 0 settles the installment in full; a smaller
// amount is recorded as a partial payment.
func (pc *PaymentController) PayInstallment(c *gin.Context) {
	userID := c.GetUint("user_id")
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid installment id"})
		return
	}

	var req payInstallmentRequest
	c.ShouldBindJSON(&req)

	record, err := services.PayInstallment(utils.GetDB(), uint(id), userID, req.Amount)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrInsufficientBalance) {
			status = http.StatusPaymentRequired
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"transaction": record,
		"paid":        utils.FormatVND(record.Amount),
	})
}

// GET /payments/pending
// The borrower's unpaid installments across active contracts.
func (pc *PaymentController) PendingPayments(c *gin.Context) {
	userID := c.GetUint("user_id")
	installments, err := services.PendingInstallments(utils.GetDB(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	var totalDue int64
	overdue := 0
	for i := range installments {
		totalDue += installments[i].Total - installments[i].PaidAmount + installments[i].LateFee
		if installments[i].IsOverdue {
			overdue++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"installments": installments,
		"total_due":    totalDue,
		"overdue":      overdue,
	})
}

// GET /payments/contracts/:id/early-payoff
func (pc *PaymentController) EarlyPayoffQuote(c *gin.Context) {
	userID := c.GetUint("user_id")
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	quote, err := services.QuoteEarlyPayoff(utils.GetDB(), uint(id), userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"quote": quote})
}

// POST /payments/contracts/:id/early-payoff
func (pc *PaymentController) EarlyPayoffExecute(c *gin.Context) {
	userID := c.GetUint("user_id")
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	quote, err := services.ExecuteEarlyPayoff(utils.GetDB(), uint(id), userID)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrInsufficientBalance) {
			status = http.StatusPaymentRequired
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "contract settled",
		"paid":   utils.FormatVND(quote.TotalPayoff),
		"saved":  utils.FormatVND(quote.Savings),
		"quote":  quote,
	})
}

// GET /payments/history
// Wallet transactions where the user paid or received money.
func (pc *PaymentController) History(c *gin.Context) {
	userID := c.GetUint("user_id")
	var transactions []models.PaymentTransaction
	utils.GetDB().
		Where("payer_id = ? OR recipient_id = ?", userID, userID).
		Order("created_at DESC").
		Limit(100).
		Find(&transactions)
	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}
