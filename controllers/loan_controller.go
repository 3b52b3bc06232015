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

// Loan requests below this amount are rejected outright.
const minLoanAmount = 1_000_000

type LoanController struct{}

func NewLoanController() *LoanController {
	return &LoanController{}
}

// POST /loans
// Only KYC-verified borrowers can apply. New loans start PENDING until an
// admin clears them for the marketplace.
func (lc *LoanController) CreateLoan(c *gin.Context) {
	userID := c.GetUint("user_id")
	var req models.CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.Amount < minLoanAmount {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Minimum loan amount is " + utils.FormatVND(minLoanAmount)})
		return
	}
	if req.DurationMonths > 60 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Maximum duration is 60 months"})
		return
	}

	db := utils.GetDB()
	var profile models.UserProfile
	if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil || profile.KYCStatus != models.KYCVerified {
		c.JSON(http.StatusForbidden, gin.H{"error": "Complete identity verification before applying for a loan"})
		return
	}

	var openCount int64
	db.Model(&models.LoanRequest{}).
		Where("borrower_id = ? AND status IN ?", userID,
			[]string{models.LoanPending, models.LoanApproved, models.LoanContractCreated, models.LoanFunded}).
		Count(&openCount)
	if openCount >= 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You already have 3 open loans"})
		return
	}

	loan := models.LoanRequest{
		BorrowerID:     userID,
		Amount:         req.Amount,
		InterestRate:   req.InterestRate,
		DurationMonths: req.DurationMonths,
		Purpose:        req.Purpose,
		Status:         models.LoanPending,
	}
	if err := db.Create(&loan).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save loan request"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"loan": loan})
}

// GET /loans/my
func (lc *LoanController) MyLoans(c *gin.Context) {
	userID := c.GetUint("user_id")
	var loans []models.LoanRequest
	utils.GetDB().Preload("Borrower").
		Where("borrower_id = ?", userID).
		Order("created_at DESC").
		Find(&loans)

	out := make([]models.LoanResponse, 0, len(loans))
	for i := range loans {
		out = append(out, services.ToLoanResponse(&loans[i]))
	}
	c.JSON(http.StatusOK, gin.H{"loans": out})
}

// GET /loans/:id
// Loan detail with an amortization preview. ?method=EQUAL_PAYMENT switches
// the preview to annuity payments.
func (lc *LoanController) LoanDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid loan id"})
		return
	}

	db := utils.GetDB()
	var loan models.LoanRequest
	if err := db.Preload("Borrower").First(&loan, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Loan not found"})
		return
	}

	resp := gin.H{"loan": services.ToLoanResponse(&loan)}

	// Funded loans show the real schedule, everything else a preview
	var contract models.LoanContract
	if err := db.Where("loan_request_id = ?", loan.ID).First(&contract).Error; err == nil && contract.Status != models.ContractPendingSignatures {
		var installments []models.PaymentSchedule
		db.Where("contract_id = ?", contract.ID).Order("installment_number").Find(&installments)
		resp["contract_number"] = contract.ContractNumber
		resp["schedule"] = installments
	} else {
		method := c.DefaultQuery("method", services.MethodEqualPrincipal)
		plan, err := services.CalculateSchedule(loan.Amount, loan.InterestRate, loan.DurationMonths, method)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		resp["schedule"] = plan
	}
	if risk := loadRisk(loan.BorrowerID); risk != nil {
		resp["borrower_risk"] = gin.H{
			"credit_score": risk.CreditScore,
			"risk_level":   risk.RiskLevel,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// GET /loans/browse
// Marketplace listing of approved loans, paginated. Lenders with a profile
// also get a match score per loan.
func (lc *LoanController) BrowseLoans(c *gin.Context) {
	userID := c.GetUint("user_id")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}

	db := utils.GetDB()
	query := db.Model(&models.LoanRequest{}).
		Where("status = ? AND borrower_id <> ?", models.LoanApproved, userID)

	var total int64
	query.Count(&total)

	var loans []models.LoanRequest
	query.Preload("Borrower").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&loans)

	var lender models.LenderProfile
	hasLenderProfile := db.Where("user_id = ?", userID).First(&lender).Error == nil

	out := make([]gin.H, 0, len(loans))
	for i := range loans {
		entry := gin.H{"loan": services.ToLoanResponse(&loans[i])}
		if hasLenderProfile {
			risk := loadRisk(loans[i].BorrowerID)
			score, reasons := services.ScoreMatch(&loans[i], &lender, risk)
			entry["match_score"] = score
			entry["match_reasons"] = reasons
		}
		out = append(out, entry)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	c.JSON(http.StatusOK, gin.H{
		"loans":       out,
		"total":       total,
		"page":        page,
		"limit":       limit,
		"total_pages": totalPages,
	})
}

type investRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// POST /loans/:id/invest
// The lender commits to fund the loan: a contract is drafted for signatures.
func (lc *LoanController) Invest(c *gin.Context) {
	userID := c.GetUint("user_id")
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid loan id"})
		return
	}

	var req investRequest
	c.ShouldBindJSON(&req)

	contract, err := services.CreateContract(utils.GetDB(), uint(id), userID, req.PaymentMethod)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrInsufficientBalance) {
			status = http.StatusPaymentRequired
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"contract": contract})
}

// GET /loans/market-rates
// Benchmark microcredit offers scraped from public bank listings.
func (lc *LoanController) MarketRates(c *gin.Context) {
	var rates []models.MarketRate
	utils.GetDB().Order("bank_name").Find(&rates)
	c.JSON(http.StatusOK, gin.H{"rates": rates, "count": len(rates)})
}

func loadRisk(userID uint) *models.BorrowerRiskProfile {
	var risk models.BorrowerRiskProfile
	if err := utils.GetDB().Where("user_id = ?", userID).First(&risk).Error; err != nil {
		return nil
	}
	return &risk
}
