package controllers

import (
	"net/http"
	"strconv"

	"github.com/namkjs/p2plending/models"
	"github.com/namkjs/p2plending/services"
	"github.com/namkjs/p2plending/utils"

	"github.com/gin-gonic/gin"
)

type AdminController struct{}

func NewAdminController() *AdminController {
	return &AdminController{}
}

// GET /admin/loans/pending
func (ac *AdminController) PendingLoans(c *gin.Context) {
	var loans []models.LoanRequest
	utils.GetDB().Preload("Borrower").
		Where("status = ?", models.LoanPending).
		Order("created_at").
		Find(&loans)

	out := make([]gin.H, 0, len(loans))
	for i := range loans {
		entry := gin.H{"loan": services.ToLoanResponse(&loans[i])}
		if risk := loadRisk(loans[i].BorrowerID); risk != nil {
			entry["credit_score"] = risk.CreditScore
			entry["risk_level"] = risk.RiskLevel
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, gin.H{"loans": out})
}

// POST /admin/loans/:id/approve
// Clears a loan for the marketplace and runs the matcher against active
// lender profiles.
func (ac *AdminController) ApproveLoan(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid loan id"})
		return
	}

	db := utils.GetDB()
	var loan models.LoanRequest
	if err := db.First(&loan, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Loan not found"})
		return
	}
	if loan.Status != models.LoanPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Loan is not pending"})
		return
	}

	if err := db.Model(&loan).Update("status", models.LoanApproved).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update loan"})
		return
	}
	services.Notify(db, loan.BorrowerID, models.NotifyLoanApproved,
		"Loan approved",
		"Your loan request #"+strconv.Itoa(id)+" is now visible to lenders.",
		&loan.ID)

	matches, err := services.MatchLoanToLenders(db, loan.ID)
	if err != nil {
		utils.LogError(err, "match after approval")
	}
	c.JSON(http.StatusOK, gin.H{"status": "approved", "matches": len(matches)})
}

type rejectLoanRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// POST /admin/loans/:id/reject
func (ac *AdminController) RejectLoan(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid loan id"})
		return
	}
	var req rejectLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reason is required"})
		return
	}

	db := utils.GetDB()
	var loan models.LoanRequest
	if err := db.First(&loan, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Loan not found"})
		return
	}
	if loan.Status != models.LoanPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Loan is not pending"})
		return
	}

	if err := db.Model(&loan).Update("status", models.LoanRejected).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update loan"})
		return
	}
	services.Notify(db, loan.BorrowerID, models.NotifyLoanRejected,
		"Loan rejected", req.Reason, &loan.ID)
	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

// POST /admin/loans/:id/match
// Reruns the lender matcher for an approved loan.
func (ac *AdminController) RunMatcher(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid loan id"})
		return
	}
	matches, err := services.MatchLoanToLenders(utils.GetDB(), uint(id))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches, "count": len(matches)})
}

// POST /admin/users/:id/profile
// Reruns the credit scoring for one borrower.
func (ac *AdminController) RunProfiler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	risk, err := services.ProfileBorrower(utils.GetDB(), uint(id))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"risk_profile": risk})
}

// POST /admin/payments/check
// Runs the payment sweep on demand.
func (ac *AdminController) RunPaymentCheck(c *gin.Context) {
	report, err := services.MonitorAllPayments(utils.GetDB())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

// GET /admin/disputes
func (ac *AdminController) OpenDisputes(c *gin.Context) {
	var disputes []models.Dispute
	utils.GetDB().Preload("Contract").
		Where("status IN ?", []string{models.DisputeOpen, models.DisputeInReview, models.DisputeEscalated}).
		Order("created_at").
		Find(&disputes)
	c.JSON(http.StatusOK, gin.H{"disputes": disputes})
}

// POST /admin/disputes/:id/resolve
func (ac *AdminController) ResolveDispute(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dispute id"})
		return
	}
	var req models.ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	dispute, err := services.ResolveDispute(utils.GetDB(), uint(id), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"dispute": dispute})
}

// GET /admin/agent-logs
// Recent automation runs, optionally filtered by ?type=.
func (ac *AdminController) AgentLogs(c *gin.Context) {
	query := utils.GetDB().Model(&models.AgentLog{})
	if t := c.Query("type"); t != "" {
		query = query.Where("agent_type = ?", t)
	}

	var logs []models.AgentLog
	query.Order("created_at DESC").Limit(100).Find(&logs)
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
