package controllers

import (
	"net/http"

	"github.com/namkjs/p2plending/models"
	"github.com/namkjs/p2plending/services"
	"github.com/namkjs/p2plending/utils"

	"github.com/gin-gonic/gin"
)

type LenderController struct{}

func NewLenderController() *LenderController {
	return &LenderController{}
}

// PUT /lender/profile
// Creates or updates the lender's investment preferences.
func (lc *LenderController) UpsertProfile(c *gin.Context) {
	userID := c.GetUint("user_id")
	var req models.LenderProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.MinAmount > 0 && req.MaxAmount > 0 && req.MinAmount > req.MaxAmount {
		c.JSON(http.StatusBadRequest, gin.H{"error": "min_amount cannot exceed max_amount"})
		return
	}
	switch req.RiskTolerance {
	case "", models.RiskToleranceLow, models.RiskToleranceMedium, models.RiskToleranceHigh:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "risk_tolerance must be LOW, MEDIUM or HIGH"})
		return
	}

	db := utils.GetDB()
	var profile models.LenderProfile
	if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		profile = models.LenderProfile{
			UserID:          userID,
			MinAmount:       1_000_000,
			MaxAmount:       100_000_000,
			MinInterestRate: 8,
			PreferredDurMin: 1,
			PreferredDurMax: 24,
			RiskTolerance:   models.RiskToleranceMedium,
			IsActive:        true,
		}
	}

	if req.MinAmount > 0 {
		profile.MinAmount = req.MinAmount
	}
	if req.MaxAmount > 0 {
		profile.MaxAmount = req.MaxAmount
	}
	if req.MinInterestRate > 0 {
		profile.MinInterestRate = req.MinInterestRate
	}
	if req.PreferredDurMin > 0 {
		profile.PreferredDurMin = req.PreferredDurMin
	}
	if req.PreferredDurMax > 0 {
		profile.PreferredDurMax = req.PreferredDurMax
	}
	if req.RiskTolerance != "" {
		profile.RiskTolerance = req.RiskTolerance
	}
	if req.IsActive != nil {
		profile.IsActive = *req.IsActive
	}

	if err := db.Save(&profile).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save lender profile"})
		return
	}

	if profile.IsActive {
		services.NotifyLenderOfMatches(db, userID)
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// GET /lender/profile
func (lc *LenderController) GetProfile(c *gin.Context) {
	userID := c.GetUint("user_id")
	var profile models.LenderProfile
	if err := utils.GetDB().Where("user_id = ?", userID).First(&profile).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lender profile not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// GET /lender/matches
// Loans matching this lender's preferences, scored live.
func (lc *LenderController) Matches(c *gin.Context) {
	userID := c.GetUint("user_id")
	matched, err := services.MatchLenderToLoans(utils.GetDB(), userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matched, "count": len(matched)})
}

// GET /lender/portfolio
// Active and completed contracts where this user is the lender.
func (lc *LenderController) Portfolio(c *gin.Context) {
	userID := c.GetUint("user_id")
	db := utils.GetDB()

	var contracts []models.LoanContract
	db.Preload("LoanRequest").Preload("Borrower").
		Where("lender_id = ?", userID).
		Order("signed_date DESC").
		Find(&contracts)

	var profile models.LenderProfile
	db.Where("user_id = ?", userID).First(&profile)

	c.JSON(http.StatusOK, gin.H{
		"contracts":          contracts,
		"total_invested":     profile.TotalInvested,
		"total_returns":      profile.TotalReturns,
		"active_investments": profile.ActiveInvestments,
	})
}
