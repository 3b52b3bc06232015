package controllers

import (
	"net/http"
	"strconv"

	"github.com/namkjs/p2plending/models"
	"github.com/namkjs/p2plending/services"
	"github.com/namkjs/p2plending/utils"

	"github.com/gin-gonic/gin"
)

type ContractController struct{}

func NewContractController() *ContractController {
	return &ContractController{}
}

// GET /contracts
// Contracts where the user is either party.
func (cc *ContractController) MyContracts(c *gin.Context) {
	userID := c.GetUint("user_id")
	var contracts []models.LoanContract
	utils.GetDB().Preload("LoanRequest").
		Where("borrower_id = ? OR lender_id = ?", userID, userID).
		Order("signed_date DESC").
		Find(&contracts)
	c.JSON(http.StatusOK, gin.H{"contracts": contracts})
}

// GET /contracts/:id
func (cc *ContractController) ContractDetail(c *gin.Context) {
	userID := c.GetUint("user_id")
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	db := utils.GetDB()
	var contract models.LoanContract
	if err := db.Preload("LoanRequest").Preload("Borrower").Preload("Lender").
		First(&contract, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
		return
	}
	if contract.BorrowerID != userID && contract.LenderID != userID && c.GetString("role") != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a party to this contract"})
		return
	}

	var schedule []models.PaymentSchedule
	db.Where("contract_id = ?", contract.ID).Order("installment_number").Find(&schedule)

	now := utils.VietnamTime()
	installments := make([]models.InstallmentResponse, 0, len(schedule))
	for i := range schedule {
		lateDays, fee := 0, int64(0)
		if schedule[i].Status != models.InstallmentPaid {
			lateDays, fee = services.LateCharge(&schedule[i], now)
		} else {
			lateDays, fee = schedule[i].LateDays, schedule[i].LateFee
		}
		installments = append(installments, models.InstallmentResponse{
			ID:          schedule[i].ID,
			Installment: schedule[i].InstallmentNumber,
			DueDate:     schedule[i].DueDate.Format("2006-01-02"),
			Principal:   schedule[i].PrincipalAmount,
			Interest:    schedule[i].InterestAmount,
			Total:       schedule[i].TotalAmount,
			PaidAmount:  schedule[i].PaidAmount,
			Status:      schedule[i].Status,
			IsOverdue:   schedule[i].Status != models.InstallmentPaid && lateDays > 0,
			LateDays:    lateDays,
			LateFee:     fee,
		})
	}

	c.JSON(http.StatusOK, gin.H{"contract": contract, "schedule": installments})
}

// POST /contracts/:id/sign
func (cc *ContractController) Sign(c *gin.Context) {
	userID := c.GetUint("user_id")
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	var req models.SignContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be borrower or lender"})
		return
	}

	contract, err := services.SignContract(utils.GetDB(), uint(id), userID, req.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract})
}
