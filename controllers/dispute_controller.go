package controllers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/namkjs/p2plending/models"
	"github.com/namkjs/p2plending/services"
	"github.com/namkjs/p2plending/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DisputeController struct {
	UploadDir string
}

func NewDisputeController(uploadDir string) *DisputeController {
	return &DisputeController{UploadDir: uploadDir}
}

// POST /contracts/:id/disputes
func (dc *DisputeController) FileDispute(c *gin.Context) {
	userID := c.GetUint("user_id")
	contractID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	var req models.CreateDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dispute_type and description are required"})
		return
	}
	switch req.DisputeType {
	case models.DisputePayment, models.DisputeLatePayment, models.DisputeWrongAmount,
		models.DisputeContractTerms, models.DisputeContractViolation,
		models.DisputeFraud, models.DisputeOther:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown dispute type"})
		return
	}

	dispute, err := services.FileDispute(utils.GetDB(), uint(contractID), userID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"dispute": dispute})
}

// GET /disputes
// Disputes where the user is complainant or respondent.
func (dc *DisputeController) MyDisputes(c *gin.Context) {
	userID := c.GetUint("user_id")
	var disputes []models.Dispute
	utils.GetDB().Preload("Contract").
		Where("complainant_id = ? OR respondent_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&disputes)
	c.JSON(http.StatusOK, gin.H{"disputes": disputes})
}

// GET /disputes/:id
func (dc *DisputeController) DisputeDetail(c *gin.Context) {
	userID := c.GetUint("user_id")
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dispute id"})
		return
	}

	db := utils.GetDB()
	var dispute models.Dispute
	if err := db.Preload("Contract").First(&dispute, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Dispute not found"})
		return
	}
	if dispute.ComplainantID != userID && dispute.RespondentID != userID && c.GetString("role") != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a party to this dispute"})
		return
	}

	var evidence []models.DisputeEvidence
	db.Where("dispute_id = ?", id).Order("created_at").Find(&evidence)
	c.JSON(http.StatusOK, gin.H{"dispute": dispute, "evidence": evidence})
}

// POST /disputes/:id/evidence
// Multipart form: evidence_type, description and an optional file attachment.
func (dc *DisputeController) AddEvidence(c *gin.Context) {
	userID := c.GetUint("user_id")
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dispute id"})
		return
	}

	req := models.AddEvidenceRequest{
		EvidenceType: c.PostForm("evidence_type"),
		Description:  c.PostForm("description"),
	}
	if req.EvidenceType == "" || req.Description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "evidence_type and description are required"})
		return
	}

	filePath := ""
	if file, err := c.FormFile("file"); err == nil {
		dir := filepath.Join(dc.UploadDir, fmt.Sprintf("disputes_%d", id))
		if err := os.MkdirAll(dir, 0755); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
			return
		}
		filePath = filepath.Join(dir, uuid.New().String()+filepath.Ext(file.Filename))
		if err := c.SaveUploadedFile(file, filePath); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
			return
		}
	}

	ev, err := services.AddEvidence(utils.GetDB(), uint(id), userID, &req, filePath)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"evidence": ev})
}
