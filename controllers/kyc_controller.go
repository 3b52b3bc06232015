package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/namkjs/p2plending/models"
	"github.com/namkjs/p2plending/services"
	"github.com/namkjs/p2plending/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type KYCController struct {
	OCR       *services.VinternOCR
	UploadDir string
}

func NewKYCController(ocr *services.VinternOCR, uploadDir string) *KYCController {
	return &KYCController{OCR: ocr, UploadDir: uploadDir}
}

// POST /kyc/documents
// Accepts a multipart image upload with a doc_type field, stores it and runs
// OCR on ID card images right away.
func (kc *KYCController) UploadDocument(c *gin.Context) {
	userID := c.GetUint("user_id")

	docType := c.PostForm("doc_type")
	switch docType {
	case models.DocIDCardFront, models.DocIDCardBack, models.DocSalarySlip:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "doc_type must be ID_CARD_FRONT, ID_CARD_BACK or SALARY_SLIP"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}
	ext := filepath.Ext(file.Filename)
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only jpg and png images are accepted"})
		return
	}

	dir := filepath.Join(kc.UploadDir, fmt.Sprintf("user_%d", userID))
	if err := os.MkdirAll(dir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}
	dest := filepath.Join(dir, uuid.New().String()+ext)
	if err := c.SaveUploadedFile(file, dest); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	db := utils.GetDB()
	// A new upload replaces any earlier document of the same type
	db.Where("user_id = ? AND doc_type = ?", userID, docType).Delete(&models.KYCDocument{})

	doc := models.KYCDocument{
		UserID:    userID,
		DocType:   docType,
		ImagePath: dest,
		OCRStatus: models.OCRPending,
	}
	if err := db.Create(&doc).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save document"})
		return
	}

	// Documents on file but not yet submitted for verification
	db.Model(&models.UserProfile{}).
		Where("user_id = ? AND kyc_status IN ?", userID,
			[]string{models.KYCUnverified, models.KYCRejected}).
		Update("kyc_status", models.KYCPending)

	if docType == models.DocSalarySlip {
		c.JSON(http.StatusOK, gin.H{"document": doc})
		return
	}

	db.Model(&doc).Update("ocr_status", models.OCRProcessing)

	var result services.OCRResult
	if docType == models.DocIDCardFront {
		result = kc.OCR.ExtractIDCardFront(dest)
	} else {
		result = kc.OCR.ExtractIDCardBack(dest)
	}

	if !result.Success {
		db.Model(&doc).Update("ocr_status", models.OCRFailed)
		c.JSON(http.StatusOK, gin.H{"document": doc, "ocr": result})
		return
	}

	raw, _ := json.Marshal(result.Data)
	db.Model(&doc).Updates(map[string]interface{}{
		"ocr_status":        models.OCRSuccess,
		"ai_extracted_data": datatypes.JSON(raw),
	})

	// The front side carries the identity fields used for verification
	if docType == models.DocIDCardFront {
		db.Model(&models.UserProfile{}).
			Where("user_id = ?", userID).
			Update("ocr_data", datatypes.JSON(raw))
	}

	db.First(&doc, doc.ID)
	c.JSON(http.StatusOK, gin.H{"document": doc, "ocr": result})
}

// GET /kyc/documents
func (kc *KYCController) ListDocuments(c *gin.Context) {
	userID := c.GetUint("user_id")
	var docs []models.KYCDocument
	utils.GetDB().Where("user_id = ?", userID).Order("uploaded_at DESC").Find(&docs)
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// POST /kyc/submit
// Compares the profile the user filled in against the OCR output and settles
// the KYC status.
func (kc *KYCController) SubmitKYC(c *gin.Context) {
	userID := c.GetUint("user_id")
	db := utils.GetDB()

	var profile models.UserProfile
	if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fill in your profile first"})
		return
	}
	if profile.FullName == "" || profile.IDCardNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "full_name and id_card_number are required"})
		return
	}
	if len(profile.OCRData) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Upload the front of your ID card first"})
		return
	}

	var sides int64
	db.Model(&models.KYCDocument{}).
		Where("user_id = ? AND doc_type IN ?", userID,
			[]string{models.DocIDCardFront, models.DocIDCardBack}).
		Distinct("doc_type").
		Count(&sides)
	if sides < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Both sides of your ID card are required"})
		return
	}

	var ocrData map[string]string
	if err := json.Unmarshal(profile.OCRData, &ocrData); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stored OCR data is unreadable"})
		return
	}

	dob := ""
	if profile.DateOfBirth != nil {
		dob = profile.DateOfBirth.Format("2006-01-02")
	}
	userInput := map[string]string{
		"full_name":     profile.FullName,
		"id_number":     profile.IDCardNumber,
		"date_of_birth": dob,
		"gender":        profile.Gender,
		"address":       profile.Address,
	}

	verdict := services.VerifyUserInfo(userInput, ocrData)

	status := models.KYCRejected
	note := fmt.Sprintf("Verification score %.0f, mismatched fields: %v", verdict.MatchScore, verdict.Mismatches)
	if verdict.IsVerified {
		status = models.KYCVerified
		note = fmt.Sprintf("Verified with score %.0f on %s", verdict.MatchScore, time.Now().Format("02/01/2006"))
	}

	if err := db.Model(&profile).Updates(map[string]interface{}{
		"kyc_status":      status,
		"kyc_note":        note,
		"ocr_verified":    verdict.IsVerified,
		"ocr_match_score": verdict.MatchScore,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update KYC status"})
		return
	}

	title := "Identity verification failed"
	if verdict.IsVerified {
		title = "Identity verified"
	}
	services.Notify(db, userID, models.NotifyKYCStatus, title, note, nil)

	// Scoring depends on the KYC outcome
	if _, err := services.ProfileBorrower(db, userID); err != nil {
		utils.LogError(err, "profile borrower after KYC")
	}

	c.JSON(http.StatusOK, gin.H{
		"kyc_status":   status,
		"verification": verdict,
	})
}

// GET /kyc/status
func (kc *KYCController) KYCStatus(c *gin.Context) {
	userID := c.GetUint("user_id")
	var profile models.UserProfile
	if err := utils.GetDB().Where("user_id = ?", userID).First(&profile).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"kyc_status": models.KYCUnverified})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"kyc_status":      profile.KYCStatus,
		"kyc_note":        profile.KYCNote,
		"ocr_verified":    profile.OCRVerified,
		"ocr_match_score": profile.OCRMatchScore,
	})
}
