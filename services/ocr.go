package services

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/namkjs/p2plending/models"
)

// VinternOCR talks to the Vintern VLM service that reads Vietnamese ID cards.
type VinternOCR struct {
	baseURL string
	client  *http.Client
}

func NewVinternOCR(baseURL string) *VinternOCR {
	return &VinternOCR{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// OCRResult is what the OCR pipeline hands back to the KYC flow.
type OCRResult struct {
	Success bool              `json:"success"`
	Data    map[string]string `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	IsMock  bool              `json:"is_mock,omitempty"`
}

// ExtractIDCardFront reads the front of an ID card: id_number, full_name,
// date_of_birth, gender, hometown, address, expiry_date.
func (v *VinternOCR) ExtractIDCardFront(imagePath string) OCRResult {
	return v.call(imagePath, models.DocIDCardFront)
}

// ExtractIDCardBack reads the back of an ID card: issue_date, issue_place.
func (v *VinternOCR) ExtractIDCardBack(imagePath string) OCRResult {
	return v.call(imagePath, models.DocIDCardBack)
}

func (v *VinternOCR) call(imagePath, docType string) OCRResult {
	raw, err := os.ReadFile(imagePath)
	if err != nil {
		return OCRResult{Success: false, Error: err.Error()}
	}

	payload := map[string]string{
		"image":    base64.StdEncoding.EncodeToString(raw),
		"doc_type": docType,
	}
	body, _ := json.Marshal(payload)

	resp, err := v.client.Post(v.baseURL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		// Service down: hand back an empty payload so dev flows keep working
		return mockOCR(docType)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return OCRResult{Success: false, Error: fmt.Sprintf("API error: %d", resp.StatusCode)}
	}

	var data map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return OCRResult{Success: false, Error: err.Error()}
	}
	return OCRResult{Success: true, Data: data}
}

func mockOCR(docType string) OCRResult {
	if docType == models.DocIDCardFront {
		return OCRResult{
			Success: true,
			Data: map[string]string{
				"id_number":     "",
				"full_name":     "",
				"date_of_birth": "",
				"gender":        "",
				"hometown":      "",
				"address":       "",
			},
			IsMock: true,
		}
	}
	return OCRResult{
		Success: true,
		Data: map[string]string{
			"issue_date":  "",
			"issue_place": "",
		},
		IsMock: true,
	}
}
