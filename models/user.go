package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email     *string `gorm:"uniqueIndex" json:"email"`
	Phone     *string `gorm:"uniqueIndex" json:"phone"`
	Password  string  `json:"-"`
	Confirmed bool    `gorm:"default:false" json:"confirmed"`
	Role      string  `gorm:"default:user" json:"role"` // user, admin
	Name      *string `json:"name"`
	GoogleID  *string `json:"-"`

	Profile *UserProfile `json:"profile,omitempty" gorm:"foreignKey:UserID"`
}

// KYC statuses
const (
	KYCUnverified = "UNVERIFIED"
	KYCPending    = "PENDING"
	KYCVerified   = "VERIFIED"
	KYCRejected   = "REJECTED"
)

// UserProfile holds the wallet and the identity data the user enters for KYC.
type UserProfile struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`

	// Shared wallet for borrowing and lending, whole VND
	Balance int64 `gorm:"default:0" json:"balance"`

	FullName     string     `json:"full_name"`
	IDCardNumber string     `json:"id_card_number"`
	DateOfBirth  *time.Time `json:"date_of_birth"`
	Gender       string     `json:"gender"` // male, female
	Hometown     string     `json:"hometown"`
	Address      string     `json:"address"`
	PhoneNumber  string     `json:"phone_number"`

	Occupation    string `json:"occupation"`
	CompanyName   string `json:"company_name"`
	MonthlyIncome int64  `json:"monthly_income"`

	KYCStatus string `gorm:"default:UNVERIFIED" json:"kyc_status"`
	KYCNote   string `json:"kyc_note"` // rejection reason shown to the user

	OCRData       datatypes.JSON `json:"ocr_data"`
	OCRVerified   bool           `gorm:"default:false" json:"ocr_verified"`
	OCRMatchScore float64        `json:"ocr_match_score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// KYC document types
const (
	DocIDCardFront = "ID_CARD_FRONT"
	DocIDCardBack  = "ID_CARD_BACK"
	DocSalarySlip  = "SALARY_SLIP"
)

// OCR statuses
const (
	OCRPending    = "PENDING"
	OCRProcessing = "PROCESSING"
	OCRSuccess    = "SUCCESS"
	OCRFailed     = "FAILED"
)

// KYCDocument stores an uploaded image and what the OCR read from it.
type KYCDocument struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UserID    uint   `gorm:"index;not null" json:"user_id"`
	DocType   string `gorm:"not null" json:"doc_type"`
	ImagePath string `gorm:"not null" json:"image_path"`

	AIExtractedData datatypes.JSON `json:"ai_extracted_data"` // audit log of the OCR result
	OCRStatus       string         `gorm:"default:PENDING" json:"ocr_status"`

	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

// ---- requests / responses ----

type UserRegisterRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type ConfirmOTPRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

type SetPasswordRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	FullName      string `json:"full_name"`
	IDCardNumber  string `json:"id_card_number"`
	DateOfBirth   string `json:"date_of_birth"` // YYYY-MM-DD
	Gender        string `json:"gender"`
	Hometown      string `json:"hometown"`
	Address       string `json:"address"`
	PhoneNumber   string `json:"phone_number"`
	Occupation    string `json:"occupation"`
	CompanyName   string `json:"company_name"`
	MonthlyIncome int64  `json:"monthly_income"`
}

type WalletRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}
