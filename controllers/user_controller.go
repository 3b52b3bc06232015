package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/namkjs/p2plending/models"
	"github.com/namkjs/p2plending/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

var googleOauthConfig *oauth2.Config

func InitGoogleOAuth() {
	googleOauthConfig = &oauth2.Config{
		RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URI"),
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email"},
		Endpoint:     google.Endpoint,
	}
}

type UserController struct {
	RDB *redis.Client
}

func NewUserController(rdb *redis.Client) *UserController {
	return &UserController{RDB: rdb}
}

func registrationKey(email, phone string) string {
	if email != "" {
		return "reg:email:" + strings.ToLower(email)
	}
	return "reg:phone:" + phone
}

// POST /register
// Sends a one-time code to the email or phone being registered.
func (uc *UserController) Register(c *gin.Context) {
	var req models.UserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if (req.Email == "" && req.Phone == "") || (req.Email != "" && req.Phone != "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provide either email or phone, not both"})
		return
	}

	db := utils.GetDB()
	var userCount int64
	if req.Email != "" {
		db.Model(&models.User{}).Where("email = ?", req.Email).Count(&userCount)
	} else {
		db.Model(&models.User{}).Where("phone = ?", req.Phone).Count(&userCount)
	}
	if userCount > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
		return
	}

	ctx := context.Background()
	redisKey := registrationKey(req.Email, req.Phone)

	if ok, msg := utils.CanSendOTP(uc.RDB, redisKey); !ok {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": msg})
		return
	}

	otp := utils.GenerateOTP()
	utils.MarkOTPSent(uc.RDB, redisKey)
	uc.RDB.Set(ctx, redisKey+":otp", otp, 5*time.Minute)

	msg := fmt.Sprintf("Your registration confirmation code: %s", otp)
	if req.Email != "" {
		err := utils.SendEmail(req.Email, "Confirmation code", msg,
			os.Getenv("SMTP_HOST"), os.Getenv("SMTP_PORT"), os.Getenv("SMTP_USER"), os.Getenv("SMTP_PASS"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send email"})
			return
		}
	} else {
		token, err := utils.GetEskizToken(os.Getenv("ESKIZ_EMAIL"), os.Getenv("ESKIZ_PASSWORD"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "SMS gateway authorization failed"})
			return
		}
		if err := utils.SendEskizSMS(token, req.Phone, msg); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send SMS"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "otp sent"})
}

// POST /confirm-otp
func (uc *UserController) ConfirmOTP(c *gin.Context) {
	var req models.ConfirmOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid request"})
		return
	}
	if (req.Email == "" && req.Phone == "") || (req.Email != "" && req.Phone != "") {
		c.JSON(400, gin.H{"error": "Provide either email or phone, not both"})
		return
	}
	ctx := context.Background()
	redisKey := registrationKey(req.Email, req.Phone)
	otpInRedis, err := uc.RDB.Get(ctx, redisKey+":otp").Result()
	if err != nil || otpInRedis != req.OTP {
		c.JSON(400, gin.H{"error": "Invalid or expired code"})
		return
	}
	uc.RDB.Set(ctx, redisKey+":confirmed", "1", 10*time.Minute)
	c.JSON(200, gin.H{"status": "otp confirmed"})
}

// POST /set-password
// Finalizes registration after OTP confirmation: creates the user with an
// empty wallet profile.
func (uc *UserController) SetPassword(c *gin.Context) {
	var req models.SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid request"})
		return
	}
	if (req.Email == "" && req.Phone == "") || (req.Email != "" && req.Phone != "") {
		c.JSON(400, gin.H{"error": "Provide either email or phone, not both"})
		return
	}

	ctx := context.Background()
	redisKey := registrationKey(req.Email, req.Phone)
	confirmed, err := uc.RDB.Get(ctx, redisKey+":confirmed").Result()
	if err != nil || confirmed != "1" {
		c.JSON(400, gin.H{"error": "Confirm the OTP first"})
		return
	}

	db := utils.GetDB()
	var userCount int64
	if req.Email != "" {
		db.Model(&models.User{}).Where("email = ?", req.Email).Count(&userCount)
	} else {
		db.Model(&models.User{}).Where("phone = ?", req.Phone).Count(&userCount)
	}
	if userCount > 0 {
		c.JSON(400, gin.H{"error": "User already exists"})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to hash password"})
		return
	}

	user := &models.User{
		Password:  hash,
		Confirmed: true,
		Role:      "user",
	}
	if req.Email != "" {
		email := req.Email
		user.Email = &email
	}
	if req.Phone != "" {
		phone := req.Phone
		user.Phone = &phone
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(&models.UserProfile{UserID: user.ID}).Error
	})
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to save user"})
		return
	}

	uc.RDB.Del(ctx, redisKey+":otp", redisKey+":confirmed")
	c.JSON(200, gin.H{"status": "user created"})
}

// POST /login
func (uc *UserController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid request"})
		return
	}
	if (req.Email == "" && req.Phone == "") || (req.Email != "" && req.Phone != "") {
		c.JSON(400, gin.H{"error": "Provide either email or phone, not both"})
		return
	}

	db := utils.GetDB()
	var user models.User
	var result *gorm.DB
	if req.Email != "" {
		result = db.Where("email = ? AND confirmed = ?", req.Email, true).First(&user)
	} else {
		result = db.Where("phone = ? AND confirmed = ?", req.Phone, true).First(&user)
	}
	if result.Error != nil {
		c.JSON(404, gin.H{"error": "User not found"})
		return
	}
	if user.GoogleID != nil && *user.GoogleID != "" && user.Password == "" {
		c.JSON(400, gin.H{"error": "This account was registered with Google. Use Google sign-in."})
		return
	}
	if !utils.CheckPassword(user.Password, req.Password) {
		c.JSON(401, gin.H{"error": "Wrong password"})
		return
	}

	jwt, err := utils.GenerateJWT(user.ID, user.Role, os.Getenv("JWT_SECRET"))
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to generate token"})
		return
	}
	refresh, _, err := utils.GenerateRefreshToken(user.ID, os.Getenv("JWT_SECRET"))
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to generate token"})
		return
	}
	c.JSON(200, gin.H{"token": jwt, "refresh_token": refresh})
}

// POST /refresh
func (uc *UserController) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid request"})
		return
	}

	claims, err := utils.ParseJWT(req.RefreshToken, os.Getenv("JWT_SECRET"))
	if err != nil {
		c.JSON(401, gin.H{"error": "Invalid refresh token"})
		return
	}
	if t, _ := claims["type"].(string); t != "refresh" {
		c.JSON(401, gin.H{"error": "Invalid refresh token"})
		return
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		c.JSON(401, gin.H{"error": "Invalid refresh token"})
		return
	}

	var user models.User
	if err := utils.GetDB().First(&user, uint(userID)).Error; err != nil {
		c.JSON(404, gin.H{"error": "User not found"})
		return
	}
	jwt, err := utils.GenerateJWT(user.ID, user.Role, os.Getenv("JWT_SECRET"))
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to generate token"})
		return
	}
	c.JSON(200, gin.H{"token": jwt})
}

// POST /logout
// Blacklists the current access token until it expires on its own.
func (uc *UserController) Logout(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenStr == "" || tokenStr == authHeader {
		c.JSON(400, gin.H{"error": "Authorization header required"})
		return
	}

	ttl := 72 * time.Hour
	if claims, err := utils.ParseJWT(tokenStr, os.Getenv("JWT_SECRET")); err == nil {
		if exp, ok := claims["exp"].(float64); ok {
			remaining := time.Until(time.Unix(int64(exp), 0))
			if remaining > 0 {
				ttl = remaining
			}
		}
	}
	uc.RDB.Set(context.Background(), "blacklist:"+tokenStr, "1", ttl)
	c.JSON(200, gin.H{"status": "logged out"})
}

type googleUserInfo struct {
	Email string `json:"email"`
	Id    string `json:"id"`
	Name  string `json:"name"`
}

// GET /auth/google
func (uc *UserController) GoogleLogin(c *gin.Context) {
	url := googleOauthConfig.AuthCodeURL("state", oauth2.AccessTypeOffline)
	c.Redirect(302, url)
}

// GET /auth/google/callback
func (uc *UserController) GoogleCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(400, gin.H{"error": "code not found"})
		return
	}
	token, err := googleOauthConfig.Exchange(context.Background(), code)
	if err != nil {
		c.JSON(400, gin.H{"error": "token exchange failed"})
		return
	}
	client := googleOauthConfig.Client(context.Background(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo?alt=json")
	if err != nil || resp.StatusCode != 200 {
		c.JSON(400, gin.H{"error": "failed to get user info"})
		return
	}
	defer resp.Body.Close()

	var userInfo googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		c.JSON(400, gin.H{"error": "failed to decode user info"})
		return
	}
	if userInfo.Email == "" {
		c.JSON(400, gin.H{"error": "email not found in Google profile"})
		return
	}

	db := utils.GetDB()
	var user models.User
	result := db.Where("email = ?", userInfo.Email).First(&user)
	if result.Error != nil {
		email := userInfo.Email
		name := userInfo.Name
		googleID := userInfo.Id
		user = models.User{
			Email:     &email,
			Name:      &name,
			GoogleID:  &googleID,
			Confirmed: true,
			Role:      "user",
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			return tx.Create(&models.UserProfile{UserID: user.ID}).Error
		})
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to save user"})
			return
		}
	}

	jwt, err := utils.GenerateJWT(user.ID, user.Role, os.Getenv("JWT_SECRET"))
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to generate token"})
		return
	}
	c.JSON(200, gin.H{"token": jwt})
}

// GET /user/me
func (uc *UserController) Me(c *gin.Context) {
	userID := c.GetUint("user_id")
	var user models.User
	if err := utils.GetDB().Preload("Profile").First(&user, userID).Error; err != nil {
		c.JSON(404, gin.H{"error": "User not found"})
		return
	}
	c.JSON(200, gin.H{"user": user})
}

// PUT /user/profile
// Updates the identity and employment fields used by KYC and scoring.
func (uc *UserController) UpdateProfile(c *gin.Context) {
	userID := c.GetUint("user_id")
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid request"})
		return
	}

	db := utils.GetDB()
	var profile models.UserProfile
	if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		profile = models.UserProfile{UserID: userID}
	}

	if req.FullName != "" {
		profile.FullName = req.FullName
	}
	if req.IDCardNumber != "" {
		profile.IDCardNumber = req.IDCardNumber
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			c.JSON(400, gin.H{"error": "date_of_birth must be YYYY-MM-DD"})
			return
		}
		profile.DateOfBirth = &dob
	}
	if req.Gender != "" {
		profile.Gender = req.Gender
	}
	if req.Hometown != "" {
		profile.Hometown = req.Hometown
	}
	if req.Address != "" {
		profile.Address = req.Address
	}
	if req.PhoneNumber != "" {
		profile.PhoneNumber = req.PhoneNumber
	}
	if req.Occupation != "" {
		profile.Occupation = req.Occupation
	}
	if req.CompanyName != "" {
		profile.CompanyName = req.CompanyName
	}
	if req.MonthlyIncome > 0 {
		profile.MonthlyIncome = req.MonthlyIncome
	}

	if err := db.Save(&profile).Error; err != nil {
		c.JSON(500, gin.H{"error": "Failed to save profile"})
		return
	}
	c.JSON(200, gin.H{"profile": profile})
}

// POST /wallet/deposit
func (uc *UserController) Deposit(c *gin.Context) {
	userID := c.GetUint("user_id")
	var req models.WalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "amount must be positive"})
		return
	}

	db := utils.GetDB()
	result := db.Model(&models.UserProfile{}).
		Where("user_id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", req.Amount))
	if result.Error != nil || result.RowsAffected == 0 {
		c.JSON(500, gin.H{"error": "Failed to update wallet"})
		return
	}

	var profile models.UserProfile
	db.Where("user_id = ?", userID).First(&profile)
	c.JSON(200, gin.H{
		"status":  "deposited",
		"balance": profile.Balance,
		"amount":  utils.FormatVND(req.Amount),
	})
}

// POST /wallet/withdraw
func (uc *UserController) Withdraw(c *gin.Context) {
	userID := c.GetUint("user_id")
	var req models.WalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "amount must be positive"})
		return
	}

	db := utils.GetDB()
	result := db.Model(&models.UserProfile{}).
		Where("user_id = ? AND balance >= ?", userID, req.Amount).
		Update("balance", gorm.Expr("balance - ?", req.Amount))
	if result.Error != nil {
		c.JSON(500, gin.H{"error": "Failed to update wallet"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(400, gin.H{"error": "Insufficient balance"})
		return
	}

	var profile models.UserProfile
	db.Where("user_id = ?", userID).First(&profile)
	c.JSON(200, gin.H{
		"status":  "withdrawn",
		"balance": profile.Balance,
	})
}

// GET /user/notifications
func (uc *UserController) Notifications(c *gin.Context) {
	userID := c.GetUint("user_id")
	var notifications []models.Notification
	utils.GetDB().
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(50).
		Find(&notifications)

	var unread int64
	utils.GetDB().Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&unread)

	c.JSON(200, gin.H{"notifications": notifications, "unread": unread})
}

// POST /user/notifications/:id/read
func (uc *UserController) MarkNotificationRead(c *gin.Context) {
	userID := c.GetUint("user_id")
	result := utils.GetDB().Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", c.Param("id"), userID).
		Update("is_read", true)
	if result.RowsAffected == 0 {
		c.JSON(404, gin.H{"error": "Notification not found"})
		return
	}
	c.JSON(200, gin.H{"status": "marked read"})
}

// GET /user/agent-logs
// Automation runs that touched this user's data.
func (uc *UserController) MyAgentLogs(c *gin.Context) {
	userID := c.GetUint("user_id")
	var logs []models.AgentLog
	utils.GetDB().
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(50).
		Find(&logs)
	c.JSON(200, gin.H{"logs": logs})
}
