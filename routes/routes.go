package routes

import (
	"github.com/namkjs/p2plending/config"
	"github.com/namkjs/p2plending/controllers"
	"github.com/namkjs/p2plending/middleware"
	"github.com/namkjs/p2plending/services"
	"github.com/namkjs/p2plending/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter builds the gin.Engine and registers all routes.
func SetupRouter(cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.RecoveryMiddleware())

	// CORS before any routes
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	rdb := utils.GetRedis()
	ocr := services.NewVinternOCR(cfg.VinternAPIURL)

	userController := controllers.NewUserController(rdb)
	kycController := controllers.NewKYCController(ocr, cfg.UploadDir)
	loanController := controllers.NewLoanController()
	lenderController := controllers.NewLenderController()
	contractController := controllers.NewContractController()
	paymentController := controllers.NewPaymentController()
	disputeController := controllers.NewDisputeController(cfg.UploadDir)
	adminController := controllers.NewAdminController()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.POST("/auth/register", userController.Register)
	r.POST("/auth/confirm-otp", userController.ConfirmOTP)
	r.POST("/auth/set-password", userController.SetPassword)
	r.POST("/auth/login", userController.Login)
	r.POST("/auth/refresh", userController.RefreshToken)
	r.GET("/auth/google", userController.GoogleLogin)
	r.GET("/auth/google/callback", userController.GoogleCallback)

	auth := r.Group("/")
	auth.Use(middleware.JWTAuthMiddleware())
	{
		auth.POST("/auth/logout", userController.Logout)

		auth.GET("/user/me", userController.Me)
		auth.PUT("/user/profile", userController.UpdateProfile)
		auth.GET("/user/notifications", userController.Notifications)
		auth.POST("/user/notifications/:id/read", userController.MarkNotificationRead)
		auth.GET("/user/agent-logs", userController.MyAgentLogs)

		auth.POST("/wallet/deposit", userController.Deposit)
		auth.POST("/wallet/withdraw", userController.Withdraw)

		auth.POST("/kyc/documents", kycController.UploadDocument)
		auth.GET("/kyc/documents", kycController.ListDocuments)
		auth.POST("/kyc/submit", kycController.SubmitKYC)
		auth.GET("/kyc/status", kycController.KYCStatus)

		auth.POST("/loans", loanController.CreateLoan)
		auth.GET("/loans/my", loanController.MyLoans)
		auth.GET("/loans/browse", loanController.BrowseLoans)
		auth.GET("/loans/market-rates", loanController.MarketRates)
		auth.GET("/loans/:id", loanController.LoanDetail)
		auth.POST("/loans/:id/invest", loanController.Invest)

		auth.PUT("/lender/profile", lenderController.UpsertProfile)
		auth.GET("/lender/profile", lenderController.GetProfile)
		auth.GET("/lender/matches", lenderController.Matches)
		auth.GET("/lender/portfolio", lenderController.Portfolio)

		auth.GET("/contracts", contractController.MyContracts)
		auth.GET("/contracts/:id", contractController.ContractDetail)
		auth.POST("/contracts/:id/sign", contractController.Sign)
		auth.POST("/contracts/:id/disputes", disputeController.FileDispute)

		auth.POST("/payments/installments/:id/pay", paymentController.PayInstallment)
		auth.GET("/payments/pending", paymentController.PendingPayments)
		auth.GET("/payments/contracts/:id/early-payoff", paymentController.EarlyPayoffQuote)
		auth.POST("/payments/contracts/:id/early-payoff", paymentController.EarlyPayoffExecute)
		auth.GET("/payments/history", paymentController.History)

		auth.GET("/disputes", disputeController.MyDisputes)
		auth.GET("/disputes/:id", disputeController.DisputeDetail)
		auth.POST("/disputes/:id/evidence", disputeController.AddEvidence)
	}

	admin := r.Group("/admin")
	admin.Use(middleware.JWTAuthMiddleware(), middleware.AdminOnlyMiddleware())
	{
		admin.GET("/loans/pending", adminController.PendingLoans)
		admin.POST("/loans/:id/approve", adminController.ApproveLoan)
		admin.POST("/loans/:id/reject", adminController.RejectLoan)
		admin.POST("/loans/:id/match", adminController.RunMatcher)
		admin.POST("/users/:id/profile", adminController.RunProfiler)
		admin.POST("/payments/check", adminController.RunPaymentCheck)
		admin.GET("/disputes", adminController.OpenDisputes)
		admin.POST("/disputes/:id/resolve", adminController.ResolveDispute)
		admin.GET("/agent-logs", adminController.AgentLogs)
	}

	return r
}
