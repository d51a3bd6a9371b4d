package handler

import (
	"path/filepath"

	"eseva-portal/internal/adapter/http/middleware"
	redisStore "eseva-portal/internal/adapter/storage/redis"
	"eseva-portal/internal/core/domain"
	"eseva-portal/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	defaultJSONLimit   = 1 << 20  // 1 MB
	defaultUploadLimit = 25 << 20 // 25 MB
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	AccountSvc     ports.AccountService
	TokenSvc       ports.TokenService
	LedgerSvc      ports.LedgerService
	RechargeSvc    ports.RechargeService
	PaidSvc        ports.PaidSubmissionService
	ApplicationSvc ports.ApplicationService
	PricingSvc     ports.PricingService
	AdminSvc       ports.AdminService
	ReportingSvc   ports.ReportingService
	AuditSvc       ports.AuditService         // nil = audit logging disabled
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	OpenAPISpec    []byte
	UploadDir      string // Local document root served under /uploads; empty when documents live in S3
	MaxUploadBytes int64
	Mode           string // gin mode; defaults to release
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	mode := deps.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	uploadLimit := deps.MaxUploadBytes
	if uploadLimit <= 0 {
		uploadLimit = defaultUploadLimit
	}
	jsonBody := middleware.MaxBodySize(defaultJSONLimit)
	uploadBody := middleware.MaxBodySize(uploadLimit)

	// Deep health check over PostgreSQL and Redis
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec(deps.OpenAPISpec))
	}

	// Promoted documents only; the staging area stays private.
	if deps.UploadDir != "" {
		for _, t := range domain.ServiceTypes() {
			def, _ := domain.LookupService(t)
			r.Static("/uploads/"+def.StorageDir, filepath.Join(deps.UploadDir, def.StorageDir))
		}
		r.Static("/uploads/"+domain.ServiceDocumentsDir, filepath.Join(deps.UploadDir, domain.ServiceDocumentsDir))
	}

	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	api := r.Group("/api")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc, deps.AccountSvc)
	auth := api.Group("/auth", jsonBody)
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
		auth.GET("/me", jwtAuth, authHandler.Me)
	}

	// --- Wallet: gateway-facing routes are public, the rest need a JWT ---
	walletHandler := NewWalletHandler(deps.RechargeSvc, deps.LedgerSvc)
	wallet := api.Group("/wallet", jsonBody)
	{
		wallet.POST("/webhook", rl("gateway"), walletHandler.Webhook)
		wallet.GET("/payment-return", walletHandler.PaymentReturn)
		wallet.POST("/payment-return", walletHandler.PaymentReturn)

		wallet.POST("/recharge", jwtAuth, rl("recharge"), walletHandler.Recharge)
		wallet.POST("/check-status", jwtAuth, rl("status_poll"), walletHandler.CheckStatus)
		wallet.GET("/balance", jwtAuth, walletHandler.Balance)
		wallet.GET("/history", jwtAuth, walletHandler.History)
	}

	// --- Services paid at the hosted checkout ---
	paymentHandler := NewPaymentHandler(deps.PaidSvc)
	payment := api.Group("/payment")
	{
		payment.POST("/initiate-itr-payment", uploadBody, jwtAuth, rl("apply"),
			middleware.ServiceActive(deps.PricingSvc, domain.ServiceITR), paymentHandler.InitiateITR)
		payment.POST("/itr-callback", jsonBody, rl("gateway"), paymentHandler.ITRCallback)
	}

	// --- Wallet-debited applications ---
	serviceHandler := NewServiceHandler(deps.ApplicationSvc)
	active := func(t domain.ServiceType) gin.HandlerFunc {
		return middleware.ServiceActive(deps.PricingSvc, t)
	}
	services := api.Group("/services", jwtAuth)
	{
		apply := services.Group("/apply", rl("apply"))
		apply.POST("/pan-card", uploadBody, active(domain.ServicePanCard), serviceHandler.ApplyWithDocuments(domain.ServicePanCard))
		apply.POST("/job-card", uploadBody, active(domain.ServiceJobCard), serviceHandler.ApplyWithDocuments(domain.ServiceJobCard))
		apply.POST("/voter-card", jsonBody, active(domain.ServiceVoterCard), serviceHandler.ApplyBulk(domain.ServiceVoterCard))
		apply.POST("/rtps", jsonBody, active(domain.ServiceRtps), serviceHandler.ApplyBulk(domain.ServiceRtps))
		apply.POST("/labour-card", jsonBody, active(domain.ServiceLabourCard), serviceHandler.ApplyBulk(domain.ServiceLabourCard))

		services.GET("/my-services", serviceHandler.MyServices)
		services.GET("/:serviceId/documents", serviceHandler.ListDocuments)

		adminUpload := services.Group("", uploadBody, middleware.RequireAdmin(), rl("admin"))
		adminUpload.POST("/:serviceId/documents", serviceHandler.AttachDocument)
		adminUpload.POST("/:serviceId/voter-pdf", serviceHandler.FulfillVoterCard)
	}

	// --- Admin console ---
	adminHandler := NewAdminHandler(AdminDeps{
		AdminSvc:     deps.AdminSvc,
		ReportingSvc: deps.ReportingSvc,
		AppSvc:       deps.ApplicationSvc,
		PricingSvc:   deps.PricingSvc,
		AccountSvc:   deps.AccountSvc,
	})
	admin := api.Group("/admin", jsonBody, jwtAuth, middleware.RequireAdmin(), rl("admin"))
	{
		admin.GET("/stats", adminHandler.Stats)
		admin.GET("/transactions", adminHandler.ListTransactions)
		admin.POST("/transactions/:orderId/approve", adminHandler.ApproveTransaction)

		admin.POST("/users/:userId/credit", adminHandler.ManualCredit)
		admin.PATCH("/users/:userId/status", adminHandler.SetAccountStatus)

		admin.PATCH("/service/:serviceId/status", adminHandler.UpdateServiceStatus)
		admin.POST("/service/:serviceId/comment", adminHandler.AddComment)
		admin.POST("/service/:serviceId/rtps/action", adminHandler.ApplicationAction(domain.ServiceRtps))
		admin.POST("/service/:serviceId/labour/action", adminHandler.ApplicationAction(domain.ServiceLabourCard))

		admin.GET("/config/prices", adminHandler.ListPrices)
		admin.PUT("/config/prices", adminHandler.UpdatePrice)
		admin.PATCH("/config/toggle", adminHandler.Toggle)
	}

	return r
}
