package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eseva-portal/config"
	"eseva-portal/docs"
	"eseva-portal/internal/adapter/gateway/allapi"
	httpHandler "eseva-portal/internal/adapter/http/handler"
	fileStorage "eseva-portal/internal/adapter/storage/files"
	pgStorage "eseva-portal/internal/adapter/storage/postgres"
	redisStorage "eseva-portal/internal/adapter/storage/redis"
	"eseva-portal/internal/core/ports"
	"eseva-portal/internal/service"
	"eseva-portal/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("ESP_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting e-Seva Portal")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Apply embedded schema migrations
	migrator, err := pgStorage.NewMigrator(cfg.Database.MigrateURL(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open migrator")
	}
	if err := migrator.Up(); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}
	if err := migrator.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close migrator")
	}

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	accountRepo := pgStorage.NewAccountRepo(pool)
	ledgerRepo := pgStorage.NewLedgerRepo(pool)
	serviceRepo := pgStorage.NewServiceRepo(pool)
	configRepo := pgStorage.NewServiceConfigRepo(pool)
	eventRepo := pgStorage.NewGatewayEventRepo(pool)
	auditRepo := pgStorage.NewAuditRepository(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize core services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	signer := service.NewPayUSignatureService(cfg.PayU.MerchantKey, cfg.PayU.Salt)
	qrSvc := service.NewQRService()
	gateway := allapi.NewClient(cfg.Gateway, log)

	// Initialize Redis stores
	stagedStore := redisStorage.NewStagedUploadStore(rdb, encSvc)
	claimStore := redisStorage.NewClaimStore(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Staging is always local; promoted documents go to disk or S3.
	staging := fileStorage.NewLocalStaging(cfg.Storage.UploadDir, log)
	var documents ports.DocumentStore
	uploadDir := cfg.Storage.UploadDir
	switch cfg.Storage.Backend {
	case "s3":
		s3Store, err := fileStorage.NewS3DocumentStore(ctx, cfg.Storage.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 document store")
		}
		documents = s3Store
		uploadDir = ""
		log.Info().Str("bucket", cfg.Storage.S3.Bucket).Msg("Documents stored in S3")
	default:
		documents = fileStorage.NewLocalDocumentStore(cfg.Storage.UploadDir)
	}

	// Initialize business services
	ledgerSvc := service.NewLedgerService(accountRepo, ledgerRepo, transactor, log)
	pricingSvc := service.NewPricingService(configRepo, log)
	authSvc := service.NewAuthService(accountRepo, hashSvc, tokenSvc, log)
	accountSvc := service.NewAccountService(accountRepo, log)
	rechargeSvc := service.NewRechargeService(
		ledgerSvc,
		accountRepo,
		ledgerRepo,
		eventRepo,
		gateway,
		qrSvc,
		cfg.App.BackendURL, cfg.App.FrontendURL,
		log,
	)
	paidSvc := service.NewPaidSubmissionService(
		service.PaidSubmissionDeps{
			AccountRepo: accountRepo,
			ServiceRepo: serviceRepo,
			EventRepo:   eventRepo,
			Transactor:  transactor,
			Staging:     staging,
			Staged:      stagedStore,
			Claims:      claimStore,
			Documents:   documents,
			Signer:      signer,
		},
		service.PayUSettings{MerchantKey: cfg.PayU.MerchantKey, ActionURL: cfg.PayU.ActionURL},
		cfg.App.BackendURL, cfg.App.FrontendURL,
		cfg.Storage.StagingTTL,
		log,
	)
	appSvc := service.NewApplicationService(serviceRepo, ledgerSvc, pricingSvc, documents, transactor, log)
	adminSvc := service.NewAdminService(ledgerSvc, accountRepo, log)
	reportingSvc := service.NewReportingService(ledgerRepo, accountRepo)
	auditSvc := service.NewAuditService(auditRepo, log)

	// Background sweeper for orphaned staging directories
	sweeper := service.NewStagingSweeper(staging, stagedStore, cfg.Storage.StagingTTL, log)
	go sweeper.Run(ctx, cfg.Storage.SweepInterval)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		AccountSvc:     accountSvc,
		TokenSvc:       tokenSvc,
		LedgerSvc:      ledgerSvc,
		RechargeSvc:    rechargeSvc,
		PaidSvc:        paidSvc,
		ApplicationSvc: appSvc,
		PricingSvc:     pricingSvc,
		AdminSvc:       adminSvc,
		ReportingSvc:   reportingSvc,
		AuditSvc:       auditSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgStorage.NewHealthCheck(pool), redisStorage.NewHealthCheck(rdb)},
		OpenAPISpec:    docs.OpenAPI,
		UploadDir:      uploadDir,
		Mode:           cfg.Server.Mode,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	auditSvc.Wait()

	log.Info().Msg("Server exited")
}
