package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"swiftremit/kyc-portal-backend/internal/ai"
	"swiftremit/kyc-portal-backend/internal/config"
	"swiftremit/kyc-portal-backend/internal/documents"
	"swiftremit/kyc-portal-backend/internal/middleware"
	"swiftremit/kyc-portal-backend/internal/notifications"
	"swiftremit/kyc-portal-backend/internal/recipients"
	"swiftremit/kyc-portal-backend/internal/users"
	"swiftremit/kyc-portal-backend/internal/verification"
	"swiftremit/kyc-portal-backend/pkg/crypto"
	"swiftremit/kyc-portal-backend/pkg/storage"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// .env is optional; real deployments inject environment directly.
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, relying on environment")
	}

	// Load configuration
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Connect to database
	db, err := sqlx.Connect("postgres", cfg.Database.GetDatabaseURL())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxConnections)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	ctx := context.Background()

	// Field encryption for recipient PII. A missing key is logged inside the
	// constructor; writes fail until one is configured.
	fieldCipher := crypto.NewFieldCipher(cfg.Security.EncryptionKey, logger)

	// Object storage for KYC document assets
	s3Client, err := storage.NewS3Client(ctx, storage.S3Options{
		Region:    cfg.Storage.Region,
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
	})
	if err != nil {
		logger.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	// Vision model client for document analysis
	analyzer := ai.NewGeminiClient(cfg.AI.APIKey, cfg.AI.Model, logger)

	// Outbound notifications: SES email plus optional SNS SMS. With no sender
	// configured the mailer runs in simulated mode.
	var emailSender notifications.EmailSender
	if cfg.Email.Sender != "" {
		emailSender, err = notifications.NewSESSender(ctx, cfg.Email.Region, cfg.Email.Sender)
		if err != nil {
			logger.Fatal("Failed to initialize email sender", zap.Error(err))
		}
	} else {
		logger.Warn("EMAIL_SENDER not set, notifications will be simulated")
		emailSender = notifications.NewSimulatedSender(logger)
	}

	var smsSender notifications.SMSSender
	if cfg.SMS.Enabled {
		smsSender, err = notifications.NewSNSSender(ctx, cfg.SMS.Region)
		if err != nil {
			logger.Fatal("Failed to initialize SMS sender", zap.Error(err))
		}
	}

	dispatcher := notifications.NewDispatcher(emailSender, smsSender, logger)
	defer dispatcher.Close()

	// Initialize Modules
	usersRepo := users.NewRepository(db)

	documentsRepo := documents.NewRepository(db)
	documentsService := documents.NewService(documentsRepo, s3Client, cfg.Storage.Bucket)
	documentsHandler := documents.NewHandler(documentsService)

	verificationRepo := verification.NewRepository(db)
	verificationService := verification.NewService(
		verificationRepo,
		documentsService,
		analyzer,
		usersRepo,
		dispatcher,
		logger,
		cfg.Verification.AdminEmail,
		time.Duration(cfg.Verification.ReminderAfterHrs)*time.Hour,
	)
	verificationHandler := verification.NewHandler(verificationService)

	recipientsRepo := recipients.NewRepository(db)
	recipientsService := recipients.NewService(recipientsRepo, fieldCipher, logger)
	recipientsHandler := recipients.NewHandler(recipientsService)

	// Review reminder sweep
	scheduler := verification.NewReminderScheduler(verificationService, logger)
	if err := scheduler.Start(cfg.Verification.ReminderScheduleS); err != nil {
		logger.Fatal("Failed to start reminder scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	// Setup Router
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Register Routes
	api := router.Group("/api/v1")
	api.Use(middleware.RequireAuth(cfg.Security.JWTSecret))
	admin := api.Group("")
	admin.Use(middleware.RequireRole("admin"))
	{
		documentsHandler.RegisterRoutes(api)
		verificationHandler.RegisterRoutes(api, admin)
		recipientsHandler.RegisterRoutes(api)
	}

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	// Start Server
	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen: %s\n", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.Int("port", cfg.Server.Port))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown:", zap.Error(err))
	}

	logger.Info("Server exiting")
}
