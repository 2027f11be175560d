package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	config "github.com/casaflow/casaflow/configs"
	"github.com/casaflow/casaflow/internal/application/services"
	"github.com/casaflow/casaflow/internal/core/ports"
	"github.com/casaflow/casaflow/internal/infrastructure/db"
	"github.com/casaflow/casaflow/internal/infrastructure/email"
	"github.com/casaflow/casaflow/internal/infrastructure/health"
	"github.com/casaflow/casaflow/internal/infrastructure/httpserver"
	"github.com/casaflow/casaflow/internal/infrastructure/otp"
	"github.com/casaflow/casaflow/internal/infrastructure/redis"
	"github.com/casaflow/casaflow/internal/infrastructure/repositories"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.Info("Starting Casaflow application...")

	// Initialize database (apply pool settings from config)
	database, err := db.NewDatabaseWithConfig(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	logger.Info("Connected to database successfully")

	// Initialize Redis client
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	logger.Info("Connected to Redis successfully")

	// Run migrations
	if err := database.Migrate("./migrations"); err != nil {
		logger.Warn("Failed to run migrations:", err)
	}

	// Redis-backed pieces
	redisRateLimitRepo := repositories.NewRateLimitRedisRepository(redisClient)
	redisCache := redis.NewRedisCache(redisClient, "appcache")

	// Initialize all db repository implementations
	baseUserRepo := repositories.NewUserRepository(database, logger)
	basePropertyRepo := repositories.NewPropertyRepository(database, logger)
	verificationRepo := repositories.NewVerificationRepository(database, logger)

	// Decorate with caching (choose TTLs)
	userRepo := repositories.NewCachingUserRepository(baseUserRepo, redisCache, 3*time.Minute)
	propertyRepo := repositories.NewCachingPropertyRepository(basePropertyRepo, redisCache, 5*time.Minute)

	// Initialize services with proper repository dependencies
	emailConfig := &email.EmailConfig{
		SendGridAPIKey: cfg.Email.SendGridAPIKey,
		FromEmail:      cfg.Email.FromEmail,
		FromName:       cfg.Email.FromName,
		CompanyName:    cfg.Email.CompanyName,
	}
	emailService, err := email.NewEmailService(emailConfig, logger)
	if err != nil {
		logger.Fatal("Failed to initialize email service:", err)
	}

	codeGenerator := otp.NewGenerator()
	codeHasher := otp.NewBcryptHasher(bcrypt.DefaultCost)
	otpLimiter := services.NewOTPRateLimiter(&cfg.OTP)

	verificationService := services.NewVerificationService(
		userRepo, verificationRepo, codeGenerator, codeHasher, otpLimiter, emailService, &cfg.OTP, logger)
	userService := services.NewUserService(userRepo, verificationService, logger)
	authService := services.NewAuthService(userRepo, &cfg.JWT, logger)
	propertyService := services.NewPropertyService(propertyRepo, logger)
	rateLimiterService := services.NewRateLimiterService(redisRateLimitRepo, &cfg.RateLimit, logger)

	hcSlice := []ports.HealthChecker{health.NewDBHealthChecker(database), health.NewRedisHealthChecker(redisClient)}

	// Create server configuration
	serverConfig := &httpserver.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		TLSCertFile:    cfg.Server.TLSCertFile,
		TLSKeyFile:     cfg.Server.TLSKeyFile,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Environment:    cfg.Server.Environment,
	}

	// Initialize HTTP server using ServerDeps for clearer wiring
	deps := httpserver.ServerDeps{
		UserService:         userService,
		AuthService:         authService,
		VerificationService: verificationService,
		PropertyService:     propertyService,
		RateLimiterService:  rateLimiterService,
		HealthCheckers:      hcSlice,
	}

	server := httpserver.NewServer(serverConfig, logger, deps)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
