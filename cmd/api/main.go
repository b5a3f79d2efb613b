package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"conferencepass/config"
	"conferencepass/internal/adapters/auth"
	"conferencepass/internal/adapters/email"
	"conferencepass/internal/adapters/qr"
	delivery "conferencepass/internal/delivery/http"
	"conferencepass/internal/delivery/http/controllers"
	"conferencepass/internal/delivery/http/middleware"
	"conferencepass/internal/repository/postgres"
	"conferencepass/internal/services"

	"golang.org/x/crypto/bcrypt"
)

// @title conferencepass API
// @version 1.0
// @description Conference enrollment, QR check-in, and attendance certificates.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Repositories
	activityRepo := postgres.NewActivityRepository(db)
	enrollmentRepo := postgres.NewEnrollmentRepository(db)
	qrTokenRepo := postgres.NewQrTokenRepository(db)
	userRepo := postgres.NewUserRepository(db)
	certRepo := postgres.NewCertificateRepository(db)

	// Adapters
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	tokenIssuer := auth.NewJWTIssuer(cfg.JWTSecret)
	tokenVerifier := auth.NewJWTVerifier(cfg.JWTSecret)
	qrIssuer := qr.NewIssuer(cfg.QRGrace)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFrom,
		FromName:    "Conference Pass",
		SES: email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKey,
			SecretAccessKey: cfg.AWSSecretKey,
		},
	})
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}

	// Services
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())
	userService := services.NewUserService(userRepo, hasher, tokenIssuer, cfg.TokenExpiry)
	activityService := services.NewActivityService(activityRepo)
	enrollmentService := services.NewEnrollmentService(activityRepo, enrollmentRepo, userRepo, qrIssuer, emailService)
	checkinService := services.NewCheckinService(qrTokenRepo, enrollmentRepo, userRepo, activityRepo)
	certificateService := services.NewCertificateService(certRepo, enrollmentRepo, activityRepo, userRepo, emailService)

	mux := delivery.NewRouter(delivery.RouterDeps{
		Logger:        logger,
		TokenVerifier: tokenVerifier,
		UserService:   userService,
		Auth:          controllers.NewAuthController(logger, userService),
		Users:         controllers.NewUserController(logger, userService),
		Activities:    controllers.NewActivityController(logger, activityService),
		Enrollments:   controllers.NewEnrollmentController(logger, enrollmentService),
		Checkin:       controllers.NewCheckinController(logger, checkinService),
		Certificates:  controllers.NewCertificateController(logger, certificateService),
	})

	handler := middleware.LoggingMiddleware(logger, mux)
	if len(cfg.CORSAllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
