package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/frontdesk/visitorapp/internal/handlers"
	"github.com/frontdesk/visitorapp/internal/mailer"
	"github.com/frontdesk/visitorapp/internal/repository"
	"github.com/frontdesk/visitorapp/internal/service"
	"github.com/frontdesk/visitorapp/pkg/config"
	"github.com/frontdesk/visitorapp/pkg/database"
	"github.com/frontdesk/visitorapp/pkg/events"
	"github.com/frontdesk/visitorapp/pkg/logger"
	mw "github.com/frontdesk/visitorapp/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// Connect to database
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Connect to redis (OTP rate limiting)
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("Invalid redis URL", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// Connect to event bus
	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	feedbackRepo := repository.NewFeedbackRepository(pool)
	rateLimitRepo := repository.NewRateLimitRepository(redisClient)

	// Initialize services
	mailService := newMailer(cfg)
	sessionService := service.NewSessionService(userRepo, mailService, eventBus, cfg)
	reservationService := service.NewReservationService(reservationRepo, activityRepo, userRepo, eventBus)
	adminService := service.NewAdminService(adminRepo, activityRepo, reservationRepo, userRepo, feedbackRepo, cfg)
	feedbackService := service.NewFeedbackService(feedbackRepo, eventBus)

	// Initialize handlers
	h := handlers.New(sessionService, reservationService, adminService, feedbackService, rateLimitRepo, cfg)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000", "*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.Health)

	// Routes
	r.Route("/v1", func(r chi.Router) {
		// Public routes
		r.Route("/auth/otp", func(r chi.Router) {
			r.With(h.OTPRateLimit).Post("/request", h.RequestOTP)
			r.Post("/verify", h.VerifyOTP)
		})
		r.Post("/feedback", h.SubmitFeedback)
		r.Post("/admin/login", h.AdminLogin)

		// Visitor routes (session required)
		r.Group(func(r chi.Router) {
			r.Use(h.RequireVisitorSession)

			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.CompleteProfile)

			r.Route("/reservations", func(r chi.Router) {
				r.Post("/visit", h.CreateVisit)
				r.Post("/pitch", h.CreatePitch)
				r.Post("/interview", h.CreateInterview)
				r.Post("/tech", h.CreateTechEvent)

				r.Get("/current", h.CurrentReservation)
				r.Get("/past", h.ListPastReservations)

				r.Post("/{kind}/{id}/check-in", h.CheckIn)
				r.Post("/{kind}/{id}/check-out", h.CheckOut)
			})
		})

		// Admin routes (admin session required)
		r.Route("/admin", func(r chi.Router) {
			r.Use(h.RequireAdminSession)

			r.Get("/dashboard", h.Dashboard)
			r.Get("/reservations/{kind}", h.ListReservationsByKind)
			r.Get("/feedback", h.ListFeedback)
		})
	})

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Shutdown error", "error", err)
		}
	}()

	logger.Info("Starting API", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

// newMailer picks the delivery backend: dev mode prints codes to the log,
// MailerSend is preferred when a key is configured, SMTP otherwise.
func newMailer(cfg *config.Config) mailer.Service {
	switch {
	case cfg.Email.DevMode:
		return mailer.NewDevMailer()
	case cfg.Email.MailerSendKey != "":
		return mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.SMTPFrom)
	default:
		return mailer.NewSMTPMailer(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPFrom, cfg.Email.SMTPUser, cfg.Email.SMTPPass, cfg.Email.SMTPUseTLS)
	}
}
