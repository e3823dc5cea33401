package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/clinicore/clinic-api/internal/config"
	"github.com/clinicore/clinic-api/internal/email"
	adminHandler "github.com/clinicore/clinic-api/internal/handler/admin"
	authHandler "github.com/clinicore/clinic-api/internal/handler/auth"
	catalogHandler "github.com/clinicore/clinic-api/internal/handler/catalog"
	doctorHandler "github.com/clinicore/clinic-api/internal/handler/doctor"
	healthHandler "github.com/clinicore/clinic-api/internal/handler/health"
	patientHandler "github.com/clinicore/clinic-api/internal/handler/patient"
	"github.com/clinicore/clinic-api/internal/middleware"
	"github.com/clinicore/clinic-api/internal/repository/postgres"
	redisrepo "github.com/clinicore/clinic-api/internal/repository/redis"
	"github.com/clinicore/clinic-api/internal/router"
	appointmentService "github.com/clinicore/clinic-api/internal/service/appointment"
	auditService "github.com/clinicore/clinic-api/internal/service/audit"
	authService "github.com/clinicore/clinic-api/internal/service/auth"
	billingService "github.com/clinicore/clinic-api/internal/service/billing"
	catalogService "github.com/clinicore/clinic-api/internal/service/catalog"
	consultationService "github.com/clinicore/clinic-api/internal/service/consultation"
	doctorService "github.com/clinicore/clinic-api/internal/service/doctor"
	patientService "github.com/clinicore/clinic-api/internal/service/patient"
	scheduleService "github.com/clinicore/clinic-api/internal/service/schedule"
	userService "github.com/clinicore/clinic-api/internal/service/user"
	"github.com/clinicore/clinic-api/pkg/auth"
	pkglogger "github.com/clinicore/clinic-api/pkg/logger"
	"github.com/clinicore/clinic-api/pkg/metrics"
	"github.com/clinicore/clinic-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	pkglogger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	appMetrics := metrics.NewMetrics("clinic", "api")
	logger := log.Logger

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	scheduleRepo := postgres.NewScheduleRepository(db)
	recordRepo := postgres.NewMedicalRecordRepository(db)
	consultationRepo := postgres.NewConsultationRepository(db)
	billingRepo := postgres.NewBillingRepository(db)
	catalogRepo := postgres.NewCatalogRepository(db)
	auditRepo := postgres.NewAuditRepository(db)

	tokenStore, err := redisrepo.NewTokenStore(redisrepo.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &logger, appMetrics)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}

	// Shared infrastructure
	hasher := security.NewBcryptHasher(0)
	jwtSvc := auth.NewJWTService(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.ExpiryHours)*time.Hour,
		cfg.JWT.Issuer,
	)

	var emailSvc email.Service = email.NoopService{}
	if cfg.SMTP.Enabled {
		emailSvc = email.NewService(email.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}

	// Services
	auditSvc := auditService.NewService(auditRepo)
	authSvc := authService.NewService(userRepo, tokenStore, jwtSvc, hasher, &logger)
	userSvc := userService.NewService(userRepo, hasher, emailSvc, auditSvc, &logger)
	patientSvc := patientService.NewService(patientRepo, userRepo, recordRepo, appointmentRepo, hasher, auditSvc, &logger)
	doctorSvc := doctorService.NewService(doctorRepo, auditSvc, &logger)
	appointmentSvc := appointmentService.NewService(
		appointmentRepo, scheduleRepo, doctorRepo, patientRepo,
		emailSvc, auditSvc, appMetrics, &logger,
	)
	scheduleSvc := scheduleService.NewService(scheduleRepo, doctorRepo, auditSvc, cfg.Schedule.RejectOverlap, &logger)
	catalogSvc := catalogService.NewService(catalogRepo, time.Duration(cfg.Limits.CatalogCacheTTL)*time.Second)
	consultationSvc := consultationService.NewService(
		consultationRepo, recordRepo, appointmentRepo, doctorRepo,
		catalogSvc, auditSvc, appMetrics, &logger,
	)
	billingSvc := billingService.NewService(billingRepo, doctorRepo, patientRepo, auditSvc, appMetrics, &logger)

	// Transport
	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	r := router.NewRouter(
		authMiddleware,
		healthHandler.NewHandler(db),
		authHandler.NewHandler(authSvc, userSvc),
		patientHandler.NewHandler(patientSvc, appointmentSvc, doctorSvc, scheduleSvc, billingSvc),
		doctorHandler.NewHandler(doctorSvc, appointmentSvc, scheduleSvc, consultationSvc, billingSvc),
		adminHandler.NewHandler(userSvc, patientSvc, doctorSvc, appointmentSvc, scheduleSvc, billingSvc, catalogSvc, auditSvc),
		catalogHandler.NewHandler(catalogSvc),
		router.Config{
			RateLimit:     rate.Limit(cfg.Limits.RateLimit),
			RateBurst:     cfg.Limits.RateBurst,
			Timeout:       time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "clinic_http",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}
