package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-directory/internal/config"
	adminHandler "github.com/jwalitptl/clinic-directory/internal/handler/admin"
	clinicHandler "github.com/jwalitptl/clinic-directory/internal/handler/clinic"
	"github.com/jwalitptl/clinic-directory/internal/handler/health"
	leadHandler "github.com/jwalitptl/clinic-directory/internal/handler/lead"
	moderationHandler "github.com/jwalitptl/clinic-directory/internal/handler/moderation"
	patientHandler "github.com/jwalitptl/clinic-directory/internal/handler/patient"
	portalHandler "github.com/jwalitptl/clinic-directory/internal/handler/portal"
	promhandler "github.com/jwalitptl/clinic-directory/internal/handler/prometheus"
	searchHandler "github.com/jwalitptl/clinic-directory/internal/handler/search"
	"github.com/jwalitptl/clinic-directory/internal/middleware"
	"github.com/jwalitptl/clinic-directory/internal/migration"
	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/internal/realtime"
	"github.com/jwalitptl/clinic-directory/internal/repository/postgres"
	"github.com/jwalitptl/clinic-directory/internal/router"
	bookingService "github.com/jwalitptl/clinic-directory/internal/service/booking"
	clinicService "github.com/jwalitptl/clinic-directory/internal/service/clinic"
	draftService "github.com/jwalitptl/clinic-directory/internal/service/draft"
	eventService "github.com/jwalitptl/clinic-directory/internal/service/event"
	leadService "github.com/jwalitptl/clinic-directory/internal/service/lead"
	moderationService "github.com/jwalitptl/clinic-directory/internal/service/moderation"
	patientService "github.com/jwalitptl/clinic-directory/internal/service/patient"
	searchService "github.com/jwalitptl/clinic-directory/internal/service/search"
	"github.com/jwalitptl/clinic-directory/pkg/auth"
	"github.com/jwalitptl/clinic-directory/pkg/logger"
	"github.com/jwalitptl/clinic-directory/pkg/messaging/redis"
	"github.com/jwalitptl/clinic-directory/pkg/metrics"
)

const metricsNamespace = "clinicdir"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	lg := logger.NewLogger(&logger.Config{Level: logger.ParseLevel(cfg.Log.Level)})
	log.Logger = *lg.Zerolog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if cfg.Database.RunMigrations {
		if err := migration.RunMigrations(db.DB); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	broker, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), lg.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(metricsNamespace, "api", registry)

	// Repositories
	base := postgres.NewBaseRepository(db)
	clinicRepo := postgres.NewClinicRepository(base)
	draftRepo := postgres.NewDraftRepository(base)
	moderationRepo := postgres.NewModerationRepository(base)
	bookingRepo := postgres.NewBookingRepository(base)
	reviewRepo := postgres.NewReviewRepository(base)
	reportRepo := postgres.NewReportRepository(base)
	accreditationRepo := postgres.NewAccreditationRepository(base)
	leadRepo := postgres.NewLeadRepository(base)
	searchRepo := postgres.NewSearchRepository(base)
	outboxRepo := postgres.NewOutboxRepository(base)

	// Services
	events := eventService.NewEventService(outboxRepo)
	clinicSvc := clinicService.NewService(clinicRepo, accreditationRepo, reviewRepo, nil)
	draftSvc := draftService.NewService(clinicRepo, draftRepo, events)
	moderationSvc := moderationService.NewService(moderationRepo, clinicRepo, draftRepo, events, clinicSvc, m)
	searchSvc := searchService.NewService(searchRepo, cfg.Search, m)
	bookingSvc := bookingService.NewService(bookingRepo, clinicRepo, events)
	patientSvc := patientService.NewService(bookingSvc, clinicRepo, reviewRepo, reportRepo, clinicSvc)
	leadSvc := leadService.NewService(leadRepo, events)

	authMiddleware := middleware.NewAuthMiddleware(auth.NewJWTVerifier(cfg.JWT.Secret, cfg.JWT.Issuer))

	var writeLimits []gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			Burst: cfg.RateLimit.Burst,
		})
		writeLimits = append(writeLimits, limiter.RateLimit())
	}

	hub := realtime.NewHub(broker, m)
	go func() {
		if err := hub.Run(ctx); err != nil {
			log.Error().Err(err).Msg("booking feed hub stopped")
		}
	}()

	var promH *promhandler.Handler
	if cfg.Monitoring.PrometheusEnabled {
		promH = promhandler.New(registry, metricsNamespace)
	}

	r := router.NewRouter(authMiddleware, router.Handlers{
		Health: health.NewHandler(map[string]health.Check{
			"postgres": db.PingContext,
			"redis":    broker.Ping,
		}),
		Catalog:    clinicHandler.NewHandler(clinicSvc, bookingSvc, patientSvc, writeLimits...),
		Search:     searchHandler.NewHandler(searchSvc),
		Lead:       leadHandler.NewHandler(leadSvc, writeLimits...),
		Admin:      adminHandler.NewHandler(clinicSvc, draftSvc),
		Moderation: moderationHandler.NewHandler(moderationSvc),
		Portal:     portalHandler.NewHandler(draftSvc, bookingSvc),
		Patient:    patientHandler.NewHandler(patientSvc),
		Realtime: realtime.NewHandler(hub, bookingSvc, searchSvc, realtime.Config{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			Debounce:       cfg.Search.Debounce,
		}, authMiddleware.Authenticate(), authMiddleware.RequireRole(model.RoleCustomer)),
	}, promH, router.Config{
		CORS: middleware.DefaultCORSConfig().WithOrigins(
			cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders),
		MetricsPath: cfg.Monitoring.MetricsPath,
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("failed to start server")
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
