package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-directory/internal/config"
	"github.com/jwalitptl/clinic-directory/internal/email"
	"github.com/jwalitptl/clinic-directory/internal/handler/health"
	"github.com/jwalitptl/clinic-directory/internal/repository/postgres"
	internalworker "github.com/jwalitptl/clinic-directory/internal/worker"
	"github.com/jwalitptl/clinic-directory/pkg/logger"
	"github.com/jwalitptl/clinic-directory/pkg/messaging/redis"
	"github.com/jwalitptl/clinic-directory/pkg/metrics"
	"github.com/jwalitptl/clinic-directory/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	lg := logger.NewLogger(&logger.Config{Level: logger.ParseLevel(cfg.Log.Level)}).With("worker")
	log.Logger = *lg.Zerolog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		lg.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), lg.Zerolog())
	if err != nil {
		lg.Fatal(err, "Failed to create Redis broker")
	}
	defer broker.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.NewMetrics("clinicdir", "worker", registry)

	outboxRepo := postgres.NewOutboxRepository(postgres.NewBaseRepository(db))

	processor := worker.NewOutboxProcessor(outboxRepo, broker, cfg.Outbox.ToWorkerConfig(), lg.With("outbox"), m)

	var sender email.Sender = email.NewSMTPSender(cfg.SMTP)
	if cfg.SMTP.Host == "" {
		lg.Warn("SMTP host not configured; notifications are logged only")
		sender = email.LogSender{Sent: func(msg email.Message) {
			log.Info().Strs("to", msg.To).Str("subject", msg.Subject).Msg("notification (not sent)")
		}}
	}
	notifier := internalworker.NewNotifier(broker, sender, recipients(cfg.SMTP.NotifyTo), lg.With("notifier"), m)

	scheduler := internalworker.NewScheduler(lg.With("scheduler"))
	cleanup := internalworker.NewOutboxCleanup(outboxRepo, cfg.Outbox.Retention, lg.With("cleanup"), m)
	if err := scheduler.Add(cfg.Outbox.CleanupSchedule, "outbox_cleanup", cleanup.Run); err != nil {
		lg.Fatal(err, "Failed to schedule outbox cleanup")
	}

	srv := healthServer(cfg.Server.WorkerHealthPort, registry, map[string]health.Check{
		"postgres": db.PingContext,
		"redis":    broker.Ping,
	})
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error(err, "Health check server failed")
			stop()
		}
	}()

	var wg sync.WaitGroup
	run := func(name string, fn func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(ctx)
			lg.Info("Component stopped", "component", name)
		}()
	}
	run("outbox", processor.Start)
	run("scheduler", scheduler.Run)
	run("notifier", func(ctx context.Context) {
		if err := notifier.Run(ctx); err != nil {
			lg.Error(err, "Notifier failed")
		}
	})

	<-ctx.Done()
	lg.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	wg.Wait()
}

func healthServer(port int, registry *prometheus.Registry, checks map[string]health.Check) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	health.NewHandler(checks).RegisterRoutes(engine.Group(""))
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func recipients(list string) []string {
	var out []string
	for _, addr := range strings.Split(list, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
