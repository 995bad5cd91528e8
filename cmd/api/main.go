package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/sacrament-scheduler/internal/audit"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/clock"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/sacrament-scheduler/internal/db"
	domain "github.com/BruksfildServices01/sacrament-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/infra/lock"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/infra/payment"
	infraRepo "github.com/BruksfildServices01/sacrament-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/infra/storage"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/jobs"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/logger"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/notify"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/routes"
	ucAppointment "github.com/BruksfildServices01/sacrament-scheduler/internal/usecase/appointment"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		zlog.Fatal("database", zap.Error(err))
	}

	ctx := context.Background()
	clk := clock.System{}
	repo := infraRepo.NewAppointmentGormRepository(db)

	// ------------------------------
	// confirmation locks
	// ------------------------------
	var locker domain.Locker = lock.NoopLocker{}
	if cfg.RedisURL != "" {
		rdb, err := lock.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			zlog.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb)
	} else {
		zlog.Warn("REDIS_URL not set, confirmations rely on database idempotency only")
	}

	// ------------------------------
	// payments
	// ------------------------------
	var payments domain.PaymentSessionBridge = payment.Disabled{}
	if cfg.MercadoPagoAccessToken != "" {
		mp, err := payment.NewMercadoPago(payment.Options{
			AccessToken:     cfg.MercadoPagoAccessToken,
			NotificationURL: cfg.PaymentNotificationURL,
			SuccessURL:      cfg.PaymentSuccessURL,
			FailureURL:      cfg.PaymentFailureURL,
		})
		if err != nil {
			zlog.Fatal("mercadopago", zap.Error(err))
		}
		payments = mp
	} else {
		zlog.Warn("MERCADOPAGO_ACCESS_TOKEN not set, paid services are disabled")
	}

	// ------------------------------
	// requirement storage
	// ------------------------------
	var store domain.ObjectStore
	if cfg.S3Bucket != "" {
		store = storage.NewS3Store(storage.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}

	// ------------------------------
	// notifications
	// ------------------------------
	sinks := []notify.Sink{notify.NewStoreSink(db)}
	if cfg.AMQPURL != "" {
		amqpSink, err := notify.NewAMQPSink(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			zlog.Fatal("amqp", zap.Error(err))
		}
		defer amqpSink.Close()
		sinks = append(sinks, amqpSink)
	}
	events := notify.NewDispatcher(zlog, cfg.NotifyQueueSize, sinks...)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger, zlog)

	// ------------------------------
	// jobs
	// ------------------------------
	reaper, err := jobs.NewIntentReaper(
		ucAppointment.NewReapExpiredIntents(repo, clk, zlog),
		cfg.ReaperSchedule,
		zlog,
	)
	if err != nil {
		zlog.Fatal("intent reaper", zap.Error(err))
	}
	reaper.Start()

	// ------------------------------
	// http
	// ------------------------------
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, routes.Deps{
		DB:       db,
		Config:   cfg,
		Log:      zlog,
		Clock:    clk,
		Repo:     repo,
		Payments: payments,
		Locker:   locker,
		Store:    store,
		Events:   events,
		Audit:    auditDispatcher,
		AuditLog: auditLogger,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("server running", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server shutdown", zap.Error(err))
	}
	reaper.Stop()
	events.Close()
	auditDispatcher.Close()
}
