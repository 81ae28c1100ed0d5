package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	"github.com/BruksfildServices01/salon-booking/internal/clock"
	"github.com/BruksfildServices01/salon-booking/internal/config"
	dbpkg "github.com/BruksfildServices01/salon-booking/internal/db"
	apdomain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/domain/catalog"
	"github.com/BruksfildServices01/salon-booking/internal/domain/payment"
	"github.com/BruksfildServices01/salon-booking/internal/events"
	"github.com/BruksfildServices01/salon-booking/internal/handlers"
	"github.com/BruksfildServices01/salon-booking/internal/infra/archive"
	"github.com/BruksfildServices01/salon-booking/internal/infra/cache"
	"github.com/BruksfildServices01/salon-booking/internal/infra/gateway"
	infraRepo "github.com/BruksfildServices01/salon-booking/internal/infra/repository"
	"github.com/BruksfildServices01/salon-booking/internal/logger"
	"github.com/BruksfildServices01/salon-booking/internal/metrics"
	"github.com/BruksfildServices01/salon-booking/internal/routes"
	"github.com/BruksfildServices01/salon-booking/internal/usecase/booking"
	ucPayment "github.com/BruksfildServices01/salon-booking/internal/usecase/payment"
	"github.com/BruksfildServices01/salon-booking/internal/worker"
)

const (
	breakerMaxFailures = 5
	breakerReset       = 30 * time.Second
	auditBuffer        = 1000
	redisLockTTL       = 30 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk := clock.System()

	// ======================================================
	// STORAGE
	// ======================================================
	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	checks := map[string]handlers.CheckFunc{
		"database": sqlDB.PingContext,
	}

	var (
		dedup  cache.TTLStore
		locker cache.Locker
	)
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rdb.Close()

		dedup = cache.NewRedisStore(rdb, "salon:")
		locker = cache.NewRedisLocker(rdb, "salon:lock:", redisLockTTL)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		log.Warn("REDIS_ADDR not set, using in-process locks and dedup")
		dedup = cache.NewMemoryStore(clk)
		locker = cache.NewMemoryLocker()
	}

	appointmentRepo := infraRepo.NewAppointmentGormRepository(db, cfg.StoreTimeout)
	paymentRepo := infraRepo.NewPaymentGormRepository(db, cfg.StoreTimeout)
	catalogRepo := infraRepo.NewCatalogGormRepository(db, cfg.StoreTimeout)

	// ======================================================
	// INTEGRATIONS
	// ======================================================
	var gw payment.Gateway
	switch cfg.GatewayProvider {
	case "mercadopago":
		breaker := gateway.NewBreaker(breakerMaxFailures, breakerReset, clk)
		gw, err = gateway.NewMercadoPago(
			cfg.MercadoPagoAccessToken,
			cfg.GatewayWebhookSecret,
			cfg.GatewayTimeout,
			breaker,
			log,
		)
		if err != nil {
			return err
		}
	default:
		log.Warn("using sandbox payment gateway")
		gw = gateway.NewSandbox(cfg.GatewayWebhookSecret)
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.AMQPURL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.StoreTimeout)
		if err != nil {
			return err
		}
		defer amqpPub.Close()
		publisher = amqpPub
	}

	var archiver archive.Archiver = archive.Noop{}
	if cfg.S3Bucket != "" {
		archiver = archive.NewS3Archiver(archive.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
			Prefix:    cfg.S3Prefix,
			Timeout:   cfg.StoreTimeout,
		})
	}

	auditDispatcher := audit.NewDispatcher(audit.New(db), log, auditBuffer)
	m := metrics.New()
	authz := catalog.NewRoleAuthorizer(catalogRepo, catalogRepo)

	// ======================================================
	// USE CASE DEPENDENCIES
	// ======================================================
	bookingDeps := booking.Deps{
		Appointments:  appointmentRepo,
		Users:         catalogRepo,
		Salons:        catalogRepo,
		Authz:         authz,
		Locker:        locker,
		Pricing:       apdomain.NewPricingCalculator(cfg.HomeServiceFeePercent, cfg.PlatformCommissionPercent),
		Clock:         clk,
		Audit:         auditDispatcher,
		Events:        publisher,
		Metrics:       m,
		Log:           log,
		Currency:      cfg.Currency,
		LockTimeout:   cfg.LockTimeout,
		PaymentWindow: cfg.PaymentWindow,
	}
	paymentDeps := ucPayment.Deps{
		Payments:     paymentRepo,
		Appointments: appointmentRepo,
		Gateway:      gw,
		Authz:        authz,
		Dedup:        dedup,
		Archive:      archiver,
		Clock:        clk,
		Audit:        auditDispatcher,
		Events:       publisher,
		Metrics:      m,
		Log:          log,
		DedupTTL:     cfg.WebhookDedupTTL,
	}

	// ======================================================
	// HTTP
	// ======================================================
	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, cfg, routes.Services{
		Booking: bookingDeps,
		Payment: paymentDeps,
		Checks:  checks,
		Metrics: m,
		Log:     log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweeper := worker.NewSweeper(booking.NewExpirePending(bookingDeps), cfg.SweepInterval, log)
	sweeperDone := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(sweeperDone)
	}()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server running", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			stop()
			<-sweeperDone
			return err
		}
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	stop()
	<-sweeperDone

	if err := auditDispatcher.Close(shutdownCtx); err != nil {
		log.Warn("audit queue not drained", zap.Error(err))
	}
	return nil
}
