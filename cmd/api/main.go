package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Javier-Villarroel93/Practicas-Backend/internal/audit"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/config"
	dbpkg "github.com/Javier-Villarroel93/Practicas-Backend/internal/db"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/fieldcrypt"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/handlers"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/infra/document"
	infraRepo "github.com/Javier-Villarroel93/Practicas-Backend/internal/infra/repository"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/logging"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/routes"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/scheduler"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/telemetry"
	ucAppointment "github.com/Javier-Villarroel93/Practicas-Backend/internal/usecase/appointment"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, key := range cfg.InsecureDefaults() {
		logger.Warn("secret uses the development placeholder, set it before going to production", "key", key)
	}

	// ======================================================
	// TELEMETRY
	// ======================================================
	shutdownTracing, err := telemetry.Setup(ctx, cfg, logging.ServiceName)
	if err != nil {
		return err
	}

	// ======================================================
	// STORES
	// ======================================================
	db, err := dbpkg.Open(cfg)
	if err != nil {
		return err
	}
	if err := dbpkg.Migrate(db); err != nil {
		return err
	}

	mongoClient, err := document.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	details := document.NewDetailMongoRepository(mongoClient.Database(cfg.MongoDatabase))
	if err := details.EnsureIndexes(ctx); err != nil {
		return err
	}

	cipher, err := fieldcrypt.New(cfg.FieldEncryptionKey)
	if err != nil {
		return err
	}

	if cfg.SeedDemoData {
		wrote, err := dbpkg.SeedDemo(ctx, db, cipher)
		if err != nil {
			return err
		}
		logger.Info("demo data", "seeded", wrote)
	}

	// ======================================================
	// AUDIT
	// ======================================================
	sinks := []audit.Sink{audit.New(db)}
	if brokers := audit.SplitBrokers(cfg.KafkaBrokers); len(brokers) > 0 {
		kafkaSink := audit.NewKafkaSink(brokers, cfg.KafkaAuditTopic)
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
		logger.Info("audit events published to kafka", "topic", cfg.KafkaAuditTopic)
	}
	dispatcher := audit.NewDispatcher(logger, sinks...)

	// ======================================================
	// RATE LIMIT
	// ======================================================
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
	}

	// ======================================================
	// ROUTER
	// ======================================================
	r := gin.New()
	r.Use(gin.Recovery())

	err = routes.RegisterRoutes(r, routes.Dependencies{
		DB:      db,
		Details: details,
		Cipher:  cipher,
		Audit:   dispatcher,
		Logger:  logger,
		Redis:   rdb,
		Ready: []handlers.ReadyCheck{
			{Name: "database", Check: dbpkg.ReadyCheck(db)},
			{Name: "mongo", Check: document.ReadyCheck(mongoClient)},
		},
	}, cfg)
	if err != nil {
		return err
	}

	// ======================================================
	// CONSISTENCY SWEEP
	// ======================================================
	sweep := scheduler.NewSweep(ucAppointment.NewRepairDetails(ucAppointment.Deps{
		Repo:    infraRepo.NewAppointmentGormRepository(db),
		Details: details,
		Audit:   dispatcher,
		Logger:  logger,
	}), logger)
	if err := sweep.Start(cfg.SweepSchedule); err != nil {
		return err
	}

	// ======================================================
	// SERVER
	// ======================================================
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           otelhttp.NewHandler(r, logging.ServiceName),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	errs = append(errs, srv.Shutdown(shutdownCtx))
	errs = append(errs, sweep.Stop(shutdownCtx))
	errs = append(errs, dispatcher.Close(shutdownCtx))
	errs = append(errs, dbpkg.Close(db))
	errs = append(errs, shutdownTracing(shutdownCtx))

	return errors.Join(errs...)
}
