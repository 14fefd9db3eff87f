package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/md-rashed-zaman/practicedesk/libs/auth"
	"github.com/md-rashed-zaman/practicedesk/libs/config"
	"github.com/md-rashed-zaman/practicedesk/libs/db"
	"github.com/md-rashed-zaman/practicedesk/libs/httpx"
	"github.com/md-rashed-zaman/practicedesk/libs/kafkax"
	otelx "github.com/md-rashed-zaman/practicedesk/libs/otel"
	"github.com/md-rashed-zaman/practicedesk/libs/runtime"
	"github.com/md-rashed-zaman/practicedesk/services/schedule-service/internal/admission"
	"github.com/md-rashed-zaman/practicedesk/services/schedule-service/internal/audit"
	"github.com/md-rashed-zaman/practicedesk/services/schedule-service/internal/handlers"
	"github.com/md-rashed-zaman/practicedesk/services/schedule-service/internal/outbox"
	"github.com/md-rashed-zaman/practicedesk/services/schedule-service/internal/storage"
)

func main() {
	service := config.String("SERVICE_NAME", "schedule-service")
	port, err := config.Port("PORT", "8083")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service, config.String("LOG_LEVEL", "info"))

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer runtime.RunShutdown(logger, "otel", 5*time.Second, otelShutdown)
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL, config.PositiveInt("DB_MAX_CONNS", 10))
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	brokers := config.String("KAFKA_BROKERS", "")
	repo := storage.NewPracticeRepository(pool)
	auditRepo := audit.NewRepository(pool)
	outboxRepo := outbox.NewRepository(pool)

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   brokers,
		PollEvery: config.Seconds("OUTBOX_POLL_SECONDS", 2*time.Second),
		BatchSize: config.PositiveInt("OUTBOX_BATCH_SIZE", 50),
	})
	go outboxPublisher.Run(ctx)

	admitter := admission.New(admission.WithDefaultDuration(config.PositiveInt("DEFAULT_DURATION_MINUTES", admission.DefaultDuration)))
	scheduleHandler := handlers.NewScheduleHandler(repo, auditRepo, outboxRepo, admitter, logger)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	)
	scheduleHandler.Register(mux, auth.RequirePractitioner(config.String("JWT_SECRET", "")))

	clientKey, err := httpx.ClientIPBehind(config.List("TRUSTED_PROXIES"))
	if err != nil {
		panic(err)
	}
	limiter, closeLimiter := newLimiter(logger)
	defer closeLimiter()

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithRecover(logger),
		httpx.WithCORS(httpx.DefaultCORSPolicy(config.List("CORS_ALLOWED_ORIGINS"))),
		httpx.WithBodyLimit(int64(config.PositiveInt("REQUEST_BODY_LIMIT_BYTES", 1<<20))),
		httpx.RateLimit(limiter, clientKey, logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true)),
		httpx.WithTimeout(config.Seconds("REQUEST_TIMEOUT_SECONDS", 10*time.Second)),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "schedule")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	health, err := startGrpcServer(ctx, logger)
	if err != nil {
		logger.Error("grpc server failed to start", "err", err)
		panic(err)
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	health.Shutdown()
	runtime.RunShutdown(logger, "http server", 10*time.Second, srv.Shutdown)
	logger.Info("http server stopped")
}

// newLimiter shares counters through Redis when REDIS_ADDR is set and falls
// back to a per-process window otherwise.
func newLimiter(logger *slog.Logger) (httpx.Limiter, func()) {
	limit := config.PositiveInt("RATE_LIMIT_PER_MINUTE", 120)
	addr := config.String("REDIS_ADDR", "")
	if addr == "" {
		logger.Info("rate limiter using in-process counters")
		return httpx.NewMemoryLimiter(limit, time.Minute), func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.String("REDIS_PASSWORD", ""),
		DB:       config.Int("REDIS_DB", 0),
	})
	logger.Info("rate limiter using redis", "addr", addr)
	return httpx.NewRedisLimiter(rdb, limit, time.Minute, "practicedesk:ratelimit:"), func() {
		if err := rdb.Close(); err != nil {
			logger.Error("redis close failed", "err", err)
		}
	}
}

