// server runs the password recovery API (HTTP) and the gRPC health service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"password-recovery/internal/audit"
	auditrepo "password-recovery/internal/audit/repository"
	"password-recovery/internal/config"
	"password-recovery/internal/db"
	"password-recovery/internal/devotp"
	devotphandler "password-recovery/internal/devotp/handler"
	"password-recovery/internal/health"
	healthhandler "password-recovery/internal/health/handler"
	identityrepo "password-recovery/internal/identity/repository"
	"password-recovery/internal/passwordreset/handler"
	"password-recovery/internal/passwordreset/service"
	"password-recovery/internal/platform/logging"
	policyengine "password-recovery/internal/policy/engine"
	policyrepo "password-recovery/internal/policy/repository"
	"password-recovery/internal/ratelimit"
	"password-recovery/internal/resetcode"
	"password-recovery/internal/security"
	"password-recovery/internal/server"
	"password-recovery/internal/sms"
	"password-recovery/internal/telemetry"
	otelsetup "password-recovery/internal/telemetry/otel"
	"password-recovery/internal/telemetry/producer"
	userrepo "password-recovery/internal/user/repository"
)

const (
	serviceName     = "password-recovery"
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.Env != "production")
	logging.SetGlobal(logger)

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}
	ctx := context.Background()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer conn.Close()

	providers, err := otelsetup.NewProviders(ctx, cfg.OTLPEndpoint, serviceName, cfg.OTLPInsecure, log)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	providers.SetGlobal()

	events, closeEvents, err := buildEmitter(cfg, providers, log)
	if err != nil {
		return err
	}
	defer closeEvents()

	policies, err := policyrepo.NewPostgresRepository(conn).ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("load password policies: %w", err)
	}
	evaluator, err := policyengine.NewOPAEvaluator(ctx, policies)
	if err != nil {
		return fmt.Errorf("password policy: %w", err)
	}
	log.Info().Int("stored_policies", len(policies)).Msg("password policy compiled")

	checker := &health.Checker{DB: conn, Policy: evaluator}

	window := ratelimit.Config{Limit: cfg.ResetRequestLimit, Window: cfg.RequestWindow()}
	var (
		codes      resetcode.Store
		phoneLimit ratelimit.Limiter
		ipLimit    ratelimit.Limiter
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		codes = resetcode.NewRedisStore(rdb, "")
		phoneLimit = ratelimit.NewRedis(rdb, "", window)
		ipLimit = ratelimit.NewRedis(rdb, "", window)
		checker.Redis = health.RedisPinger{Client: rdb}
	} else {
		log.Warn().Msg("REDIS_ADDR not set; reset codes and rate limits are kept in memory (single instance only)")
		codes = resetcode.NewMemoryStore()
		phoneLimit = ratelimit.NewMemory(window)
		ipLimit = ratelimit.NewMemory(window)
	}

	var (
		sender sms.Sender
		devOTP server.Registrar
	)
	if cfg.DevOTPEnabled() {
		log.Warn().Msg("dev OTP mode: codes are not texted and are readable at " + devotphandler.Path)
		store := devotp.NewMemoryStore()
		sender = devotp.NewSender(store, cfg.CodeTTL())
		devOTP = devotphandler.New(store)
	} else {
		if cfg.SMSLocalAPIKey == "" {
			return errors.New("SMS_LOCAL_API_KEY is not set; set it or enable OTP_RETURN_TO_CLIENT outside production")
		}
		sender = sms.NewSMSLocalClient(cfg.SMSLocalAPIKey, cfg.SMSLocalBaseURL, cfg.SMSLocalSender)
	}

	svc := service.NewService(service.Deps{
		Users:        userrepo.NewPostgresRepository(conn),
		Identities:   identityrepo.NewPostgresRepository(conn),
		Codes:        codes,
		Sender:       sender,
		PhoneLimiter: phoneLimit,
		IPLimiter:    ipLimit,
		Policy:       evaluator,
		Hasher:       security.NewHasher(cfg.BcryptCost),
		Audit:        audit.NewLogger(auditrepo.NewPostgresRepository(conn), log),
		Events:       events,
		Log:          log,
	}, service.Config{
		CodeTTL:             cfg.CodeTTL(),
		MaxAttempts:         cfg.ResetMaxAttempts,
		ConcealUnknownPhone: cfg.ResetConcealUnknownPhone,
	})

	healthSrv := healthhandler.NewServer(checker, log)
	router, err := server.NewRouter(server.RouterDeps{
		Recovery:    handler.New(svc, log),
		DevOTP:      devOTP,
		Health:      healthSrv,
		CORSOrigins: cfg.CORSOrigins(),
		Log:         log,
	})
	if err != nil {
		return err
	}
	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	grpcSrv := server.NewGRPCServer(server.Deps{Health: healthSrv}, log)

	errc := make(chan error, 2)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http: %w", err)
		}
	}()
	go func() {
		log.Info().Str("addr", cfg.GRPCAddr).Msg("gRPC server listening")
		if err := grpcSrv.Serve(lis); err != nil {
			errc <- fmt.Errorf("grpc: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	var serveErr error
	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case serveErr = <-errc:
		log.Error().Err(serveErr).Msg("server failed; shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	grpcSrv.GracefulStop()

	// Let in-flight async telemetry emits finish before the exporters go away.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("telemetry shutdown")
	}
	log.Info().Msg("stopped")
	return serveErr
}

// buildEmitter fans recovery events out to OTel logs, OTel metrics and, when brokers are set, Kafka.
func buildEmitter(cfg *config.Config, p *otelsetup.Providers, log zerolog.Logger) (telemetry.EventEmitter, func(), error) {
	metrics, err := otelsetup.NewMetricsEmitter(p.MeterProvider)
	if err != nil {
		return nil, nil, fmt.Errorf("telemetry metrics: %w", err)
	}
	emitters := []telemetry.EventEmitter{otelsetup.NewEventEmitter(p.LoggerProvider), metrics}
	closeFn := func() {}

	if kp := producer.NewKafkaProducer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic); kp != nil {
		log.Info().Strs("brokers", cfg.TelemetryKafkaBrokersList()).Str("topic", cfg.TelemetryKafkaTopic).Msg("telemetry: kafka enabled")
		emitters = append(emitters, kp)
		closeFn = func() {
			if err := kp.Close(); err != nil {
				log.Warn().Err(err).Msg("telemetry: kafka close")
			}
		}
	}
	return telemetry.Multi(emitters...), closeFn, nil
}
