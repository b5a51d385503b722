// Command server runs the verification gateway: the public verify endpoints,
// the JWT-protected admin surface, and the audit pipeline.
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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"seatswap/internal/admin"
	"seatswap/internal/audit"
	"seatswap/internal/jwtauth"
	"seatswap/internal/platform/config"
	"seatswap/internal/platform/httpserver"
	"seatswap/internal/platform/logger"
	platformmetrics "seatswap/internal/platform/metrics"
	"seatswap/internal/platform/middleware"
	platformpg "seatswap/internal/platform/postgres"
	platformredis "seatswap/internal/platform/redis"
	"seatswap/internal/verification"
	"seatswap/internal/verification/configstore"
	"seatswap/internal/verification/handler"
	verificationmetrics "seatswap/internal/verification/metrics"
	"seatswap/internal/verification/nullifier"
	"seatswap/internal/verification/service"
	"seatswap/internal/verification/verifier"
	"seatswap/pkg/platform/middleware/requesttime"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	pool, err := platformpg.New(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	// Store selection: postgres when configured, then redis, else in-memory.
	var configs configstore.Store
	switch {
	case pool != nil:
		pgStore := configstore.NewPostgresStore(pool)
		if err := pgStore.Migrate(ctx); err != nil {
			return err
		}
		configs = pgStore
		log.Info("config store: postgres")
	case redisClient != nil:
		configs = configstore.NewRedisStore(redisClient.Client)
		log.Info("config store: redis")
	default:
		configs = configstore.NewInMemoryStore()
		log.Info("config store: in-memory")
	}

	// The ledger must be shared across instances in a multi-process
	// deployment; the in-memory ledger only protects a single process.
	var ledger nullifier.Ledger
	if redisClient != nil {
		ledger = nullifier.NewRedisLedger(redisClient.Client)
		log.Info("nullifier ledger: redis")
	} else {
		ledger = nullifier.NewInMemoryLedger()
		log.Warn("nullifier ledger: in-memory, replay protection is per-process")
	}

	var vrf verifier.Verifier
	switch cfg.Verifier.Mode {
	case "remote":
		vrf = verifier.NewRemoteVerifier(cfg.Verifier.Endpoint, cfg.Verifier.Scope)
		log.Info("verifier: remote", "endpoint", cfg.Verifier.Endpoint)
	default:
		vrf = &verifier.MockVerifier{}
		log.Info("verifier: mock")
	}

	auditStore := audit.NewInMemoryStore()
	auditPub := audit.NewPublisher(256, log)
	sinks := []audit.Store{auditStore}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
		log.Info("audit: kafka sink enabled", "topic", cfg.Kafka.Topic)
	}
	auditWorker := audit.NewWorker(auditPub.Inbox(), log, sinks...)

	gateway := service.New(
		configs,
		configstore.SubjectScope(),
		ledger,
		vrf,
		log,
		verificationmetrics.New(),
		auditPub,
	)

	if cfg.Server.SeedConfig {
		if err := seedDemoConfig(ctx, configs, log); err != nil {
			return err
		}
	}

	jwtService := jwtauth.NewService(cfg.Server.JWTSigningKey, "seatswap")
	httpMetrics := platformmetrics.New()

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(requesttime.Middleware)
	router.Use(middleware.Logger(log))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.Latency(httpMetrics))

	handler.New(gateway, log).Register(router)
	admin.New(configs, auditStore, jwtService, log).Register(router)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Server.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return auditWorker.Run(groupCtx)
	})
	group.Go(func() error {
		log.Info("starting seatswap gateway", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// seedDemoConfig stores a well-known rule set so a fresh instance can be
// exercised without the create-verification step.
func seedDemoConfig(ctx context.Context, configs configstore.Store, log *slog.Logger) error {
	const demoConfigID = "demo"
	cfg := verification.VerificationConfig{MinimumAge: 18}
	if err := configs.SetConfig(ctx, demoConfigID, cfg); err != nil {
		return err
	}
	log.Info("seeded demo verification config", "config_id", demoConfigID)
	return nil
}
