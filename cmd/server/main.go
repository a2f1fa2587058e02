package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"certdedup/internal/adjudicate"
	"certdedup/internal/audit"
	"certdedup/internal/dedup"
	"certdedup/internal/dedup/handler"
	dedupMetrics "certdedup/internal/dedup/metrics"
	"certdedup/internal/identity"
	identityMetrics "certdedup/internal/identity/metrics"
	"certdedup/internal/platform/config"
	"certdedup/internal/platform/httpserver"
	"certdedup/internal/platform/kafka"
	"certdedup/internal/platform/logger"
	"certdedup/internal/platform/redis"
	"certdedup/pkg/platform/httputil"
)

// main wires dependencies and owns the server lifecycle. Business logic
// lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	// Stores: Postgres when a DSN is configured, in-memory otherwise so the
	// service still runs in development without infrastructure.
	var (
		identityStore identity.Store    = identity.NewInMemory()
		resultStore   dedup.ResultStore = dedup.NewInMemoryResultStore()
		auditStore    audit.Store       = audit.NewInMemoryStore()
	)
	if cfg.Postgres.DSN != "" {
		db, err := sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("postgres unreachable", "error", err)
			os.Exit(1)
		}
		identityStore = identity.NewPostgres(db)
		resultStore = dedup.NewPostgresResultStore(db)
		log.Info("using postgres stores")
	} else {
		log.Warn("no postgres DSN configured, using in-memory stores")
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	producer, err := kafka.NewProducer(ctx, cfg.Kafka)
	if err != nil {
		log.Error("failed to connect to kafka", "error", err)
		os.Exit(1)
	}

	auditOpts := []audit.PublisherOption{}
	if producer != nil {
		defer producer.Close()
		auditOpts = append(auditOpts, audit.WithKafkaSink(producer))
	}
	auditPublisher := audit.NewPublisher(auditStore, auditOpts...)

	identitySvc := identity.New(identityStore, cfg.Dedup.DefaultPhoneRegion,
		identity.WithLogger(log),
		identity.WithMetrics(identityMetrics.New()),
	)

	scorer := dedup.NewHTTPScorer(cfg.Scorer)
	defaults := dedup.Options{
		TopK: cfg.Dedup.TopK,
		Thresholds: adjudicate.Thresholds{
			Unique:    cfg.Dedup.ThresholdUnique,
			Duplicate: cfg.Dedup.ThresholdDuplicate,
		},
	}

	dedupOpts := []dedup.Option{
		dedup.WithLogger(log),
		dedup.WithMetrics(dedupMetrics.New()),
		dedup.WithAuditPublisher(auditPublisher),
	}
	if redisClient != nil {
		dedupOpts = append(dedupOpts, dedup.WithResultCache(
			dedup.NewRedisResultCache(redisClient, cfg.Redis.ResultTTL)))
	}
	dedupSvc := dedup.New(identitySvc, scorer, resultStore, defaults, dedupOpts...)

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", healthz(scorer, redisClient))
	handler.New(dedupSvc, identitySvc, defaults, log).Register(router)

	srv := httpserver.New(cfg.Server.Addr, router)
	log.Info("starting certdedup", "addr", cfg.Server.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// healthz reports the service and its dependencies. The scorer being down
// degrades the report but the process stays up; checks fail closed at
// request time instead.
func healthz(scorer *dedup.HTTPScorer, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		components := map[string]string{}
		healthy := true

		if err := scorer.Healthy(ctx); err != nil {
			components["scorer"] = err.Error()
			healthy = false
		} else {
			components["scorer"] = "ok"
		}

		if redisClient != nil {
			if err := redisClient.Health(ctx); err != nil {
				components["redis"] = err.Error()
				healthy = false
			} else {
				components["redis"] = "ok"
			}
		}

		status := http.StatusOK
		state := "ok"
		if !healthy {
			status = http.StatusServiceUnavailable
			state = "degraded"
		}
		httputil.WriteJSON(w, status, map[string]any{
			"status":     state,
			"components": components,
		})
	}
}
