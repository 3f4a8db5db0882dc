package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/bookline/bookline/pkg/api"
	"github.com/bookline/bookline/pkg/auth"
	"github.com/bookline/bookline/pkg/billing"
	"github.com/bookline/bookline/pkg/config"
	"github.com/bookline/bookline/pkg/observability"
	"github.com/bookline/bookline/pkg/tenants"
	"github.com/bookline/bookline/pkg/usage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "bookline: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(observability.ParseLevel(cfg.LogLevel), os.Stdout)
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnLifetime)
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to reach database: %w", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.URL,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("redis unavailable, plan cache falls back to TTL expiry")
			redisClient = nil
		}
	}

	verifier, err := buildVerifier(ctx, cfg)
	if err != nil {
		return err
	}

	registry := tenants.NewPostgresRegistry(db)
	billingStore := billing.NewPostgresStore(db)
	usageStore := usage.NewPostgresStore(db)
	planResolver := usage.NewPlanResolver(billingStore, redisClient, logger, metrics)
	limiter := usage.NewLimiter(planResolver, usageStore, registry)

	reporter := usage.NewReporter(usageStore, metrics, logger)
	if err := reporter.Start(cfg.Usage.ReportSchedule); err != nil {
		return fmt.Errorf("failed to start usage reporter: %w", err)
	}
	defer reporter.Stop()

	server := api.NewServer(api.Deps{
		DB:           db,
		Logger:       logger,
		Metrics:      metrics,
		Verifier:     verifier,
		Registry:     registry,
		BillingStore: billingStore,
		PlanResolver: planResolver,
		Limiter:      limiter,
		GraceDays:    cfg.Billing.GraceDays,
	})

	apiServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      server.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthMux := http.NewServeMux()
	healthMux.Handle("/metrics", metrics.Handler())
	healthMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthMux,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.WithField("addr", apiServer.Addr).Info("api server listening")
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		logger.WithField("addr", healthServer.Addr).Info("health server listening")
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("health server failed: %w", err)
		}
		return nil
	})

	if redisClient != nil {
		group.Go(func() error {
			// Plan cache invalidation stream. Exits cleanly on shutdown.
			return planResolver.WatchInvalidations(groupCtx)
		})
	}

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("api server shutdown failed")
		}
		if err := healthServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("health server shutdown failed")
		}
		return nil
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		return err
	}

	logger.Info("stopped")
	return nil
}

// buildVerifier selects the configured token verifier
func buildVerifier(ctx context.Context, cfg *config.Config) (auth.Verifier, error) {
	switch cfg.Auth.Verifier {
	case "oidc":
		verifier, err := auth.NewOIDCVerifier(ctx, cfg.Auth.OIDCIssuerURL, cfg.Auth.OIDCClientID)
		if err != nil {
			return nil, fmt.Errorf("failed to build OIDC verifier: %w", err)
		}
		return verifier, nil
	default:
		return auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret), cfg.Auth.JWTIssuer), nil
	}
}
