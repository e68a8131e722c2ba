package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/baharkarakas/approval-backend/internal/api"
	"github.com/baharkarakas/approval-backend/internal/approval"
	"github.com/baharkarakas/approval-backend/internal/audit"
	"github.com/baharkarakas/approval-backend/internal/auth"
	"github.com/baharkarakas/approval-backend/internal/bulk"
	"github.com/baharkarakas/approval-backend/internal/cache"
	"github.com/baharkarakas/approval-backend/internal/config"
	"github.com/baharkarakas/approval-backend/internal/db"
	"github.com/baharkarakas/approval-backend/internal/metrics"
	"github.com/baharkarakas/approval-backend/internal/repository/postgres"
	"github.com/baharkarakas/approval-backend/internal/services"
	"github.com/baharkarakas/approval-backend/internal/worker"
)

func newServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			if migrate {
				cfg.Migrate = true
			}
			return serve(cmd.Context(), cfg, log)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply migrations before serving (same as APP_MIGRATE=true)")
	return cmd
}

func serve(parent context.Context, cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()

	if cfg.Migrate {
		if err := db.RunMigrations(ctx, pool); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
	}

	var routeCache cache.RouteCache = cache.Nop{}
	if cfg.Redis.URL != "" {
		rdb, err := cache.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			// the cache is optional, routes are read from postgres instead
			log.Warn("redis unavailable, route cache disabled", "err", err)
		} else {
			defer rdb.Close()
			routeCache = cache.NewRedisRouteCache(rdb, cfg.Redis.RouteCacheTTL, log)
		}
	}

	metrics.Init()

	repos := postgres.NewRepositories()
	wp := worker.NewPool(cfg.AuditWorkers, cfg.AuditQueue)
	defer wp.Stop()
	recorder := audit.NewRecorder(wp, pool, repos.AuditLogs, log)

	registry := approval.NewRegistry(repos.Banks, repos.Routes, repos.Users)
	dispatcher := approval.NewDispatcher(pool, repos.Approvals, registry, cfg.TxTimeout, log,
		recorder.DecisionHook(),
		services.RouteCacheHook(routeCache),
	)
	runner := bulk.NewRunner(pool, cfg.TxTimeout, log)

	approvalSvc := services.NewApprovalService(pool, repos.Approvals, dispatcher, runner, recorder, log)
	bankSvc := services.NewBankService(pool, pool, repos.Banks, approvalSvc, cfg.TxTimeout, log)
	routeSvc := services.NewRouteService(pool, pool, repos.Routes, approvalSvc, routeCache, cfg.TxTimeout, log)
	userSvc := services.NewUserService(pool, pool, repos.Users, approvalSvc, runner, cfg.TxTimeout, log)

	tm := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.RefreshSecret, cfg.JWT.Issuer, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	r := api.NewRouter(api.RouterDeps{
		Cfg:       cfg,
		TM:        tm,
		Approvals: approvalSvc,
		Banks:     bankSvc,
		Routes:    routeSvc,
		Users:     userSvc,
		Health:    pool.Ping,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
