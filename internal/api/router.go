package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/approval-backend/internal/api/handlers"
	"github.com/baharkarakas/approval-backend/internal/api/httpx"
	"github.com/baharkarakas/approval-backend/internal/auth"
	"github.com/baharkarakas/approval-backend/internal/config"
	"github.com/baharkarakas/approval-backend/internal/metrics"
	"github.com/baharkarakas/approval-backend/internal/middleware"
)

type RouterDeps struct {
	Cfg       config.Config
	TM        *auth.TokenManager
	Approvals handlers.ApprovalAPI
	Banks     handlers.BankAPI
	Routes    handlers.RouteAPI
	Users     handlers.UserAPI
	// Health reports whether the store is reachable; nil means always ok.
	Health func(ctx context.Context) error
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(d.Cfg.RateLimit.RPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if d.Health != nil {
			if err := d.Health(r.Context()); err != nil {
				httpx.WriteError(w, http.StatusServiceUnavailable, "unavailable", "database unreachable", nil)
				return
			}
		}
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())

	bulkCfg := handlers.BulkConfig{MaxItems: d.Cfg.BulkMaxItems, Concurrency: d.Cfg.BulkConcurrency}
	authMW := middleware.NewAuthMiddleware(d.TM, d.Cfg.Env)
	authH := handlers.NewAuthHandler(d.TM, d.Cfg.Env)
	approvalH := handlers.NewApprovalHandler(d.Approvals, bulkCfg)
	bankH := handlers.NewBankHandler(d.Banks)
	routeH := handlers.NewRouteHandler(d.Routes)
	userH := handlers.NewUserHandler(d.Users, bulkCfg)

	writers := middleware.RBAC(middleware.RoleAdmin, middleware.RoleMaker)
	checkers := middleware.RBAC(middleware.RoleAdmin, middleware.RoleChecker)

	r.Route("/api/v1", func(r chi.Router) {
		// ---------- auth ----------
		r.Post("/auth/token", authH.Token)
		r.Post("/auth/refresh", authH.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(authMW.Auth)

			// ---------- approvals ----------
			r.Route("/approvals", func(r chi.Router) {
				r.Post("/list", approvalH.List)
				r.With(checkers).Put("/bulk", approvalH.DecideBulk)
				r.With(checkers).Put("/{id}", approvalH.Decide)
			})

			// ---------- banks ----------
			r.Route("/banks", func(r chi.Router) {
				r.Post("/list", bankH.List)
				r.Get("/{id}", bankH.Get)
				r.With(writers).Post("/", bankH.Create)
				r.With(writers).Put("/{id}", bankH.Update)
				r.With(writers).Delete("/{id}", bankH.Delete)
			})

			// ---------- routes ----------
			r.Route("/routes", func(r chi.Router) {
				r.Post("/list", routeH.List)
				r.Get("/active", routeH.Active)
				r.Get("/{id}", routeH.Get)
				r.With(writers).Post("/", routeH.Create)
				r.With(writers).Put("/{id}", routeH.Update)
				r.With(writers).Delete("/{id}", routeH.Delete)
			})

			// ---------- users ----------
			r.Route("/users", func(r chi.Router) {
				r.Post("/list", userH.List)
				r.Get("/{id}", userH.Get)
				r.Group(func(r chi.Router) {
					r.Use(writers)
					r.Post("/", userH.Create)
					r.Post("/bulk", userH.CreateBulk)
					r.Put("/bulk", userH.UpdateBulk)
					r.Put("/{id}", userH.Update)
					r.Delete("/bulk", userH.DeleteBulk)
					r.Delete("/{id}", userH.Delete)
				})
			})
		})
	})

	return r
}
