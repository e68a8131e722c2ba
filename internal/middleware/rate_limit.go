package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ulule/limiter/v3"
	mstdlib "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/baharkarakas/approval-backend/internal/api/httpx"
)

// RateLimit allows rps requests per second per client IP. Counters live in
// process memory.
func RateLimit(rps int) func(http.Handler) http.Handler {
	return RateLimitStore(memory.NewStore(), limiter.Rate{Period: time.Second, Limit: int64(rps)})
}

func RateLimitStore(store limiter.Store, rate limiter.Rate) func(http.Handler) http.Handler {
	mw := mstdlib.NewMiddleware(
		limiter.New(store, rate),
		mstdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many requests", nil)
		}),
		mstdlib.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			slog.ErrorContext(r.Context(), "rate limiter", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
		}),
	)
	return mw.Handler
}
