package middleware

import (
	"log/slog"
	"net/http"

	"github.com/baharkarakas/approval-backend/internal/api/httpx"
)

const (
	RoleAdmin   = "admin"
	RoleMaker   = "maker"
	RoleChecker = "checker"
)

// RBAC lets the request through when the authenticated role is one of
// roles. It must run after Auth.
func RBAC(roles ...string) func(http.Handler) http.Handler {
	allowed := map[string]struct{}{}
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := FromCtx(r.Context())
			if _, ok := allowed[u.Role]; !ok {
				slog.WarnContext(r.Context(), "permission denied",
					"process", "CHECK_PERMISSION", "user_id", u.UserID, "role", u.Role, "path", r.URL.Path)
				httpx.WriteError(w, http.StatusForbidden, "forbidden", "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
