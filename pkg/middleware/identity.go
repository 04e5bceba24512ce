package middleware

import (
	"net/http"

	"ev-service-center/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Identity reads the caller identity injected by the auth gateway
// (X-User-ID and X-User-Role headers) into the request context. JWT
// verification itself lives in the user service, outside this repo.
func Identity(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userIDStr := r.Header.Get("X-User-ID")
			if userIDStr == "" {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			userID, err := uuid.Parse(userIDStr)
			if err != nil {
				logger.Warn("Malformed X-User-ID header",
					zap.String("value", userIDStr),
					zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Invalid user identity")
				return
			}

			role := r.Header.Get("X-User-Role")
			if role == "" {
				role = utils.RoleCustomer
			}

			ctx := utils.SetUserContext(r.Context(), userID, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Admin requires that Identity already resolved an admin caller.
func Admin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := utils.GetRoleFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			if role != utils.RoleAdmin {
				logger.Warn("Admin check: non-admin access attempt",
					zap.String("role", role),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
