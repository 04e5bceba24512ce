package middleware

import (
	"crypto/subtle"
	"net/http"

	"ev-service-center/pkg/utils"

	"go.uber.org/zap"
)

// InternalToken guards service-to-service endpoints. Every internal call
// must carry the shared secret in X-Internal-Token.
func InternalToken(token string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				logger.Error("Internal token not configured, rejecting internal call",
					zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Internal token not configured")
				return
			}

			got := r.Header.Get("X-Internal-Token")
			if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				logger.Warn("Invalid internal token",
					zap.String("path", r.URL.Path),
					zap.String("ip", r.RemoteAddr))
				utils.ResponseUnauthorized(w, "Invalid internal token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
