package middleware

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/catalina-labs/usuarios-api/internal/common"
	"github.com/catalina-labs/usuarios-api/internal/domain/repository"
)

// RateLimitPolicy bounds requests per client IP within a fixed window.
type RateLimitPolicy struct {
	Scope    string
	Requests int64
	Window   time.Duration
}

// Default request budgets per endpoint class. The login endpoint is gated by
// the failure-based login throttle instead, so no "auth" scope appears here.
var (
	APIRateLimit   = RateLimitPolicy{Scope: "api", Requests: 100, Window: time.Minute}
	StatsRateLimit = RateLimitPolicy{Scope: "stats", Requests: 10, Window: time.Minute}
)

// RateLimit counts every request against the client's window and rejects with
// 429 once the budget is spent. Best-effort: a store failure lets the request
// through rather than taking the API down with redis.
func RateLimit(store repository.AttemptStore, policy RateLimitPolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := fmt.Sprintf("rate_limit:%s:%s", policy.Scope, ClientIP(r))

			count, err := store.Increment(r.Context(), key, policy.Window)
			if err != nil {
				log.Printf("rate limit store unavailable for scope %s: %v", policy.Scope, err)
				next.ServeHTTP(w, r)
				return
			}
			if count > policy.Requests {
				_, ttl, err := store.Count(r.Context(), key)
				if err != nil || ttl <= 0 {
					ttl = policy.Window
				}
				retry := int(ttl.Seconds())
				if retry < 1 {
					retry = 1
				}
				log.Printf("rate limit exceeded, scope %s, client %s", policy.Scope, ClientIP(r))
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				common.RespondWithJSON(w, http.StatusTooManyRequests, common.ErrorResponse{
					Success:    false,
					Error:      "Límite de solicitudes excedido",
					RetryAfter: &retry,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
