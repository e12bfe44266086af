package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"laticinios/internal/pkg/cache"
	"laticinios/internal/pkg/logger"
)

// RateLimiter limita requisições por IP em janelas fixas de duration, contadas no cache.
// Falhas do cache não bloqueiam a requisição.
func RateLimiter(client cache.Client, limit int, duration time.Duration, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			key := "rate-limit:" + ip

			count, err := client.Incr(r.Context(), key, duration)
			if err != nil {
				log.Error("Falha ao consultar contador de rate limit.", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			if count > int64(limit) {
				w.Header().Set("X-RateLimit-Remaining", "0")
				log.Warn("Limite de requisições excedido.", map[string]interface{}{"ip": ip, "count": count})
				writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Limite de requisições excedido. Tente novamente em instantes.")
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(int64(limit)-count, 10))
			next.ServeHTTP(w, r)
		})
	}
}
