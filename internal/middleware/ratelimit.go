package middleware

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
)

// RateLimiter enforces a fixed-window request limit per caller, keyed on the
// authenticated user when present and the client IP otherwise. The counters
// live in Redis; when Redis is unavailable the limiter lets traffic through.
type RateLimiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(redisClient *redis.Client, limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 100
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{redis: redisClient, limit: limit, window: window}
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.redis == nil {
			next.ServeHTTP(w, r)
			return
		}

		caller := r.RemoteAddr
		if userID, ok := UserIDFromContext(r.Context()); ok {
			caller = userID
		}
		key := fmt.Sprintf("ratelimit:%s:%d", caller, time.Now().Unix()/int64(rl.window.Seconds()))

		count, err := rl.redis.Incr(r.Context(), key).Result()
		if err != nil {
			log.Printf("[RATELIMIT] Redis error, allowing request: %v", err)
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			rl.redis.Expire(r.Context(), key, rl.window)
		}

		if count > int64(rl.limit) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(rl.window.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false,
				"error":   "Too many requests, please try again later",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
