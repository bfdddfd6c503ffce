package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// a long window keeps the bucket stable for the duration of the test
	window := time.Hour
	bucket := func(caller string) string {
		return fmt.Sprintf("ratelimit:%s:%d", caller, time.Now().Unix()/int64(window.Seconds()))
	}

	t.Run("pass-through without redis", func(t *testing.T) {
		rl := NewRateLimiter(nil, 2, window)

		w := httptest.NewRecorder()
		rl.Handler(okHandler).ServeHTTP(w, httptest.NewRequest("GET", "/api/accounts", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("keys on the authenticated user", func(t *testing.T) {
		redisClient, redisMock := redismock.NewClientMock()
		rl := NewRateLimiter(redisClient, 2, window)

		key := bucket("user-123")
		redisMock.ExpectIncr(key).SetVal(1)
		redisMock.ExpectExpire(key, window).SetVal(true)

		req := httptest.NewRequest("GET", "/api/accounts", nil)
		req = req.WithContext(WithUserID(req.Context(), "user-123"))
		w := httptest.NewRecorder()
		rl.Handler(okHandler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("requests above the limit are rejected", func(t *testing.T) {
		redisClient, redisMock := redismock.NewClientMock()
		rl := NewRateLimiter(redisClient, 2, window)

		key := bucket("user-123")
		redisMock.ExpectIncr(key).SetVal(3)

		req := httptest.NewRequest("GET", "/api/accounts", nil)
		req = req.WithContext(WithUserID(req.Context(), "user-123"))
		w := httptest.NewRecorder()
		rl.Handler(okHandler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, fmt.Sprintf("%d", int(window.Seconds())), w.Header().Get("Retry-After"))
		assert.Contains(t, w.Body.String(), "Too many requests")
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("redis failure lets traffic through", func(t *testing.T) {
		redisClient, redisMock := redismock.NewClientMock()
		rl := NewRateLimiter(redisClient, 2, window)

		redisMock.ExpectIncr(bucket("user-123")).SetErr(fmt.Errorf("connection refused"))

		req := httptest.NewRequest("GET", "/api/accounts", nil)
		req = req.WithContext(WithUserID(req.Context(), "user-123"))
		w := httptest.NewRecorder()
		rl.Handler(okHandler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("anonymous callers fall back to the remote address", func(t *testing.T) {
		redisClient, redisMock := redismock.NewClientMock()
		rl := NewRateLimiter(redisClient, 2, window)

		req := httptest.NewRequest("GET", "/health", nil)
		key := bucket(req.RemoteAddr)
		redisMock.ExpectIncr(key).SetVal(2)

		w := httptest.NewRecorder()
		rl.Handler(okHandler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("defaults applied for nonsense limits", func(t *testing.T) {
		rl := NewRateLimiter(nil, 0, 0)
		assert.Equal(t, 100, rl.limit)
		assert.Equal(t, time.Minute, rl.window)
	})
}
