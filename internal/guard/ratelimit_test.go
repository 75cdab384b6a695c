package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4"), "hit %d within limit", i+1)
	}
	assert.False(t, rl.Allow("1.2.3.4"), "fourth hit exceeds limit")
	assert.True(t, rl.Allow("5.6.7.8"), "other keys are independent")
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)

	assert.True(t, rl.Allow("k"))
	assert.False(t, rl.Allow("k"))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, rl.Allow("k"), "window expired")
}

func TestLimitByIPMiddleware(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	h := LimitByIP(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func() int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do())
	assert.Equal(t, http.StatusOK, do())
	assert.Equal(t, http.StatusTooManyRequests, do())
}
