package middleware

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllow(t *testing.T) {
	limiter := &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    3,
		window:   50 * time.Millisecond,
	}

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("1.2.3.4"), "request %d", i)
	}
	assert.False(t, limiter.Allow("1.2.3.4"))

	// Other clients are unaffected
	assert.True(t, limiter.Allow("5.6.7.8"))

	// The window slides: old requests expire
	time.Sleep(60 * time.Millisecond)
	assert.True(t, limiter.Allow("1.2.3.4"))
}

func TestGetClientIP(t *testing.T) {
	req := func(remoteAddr string, headers map[string]string) *http.Request {
		r, _ := http.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = remoteAddr
		for k, v := range headers {
			r.Header.Set(k, v)
		}
		return r
	}

	assert.Equal(t, "10.0.0.1", getClientIP(req("192.168.1.1:1234", map[string]string{
		"X-Forwarded-For": "10.0.0.1, 172.16.0.1",
	})))
	assert.Equal(t, "10.0.0.2", getClientIP(req("192.168.1.1:1234", map[string]string{
		"X-Real-IP": "10.0.0.2",
	})))
	assert.Equal(t, "192.168.1.1", getClientIP(req("192.168.1.1:1234", nil)))
}
