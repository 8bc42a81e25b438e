package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	s := &Server{proxies: parseProxies([]string{"10.0.0.0/8", "::1", "not-an-ip", ""})}

	tests := []struct {
		name   string
		remote string
		xff    string
		xri    string
		want   string
	}{
		{name: "direct peer", remote: "203.0.113.7:5000", want: "203.0.113.7"},
		{name: "untrusted peer xff ignored", remote: "203.0.113.7:5000", xff: "198.51.100.1", want: "203.0.113.7"},
		{name: "untrusted peer real ip ignored", remote: "203.0.113.7:5000", xri: "198.51.100.1", want: "203.0.113.7"},
		{name: "trusted proxy xff", remote: "10.1.2.3:443", xff: "198.51.100.1", want: "198.51.100.1"},
		{name: "rightmost untrusted hop", remote: "10.1.2.3:443", xff: "192.0.2.99, 198.51.100.1, 10.9.9.9", want: "198.51.100.1"},
		{name: "trusted proxy real ip", remote: "10.1.2.3:443", xri: "198.51.100.4", want: "198.51.100.4"},
		{name: "trusted proxy no headers", remote: "10.1.2.3:443", want: "10.1.2.3"},
		{name: "ipv6 loopback proxy", remote: "[::1]:8080", xff: "2001:db8::1", want: "2001:db8::1"},
		{name: "no port", remote: "203.0.113.7", want: "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			assert.Equal(t, tt.want, s.clientIP(req))
		})
	}
}

func TestIPRateLimiter_BurstThenWait(t *testing.T) {
	l := newIPRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		ok, _ := l.Allow("198.51.100.1")
		assert.True(t, ok, "request %d", i+1)
	}

	ok, wait := l.Allow("198.51.100.1")
	assert.False(t, ok)
	assert.InDelta(t, 20*time.Second, wait, float64(time.Second))
	assert.Equal(t, "20", retryAfter(wait))

	ok, _ = l.Allow("198.51.100.2")
	assert.True(t, ok)
}

func TestIPRateLimiter_PrunesIdleClients(t *testing.T) {
	l := newIPRateLimiter(1, time.Minute)
	now := time.Now()

	for i := 0; i <= pruneThreshold; i++ {
		l.get(fmt.Sprintf("ip-%d", i), now.Add(-2*time.Minute))
	}
	l.get("fresh", now)

	assert.Len(t, l.clients, 1)
	assert.Contains(t, l.clients, "fresh")
}
