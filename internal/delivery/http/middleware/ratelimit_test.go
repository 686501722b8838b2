package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Limit(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	handler := rl.Limit(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	call := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "http://test/auth/signin", nil)
		req.RemoteAddr = remote
		rr := httptest.NewRecorder()
		handler(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1111"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1:2222"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:3333"), "same IP, different port")
	assert.Equal(t, http.StatusOK, call("10.0.0.2:1111"), "other clients keep their own bucket")
}

func TestRateLimiter_sweep(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.get("10.0.0.1")
	require.Len(t, rl.clients, 1)

	rl.sweep(time.Now())
	assert.Len(t, rl.clients, 1)

	rl.sweep(time.Now().Add(4 * time.Minute))
	assert.Empty(t, rl.clients)
}
