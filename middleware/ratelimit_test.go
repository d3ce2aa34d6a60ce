package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newLimitedRouter(rate int, window time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(rate, window)
	r := gin.New()
	r.POST("/generate", rl.Limit(), func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "ok"})
	})
	return r
}

func hit(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/generate", nil)
	req.RemoteAddr = ip + ":12345"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_WithinLimit(t *testing.T) {
	r := newLimitedRouter(3, time.Minute)

	for i := 0; i < 3; i++ {
		w := hit(r, "127.0.0.1")
		assert.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
	}
}

func TestRateLimiter_OverLimit(t *testing.T) {
	r := newLimitedRouter(2, time.Minute)

	hit(r, "127.0.0.1")
	hit(r, "127.0.0.1")
	w := hit(r, "127.0.0.1")

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Rate limit exceeded")
}

func TestRateLimiter_PerIP(t *testing.T) {
	r := newLimitedRouter(1, time.Minute)

	assert.Equal(t, http.StatusOK, hit(r, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(r, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, hit(r, "10.0.0.2").Code)
}

func TestRateLimiter_WindowResets(t *testing.T) {
	r := newLimitedRouter(1, 20*time.Millisecond)

	assert.Equal(t, http.StatusOK, hit(r, "127.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(r, "127.0.0.1").Code)

	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, http.StatusOK, hit(r, "127.0.0.1").Code)
}
