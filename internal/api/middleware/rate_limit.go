package middleware

import (
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"recipe-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimiter 令牌桶限流器
type RateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64 // 每秒補充的令牌數
	lastTime time.Time
}

// NewRateLimiter 創建新的限流器，window 內最多 requests 次
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	return newRateLimiter(requests, window, time.Now())
}

func newRateLimiter(requests int, window time.Duration, now time.Time) *RateLimiter {
	return &RateLimiter{
		tokens:   float64(requests),
		capacity: float64(requests),
		rate:     float64(requests) / window.Seconds(),
		lastTime: now,
	}
}

// Allow 檢查是否允許請求
func (rl *RateLimiter) Allow() bool {
	return rl.allowAt(time.Now())
}

func (rl *RateLimiter) allowAt(now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if elapsed := now.Sub(rl.lastTime).Seconds(); elapsed > 0 {
		rl.tokens = math.Min(rl.capacity, rl.tokens+elapsed*rl.rate)
		rl.lastTime = now
	}

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// full 桶已補滿，代表此用戶端已閒置
func (rl *RateLimiter) full(now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.tokens+now.Sub(rl.lastTime).Seconds()*rl.rate >= rl.capacity
}

// ClientRateLimiter 以用戶端 IP 區分的限流器
type ClientRateLimiter struct {
	mu        sync.Mutex
	requests  int
	window    time.Duration
	limiters  map[string]*RateLimiter
	lastSweep time.Time
	now       func() time.Time
}

// NewClientRateLimiter 創建以 IP 區分的限流器
func NewClientRateLimiter(requests int, window time.Duration) *ClientRateLimiter {
	return &ClientRateLimiter{
		requests: requests,
		window:   window,
		limiters: make(map[string]*RateLimiter),
		now:      time.Now,
	}
}

// Allow 檢查該用戶端是否允許請求
func (l *ClientRateLimiter) Allow(client string) bool {
	now := l.now()

	l.mu.Lock()
	if now.Sub(l.lastSweep) > l.window {
		l.sweep(now)
	}
	limiter, ok := l.limiters[client]
	if !ok {
		limiter = newRateLimiter(l.requests, l.window, now)
		l.limiters[client] = limiter
	}
	l.mu.Unlock()

	return limiter.allowAt(now)
}

// sweep 移除已補滿的桶，呼叫端必須持有鎖
func (l *ClientRateLimiter) sweep(now time.Time) {
	for client, limiter := range l.limiters {
		if limiter.full(now) {
			delete(l.limiters, client)
		}
	}
	l.lastSweep = now
}

// RateLimit 限流中間件
func RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	return NewClientRateLimiter(requests, window).Middleware()
}

// Middleware 以 gin 中間件形式套用限流
func (l *ClientRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			common.LogInfo("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)

			c.Header("Retry-After", fmt.Sprintf("%d", int(math.Ceil(l.window.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrTooManyRequests.Response(false))
			return
		}

		c.Next()
	}
}
