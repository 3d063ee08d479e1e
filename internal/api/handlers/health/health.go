package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"recipe-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger 可檢查相依服務是否可用
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatsProvider 提供統計資訊，例如快取
type StatsProvider interface {
	Stats() map[string]interface{}
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Runtime   map[string]interface{} `json:"runtime"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
}

// Handler 健康檢查處理器
type Handler struct {
	version string
	store   Pinger
	cache   StatsProvider
	started time.Time
	timeout time.Duration
}

// NewHandler 創建健康檢查處理器，cache 可為 nil
func NewHandler(version string, store Pinger, cache StatsProvider) *Handler {
	return &Handler{
		version: version,
		store:   store,
		cache:   cache,
		started: time.Now(),
		timeout: 2 * time.Second,
	}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if h.cache != nil {
		response.Cache = h.cache.Stats()
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查：儲存層必須可連線
func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		common.LogWarn("Readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"code":   common.ErrCodeStoreError,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}
