package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"recipe-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultDedupWindow = time.Second

// Deduplicator 拒絕在時間窗內重複送出的相同 POST 請求
type Deduplicator struct {
	mu        sync.Mutex
	window    time.Duration
	requests  map[string]time.Time
	lastSweep time.Time
	now       func() time.Time
}

// NewDeduplicator 創建去重器，window <= 0 時使用 1 秒
func NewDeduplicator(window time.Duration) *Deduplicator {
	if window <= 0 {
		window = defaultDedupWindow
	}
	return &Deduplicator{
		window:   window,
		requests: make(map[string]time.Time),
		now:      time.Now,
	}
}

// seen 記錄指紋，時間窗內已出現過時回傳 true
func (d *Deduplicator) seen(fingerprint string) bool {
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	// 定期清理過期指紋
	if now.Sub(d.lastSweep) > 10*d.window {
		for k, t := range d.requests {
			if now.Sub(t) > d.window {
				delete(d.requests, k)
			}
		}
		d.lastSweep = now
	}

	if last, exists := d.requests[fingerprint]; exists && now.Sub(last) <= d.window {
		return true
	}
	d.requests[fingerprint] = now
	return false
}

// failingReader 讀取時回傳原本的錯誤
type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

// Deduplication 請求去重中間件
func Deduplication(window time.Duration) gin.HandlerFunc {
	return NewDeduplicator(window).Middleware()
}

// Middleware 以 gin 中間件形式套用去重
func (d *Deduplicator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 只處理 POST 請求
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		// 計算請求體哈希
		bodyHash := ""
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				// 讀取失敗（例如超過大小限制）交給 handler 處理
				common.LogDebug("Failed to read request body", zap.Error(err))
				c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), failingReader{err}))
				c.Next()
				return
			}
			hash := sha256.Sum256(body)
			bodyHash = hex.EncodeToString(hash[:])

			// 恢復請求體
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		// 生成請求指紋
		fingerprint := c.ClientIP() + ":" + c.Request.Method + ":" + c.Request.URL.Path
		if bodyHash != "" {
			fingerprint += ":" + bodyHash
		}

		if d.seen(fingerprint) {
			common.LogInfo("Duplicate request rejected",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrTooManyRequests.Response(false))
			return
		}

		c.Next()
	}
}
