package common

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RespondError 將錯誤寫成統一的 JSON 響應，非 CustomError 一律視為內部錯誤
func RespondError(c *gin.Context, err error) {
	var custom *CustomError
	if !errors.As(err, &custom) {
		custom = ErrInternalError.Wrap(err)
	}

	fields := []zap.Field{
		zap.String("code", custom.Code),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", c.Writer.Header().Get("X-Request-ID")),
		zap.Error(err),
	}
	if custom.Status >= 500 {
		LogError("請求處理失敗", fields...)
	} else {
		LogWarn("請求無效", fields...)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(custom.Status, custom.Response(gin.IsDebugging()))
}
